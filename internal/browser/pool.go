// Package browser owns the pooled headless-browser resources used by the
// verification workers. Instances are launched once, handed out to exactly
// one worker at a time, and reused for the life of the run; there is no
// health-checking or replacement of a crashed instance.
package browser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SessionOptions configures the isolated browsing context a worker opens on a
// borrowed instance.
type SessionOptions struct {
	UserAgent         string
	AcceptLanguage    string
	Locale            string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
}

// FetchResult is the rendered outcome of one navigation.
type FetchResult struct {
	Status  int
	Content string
}

// Instance is one long-lived browser owned by the pool. A borrowed instance
// must never be shared between workers.
type Instance interface {
	// NewSession opens a fresh isolated context with a single page.
	NewSession(opts SessionOptions) (Session, error)
	// Close tears the browser down. Called only by the pool.
	Close() error
}

// Session is an isolated browsing context holding one open page.
type Session interface {
	// Fetch navigates the page and returns its rendered content. A nil error
	// with Status >= 400 means the server answered but refused the page.
	Fetch(url string) (FetchResult, error)
	// Close releases the page and its context; best-effort.
	Close()
}

// Pool hands out a fixed set of pre-launched browser instances. Acquisition
// blocks until both a concurrency slot and an idle instance are available;
// idle instances are served FIFO.
type Pool struct {
	slots  chan struct{}
	idle   chan Instance
	all    []Instance
	stop   func() error
	logger *zap.Logger
}

// NewPool builds a pool over pre-launched instances. stop, if non-nil, shuts
// down the underlying automation engine during Close.
func NewPool(instances []Instance, stop func() error, logger *zap.Logger) (*Pool, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("pool requires at least one browser instance")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		slots:  make(chan struct{}, len(instances)),
		idle:   make(chan Instance, len(instances)),
		all:    instances,
		stop:   stop,
		logger: logger,
	}
	for _, inst := range instances {
		p.idle <- inst
	}
	return p, nil
}

// Size returns the number of pooled instances.
func (p *Pool) Size() int {
	return len(p.all)
}

// Acquire blocks until a slot and an idle instance are available, then hands
// the instance out. The caller must Release it on every exit path.
func (p *Pool) Acquire(ctx context.Context) (Instance, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire browser slot: %w", ctx.Err())
	}
	select {
	case inst := <-p.idle:
		return inst, nil
	case <-ctx.Done():
		<-p.slots
		return nil, fmt.Errorf("acquire browser: %w", ctx.Err())
	}
}

// Release returns a borrowed instance to the idle queue and frees its slot.
func (p *Pool) Release(inst Instance) {
	if inst == nil {
		return
	}
	p.idle <- inst
	<-p.slots
}

// Close tears down every instance and stops the automation engine. Close
// failures are logged and swallowed; teardown is best-effort and never
// escalates.
func (p *Pool) Close() {
	for _, inst := range p.all {
		if err := inst.Close(); err != nil {
			p.logger.Warn("cerrando navegador", zap.Error(err))
		}
	}
	if p.stop != nil {
		if err := p.stop(); err != nil {
			p.logger.Warn("deteniendo motor de navegadores", zap.Error(err))
		}
	}
}
