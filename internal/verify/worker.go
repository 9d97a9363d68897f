package verify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/begonlabs/poligonos/internal/browser"
	"github.com/begonlabs/poligonos/internal/contacts"
	"github.com/begonlabs/poligonos/internal/directorio"
)

// noWebsiteError is recorded verbatim in the outcome when a business has no
// website to verify against. The literal is part of the file contract.
const noWebsiteError = "No hay website"

// BrowserPool is the subset of the pool the worker needs.
type BrowserPool interface {
	Acquire(ctx context.Context) (browser.Instance, error)
	Release(inst browser.Instance)
}

// Outcome pairs the enriched record with reconciliation facts the collector
// needs but the record itself does not carry.
type Outcome struct {
	Record       directorio.BusinessRecord
	EmailAdopted bool
}

// Worker verifies one business at a time: it borrows a browser, walks the
// configured contact paths under the business website, and reconciles what it
// found against the record's existing contact data. Workers are stateless and
// safe to share across goroutines.
type Worker struct {
	pool   BrowserPool
	cfg    Config
	budget *domainBudget
	pause  pauser
	logger *zap.Logger
}

// NewWorker builds a Worker over the shared pool and per-run domain budget.
func NewWorker(pool BrowserPool, cfg Config, budget *domainBudget, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		pool:   pool,
		cfg:    cfg,
		budget: budget,
		pause:  &timerPauser{},
		logger: logger,
	}
}

// Verify runs the full per-business pipeline and returns the enriched record.
// Every failure is downgraded to the outcome's error field; Verify never
// fails the batch. The borrowed browser is released on every exit path.
func (w *Worker) Verify(ctx context.Context, record directorio.BusinessRecord, index, total int) Outcome {
	w.logger.Info("procesando negocio",
		zap.String("negocio", record.Nombre),
		zap.Int("indice", index+1),
		zap.Int("total", total),
	)

	outcome := directorio.NewOutcome()
	result := record
	result.VerificationResults = outcome

	currentEmail := strings.ToLower(record.Email)
	currentPhone := contacts.NormalizePhone(record.Telefono)

	if record.SitioWeb == "" {
		outcome.Error = noWebsiteError
		return Outcome{Record: result}
	}

	inst, err := w.pool.Acquire(ctx)
	if err != nil {
		outcome.Error = err.Error()
		return Outcome{Record: result}
	}
	defer w.pool.Release(inst)

	session, err := inst.NewSession(browser.SessionOptions{
		UserAgent:         w.cfg.UserAgent,
		AcceptLanguage:    w.cfg.AcceptLanguage,
		Locale:            w.cfg.Locale,
		NavigationTimeout: w.cfg.NavigationTimeout,
		SettleDelay:       w.cfg.SettleDelay,
	})
	if err != nil {
		outcome.Error = err.Error()
		return Outcome{Record: result}
	}
	defer session.Close()

	emails := newOrderedSet()
	phones := newOrderedSet()
	baseURL := strings.TrimRight(record.SitioWeb, "/")

	for _, path := range w.cfg.ContactPaths {
		pageURL := resolvePath(baseURL, path)
		outcome.PagesChecked = append(outcome.PagesChecked, pageURL)

		extraction := w.extractFrom(ctx, session, pageURL)
		emails.addAll(extraction.Emails)
		phones.addAll(extraction.Phones)

		w.pause.Pause(ctx, w.cfg.PolitenessDelay)
		if ctx.Err() != nil {
			break
		}
	}

	outcome.EmailsFound = emails.list()
	outcome.PhonesFound = phones.list()

	adopted := false
	if currentEmail != "" && emails.contains(currentEmail) && contacts.IsValidEmail(currentEmail) {
		outcome.EmailVerified = true
	}
	if currentPhone != "" && phones.contains(currentPhone) {
		outcome.PhoneVerified = true
	}
	if currentEmail == "" && emails.len() > 0 {
		// Found emails are already validator-accepted; adopt the first one
		// seen. An address read off the business's own site counts as
		// verified.
		result.Email = emails.first()
		outcome.EmailVerified = true
		adopted = true
	}
	if currentPhone == "" && phones.len() > 0 {
		result.Telefono = phones.first()
		outcome.PhoneVerified = true
	}

	return Outcome{Record: result, EmailAdopted: adopted}
}

// extractFrom fetches one page and extracts contacts. Failures are page
// scoped: a timeout, a >= 400 response, or a content error yields an empty
// extraction without aborting the remaining paths.
func (w *Worker) extractFrom(ctx context.Context, session browser.Session, pageURL string) contacts.Extraction {
	if err := w.budget.Wait(ctx, pageURL); err != nil {
		w.logger.Warn("presupuesto de dominio", zap.String("url", pageURL), zap.Error(err))
		return contacts.Extraction{}
	}
	res, err := session.Fetch(pageURL)
	if err != nil {
		w.logger.Warn("error extrayendo contactos", zap.String("url", pageURL), zap.Error(err))
		return contacts.Extraction{}
	}
	if res.Status == 0 || res.Status >= 400 {
		return contacts.Extraction{}
	}
	return contacts.Extract(res.Content)
}

// resolvePath joins a contact path against the site base URL. Absolute paths
// replace whatever path the base carries.
func resolvePath(base, path string) string {
	if path == "" {
		return base
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return base + path
	}
	return u.ResolveReference(ref).String()
}

// domainBudget rate-limits navigations per host so walking eight paths on one
// site stays polite even when the politeness delay is tuned down.
type domainBudget struct {
	qps      float64
	limiters sync.Map
}

func newDomainBudget(qps float64) *domainBudget {
	return &domainBudget{qps: qps}
}

// Wait blocks until the host's budget allows another navigation. A zero QPS
// disables the budget entirely.
func (b *domainBudget) Wait(ctx context.Context, rawURL string) error {
	if b == nil || b.qps <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := b.limiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(b.qps), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}

// orderedSet is a de-duplicating set that remembers first-seen order, so the
// "first found" adoption rule is deterministic.
type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

func (s *orderedSet) addAll(vs []string) {
	for _, v := range vs {
		s.add(v)
	}
}

func (s *orderedSet) contains(v string) bool {
	_, ok := s.seen[v]
	return ok
}

func (s *orderedSet) len() int { return len(s.values) }

func (s *orderedSet) first() string {
	if len(s.values) == 0 {
		return ""
	}
	return s.values[0]
}

func (s *orderedSet) list() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
