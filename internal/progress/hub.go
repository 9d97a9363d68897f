package progress

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sink consumes batches of progress events. Implementations must be safe for
// repeated calls and may be invoked concurrently.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Hub satisfies this interface so the
// engine and workers stay agnostic of how events are consumed.
type Emitter interface {
	Emit(evt Event)
}

// NopEmitter discards every event.
type NopEmitter struct{}

func (NopEmitter) Emit(Event) {}

// Hub fans events out to its sinks. Verification runs emit at most a handful
// of events per second, so delivery is synchronous; the engine's result
// channel already decouples workers from any sink latency.
type Hub struct {
	mu     sync.Mutex
	sinks  []Sink
	logger *zap.Logger
	closed bool
}

// NewHub wires the sinks into a ready Hub.
func NewHub(logger *zap.Logger, sinks ...Sink) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{sinks: append([]Sink(nil), sinks...), logger: logger}
}

// Emit validates evt and delivers it to every sink. Invalid events are
// discarded with a debug log; sink failures are logged and never propagate to
// the emitter.
func (h *Hub) Emit(evt Event) {
	if h == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		h.logger.Debug("descartando evento de progreso inválido", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	batch := []Event{evt}
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Consume(context.Background(), batch); err != nil {
			h.logger.Warn("sink de progreso falló", zap.Error(err))
		}
	}
}

// Close shuts down every sink. Safe to call more than once.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil {
			h.logger.Warn("cierre de sink de progreso falló", zap.Error(err))
		}
	}
	return nil
}
