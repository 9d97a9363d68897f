package verify

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/begonlabs/poligonos/internal/browser"
	"github.com/begonlabs/poligonos/internal/database"
	"github.com/begonlabs/poligonos/internal/directorio"
	"github.com/begonlabs/poligonos/internal/progress"
	"github.com/begonlabs/poligonos/internal/publisher"
	"github.com/begonlabs/poligonos/internal/storage"
)

// pool is what the engine needs from a launched browser fleet.
type pool interface {
	BrowserPool
	Close()
}

// launcher starts a browser fleet of the given size. Swapped for a fake in
// tests so the engine can run without real browsers.
type launcher func(count int, logger *zap.Logger) (pool, error)

func chromiumLauncher(count int, logger *zap.Logger) (pool, error) {
	return browser.Launch(count, logger)
}

// Engine drives verification runs: one run per pending input file, a fresh
// browser fleet per run, and a bounded set of workers sharing that fleet.
type Engine struct {
	cfg      Config
	launch   launcher
	archive  storage.Provider
	db       database.Provider
	pub      publisher.Publisher
	progress progress.Emitter
	logger   *zap.Logger
}

// NewEngine wires an Engine over the given supporting services. Any nil
// service degrades to a no-op so callers only configure what they use.
func NewEngine(cfg Config, archive storage.Provider, db database.Provider, pub publisher.Publisher, emitter progress.Emitter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if archive == nil {
		archive = &storage.NoOpProvider{}
	}
	if db == nil {
		db = &database.NoOpProvider{}
	}
	if pub == nil {
		pub = &publisher.NoOp{}
	}
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}
	return &Engine{
		cfg:      cfg,
		launch:   chromiumLauncher,
		archive:  archive,
		db:       db,
		pub:      pub,
		progress: emitter,
		logger:   logger,
	}
}

// ProcessAll verifies every pending input file in the data directory. Files
// already holding an output file are skipped. A failing file does not stop
// the remaining ones.
func (e *Engine) ProcessAll(ctx context.Context) ([]directorio.RunSummary, error) {
	pending, err := directorio.PendingFiles(e.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("buscar archivos pendientes: %w", err)
	}
	if len(pending) == 0 {
		e.logger.Info("no hay archivos pendientes", zap.String("dir", e.cfg.DataDir))
		return nil, nil
	}
	e.logger.Info("archivos pendientes", zap.Int("total", len(pending)))

	summaries := make([]directorio.RunSummary, 0, len(pending))
	for _, path := range pending {
		if ctx.Err() != nil {
			return summaries, ctx.Err()
		}
		summary, err := e.ProcessFile(ctx, path)
		if err != nil {
			e.logger.Error("archivo fallido", zap.String("archivo", path), zap.Error(err))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ProcessFile runs one verification pass over a single input file and writes
// the enriched output file next to it. Output order is completion order, not
// input order; nothing downstream depends on record position.
func (e *Engine) ProcessFile(ctx context.Context, inputPath string) (directorio.RunSummary, error) {
	started := time.Now()
	runID := uuid.New()
	zone := directorio.ZoneFromInput(inputPath)

	records, err := directorio.LoadBusinesses(inputPath)
	if err != nil {
		return directorio.RunSummary{}, fmt.Errorf("cargar negocios: %w", err)
	}

	e.progress.Emit(progress.Event{
		RunID: runID,
		TS:    started,
		Stage: progress.StageRunStart,
		Zone:  zone,
		Note:  filepath.Base(inputPath),
	})

	fleet, err := e.launch(e.cfg.MaxBrowsers, e.logger)
	if err != nil {
		e.emitRunError(runID, zone, err)
		return directorio.RunSummary{}, fmt.Errorf("lanzar navegadores: %w", err)
	}
	defer fleet.Close()

	budget := newDomainBudget(e.cfg.DomainQPS)
	worker := NewWorker(fleet, e.cfg, budget, e.logger)
	pacer := &timerPauser{}

	results := make(chan Outcome)
	enriched := make([]directorio.BusinessRecord, 0, len(records))
	var verifiedEmails, verifiedPhones, newEmails, processed int

	// Single collector goroutine owns the slice and the counters, so the
	// workers never share mutable state.
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for msg := range results {
			rec := msg.Record
			enriched = append(enriched, rec)
			processed++
			if rec.VerificationResults != nil {
				if rec.VerificationResults.EmailVerified {
					verifiedEmails++
				}
				if rec.VerificationResults.PhoneVerified {
					verifiedPhones++
				}
			}
			if msg.EmailAdopted {
				newEmails++
			}
			e.progress.Emit(progress.Event{
				RunID:         runID,
				TS:            time.Now(),
				Stage:         progress.StageBusinessDone,
				Zone:          zone,
				Business:      rec.Nombre,
				EmailVerified: rec.VerificationResults != nil && rec.VerificationResults.EmailVerified,
				PhoneVerified: rec.VerificationResults != nil && rec.VerificationResults.PhoneVerified,
				EmailAdopted:  msg.EmailAdopted,
				Processed:     int64(processed),
			})
		}
	}()

	sem := semaphore.NewWeighted(int64(e.cfg.MaxConcurrentWorkers))
	var wg sync.WaitGroup
	pacingWindow := 2 * e.cfg.MaxConcurrentWorkers

	for i, record := range records {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(idx int, rec directorio.BusinessRecord) {
			defer wg.Done()
			defer sem.Release(1)
			results <- worker.Verify(ctx, rec, idx, len(records))
		}(i, record)

		// Let the fleet drain a little after each scheduling burst instead
		// of queueing the whole file up front.
		if pacingWindow > 0 && (i+1)%pacingWindow == 0 && i+1 < len(records) {
			pacer.Pause(ctx, e.cfg.SchedulerPause)
		}
	}

	wg.Wait()
	close(results)
	<-collectorDone

	if ctx.Err() != nil {
		e.emitRunError(runID, zone, ctx.Err())
		return directorio.RunSummary{}, ctx.Err()
	}

	outputPath := directorio.OutputPath(inputPath)
	if err := directorio.SaveBusinesses(outputPath, enriched); err != nil {
		e.emitRunError(runID, zone, err)
		return directorio.RunSummary{}, fmt.Errorf("guardar resultados: %w", err)
	}

	elapsed := time.Since(started)
	summary := directorio.RunSummary{
		RunID:          runID.String(),
		Zona:           zone,
		InputFile:      filepath.Base(inputPath),
		OutputFile:     filepath.Base(outputPath),
		Processed:      processed,
		VerifiedEmails: verifiedEmails,
		VerifiedPhones: verifiedPhones,
		NewEmails:      newEmails,
		Elapsed:        elapsed,
		ElapsedSeconds: elapsed.Seconds(),
		StartedAt:      started,
	}

	e.persistRun(ctx, summary, enriched, outputPath)

	e.progress.Emit(progress.Event{
		RunID:     runID,
		TS:        time.Now(),
		Stage:     progress.StageRunDone,
		Zone:      zone,
		Processed: int64(processed),
		Dur:       elapsed,
	})

	e.logger.Info("verificacion completada",
		zap.String("zona", zone),
		zap.Int("procesados", processed),
		zap.Int("emails_verificados", verifiedEmails),
		zap.Int("telefonos_verificados", verifiedPhones),
		zap.Int("emails_nuevos", newEmails),
		zap.Duration("duracion", elapsed),
	)

	return summary, nil
}

// persistRun ships the run artifacts to the optional backends. Failures are
// logged and swallowed: the output file on disk is the source of truth.
func (e *Engine) persistRun(ctx context.Context, summary directorio.RunSummary, enriched []directorio.BusinessRecord, outputPath string) {
	if data, err := directorio.Encode(enriched); err == nil {
		objectName := fmt.Sprintf("runs/%s/%s", summary.RunID, filepath.Base(outputPath))
		if err := e.archive.Save(ctx, objectName, data); err != nil {
			e.logger.Warn("archivar resultados", zap.Error(err))
		}
	} else {
		e.logger.Warn("codificar resultados", zap.Error(err))
	}
	if err := e.db.SaveRunSummary(ctx, summary); err != nil {
		e.logger.Warn("guardar resumen", zap.Error(err))
	}
	if err := e.pub.PublishRunSummary(ctx, summary); err != nil {
		e.logger.Warn("publicar resumen", zap.Error(err))
	}
}

func (e *Engine) emitRunError(runID uuid.UUID, zone string, err error) {
	e.progress.Emit(progress.Event{
		RunID: runID,
		TS:    time.Now(),
		Stage: progress.StageRunError,
		Zone:  zone,
		Note:  err.Error(),
	})
}
