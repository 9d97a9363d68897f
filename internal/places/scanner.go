package places

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/begonlabs/poligonos/internal/database"
	"github.com/begonlabs/poligonos/internal/directorio"
	"github.com/begonlabs/poligonos/internal/storage"
)

const (
	estadoCompletado = "completado"
	estadoError      = "error"

	// Curated zone coordinates, as opposed to a geocoder's ROOFTOP or
	// APPROXIMATE location types.
	precisionManual = "MANUAL"

	summaryFileName = "resumen_escaneo.json"
	scanTimeLayout  = "2006-01-02 15:04:05"
)

// ScannerConfig carries the discovery knobs.
type ScannerConfig struct {
	DataDir      string
	RadiusMeters int
	ZonePause    time.Duration

	// SummaryEvery controls how often the running summary file is flushed
	// mid-batch, in zones.
	SummaryEvery int
}

// Validate applies defaults and rejects nonsense values.
func (c *ScannerConfig) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("discover.data_dir is required")
	}
	if c.RadiusMeters <= 0 {
		c.RadiusMeters = 320
	}
	if c.SummaryEvery <= 0 {
		c.SummaryEvery = 10
	}
	return nil
}

// Scanner runs zone scans and writes one negocios_<slug>.json per zone.
type Scanner struct {
	client  *Client
	cfg     ScannerConfig
	archive storage.Provider
	db      database.Provider
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration)
}

// NewScanner wires a Scanner. Nil services degrade to no-ops.
func NewScanner(client *Client, cfg ScannerConfig, archive storage.Provider, db database.Provider, logger *zap.Logger) (*Scanner, error) {
	if client == nil {
		return nil, fmt.Errorf("places client is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if archive == nil {
		archive = &storage.NoOpProvider{}
	}
	if db == nil {
		db = &database.NoOpProvider{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		client:  client,
		cfg:     cfg,
		archive: archive,
		db:      db,
		logger:  logger,
		sleep:   sleepContext,
	}, nil
}

// ScanAll processes every zone in order, maintaining the running summary
// file. A zone failure is recorded in the summary and does not stop the
// batch.
func (s *Scanner) ScanAll(ctx context.Context, zones []Zone) ([]directorio.ScanResult, error) {
	s.logger.Info("iniciando escaneo de zonas", zap.Int("total", len(zones)))

	results := make([]directorio.ScanResult, 0, len(zones))
	for i, zone := range zones {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		s.logger.Info("procesando zona",
			zap.String("zona", zone.Nombre),
			zap.Int("indice", i+1),
			zap.Int("total", len(zones)),
		)

		count, err := s.ScanZone(ctx, zone)
		result := directorio.ScanResult{
			Poligono:            zone.Nombre,
			NegociosEncontrados: count,
			Estado:              estadoCompletado,
			Timestamp:           time.Now().Format(scanTimeLayout),
		}
		if err != nil {
			s.logger.Error("zona fallida", zap.String("zona", zone.Nombre), zap.Error(err))
			result.Estado = estadoError
			result.NegociosEncontrados = 0
			result.Error = err.Error()
		}
		results = append(results, result)

		if (i+1)%s.cfg.SummaryEvery == 0 {
			if err := s.saveSummary(results); err != nil {
				s.logger.Warn("guardar resumen parcial", zap.Error(err))
			}
		}
		if i+1 < len(zones) {
			s.sleep(ctx, s.cfg.ZonePause)
		}
	}

	if err := s.saveSummary(results); err != nil {
		s.logger.Warn("guardar resumen", zap.Error(err))
	}
	if err := s.db.SaveScanResults(ctx, results); err != nil {
		s.logger.Warn("persistir resultados de escaneo", zap.Error(err))
	}

	s.logSummary(results)
	return results, nil
}

// ScanZone searches the zone, enriches each place with details, and writes
// the negocios_ file. Index 0 of the file is the zone-marker sentinel record.
func (s *Scanner) ScanZone(ctx context.Context, zone Zone) (int, error) {
	found, err := s.client.NearbySearch(ctx, zone, s.cfg.RadiusMeters)
	if err != nil {
		return 0, fmt.Errorf("buscar negocios en %s: %w", zone.Nombre, err)
	}

	records := make([]directorio.BusinessRecord, 0, len(found)+1)
	records = append(records, directorio.BusinessRecord{
		Nombre:              directorio.SentinelName,
		ReferenciaPoligono:  zone.Nombre,
		CoordenadasPoligono: zone.Location(),
		PrecisionUbicacion:  precisionManual,
	})

	for _, place := range found {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		details := s.client.PlaceDetails(ctx, place.PlaceID)
		records = append(records, directorio.BusinessRecord{
			Nombre:              place.Name,
			Direccion:           place.Vicinity,
			LinkGoogleMaps:      fmt.Sprintf("https://www.google.com/maps/place/?q=place_id:%s", place.PlaceID),
			Valoracion:          place.Rating,
			Categorias:          strings.Join(place.Types, ", "),
			Telefono:            details.FormattedPhoneNumber,
			SitioWeb:            details.Website,
			ReferenciaPoligono:  zone.Nombre,
			CoordenadasPoligono: zone.Location(),
			PrecisionUbicacion:  precisionManual,
		})
	}

	path := filepath.Join(s.cfg.DataDir, directorio.InputFileName(zone.Nombre))
	if err := directorio.SaveBusinesses(path, records); err != nil {
		return 0, err
	}
	s.archiveFile(ctx, path, records)

	s.logger.Info("zona guardada",
		zap.String("zona", zone.Nombre),
		zap.Int("negocios", len(records)-1),
		zap.String("archivo", filepath.Base(path)),
	)
	return len(records) - 1, nil
}

func (s *Scanner) archiveFile(ctx context.Context, path string, records []directorio.BusinessRecord) {
	data, err := directorio.Encode(records)
	if err != nil {
		s.logger.Warn("codificar archivo de zona", zap.Error(err))
		return
	}
	objectName := "discovery/" + filepath.Base(path)
	if err := s.archive.Save(ctx, objectName, data); err != nil {
		s.logger.Warn("archivar archivo de zona", zap.Error(err))
	}
}

func (s *Scanner) saveSummary(results []directorio.ScanResult) error {
	path := filepath.Join(s.cfg.DataDir, summaryFileName)
	return directorio.SaveScanSummary(path, results)
}

func (s *Scanner) logSummary(results []directorio.ScanResult) {
	var completed, failed, businesses int
	for _, res := range results {
		if res.Estado == estadoCompletado {
			completed++
		} else {
			failed++
		}
		businesses += res.NegociosEncontrados
	}
	s.logger.Info("escaneo completado",
		zap.Int("zonas_completadas", completed),
		zap.Int("zonas_fallidas", failed),
		zap.Int("negocios_totales", businesses),
	)
}
