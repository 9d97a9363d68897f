package directorio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunSummary aggregates one verification run (one zone file). It is what gets
// logged, persisted to the summary store, and published on run completion.
type RunSummary struct {
	RunID          string        `json:"run_id"`
	Zona           string        `json:"zona"`
	InputFile      string        `json:"input_file"`
	OutputFile     string        `json:"output_file"`
	Processed      int           `json:"negocios_procesados"`
	VerifiedEmails int           `json:"emails_verificados"`
	VerifiedPhones int           `json:"telefonos_verificados"`
	NewEmails      int           `json:"emails_nuevos"`
	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"segundos"`
	StartedAt      time.Time     `json:"inicio"`
}

// ScanResult summarizes one zone scan performed by the discovery command.
type ScanResult struct {
	Poligono            string `json:"poligono"`
	NegociosEncontrados int    `json:"negocios_encontrados"`
	Estado              string `json:"estado"`
	Timestamp           string `json:"timestamp"`
	Error               string `json:"error,omitempty"`
}

// SaveScanSummary writes the running discovery summary as indented JSON,
// creating parent directories as needed.
func SaveScanSummary(path string, results []ScanResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scan summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
