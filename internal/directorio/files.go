package directorio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	inputPrefix  = "negocios_"
	outputPrefix = "email_"
)

// ErrNoBusinesses indicates an input file held nothing beyond the sentinel.
var ErrNoBusinesses = errors.New("input file contains no businesses")

// InputFileName builds the discovery output name for a zone.
func InputFileName(zoneName string) string {
	return inputPrefix + Slug(zoneName) + ".json"
}

// OutputPath derives the enriched-output path for an input file by swapping
// the negocios_ prefix for email_ in the base name.
func OutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	return filepath.Join(dir, outputPrefix+strings.TrimPrefix(base, inputPrefix))
}

// ZoneFromInput recovers the zone slug from an input file path.
func ZoneFromInput(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimPrefix(base, inputPrefix)
	return strings.TrimSuffix(base, ".json")
}

// PendingFiles lists negocios_*.json files in dataDir whose email_ output does
// not exist yet. Resumption is file-granular: a file with any output at all is
// considered done.
func PendingFiles(dataDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, inputPrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob input files: %w", err)
	}
	pending := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, err := os.Stat(OutputPath(m)); err == nil {
			continue
		}
		pending = append(pending, m)
	}
	return pending, nil
}

// LoadBusinesses reads an input file and drops the index-0 sentinel element.
// The sentinel is a positional convention of the upstream discovery output:
// the first element of every file is zone metadata, not a business, and must
// never reach a worker. Files holding only the sentinel (or less) yield
// ErrNoBusinesses.
func LoadBusinesses(path string) ([]BusinessRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []BusinessRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(records) <= 1 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoBusinesses)
	}
	return records[1:], nil
}

// LoadOutput reads an enriched output file. Output files carry no sentinel,
// so every element is a business.
func LoadOutput(path string) ([]BusinessRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []BusinessRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// Encode renders records as the indented JSON array the file contract uses.
func Encode(records []BusinessRecord) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}

// SaveBusinesses writes records as indented JSON, creating parent directories
// as needed.
func SaveBusinesses(path string, records []BusinessRecord) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var accentReplacer = strings.NewReplacer(
	" ", "_",
	"ñ", "n",
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
)

// Slug lowercases a zone name and strips the accents and spaces that upstream
// file names never carry.
func Slug(name string) string {
	return accentReplacer.Replace(strings.ToLower(name))
}
