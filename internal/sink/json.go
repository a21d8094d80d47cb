// Package sink persists transformed tables and the combined dataset as
// indented UTF-8 JSON documents, written atomically and verified by a
// post-write readback.
package sink

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/datakit/csv2json/internal/transform"
)

// WriteInfo describes one persisted document.
type WriteInfo struct {
	Path      string        `json:"file_path"`
	SizeBytes int64         `json:"file_size_bytes"`
	Records   int           `json:"record_count"`
	Duration  time.Duration `json:"-"`
}

// JSONSink writes one <table>.json per table plus the combined document.
// The output directory must already exist; creating it is the caller's
// concern.
type JSONSink struct {
	OutputDir string

	logger *slog.Logger
}

func NewJSON(outputDir string, logger *slog.Logger) *JSONSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONSink{OutputDir: outputDir, logger: logger}
}

// TablePath returns the output path for a table document.
func (s *JSONSink) TablePath(table string) string {
	return filepath.Join(s.OutputDir, table+".json")
}

// WriteTable persists one table as {"metadata": ..., "data": [...]}.
func (s *JSONSink) WriteTable(table string, tt *transform.TransformedTable) (WriteInfo, error) {
	info, err := s.writeDocument(s.TablePath(table), tt, len(tt.Records))
	if err != nil {
		return info, err
	}
	s.logger.Info("table written",
		slog.String("table", table),
		slog.String("path", info.Path),
		slog.Int("records", info.Records),
		slog.Int64("size_bytes", info.SizeBytes),
	)
	return info, nil
}

// WriteCombined persists the combined dataset as {"metadata": ..., "tables": ...}.
func (s *JSONSink) WriteCombined(filename string, ds *transform.CombinedDataset) (WriteInfo, error) {
	path := filepath.Join(s.OutputDir, filename)
	info, err := s.writeDocument(path, ds, ds.Metadata.TotalRecords)
	if err != nil {
		return info, err
	}
	s.logger.Info("combined dataset written",
		slog.String("path", info.Path),
		slog.Int("records", info.Records),
		slog.Int64("size_bytes", info.SizeBytes),
	)
	return info, nil
}

// writeDocument marshals doc with two-space indent and HTML escaping off
// (non-ASCII and angle brackets pass through verbatim), writes to a temp
// file, renames it into place, then re-opens and parses the artifact.
func (s *JSONSink) writeDocument(path string, doc any, records int) (WriteInfo, error) {
	start := time.Now()
	info := WriteInfo{Path: path, Records: records}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return info, &WriteError{Path: path, Reason: err}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return info, &WriteError{Path: path, Reason: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return info, &WriteError{Path: path, Reason: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return info, &WriteError{Path: path, Reason: err}
	}

	if err := s.Readback(path); err != nil {
		return info, err
	}

	if st, err := os.Stat(path); err == nil {
		info.SizeBytes = st.Size()
	}
	info.Duration = time.Since(start)
	return info, nil
}

// Readback confirms a written artifact is well-formed JSON.
func (s *JSONSink) Readback(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &ReadbackError{Path: path, Reason: err}
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ReadbackError{Path: path, Reason: err}
	}
	return nil
}
