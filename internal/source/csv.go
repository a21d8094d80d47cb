// Package source reads raw, position-indexed rows from header-less
// delimited files laid out as <base>/<table>/<pattern>.
package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/datakit/csv2json/internal/coerce"
)

// FileInfo describes a table's backing file. Used for reporting only,
// never for core decisions.
type FileInfo struct {
	Table         string `json:"table_name"`
	Path          string `json:"file_path"`
	Exists        bool   `json:"exists"`
	SizeBytes     int64  `json:"size_bytes"`
	EstimatedRows int    `json:"estimated_rows"`
}

// CSVSource reads one delimited file per table. The files carry no header
// row; cells map onto schema columns by position.
type CSVSource struct {
	BaseDir   string
	Pattern   string
	Delimiter rune

	logger *slog.Logger
}

func NewCSV(baseDir, pattern string, logger *slog.Logger) *CSVSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSource{
		BaseDir:   baseDir,
		Pattern:   pattern,
		Delimiter: ',',
		logger:    logger,
	}
}

// Path returns the backing file path for a table.
func (s *CSVSource) Path(table string) string {
	return filepath.Join(s.BaseDir, table, s.Pattern)
}

// Exists reports whether the table's backing file is present.
func (s *CSVSource) Exists(table string) bool {
	_, err := os.Stat(s.Path(table))
	return err == nil
}

// ReadTable reads all rows of one table. Rows keep whatever cell counts
// the file has; shape enforcement belongs to the coercion engine, which
// knows the schema.
func (s *CSVSource) ReadTable(table string) ([]coerce.RawRow, error) {
	path := s.Path(table)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = s.Delimiter
	r.FieldsPerRecord = -1

	var rows []coerce.RawRow
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(coerce.RawRow, len(fields))
		for i, cell := range fields {
			row[i] = cell
		}
		rows = append(rows, row)
	}

	s.logger.Info("table read",
		slog.String("table", table),
		slog.String("path", path),
		slog.Int("rows", len(rows)),
	)
	return rows, nil
}

// FileInfo stats the table's backing file and estimates its row count by
// counting lines.
func (s *CSVSource) FileInfo(table string) FileInfo {
	path := s.Path(table)
	info := FileInfo{Table: table, Path: path}

	st, err := os.Stat(path)
	if err != nil {
		return info
	}
	info.Exists = true
	info.SizeBytes = st.Size()

	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("could not estimate rows",
			slog.String("table", table),
			slog.Any("error", err),
		)
		return info
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	info.EstimatedRows = lines
	return info
}
