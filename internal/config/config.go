// Package config holds run settings, loaded from environment variables
// with defaults. A .env file, when present, is applied by the CLI before
// this package reads the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries every knob the pipeline and its collaborators need.
type Config struct {
	// InputDir is the base directory holding <table>/<FilePattern> files.
	InputDir string
	// FilePattern is the file name inside each table directory.
	FilePattern string
	// OutputDir receives the per-table and combined JSON documents.
	OutputDir string
	// CombinedFilename names the combined dataset document.
	CombinedFilename string
	// DatasetName labels the combined dataset metadata.
	DatasetName string
	// SchemasPath points at the schema JSON document.
	SchemasPath string
	// ValidateData toggles the validation phase.
	ValidateData bool
	// WriteCombined toggles the combined dataset output.
	WriteCombined bool

	// IdentifierSuffixes mark numeric columns that must be non-negative IDs.
	IdentifierSuffixes []string
	// MonetarySuffixes mark numeric columns that must be non-negative amounts.
	MonetarySuffixes []string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// SeqURL, when set, enables log shipping to a Seq server.
	SeqURL string
}

// FromEnv builds a Config from CSV2JSON_* environment variables, falling
// back to defaults for anything unset.
func FromEnv() (*Config, error) {
	cfg := &Config{
		InputDir:           getenv("CSV2JSON_INPUT_DIR", "data/input/retail_db"),
		FilePattern:        getenv("CSV2JSON_FILE_PATTERN", "part-00000"),
		OutputDir:          getenv("CSV2JSON_OUTPUT_DIR", "data/output"),
		CombinedFilename:   getenv("CSV2JSON_COMBINED_FILENAME", "retail_db_combined.json"),
		DatasetName:        getenv("CSV2JSON_DATASET_NAME", "retail_db_combined"),
		SchemasPath:        getenv("CSV2JSON_SCHEMAS_PATH", "config/schemas.json"),
		IdentifierSuffixes: getenvList("CSV2JSON_ID_SUFFIXES", []string{"_id"}),
		MonetarySuffixes:   getenvList("CSV2JSON_MONEY_SUFFIXES", []string{"_price", "_subtotal"}),
		LogLevel:           getenv("CSV2JSON_LOG_LEVEL", "info"),
		SeqURL:             getenv("CSV2JSON_SEQ_URL", ""),
	}

	var err error
	if cfg.ValidateData, err = getenvBool("CSV2JSON_VALIDATE", true); err != nil {
		return nil, err
	}
	if cfg.WriteCombined, err = getenvBool("CSV2JSON_WRITE_COMBINED", true); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.SchemasPath == "" {
		return fmt.Errorf("schemas path must not be empty")
	}
	if c.FilePattern == "" {
		return fmt.Errorf("file pattern must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid boolean for %s: %q", key, v)
	}
	return b, nil
}

func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
