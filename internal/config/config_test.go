package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.InputDir != "data/input/retail_db" {
		t.Errorf("input dir = %q", cfg.InputDir)
	}
	if cfg.FilePattern != "part-00000" {
		t.Errorf("file pattern = %q", cfg.FilePattern)
	}
	if cfg.OutputDir != "data/output" {
		t.Errorf("output dir = %q", cfg.OutputDir)
	}
	if cfg.CombinedFilename != "retail_db_combined.json" {
		t.Errorf("combined filename = %q", cfg.CombinedFilename)
	}
	if !cfg.ValidateData || !cfg.WriteCombined {
		t.Error("validation and combined output should default on")
	}
	if len(cfg.IdentifierSuffixes) != 1 || cfg.IdentifierSuffixes[0] != "_id" {
		t.Errorf("id suffixes = %v", cfg.IdentifierSuffixes)
	}
	if len(cfg.MonetarySuffixes) != 2 {
		t.Errorf("money suffixes = %v", cfg.MonetarySuffixes)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CSV2JSON_INPUT_DIR", "/data/in")
	t.Setenv("CSV2JSON_OUTPUT_DIR", "/data/out")
	t.Setenv("CSV2JSON_VALIDATE", "false")
	t.Setenv("CSV2JSON_ID_SUFFIXES", "_id, _key")
	t.Setenv("CSV2JSON_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.InputDir != "/data/in" || cfg.OutputDir != "/data/out" {
		t.Errorf("dirs = %q, %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.ValidateData {
		t.Error("validation should be off")
	}
	if len(cfg.IdentifierSuffixes) != 2 || cfg.IdentifierSuffixes[1] != "_key" {
		t.Errorf("id suffixes = %v", cfg.IdentifierSuffixes)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestInvalidValues(t *testing.T) {
	t.Setenv("CSV2JSON_VALIDATE", "maybe")
	if _, err := FromEnv(); err == nil {
		t.Error("invalid boolean should fail")
	}
	t.Setenv("CSV2JSON_VALIDATE", "true")

	t.Setenv("CSV2JSON_LOG_LEVEL", "loud")
	if _, err := FromEnv(); err == nil {
		t.Error("unknown log level should fail")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		InputDir:    "in",
		OutputDir:   "out",
		SchemasPath: "schemas.json",
		FilePattern: "part-00000",
		LogLevel:    "info",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty output dir should fail")
	}
}
