package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/datakit/csv2json/internal/config"
	"github.com/datakit/csv2json/internal/logging"
	"github.com/datakit/csv2json/internal/pipeline"
	"github.com/datakit/csv2json/internal/schema"
	"github.com/datakit/csv2json/internal/sink"
	"github.com/datakit/csv2json/internal/source"
	"github.com/datakit/csv2json/internal/validate"
)

var (
	inputDir    string
	outputDir   string
	schemasPath string
	onlyTables  []string
	noValidate  bool
	noCombined  bool
)

func main() {
	// .env values take effect before config reads the environment.
	if err := godotenv.Overload(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "csv2json",
	Short: "Schema-driven CSV to JSON converter",
	Long:  `Converts schema-described, header-less CSV tables into validated, type-normalized JSON documents plus a combined dataset.`,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Run the full conversion pipeline",
	Long:  `Read every configured table, coerce and validate it against its schema, and write per-table JSON documents plus the combined dataset.`,
	RunE:  runConvert,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate tables without writing output",
	Long:  `Read and coerce every configured table and print its validation findings. No files are written.`,
	RunE:  runCheck,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables defined in the schema document",
	RunE:  runTables,
}

func init() {
	for _, cmd := range []*cobra.Command{convertCmd, checkCmd} {
		cmd.Flags().StringVar(&inputDir, "input-dir", "", "Base directory holding <table>/<pattern> files (overrides env)")
		cmd.Flags().StringVar(&schemasPath, "schemas", "", "Path to the schema JSON document (overrides env)")
		cmd.Flags().StringSliceVar(&onlyTables, "tables", nil, "Restrict the run to these tables (default: all)")
	}
	convertCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for JSON output (overrides env)")
	convertCmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the validation phase")
	convertCmd.Flags().BoolVar(&noCombined, "no-combined", false, "Skip the combined dataset document")
	tablesCmd.Flags().StringVar(&schemasPath, "schemas", "", "Path to the schema JSON document (overrides env)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tablesCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if schemasPath != "" {
		cfg.SchemasPath = schemasPath
	}
	if noValidate {
		cfg.ValidateData = false
	}
	if noCombined {
		cfg.WriteCombined = false
	}
	return cfg, nil
}

func buildPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	registry := schema.NewRegistry(cfg.SchemasPath, logger)
	src := source.NewCSV(cfg.InputDir, cfg.FilePattern, logger)
	validator := validate.New(logger)
	validator.IdentifierSuffixes = cfg.IdentifierSuffixes
	validator.MonetarySuffixes = cfg.MonetarySuffixes
	out := sink.NewJSON(cfg.OutputDir, logger)
	return pipeline.New(registry, src, validator, out, logger)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeFn := logging.SetupLogger(logging.Level(cfg.LogLevel), cfg.SeqURL)
	defer closeFn()
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	p := buildPipeline(cfg, logger)
	result := p.Run(pipeline.Options{
		ValidateData:     cfg.ValidateData,
		WriteCombined:    cfg.WriteCombined,
		CombinedFilename: cfg.CombinedFilename,
		DatasetName:      cfg.DatasetName,
		Tables:           onlyTables,
	})

	printRunReport(result)
	if !result.Success {
		return fmt.Errorf("conversion failed: %s", result.Error)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ValidateData = true

	logger, closeFn := logging.SetupLogger(logging.Level(cfg.LogLevel), cfg.SeqURL)
	defer closeFn()
	slog.SetDefault(logger)

	registry := schema.NewRegistry(cfg.SchemasPath, logger)
	src := source.NewCSV(cfg.InputDir, cfg.FilePattern, logger)
	validator := validate.New(logger)
	validator.IdentifierSuffixes = cfg.IdentifierSuffixes
	validator.MonetarySuffixes = cfg.MonetarySuffixes
	p := pipeline.New(registry, src, validator, discardSink{}, logger)

	result := p.Run(pipeline.Options{
		ValidateData:  true,
		WriteCombined: false,
		Tables:        onlyTables,
	})

	printValidationReport(result)
	if !result.Success {
		return fmt.Errorf("check failed: %s", result.Error)
	}
	return nil
}

func runTables(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := schema.NewRegistry(cfg.SchemasPath, slog.Default())
	tables, err := registry.Tables()
	if err != nil {
		return err
	}

	for _, table := range tables {
		cols, err := registry.ColumnsOf(table)
		if err != nil {
			fmt.Printf("%s: invalid schema (%v)\n", table, err)
			continue
		}
		fmt.Printf("%s (%d columns)\n", table, len(cols))
		for _, col := range cols {
			req := ""
			if col.Required {
				req = " required"
			}
			fmt.Printf("  %2d  %-30s %s%s\n", col.Position, col.Name, col.Type, req)
		}
	}
	return nil
}

func printRunReport(result *pipeline.RunResult) {
	fmt.Println()
	fmt.Println("CONVERSION REPORT")
	fmt.Println("=================")
	fmt.Printf("Run ID:            %s\n", result.RunID)
	fmt.Printf("Success:           %t\n", result.Success)
	fmt.Printf("Duration:          %.2fs\n", result.DurationSeconds)
	fmt.Printf("Tables processed:  %d\n", result.Summary.TablesProcessed)
	fmt.Printf("Rows read:         %d\n", result.Summary.TotalRowsRead)
	fmt.Printf("Rows transformed:  %d\n", result.Summary.TotalRowsTransformed)
	fmt.Printf("Files written:     %d\n", result.Summary.FilesWritten)
	fmt.Printf("Combined dataset:  %t\n", result.Summary.CombinedFileCreated)

	for _, o := range result.Tables {
		if o.OK() {
			fmt.Printf("  ok   %-20s %6d rows -> %s\n", o.Table, o.RowsRead, o.OutputPath)
		} else {
			fmt.Printf("  FAIL %-20s phase=%s: %s\n", o.Table, o.FailedPhase, o.Error)
		}
	}
	if result.Validation != nil {
		fmt.Printf("Overall quality score: %.2f/100\n", result.Validation.OverallQualityScore)
	}
}

func printValidationReport(result *pipeline.RunResult) {
	fmt.Println()
	fmt.Println("DATA VALIDATION REPORT")
	fmt.Println("======================")
	for _, o := range result.Tables {
		if o.Validation == nil {
			if !o.OK() {
				fmt.Printf("\n%s: FAILED in phase %s: %s\n", o.Table, o.FailedPhase, o.Error)
			}
			continue
		}
		v := o.Validation
		fmt.Printf("\n%s:\n", o.Table)
		fmt.Printf("  Rows: %d (valid: %d)\n", v.TotalRows, v.ValidRows)
		fmt.Printf("  Quality score: %.2f/100\n", v.QualityScore)
		for _, e := range v.Errors {
			fmt.Printf("  error:   %s\n", e)
		}
		for _, w := range v.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		for _, i := range v.Issues {
			fmt.Printf("  issue:   %s\n", i)
		}
	}
	if result.Validation != nil {
		out, _ := json.MarshalIndent(result.Validation, "", "  ")
		fmt.Printf("\nSummary: %s\n", out)
	}
}
