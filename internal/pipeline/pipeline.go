// Package pipeline sequences schema load, read, coercion, validation,
// transformation and persistence for every table, tolerating per-table
// failure and aggregating run statistics.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/datakit/csv2json/internal/coerce"
	"github.com/datakit/csv2json/internal/schema"
	"github.com/datakit/csv2json/internal/sink"
	"github.com/datakit/csv2json/internal/source"
	"github.com/datakit/csv2json/internal/transform"
	"github.com/datakit/csv2json/internal/validate"
)

// SchemaProvider serves table schemas. Implemented by schema.Registry.
type SchemaProvider interface {
	Load() error
	Tables() ([]string, error)
	SchemaOf(table string) (*schema.TableSchema, error)
	ValidateTableSchema(table string) error
	Available(table string) bool
}

// RecordSource delivers raw, position-indexed rows per table.
// Implemented by source.CSVSource.
type RecordSource interface {
	ReadTable(table string) ([]coerce.RawRow, error)
	FileInfo(table string) source.FileInfo
}

// Sink persists transformed documents. Implemented by sink.JSONSink.
type Sink interface {
	WriteTable(table string, tt *transform.TransformedTable) (sink.WriteInfo, error)
	WriteCombined(filename string, ds *transform.CombinedDataset) (sink.WriteInfo, error)
	TablePath(table string) string
}

// Options tune a run without reaching into collaborator construction.
type Options struct {
	// ValidateData toggles the validation phase.
	ValidateData bool
	// WriteCombined toggles the combined dataset document.
	WriteCombined bool
	// CombinedFilename names the combined document.
	CombinedFilename string
	// DatasetName labels the combined dataset metadata.
	DatasetName string
	// Tables restricts the run to a subset; empty means all registered.
	Tables []string
}

// Pipeline owns its collaborators for one run. Everything is injected;
// nothing is process-global.
type Pipeline struct {
	provider    SchemaProvider
	src         RecordSource
	coercer     *coerce.Coercer
	validator   *validate.Validator
	transformer *transform.Transformer
	out         Sink
	logger      *slog.Logger
}

func New(provider SchemaProvider, src RecordSource, validator *validate.Validator, out Sink, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		provider:    provider,
		src:         src,
		coercer:     coerce.New(logger),
		validator:   validator,
		transformer: transform.New(logger),
		out:         out,
		logger:      logger,
	}
}

// Run executes the full conversion. It always returns a result structure;
// Success is false only when no table survived (or the schema document
// itself was unusable).
func (p *Pipeline) Run(opts Options) *RunResult {
	start := time.Now()
	result := &RunResult{
		RunID:       uuid.New().String(),
		StartTime:   start,
		OutputFiles: make(map[string]string),
	}

	p.logger.Info("conversion started", slog.String("run_id", result.RunID))

	stats := newCollector()
	tables, err := p.initTables(opts)
	if err != nil {
		return p.finish(result, stats, nil, fmt.Errorf("init: %w", err))
	}

	transformed := make(map[string]*transform.TransformedTable, len(tables))
	var transformedOrder []string
	validations := make([]*validate.Result, 0, len(tables))

	for _, table := range tables {
		outcome := p.runTable(table, opts, stats)
		if outcome.OK() {
			transformed[table] = outcome.document
			transformedOrder = append(transformedOrder, table)
			result.OutputFiles[table] = outcome.OutputPath
		}
		if outcome.Validation != nil {
			validations = append(validations, outcome.Validation)
		}
		stats.add(outcome.TableOutcome)
	}

	if len(transformed) == 0 {
		return p.finish(result, stats, validations, fmt.Errorf("no table survived the pipeline"))
	}

	if opts.WriteCombined {
		combined := p.transformer.Combine(opts.DatasetName, transformedOrder, transformed)
		info, err := p.out.WriteCombined(opts.CombinedFilename, combined)
		if err != nil {
			// The per-table documents are already on disk; a combined
			// write failure degrades the run instead of sinking it.
			p.logger.Error("combined dataset write failed", slog.Any("error", err))
		} else {
			result.Summary.CombinedFileCreated = true
			result.OutputFiles["_combined"] = info.Path
		}
	}

	return p.finish(result, stats, validations, nil)
}

// tableRun pairs the reportable outcome with the transformed document the
// run still needs for the combined dataset.
type tableRun struct {
	TableOutcome
	document *transform.TransformedTable
}

// initTables loads the schema document and resolves the table list.
func (p *Pipeline) initTables(opts Options) ([]string, error) {
	if err := p.provider.Load(); err != nil {
		return nil, err
	}

	if len(opts.Tables) > 0 {
		for _, table := range opts.Tables {
			if !p.provider.Available(table) {
				return nil, &schema.UnknownTableError{Table: table}
			}
		}
		return opts.Tables, nil
	}

	tables, err := p.provider.Tables()
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables registered")
	}
	return tables, nil
}

// runTable walks one table through read, validate, transform and write.
// The first failing phase stops the table; the error is recorded on the
// outcome, not propagated.
func (p *Pipeline) runTable(table string, opts Options, stats *collector) tableRun {
	run := tableRun{TableOutcome: TableOutcome{Table: table, File: p.src.FileInfo(table)}}

	fail := func(phase Phase, err error) tableRun {
		run.FailedPhase = phase
		run.Err = err
		p.logger.Error("table failed",
			slog.String("table", table),
			slog.String("phase", string(phase)),
			slog.Any("error", err),
		)
		return run
	}

	// Read: schema definition check, raw rows, coercion.
	stats.attempted(PhaseRead)
	if err := p.provider.ValidateTableSchema(table); err != nil {
		return fail(PhaseRead, err)
	}
	ts, err := p.provider.SchemaOf(table)
	if err != nil {
		return fail(PhaseRead, err)
	}
	rawRows, err := p.src.ReadTable(table)
	if err != nil {
		return fail(PhaseRead, err)
	}
	coerced, err := p.coercer.Coerce(table, rawRows, ts)
	if err != nil {
		return fail(PhaseRead, err)
	}
	run.RowsRead = len(coerced.Rows)
	stats.succeeded(PhaseRead)

	// Validate: findings accumulate, they never fail the table.
	if opts.ValidateData {
		stats.attempted(PhaseValidate)
		run.Validation = p.validator.Validate(coerced, ts)
		stats.succeeded(PhaseValidate)
	}

	// Transform.
	stats.attempted(PhaseTransform)
	doc, err := p.transformer.Transform(coerced, ts)
	if err != nil {
		return fail(PhaseTransform, err)
	}
	run.document = doc
	run.Records = len(doc.Records)
	stats.succeeded(PhaseTransform)

	// Write.
	stats.attempted(PhaseWrite)
	info, err := p.out.WriteTable(table, doc)
	if err != nil {
		return fail(PhaseWrite, err)
	}
	run.OutputPath = info.Path
	stats.succeeded(PhaseWrite)

	return run
}

// finish freezes the aggregate result. Called on every exit path.
func (p *Pipeline) finish(result *RunResult, stats *collector, validations []*validate.Result, fatal error) *RunResult {
	outcomes, phases := stats.snapshot()
	result.Tables = outcomes
	result.Phases = phases

	for _, o := range outcomes {
		result.Summary.TotalRowsRead += o.RowsRead
		if o.OK() {
			result.Summary.TablesProcessed++
			result.Summary.TotalRowsTransformed += o.Records
			result.Summary.FilesWritten++
		}
	}
	if result.Summary.CombinedFileCreated {
		result.Summary.FilesWritten++
	}
	if len(validations) > 0 {
		s := validate.Summarize(validations)
		result.Validation = &s
	}

	result.EndTime = time.Now()
	result.DurationSeconds = result.EndTime.Sub(result.StartTime).Seconds()
	result.Success = fatal == nil && result.Summary.TablesProcessed > 0
	if fatal != nil {
		result.Error = fatal.Error()
		p.logger.Error("conversion failed",
			slog.String("run_id", result.RunID),
			slog.Any("error", fatal),
		)
		return result
	}

	p.logger.Info("conversion finished",
		slog.String("run_id", result.RunID),
		slog.Bool("success", result.Success),
		slog.Int("tables_processed", result.Summary.TablesProcessed),
		slog.Int("rows_read", result.Summary.TotalRowsRead),
		slog.Int("rows_transformed", result.Summary.TotalRowsTransformed),
		slog.Float64("duration_seconds", result.DurationSeconds),
	)
	return result
}
