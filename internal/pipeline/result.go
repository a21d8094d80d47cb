package pipeline

import (
	"sync"
	"time"

	"github.com/datakit/csv2json/internal/source"
	"github.com/datakit/csv2json/internal/validate"
)

// Phase names the sequential stages of a run. Failed is terminal and
// reachable from any phase.
type Phase string

const (
	PhaseInit      Phase = "init"
	PhaseRead      Phase = "read"
	PhaseValidate  Phase = "validate"
	PhaseTransform Phase = "transform"
	PhaseWrite     Phase = "write"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// PhaseStats counts tables attempted vs succeeded in one phase.
type PhaseStats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// TableOutcome is the explicit per-table result: either every attempted
// phase succeeded, or FailedPhase and Err say where it stopped. Failures
// are values collected into the run report, not control flow.
type TableOutcome struct {
	Table       string            `json:"table_name"`
	File        source.FileInfo   `json:"file"`
	RowsRead    int               `json:"rows_read"`
	Records     int               `json:"records_written"`
	OutputPath  string            `json:"output_path,omitempty"`
	Validation  *validate.Result  `json:"validation,omitempty"`
	FailedPhase Phase             `json:"failed_phase,omitempty"`
	Err         error             `json:"-"`
	Error       string            `json:"error,omitempty"`
}

// OK reports whether the table survived every phase it attempted.
func (o TableOutcome) OK() bool { return o.FailedPhase == "" }

// Summary carries the run-level counters surfaced to reporting.
type Summary struct {
	TablesProcessed      int  `json:"tables_processed"`
	TotalRowsRead        int  `json:"total_rows_read"`
	TotalRowsTransformed int  `json:"total_rows_transformed"`
	FilesWritten         int  `json:"files_written"`
	CombinedFileCreated  bool `json:"combined_file_created"`
}

// RunResult is the immutable result structure returned by every run,
// successful or not.
type RunResult struct {
	RunID           string                `json:"run_id"`
	Success         bool                  `json:"success"`
	StartTime       time.Time             `json:"start_time"`
	EndTime         time.Time             `json:"end_time"`
	DurationSeconds float64               `json:"duration_seconds"`
	Summary         Summary               `json:"summary"`
	Phases          map[Phase]PhaseStats  `json:"phases"`
	OutputFiles     map[string]string     `json:"output_files"`
	Tables          []TableOutcome        `json:"tables"`
	Validation      *validate.Summary     `json:"validation_summary,omitempty"`
	Error           string                `json:"error,omitempty"`
}

// collector accumulates per-table outcomes and phase counters. Appends are
// mutex-guarded so a parallel-across-tables variant would not lose updates.
type collector struct {
	mu       sync.Mutex
	outcomes []TableOutcome
	phases   map[Phase]*PhaseStats
}

func newCollector() *collector {
	return &collector{phases: make(map[Phase]*PhaseStats)}
}

func (c *collector) attempted(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase(p).Attempted++
}

func (c *collector) succeeded(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase(p).Succeeded++
}

func (c *collector) phase(p Phase) *PhaseStats {
	st, ok := c.phases[p]
	if !ok {
		st = &PhaseStats{}
		c.phases[p] = st
	}
	return st
}

func (c *collector) add(o TableOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.Err != nil {
		o.Error = o.Err.Error()
	}
	c.outcomes = append(c.outcomes, o)
}

func (c *collector) snapshot() ([]TableOutcome, map[Phase]PhaseStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	outcomes := make([]TableOutcome, len(c.outcomes))
	copy(outcomes, c.outcomes)
	phases := make(map[Phase]PhaseStats, len(c.phases))
	for p, st := range c.phases {
		phases[p] = *st
	}
	return outcomes, phases
}
