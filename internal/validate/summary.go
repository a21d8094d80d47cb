package validate

// Summary aggregates validation results across a run.
type Summary struct {
	TablesValidated     int     `json:"tables_validated"`
	OverallQualityScore float64 `json:"overall_quality_score"`
	TotalRows           int     `json:"total_rows"`
	TotalValidRows      int     `json:"total_valid_rows"`
	TablesWithErrors    int     `json:"tables_with_errors"`
	TablesWithWarnings  int     `json:"tables_with_warnings"`
}

// Summarize folds per-table results into run-level totals. The overall
// quality score is the mean of the per-table scores.
func Summarize(results []*Result) Summary {
	s := Summary{TablesValidated: len(results)}
	if len(results) == 0 {
		return s
	}

	total := 0.0
	for _, r := range results {
		total += r.QualityScore
		s.TotalRows += r.TotalRows
		s.TotalValidRows += r.ValidRows
		if len(r.Errors) > 0 {
			s.TablesWithErrors++
		}
		if len(r.Warnings) > 0 {
			s.TablesWithWarnings++
		}
	}
	s.OverallQualityScore = total / float64(len(results))
	return s
}
