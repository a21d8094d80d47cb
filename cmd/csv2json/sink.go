package main

import (
	"github.com/datakit/csv2json/internal/sink"
	"github.com/datakit/csv2json/internal/transform"
)

// discardSink satisfies the pipeline's sink for check runs: nothing is
// persisted, the write phase always succeeds.
type discardSink struct{}

func (discardSink) WriteTable(table string, tt *transform.TransformedTable) (sink.WriteInfo, error) {
	return sink.WriteInfo{Records: len(tt.Records)}, nil
}

func (discardSink) WriteCombined(filename string, ds *transform.CombinedDataset) (sink.WriteInfo, error) {
	return sink.WriteInfo{Records: ds.Metadata.TotalRecords}, nil
}

func (discardSink) TablePath(table string) string { return "" }
