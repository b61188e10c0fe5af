// Package indexing holds the batch embedding-indexing domain types.
package indexing

import "time"

// Report summarizes a pipeline run. Failed counts documents whose page could
// not be embedded or upserted after the retry; a non-zero Failed with a nil
// run error is a partial failure, not an aborted run.
type Report struct {
	SourceIndex string
	TargetIndex string
	Model       string
	Processed   int
	Failed      int
	Pages       int
	FailedPages int
	ResumedFrom int // page offset the run resumed from, 0 for a fresh run
	Duration    time.Duration
}

// Checkpoint records the last fully processed page boundary so an interrupted
// run can resume without reprocessing. Model pins the embedding model the run
// was started with; a checkpoint from a different model must not be resumed.
type Checkpoint struct {
	Offset    int       `json:"offset"`
	Model     string    `json:"model"`
	UpdatedAt time.Time `json:"updated_at"`
}
