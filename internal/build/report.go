package build

import (
	"time"

	"git.home.luguber.info/inful/schemabuild/internal/diag"
)

// Stage names the pipeline stages in execution order.
type Stage string

const (
	StageLoad     Stage = "load"
	StageValidate Stage = "validate"
	StageMerge    Stage = "merge"
	StageWrite    Stage = "write"
	StageExamples Stage = "examples"
)

// Outcome is the terminal state of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeCanceled Outcome = "canceled"
)

// Report records what one build run did: timings per stage, counts, and
// every diagnostic raised.
type Report struct {
	BuildID  string  `json:"build_id"`
	TreeHash string  `json:"tree_hash"`
	Outcome  Outcome `json:"outcome"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	Files        int `json:"files"`
	Declarations int `json:"declarations"`
	Examples     int `json:"examples"`

	StageDurations map[Stage]time.Duration `json:"stage_durations"`

	// Diagnostics aggregates syntax and constraint findings. Non-empty
	// diagnostics always mean a failed outcome.
	Diagnostics *diag.Report `json:"diagnostics,omitempty"`

	// SkipReason is set when the build exited early without writing.
	SkipReason string `json:"skip_reason,omitempty"`
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		Started:        time.Now().UTC(),
		StageDurations: map[Stage]time.Duration{},
		Diagnostics:    &diag.Report{},
	}
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.Finished = time.Now().UTC()
}

// Duration is the wall time of the whole run.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}
