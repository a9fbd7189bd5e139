package pipeline

import (
	"time"

	"github.com/stwalsh4118/reclaim/internal/importer"
)

// StepReport is the outcome of one step.
type StepReport struct {
	Step string `json:"step"`
	importer.Result
	Duration time.Duration `json:"duration"`
}

// Report collects the outcome of a run.
type Report struct {
	Steps []StepReport `json:"steps"`
}

// Total sums the results of every step.
func (r Report) Total() importer.Result {
	var total importer.Result
	for _, s := range r.Steps {
		total.Add(s.Result)
	}
	return total
}

// HasFailures reports whether any record failed.
func (r Report) HasFailures() bool {
	return r.Total().Failed > 0
}
