package models

import "time"

// Check is one navigate-wait-capture cycle against the application under test.
type Check struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Condition  string `json:"condition"`
	Screenshot string `json:"screenshot"`
}

// StepStatus is the outcome of a single check.
type StepStatus string

const (
	StatusPassed  StepStatus = "passed"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepResult records what happened for one check
type StepResult struct {
	Check      string     `json:"check"`
	URL        string     `json:"url"`
	Condition  string     `json:"condition"`
	Status     StepStatus `json:"status"`
	StatusCode int        `json:"status_code,omitempty"`
	Title      string     `json:"title,omitempty"`
	Matches    int        `json:"matches,omitempty"`
	Screenshot string     `json:"screenshot,omitempty"`
	Snapshot   string     `json:"snapshot,omitempty"`
	Phase      string     `json:"phase,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at,omitzero"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`
	DurationMs int64      `json:"duration_ms"`
}

// Report is the result of one verification run.
type Report struct {
	RunID      string       `json:"run_id"`
	BaseURL    string       `json:"base_url"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
	Error      string       `json:"error,omitempty"`
}

// OK reports whether every step passed.
func (r *Report) OK() bool {
	if r == nil || r.Error != "" {
		return false
	}
	for _, s := range r.Steps {
		if s.Status != StatusPassed {
			return false
		}
	}
	return true
}

// Screenshots returns the files written during the run, in order.
func (r *Report) Screenshots() []string {
	if r == nil {
		return nil
	}
	var files []string
	for _, s := range r.Steps {
		if s.Screenshot != "" {
			files = append(files, s.Screenshot)
		}
	}
	return files
}
