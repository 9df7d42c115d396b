package sync

import "fmt"

// Failure records one issue that could not be synchronized. The batch
// keeps going; failures surface in the final summary.
type Failure struct {
	Number int    `json:"number,omitempty"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

// Report summarizes one push or pull.
type Report struct {
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Closed   int       `json:"closed"`
	Pulled   int       `json:"pulled,omitempty"`
	Failures []Failure `json:"failures,omitempty"`
	// Actions holds the intended operations of a dry run, in order.
	Actions []string `json:"actions,omitempty"`
	Backup  string   `json:"backup,omitempty"`
	// Aborted names the reason the batch stopped before completing.
	Aborted string `json:"aborted,omitempty"`
}

// Failed reports whether any per-item failure occurred.
func (r Report) Failed() bool {
	return len(r.Failures) > 0 || r.Aborted != ""
}

func (r *Report) addFailure(number int, title string, err error) {
	r.Failures = append(r.Failures, Failure{Number: number, Title: title, Reason: err.Error()})
}

func (r *Report) plan(format string, args ...any) {
	r.Actions = append(r.Actions, fmt.Sprintf(format, args...))
}
