package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziontype/zinfer/internal/ast"
)

// Annotation is one ordered add_info(location, message) entry attached to
// a Report: a secondary location relevant to understanding the primary
// error (e.g. "previous declaration was here").
type Annotation struct {
	Location ast.Pos `json:"location"`
	Message  string  `json:"message"`
}

// Report is the structured error produced by every phase. Location is the
// primary site of the failure; Annotations carries any number of ordered
// supplementary locations, added via AddInfo.
type Report struct {
	Schema      string         `json:"schema"`
	Code        string         `json:"code"`
	Phase       string         `json:"phase"`
	Message     string         `json:"message"`
	Location    ast.Pos        `json:"location"`
	Annotations []Annotation   `json:"annotations,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

const schemaV1 = "zinfer.error/v1"

// New creates a Report for code at loc with message msg. Phase is derived
// from the code's registry entry.
func New(code string, loc ast.Pos, msg string) *Report {
	return &Report{
		Schema:   schemaV1,
		Code:     code,
		Phase:    Phase(code),
		Message:  msg,
		Location: loc,
	}
}

// AddInfo appends an ordered annotation and returns the report for
// chaining, mirroring the original's add_info(location, message) builder.
func (r *Report) AddInfo(loc ast.Pos, msg string) *Report {
	r.Annotations = append(r.Annotations, Annotation{Location: loc, Message: msg})
	return r
}

// ReportError wraps a Report as an error so it survives errors.As.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	msg := fmt.Sprintf("%s: %s: %s", e.Rep.Location, e.Rep.Code, e.Rep.Message)
	for _, a := range e.Rep.Annotations {
		msg += fmt.Sprintf("\n  %s: %s", a.Location, a.Message)
	}
	return msg
}

// AsReport extracts a *Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the report as deterministic JSON.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewGeneric wraps an arbitrary Go error as an INT001 report, used as the
// last-resort conversion when a phase panics or returns an unstructured
// error.
func NewGeneric(phase string, err error) *Report {
	return &Report{
		Schema:  schemaV1,
		Code:    INT001,
		Phase:   phase,
		Message: err.Error(),
	}
}
