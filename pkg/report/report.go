// Package report defines the validation report shared by every check
// evaluator and the weighted scorer that aggregates them. CheckResult is the
// seam through which external collaborators (face detection, OCR validity)
// plug into the pipeline.
package report

import "encoding/json"

// Status is the tri-state outcome of a submission.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFlagged Status = "flagged"
	StatusFailed  Status = "failed"
)

// FaceUnavailableMarker is the message the face check carries when the
// detector was structurally unable to run (service unreachable, model not
// loaded), as opposed to having run and found no face. The scorer matches on
// the "temporairement indisponible" substring, so collaborators emitting
// their own wording must keep it.
const FaceUnavailableMarker = "service de détection de visage temporairement indisponible"

const faceUnavailableNeedle = "temporairement indisponible"

// Value is a single check statistic. The concrete types are a closed set:
// Number, Bool and String, matching what downstream JSON consumers accept.
type Value interface {
	json.Marshaler
	statValue()
}

type Number float64

func (n Number) MarshalJSON() ([]byte, error) { return json.Marshal(float64(n)) }
func (Number) statValue()                     {}

type Bool bool

func (b Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }
func (Bool) statValue()                     {}

type String string

func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }
func (String) statValue()                     {}

// Stats is the typed key-value map attached to a check result.
type Stats map[string]Value

// CheckResult is produced independently by each named check and is immutable
// once returned.
type CheckResult struct {
	OK       bool     `json:"ok"`
	Messages []string `json:"messages,omitempty"`
	Stats    Stats    `json:"stats,omitempty"`
}

// ValidationReport aggregates the per-check results of one submission. A nil
// check slot means the check did not run; it is skipped by the scorer rather
// than counted as a failure. The report is created fresh per submission and
// never mutated after FinalizeStatus assigns the status.
type ValidationReport struct {
	Photo     *CheckResult `json:"photo,omitempty"`
	Face      *CheckResult `json:"face,omitempty"`
	Signature *CheckResult `json:"signature,omitempty"`
	Front     *CheckResult `json:"front,omitempty"`
	Back      *CheckResult `json:"back,omitempty"`
	OCR       *CheckResult `json:"ocr,omitempty"`

	Score       int      `json:"score"`
	Status      Status   `json:"status,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`

	// TimingsMs records per-stage elapsed time in milliseconds.
	TimingsMs map[string]float64 `json:"timings_ms,omitempty"`
}
