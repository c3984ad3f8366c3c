package models

import "time"

// NoMatchName is written as the animal name when a request resolved to
// nothing. Rows carrying it never count towards the ranking.
const NoMatchName = "No match"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PredictionEvent is one append-only log row, written once per
// classification request.
type PredictionEvent struct {
	ID          string    `json:"id"`        // row key
	Partition   string    `json:"partition"` // YYYY-MM-DD
	AnonymousID string    `json:"anonymous_id"`
	Timestamp   time.Time `json:"timestamp"`
	Outcome     Outcome   `json:"-"`
}

// Outcome is either PredictionSuccess or PredictionFailure.
type Outcome interface {
	outcome() string
}

// PredictionSuccess records a classifier call that returned predictions,
// whether or not they resolved to a catalog animal.
type PredictionSuccess struct {
	PredictionCount int
	TopTag          string
	TopConfidence   float64
	MatchedTag      string // empty when nothing passed the threshold
	AnimalName      string // empty when the tag is not in the catalog
	Summary         string // "tag:prob,tag:prob,..." top 3
}

// PredictionFailure records a request that failed upstream.
type PredictionFailure struct {
	PredictionCount int
	Summary         string
	ErrorKind       string
	ErrorMessage    string
}

func (PredictionSuccess) outcome() string { return OutcomeSuccess }
func (PredictionFailure) outcome() string { return OutcomeFailure }

// OutcomeName returns the discriminator stored alongside the event.
func OutcomeName(o Outcome) string {
	if o == nil {
		return ""
	}
	return o.outcome()
}

// Matched reports whether the event resolved to a real catalog animal.
func (e PredictionEvent) Matched() (name string, confidence float64, ok bool) {
	s, isSuccess := e.Outcome.(PredictionSuccess)
	if !isSuccess || s.AnimalName == "" || s.AnimalName == NoMatchName {
		return "", 0, false
	}
	return s.AnimalName, s.TopConfidence, true
}
