package predictlog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"zooguide/pkg/models"
)

const (
	PartitionLayout = "2006-01-02"
	UnknownClientID = "unknown"

	// MaxSummaryLen bounds the condensed predictions column.
	MaxSummaryLen  = 255
	summaryEntries = 3
)

// EventParams describes one classification request for NewEvent.
type EventParams struct {
	AnonymousID string
	Predictions []models.Prediction
	MatchedTag  string
	AnimalName  string
	Err         error
	ErrorKind   string
	At          time.Time
	Location    *time.Location
}

// NewEvent builds the log row for a request. A non-nil Err makes it a
// failure record, otherwise it is a success record.
func NewEvent(p EventParams) models.PredictionEvent {
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	anon := strings.TrimSpace(p.AnonymousID)
	if anon == "" {
		anon = UnknownClientID
	}

	ev := models.PredictionEvent{
		ID:          uuid.NewString(),
		Partition:   at.In(loc).Format(PartitionLayout),
		AnonymousID: anon,
		Timestamp:   at.UTC(),
	}

	summary := Summarize(p.Predictions, MaxSummaryLen)
	if p.Err != nil {
		ev.Outcome = models.PredictionFailure{
			PredictionCount: len(p.Predictions),
			Summary:         summary,
			ErrorKind:       p.ErrorKind,
			ErrorMessage:    p.Err.Error(),
		}
		return ev
	}

	s := models.PredictionSuccess{
		PredictionCount: len(p.Predictions),
		MatchedTag:      p.MatchedTag,
		AnimalName:      p.AnimalName,
		Summary:         summary,
	}
	if top, ok := topPrediction(p.Predictions); ok {
		s.TopTag = top.TagName
		s.TopConfidence = top.Probability
	}
	ev.Outcome = s
	return ev
}

// Summarize condenses the highest-probability predictions into
// "tag:prob,tag:prob,tag:prob", dropping trailing entries until the result
// fits in maxLen.
func Summarize(preds []models.Prediction, maxLen int) string {
	if len(preds) == 0 {
		return ""
	}
	sorted := make([]models.Prediction, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Probability > sorted[j].Probability })
	if len(sorted) > summaryEntries {
		sorted = sorted[:summaryEntries]
	}

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		parts = append(parts, p.TagName+":"+strconv.FormatFloat(p.Probability, 'f', 4, 64))
	}
	for n := len(parts); n > 0; n-- {
		if s := strings.Join(parts[:n], ","); len(s) <= maxLen {
			return s
		}
	}
	return ""
}

func topPrediction(preds []models.Prediction) (models.Prediction, bool) {
	if len(preds) == 0 {
		return models.Prediction{}, false
	}
	top := preds[0]
	for _, p := range preds[1:] {
		if p.Probability > top.Probability {
			top = p
		}
	}
	return top, true
}
