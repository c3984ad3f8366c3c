package predictlog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zooguide/pkg/models"
)

func TestNewEvent_Success(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	at := time.Date(2026, 3, 1, 16, 30, 0, 0, time.UTC) // 01:30 on Mar 2 in Seoul

	ev := NewEvent(EventParams{
		AnonymousID: " user-1 ",
		Predictions: []models.Prediction{
			{TagName: "Tiger", Probability: 0.1},
			{TagName: "Lion", Probability: 0.9},
		},
		MatchedTag: "Lion",
		AnimalName: "Lion",
		At:         at,
		Location:   seoul,
	})

	require.NotEmpty(t, ev.ID)
	assert.Equal(t, "2026-03-02", ev.Partition)
	assert.Equal(t, "user-1", ev.AnonymousID)
	assert.True(t, ev.Timestamp.Equal(at))

	s, ok := ev.Outcome.(models.PredictionSuccess)
	require.True(t, ok)
	assert.Equal(t, 2, s.PredictionCount)
	assert.Equal(t, "Lion", s.TopTag)
	assert.Equal(t, 0.9, s.TopConfidence)
	assert.Equal(t, "Lion:0.9000,Tiger:0.1000", s.Summary)

	name, conf, matched := ev.Matched()
	assert.True(t, matched)
	assert.Equal(t, "Lion", name)
	assert.Equal(t, 0.9, conf)
}

func TestNewEvent_Failure(t *testing.T) {
	ev := NewEvent(EventParams{Err: errors.New("boom"), ErrorKind: "ServiceUnreachable"})

	assert.Equal(t, UnknownClientID, ev.AnonymousID)
	f, ok := ev.Outcome.(models.PredictionFailure)
	require.True(t, ok)
	assert.Equal(t, "boom", f.ErrorMessage)
	assert.Equal(t, "ServiceUnreachable", f.ErrorKind)

	_, _, matched := ev.Matched()
	assert.False(t, matched)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := NewEvent(EventParams{})
	b := NewEvent(EventParams{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSummarize(t *testing.T) {
	preds := []models.Prediction{
		{TagName: "a", Probability: 0.2},
		{TagName: "b", Probability: 0.5},
		{TagName: "c", Probability: 0.1},
		{TagName: "d", Probability: 0.9},
	}
	assert.Equal(t, "d:0.9000,b:0.5000,a:0.2000", Summarize(preds, MaxSummaryLen))
	assert.Equal(t, "", Summarize(nil, MaxSummaryLen))

	// only whole entries are kept
	assert.Equal(t, "d:0.9000", Summarize(preds, 12))
	assert.Equal(t, "", Summarize(preds, 3))

	long := []models.Prediction{{TagName: strings.Repeat("x", 300), Probability: 1}}
	assert.Equal(t, "", Summarize(long, MaxSummaryLen))
}
