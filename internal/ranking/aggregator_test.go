package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synchub "zooguide/internal/sync"
	"zooguide/pkg/models"
)

type stubSource struct {
	events []models.PredictionEvent
	err    error
	since  time.Time
}

func (s *stubSource) ListSince(_ context.Context, since time.Time, _ float64) ([]models.PredictionEvent, error) {
	s.since = since
	return s.events, s.err
}

type recordingFeed struct {
	ch chan any
}

func (f *recordingFeed) BroadcastJSON(v any) { f.ch <- v }

func matched(name string, conf float64, at time.Time) models.PredictionEvent {
	return models.PredictionEvent{
		ID:        name + at.String(),
		Timestamp: at,
		Outcome: models.PredictionSuccess{
			PredictionCount: 1,
			TopTag:          name,
			TopConfidence:   conf,
			MatchedTag:      name,
			AnimalName:      name,
		},
	}
}

func TestTally_CountsConfidentMatchesOnly(t *testing.T) {
	since := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	at := since.Add(time.Hour)
	events := []models.PredictionEvent{
		matched("Lion", 0.9, at),
		matched("Lion", 0.9, at),
		matched("Lion", 0.9, at),
		matched("Tiger", 0.85, at),
		matched("Zebra", 0.5, at),
	}

	got := Tally(events, since, 0.8, TopN)
	assert.Equal(t, []models.RankingEntry{{Name: "Lion", Count: 3}, {Name: "Tiger", Count: 1}}, got)
}

func TestTally_SkipsSentinelFailuresAndOlderEvents(t *testing.T) {
	since := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	events := []models.PredictionEvent{
		matched("Lion", 0.95, since.Add(-time.Second)),
		matched(models.NoMatchName, 0.99, since),
		{Timestamp: since, Outcome: models.PredictionFailure{ErrorKind: "Unknown"}},
		matched("Tiger", 0.8, since),
	}

	got := Tally(events, since, 0.8, TopN)
	assert.Equal(t, []models.RankingEntry{{Name: "Tiger", Count: 1}}, got)
}

func TestTally_TopNAndTieOrder(t *testing.T) {
	since := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	var events []models.PredictionEvent
	for i, name := range []string{"Owl", "Bear", "Seal", "Wolf", "Frog", "Crab", "Bear"} {
		events = append(events, matched(name, 0.9, since.Add(time.Duration(i)*time.Minute)))
	}

	got := Tally(events, since, 0.8, TopN)
	require.Len(t, got, TopN)
	assert.Equal(t, models.RankingEntry{Name: "Bear", Count: 2}, got[0])
	// single counts keep first-seen order
	names := []string{got[1].Name, got[2].Name, got[3].Name, got[4].Name}
	assert.Equal(t, []string{"Owl", "Seal", "Wolf", "Frog"}, names)
}

func TestTally_EmptyIsNotNil(t *testing.T) {
	got := Tally(nil, time.Time{}, 0.8, TopN)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStartOfDay_UsesLocation(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 16:30 UTC is already 01:30 the next day in Seoul
	at := time.Date(2026, 5, 5, 16, 30, 0, 0, time.UTC)
	got := StartOfDay(at, seoul)
	assert.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, seoul), got)
	assert.True(t, got.Equal(time.Date(2026, 5, 5, 15, 0, 0, 0, time.UTC)))
}

func TestAggregator_RefreshStoresSnapshotAndPublishes(t *testing.T) {
	now := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)
	src := &stubSource{events: []models.PredictionEvent{
		matched("Lion", 0.9, now.Add(-time.Hour)),
	}}
	feed := &recordingFeed{ch: make(chan any, 1)}
	cache := NewCache()

	agg := NewAggregator(src, cache, 0.8, time.UTC)
	agg.Now = func() time.Time { return now }
	agg.Feed = feed

	require.NoError(t, agg.Refresh(context.Background()))
	assert.Equal(t, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), src.since)

	snap := cache.Load()
	require.NotNil(t, snap)
	assert.Equal(t, []models.RankingEntry{{Name: "Lion", Count: 1}}, snap.Entries)
	assert.Equal(t, now, snap.LastUpdated)

	select {
	case v := <-feed.ch:
		ev, ok := v.(synchub.RankingEvent)
		require.True(t, ok)
		assert.Equal(t, synchub.RankingUpdateType, ev.Type)
		assert.Equal(t, snap.Entries, ev.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("no ranking update published")
	}
}

func TestAggregator_RefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	cache := NewCache()
	prev := &models.RankingSnapshot{Entries: []models.RankingEntry{{Name: "Lion", Count: 2}}}
	cache.Store(prev)

	agg := NewAggregator(&stubSource{err: errors.New("db locked")}, cache, 0.8, nil)
	err := agg.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db locked")
	assert.Same(t, prev, cache.Load())
}
