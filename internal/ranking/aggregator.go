package ranking

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	synchub "zooguide/internal/sync"
	"zooguide/pkg/models"
)

const TopN = 5

type EventSource interface {
	ListSince(ctx context.Context, since time.Time, minConfidence float64) ([]models.PredictionEvent, error)
}

type Broadcaster interface {
	BroadcastJSON(v any)
}

type Aggregator struct {
	Source        EventSource
	Cache         *Cache
	MinConfidence float64
	Location      *time.Location
	Now           func() time.Time
	Feed          Broadcaster // optional
}

func NewAggregator(src EventSource, cache *Cache, minConfidence float64, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		Source:        src,
		Cache:         cache,
		MinConfidence: minConfidence,
		Location:      loc,
		Now:           time.Now,
	}
}

// Refresh recomputes today's top animals and swaps them into the cache.
// On error the cache keeps its previous value.
func (a *Aggregator) Refresh(ctx context.Context) error {
	now := a.Now()
	since := StartOfDay(now, a.Location)

	events, err := a.Source.ListSince(ctx, since, a.MinConfidence)
	if err != nil {
		return fmt.Errorf("list events since %s: %w", since.Format(time.RFC3339), err)
	}

	snap := &models.RankingSnapshot{
		Entries:     Tally(events, since, a.MinConfidence, TopN),
		LastUpdated: now,
	}
	a.Cache.Store(snap)
	log.Printf("[ranking] refreshed: %d events, %d entries", len(events), len(snap.Entries))

	if a.Feed != nil {
		go a.Feed.BroadcastJSON(synchub.NewRankingEvent(snap))
	}
	return nil
}

// StartOfDay is 00:00:00 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Tally counts matched animal names among events at or after since with
// confidence >= minConfidence and returns the top n, highest count first.
// Equal counts keep the order in which the names were first seen.
func Tally(events []models.PredictionEvent, since time.Time, minConfidence float64, n int) []models.RankingEntry {
	counts := map[string]int{}
	var order []string
	for _, ev := range events {
		if ev.Timestamp.Before(since) {
			continue
		}
		name, conf, ok := ev.Matched()
		if !ok || conf < minConfidence {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}

	out := make([]models.RankingEntry, 0, len(order))
	for _, name := range order {
		out = append(out, models.RankingEntry{Name: name, Count: counts[name]})
	}
	return out
}
