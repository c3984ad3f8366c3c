package sync

import (
	"time"

	"zooguide/pkg/models"
)

const RankingUpdateType = "ranking.update"

// RankingEvent is pushed to feed subscribers after every ranking refresh.
type RankingEvent struct {
	Type        string                `json:"type"`
	Data        []models.RankingEntry `json:"data"`
	LastUpdated time.Time             `json:"lastUpdated"`
}

func NewRankingEvent(s *models.RankingSnapshot) RankingEvent {
	entries := s.Entries
	if entries == nil {
		entries = []models.RankingEntry{}
	}
	return RankingEvent{
		Type:        RankingUpdateType,
		Data:        entries,
		LastUpdated: s.LastUpdated.UTC(),
	}
}
