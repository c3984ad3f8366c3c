package models

import "time"

type RankingEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RankingSnapshot is one computed leaderboard. A nil snapshot means the
// ranking has not been computed yet.
type RankingSnapshot struct {
	Entries     []RankingEntry
	LastUpdated time.Time
}
