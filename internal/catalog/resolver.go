package catalog

import (
	"strings"

	"zooguide/pkg/models"
)

// Lookup is the read side of a catalog as seen by match strategies.
type Lookup interface {
	Keys() []string
	Get(tag string) (models.AnimalRecord, bool)
}

// MatchStrategy maps a classifier tag to a catalog key.
type MatchStrategy interface {
	Name() string
	Match(l Lookup, tag string) (key string, ok bool)
}

type ExactMatch struct{}

func (ExactMatch) Name() string { return "exact" }

func (ExactMatch) Match(l Lookup, tag string) (string, bool) {
	if _, ok := l.Get(tag); ok {
		return tag, true
	}
	return "", false
}

// CaseInsensitiveMatch scans keys in order and returns the first key equal
// to tag under Unicode case folding.
type CaseInsensitiveMatch struct{}

func (CaseInsensitiveMatch) Name() string { return "case-insensitive" }

func (CaseInsensitiveMatch) Match(l Lookup, tag string) (string, bool) {
	for _, key := range l.Keys() {
		if strings.EqualFold(key, tag) {
			return key, true
		}
	}
	return "", false
}

type Resolver struct {
	lookup     Lookup
	strategies []MatchStrategy
}

// NewResolver tries strategies in the given order. With none given it uses
// ExactMatch then CaseInsensitiveMatch.
func NewResolver(l Lookup, strategies ...MatchStrategy) *Resolver {
	if len(strategies) == 0 {
		strategies = []MatchStrategy{ExactMatch{}, CaseInsensitiveMatch{}}
	}
	return &Resolver{lookup: l, strategies: strategies}
}

// Resolve returns the record for tag and the key it was found under, or
// ErrNotFound.
func (r *Resolver) Resolve(tag string) (models.AnimalRecord, string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || r.lookup == nil {
		return models.AnimalRecord{}, "", ErrNotFound
	}
	for _, s := range r.strategies {
		key, ok := s.Match(r.lookup, tag)
		if !ok {
			continue
		}
		if rec, found := r.lookup.Get(key); found {
			return rec, key, nil
		}
	}
	return models.AnimalRecord{}, "", ErrNotFound
}
