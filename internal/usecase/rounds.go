package usecase

import (
	"cmp"
	"slices"
	"strings"

	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/domain/round"
)

// GroupByRound groups matches by round. Rounds ascend with invalid rounds
// last; matches inside a round ascend by (date, time), input order on ties.
func GroupByRound(matches []match.Match) []round.Group {
	index := make(map[match.Round]int)
	groups := make([]round.Group, 0)
	for _, m := range matches {
		key := m.Round
		if !key.Valid {
			key = match.Round{}
		}
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, round.Group{Round: key})
		}
		groups[pos].Matches = append(groups[pos].Matches, m)
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].Matches, compareSchedule)
	}
	slices.SortStableFunc(groups, func(a, b round.Group) int {
		return a.Round.Compare(b.Round)
	})
	return groups
}

func compareSchedule(a, b match.Match) int {
	return cmp.Or(
		strings.Compare(a.DateKey(), b.DateKey()),
		strings.Compare(a.Time, b.Time),
	)
}

// LocateCurrentRound returns the first round holding a scheduled match dated
// today or later (or undated). It falls back to 0.
func LocateCurrentRound(groups []round.Group, today string) int {
	for i, g := range groups {
		for _, m := range g.Matches {
			if m.Status.IsScheduled() && m.DateKey() >= today {
				return i
			}
		}
	}
	return 0
}

// AdvanceCursor moves cursor by delta with wraparound in both directions.
// It returns 0 when there are no rounds.
func AdvanceCursor(cursor, delta, count int) int {
	if count <= 0 {
		return 0
	}
	next := (cursor + delta) % count
	if next < 0 {
		next += count
	}
	return next
}
