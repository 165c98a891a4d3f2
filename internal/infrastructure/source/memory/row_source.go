package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/volley-league/internal/domain/match"
)

// RowSource serves fixed rows. It backs local runs and tests.
type RowSource struct {
	mu      sync.RWMutex
	matches []match.Row
	teams   []match.Row
}

var _ match.RowSource = (*RowSource)(nil)

func NewRowSource(matches, teams []match.Row) *RowSource {
	s := &RowSource{}
	s.Replace(matches, teams)
	return s
}

func (s *RowSource) FetchMatchRows(_ context.Context) ([]match.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.matches), nil
}

func (s *RowSource) FetchTeamRows(_ context.Context) ([]match.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.teams), nil
}

// Replace swaps the served rows; the next refresh picks them up.
func (s *RowSource) Replace(matches, teams []match.Row) {
	matches, teams = cloneRows(matches), cloneRows(teams)

	s.mu.Lock()
	s.matches = matches
	s.teams = teams
	s.mu.Unlock()
}

func cloneRows(rows []match.Row) []match.Row {
	out := make([]match.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, maps.Clone(row))
	}
	return out
}
