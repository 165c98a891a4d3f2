package usecase

import (
	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/domain/round"
)

// MatchView pairs a match with its effective display state.
type MatchView struct {
	Match   match.Match
	Display live.DisplayState
}

// RoundView is one rendered round of the fixture browser.
type RoundView struct {
	Empty   bool
	Cursor  int
	Total   int
	Prev    int
	Next    int
	Round   match.Round
	Label   string
	Matches []MatchView
}

// BuildRoundView renders groups[cursor]. Cursor is normalized modulo the
// round count. A nil reader yields source-derived display states only.
func BuildRoundView(groups []round.Group, cursor int, reader live.SnapshotReader) RoundView {
	if len(groups) == 0 {
		return RoundView{Empty: true}
	}
	cursor = AdvanceCursor(cursor, 0, len(groups))
	group := groups[cursor]

	view := RoundView{
		Cursor:  cursor,
		Total:   len(groups),
		Prev:    AdvanceCursor(cursor, -1, len(groups)),
		Next:    AdvanceCursor(cursor, 1, len(groups)),
		Round:   group.Round,
		Label:   group.Label(),
		Matches: make([]MatchView, 0, len(group.Matches)),
	}
	for _, m := range group.Matches {
		view.Matches = append(view.Matches, MatchView{Match: m, Display: Reconcile(m, latestSnapshot(reader, m.ID))})
	}
	return view
}

func latestSnapshot(reader live.SnapshotReader, matchID string) *live.Snapshot {
	if reader == nil || matchID == "" {
		return nil
	}
	snapshot, ok := reader.Latest(matchID)
	if !ok {
		return nil
	}
	return &snapshot
}
