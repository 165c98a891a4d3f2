package usecase

import (
	"strings"

	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/match"
)

// Reconcile returns the effective display state of m. A nil snapshot defers
// to the source record. It is pure, so replaying a snapshot is idempotent.
func Reconcile(m match.Match, snapshot *live.Snapshot) live.DisplayState {
	state := live.DisplayState{WhenText: WhenText(m)}

	if snapshot == nil {
		state.StatusLabel = live.LabelScheduled
		if m.Status.IsPlayed() {
			state.StatusLabel = live.LabelFinal
		}
		setSets(&state, m.Sets)
		return state
	}

	state.FromLive = true
	switch snapshot.Status {
	case match.StatusLive:
		state.StatusLabel = live.LabelLive
		state.IsLive = true
	case match.StatusPlayed:
		state.StatusLabel = live.LabelFinal
	default:
		state.StatusLabel = live.LabelScheduled
	}
	setSets(&state, snapshot.Sets)
	return state
}

func setSets(state *live.DisplayState, sets [match.SetSlots]*match.SetScore) {
	tally := TallySets(sets)
	state.SetsWonHome = tally.HomeSets
	state.SetsWonAway = tally.AwaySets
}

// WhenText renders the scheduled date and time, "TBD" when undated.
func WhenText(m match.Match) string {
	date := m.Date
	if date == "" {
		date = "TBD"
	}
	return strings.TrimSpace(date + " " + m.Time)
}
