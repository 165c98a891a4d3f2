package live

import (
	"time"

	"github.com/riskibarqy/volley-league/internal/domain/match"
)

const (
	LabelScheduled = "Scheduled"
	LabelFinal     = "Final"
	LabelLive      = "Live"
)

// Snapshot is a real-time override of one match's displayed state.
type Snapshot struct {
	MatchID    string
	Status     match.Status
	Sets       [match.SetSlots]*match.SetScore
	ReceivedAt time.Time
}

// DisplayState is what the presentation layer shows for a match.
type DisplayState struct {
	StatusLabel string
	SetsWonHome int
	SetsWonAway int
	WhenText    string
	IsLive      bool
	FromLive    bool
}

// Handler receives snapshot deliveries. ok=false means the override was
// withdrawn and the display should revert to source data.
type Handler func(matchID string, snapshot Snapshot, ok bool)
