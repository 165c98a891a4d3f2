package round

import (
	"strconv"

	"github.com/riskibarqy/volley-league/internal/domain/match"
)

// Group is one round with its matches ordered by (date, time).
type Group struct {
	Round   match.Round
	Matches []match.Match
}

// Label is the display title of the round.
func (g Group) Label() string {
	if !g.Round.Valid {
		return "Round ?"
	}
	return "Round " + strconv.Itoa(g.Round.Number)
}
