package standing

import (
	"cmp"
	"slices"
	"strings"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

// SortKey compares two rows on one attribute. Compare must order ascending;
// Direction flips it.
type SortKey struct {
	Name      string
	Compare   func(a, b Standing) int
	Direction Direction
}

// Ranking is an ordered tiebreak chain. Later keys only decide when every
// earlier key compares equal.
type Ranking []SortKey

// DefaultRanking orders by league points, set ratio, points ratio, then team name.
var DefaultRanking = Ranking{
	{Name: "points", Compare: byInt(func(s Standing) int { return s.Points }), Direction: Descending},
	{Name: "set_ratio", Compare: byFloat(func(s Standing) float64 { return s.SetRatio }), Direction: Descending},
	{Name: "points_ratio", Compare: byFloat(func(s Standing) float64 { return s.PointsRatio }), Direction: Descending},
	{Name: "team", Compare: func(a, b Standing) int { return strings.Compare(a.Team, b.Team) }, Direction: Ascending},
}

func (r Ranking) Compare(a, b Standing) int {
	for _, key := range r {
		c := key.Compare(a, b)
		if key.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Sort ranks rows in place and assigns 1-based positions.
func (r Ranking) Sort(rows []Standing) {
	slices.SortStableFunc(rows, r.Compare)
	for i := range rows {
		rows[i].Position = i + 1
	}
}

func byInt(get func(Standing) int) func(a, b Standing) int {
	return func(a, b Standing) int { return cmp.Compare(get(a), get(b)) }
}

func byFloat(get func(Standing) float64) func(a, b Standing) int {
	return func(a, b Standing) int { return cmp.Compare(get(a), get(b)) }
}
