package standing

// Standing represents a league table row for one team.
type Standing struct {
	Team          string
	Position      int
	Played        int
	Won           int
	Lost          int
	Points        int
	SetsWon       int
	SetsLost      int
	PointsFor     int
	PointsAgainst int
	SetRatio      float64
	PointsRatio   float64
}

// Ratio divides num by den, falling back to num when den is zero.
func Ratio(num, den int) float64 {
	if den > 0 {
		return float64(num) / float64(den)
	}
	return float64(num)
}

// WithRatios returns a copy with SetRatio and PointsRatio derived from the tallies.
func (s Standing) WithRatios() Standing {
	s.SetRatio = Ratio(s.SetsWon, s.SetsLost)
	s.PointsRatio = Ratio(s.PointsFor, s.PointsAgainst)
	return s
}
