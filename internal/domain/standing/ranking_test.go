package standing

import (
	"strings"
	"testing"
)

func TestDefaultRanking_TiebreakChain(t *testing.T) {
	t.Parallel()

	rows := []Standing{
		{Team: "Delta", Points: 6, SetsWon: 4, SetsLost: 2, PointsFor: 150, PointsAgainst: 140},
		{Team: "Alpha", Points: 6, SetsWon: 4, SetsLost: 2, PointsFor: 150, PointsAgainst: 140},
		{Team: "Charlie", Points: 6, SetsWon: 4, SetsLost: 2, PointsFor: 160, PointsAgainst: 140},
		{Team: "Bravo", Points: 6, SetsWon: 5, SetsLost: 1, PointsFor: 120, PointsAgainst: 140},
		{Team: "Echo", Points: 7},
	}
	for i := range rows {
		rows[i] = rows[i].WithRatios()
	}

	DefaultRanking.Sort(rows)

	want := []string{"Echo", "Bravo", "Charlie", "Alpha", "Delta"}
	for i, team := range want {
		if rows[i].Team != team {
			t.Fatalf("position %d: got %s want %s", i+1, rows[i].Team, team)
		}
		if rows[i].Position != i+1 {
			t.Fatalf("position field for %s: got %d want %d", team, rows[i].Position, i+1)
		}
	}
}

func TestRanking_TotalOrderOnDistinctNames(t *testing.T) {
	t.Parallel()

	a := Standing{Team: "Alpha"}
	b := Standing{Team: "Beta"}
	if DefaultRanking.Compare(a, b) >= 0 || DefaultRanking.Compare(b, a) <= 0 {
		t.Fatalf("name tiebreak must order Alpha before Beta")
	}
	if DefaultRanking.Compare(a, a) != 0 {
		t.Fatalf("a row must compare equal to itself")
	}
}

func TestRanking_CustomChain(t *testing.T) {
	t.Parallel()

	byWins := Ranking{
		{Name: "won", Compare: byInt(func(s Standing) int { return s.Won }), Direction: Descending},
		{Name: "team", Compare: func(a, b Standing) int { return strings.Compare(a.Team, b.Team) }, Direction: Ascending},
	}
	rows := []Standing{
		{Team: "Alpha", Won: 1, Points: 9},
		{Team: "Beta", Won: 3, Points: 3},
	}
	byWins.Sort(rows)

	if rows[0].Team != "Beta" {
		t.Fatalf("expected wins-first ranking, got %s", rows[0].Team)
	}
}

func TestWithRatios(t *testing.T) {
	t.Parallel()

	got := Standing{SetsWon: 3, SetsLost: 0, PointsFor: 50, PointsAgainst: 100}.WithRatios()
	if got.SetRatio != 3 || got.PointsRatio != 0.5 {
		t.Fatalf("unexpected ratios: %+v", got)
	}
}
