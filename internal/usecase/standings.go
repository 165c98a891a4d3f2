package usecase

import (
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/domain/standing"
)

// League points per match outcome.
const (
	PointsStraightWin  = 3
	PointsStraightLoss = 0
	PointsDecidingWin  = 2
	PointsDecidingLoss = 1
	setsToWin          = 2
)

// SetTally is the set and rally point count of one match.
type SetTally struct {
	HomeSets   int
	AwaySets   int
	HomePoints int
	AwayPoints int
}

// TallySets counts sets and points. Absent and (0,0) slots are skipped; a
// tied slot adds points for both sides but no set win.
func TallySets(sets [match.SetSlots]*match.SetScore) SetTally {
	var tally SetTally
	for _, set := range sets {
		if set == nil || set.IsPlaceholder() {
			continue
		}
		switch {
		case set.Home > set.Away:
			tally.HomeSets++
		case set.Away > set.Home:
			tally.AwaySets++
		}
		tally.HomePoints += set.Home
		tally.AwayPoints += set.Away
	}
	return tally
}

// Outcome is the league result decided by a set tally.
type Outcome struct {
	Decided    bool
	HomeWon    bool
	HomePoints int
	AwayPoints int
}

// ResolveOutcome awards 3/0 for a 2-0 and 2/1 for a 2-1. Anything else is undecided.
func ResolveOutcome(t SetTally) Outcome {
	switch {
	case t.HomeSets == setsToWin && t.AwaySets == 0:
		return Outcome{Decided: true, HomeWon: true, HomePoints: PointsStraightWin, AwayPoints: PointsStraightLoss}
	case t.HomeSets == setsToWin && t.AwaySets == 1:
		return Outcome{Decided: true, HomeWon: true, HomePoints: PointsDecidingWin, AwayPoints: PointsDecidingLoss}
	case t.AwaySets == setsToWin && t.HomeSets == 0:
		return Outcome{Decided: true, HomePoints: PointsStraightLoss, AwayPoints: PointsStraightWin}
	case t.AwaySets == setsToWin && t.HomeSets == 1:
		return Outcome{Decided: true, HomePoints: PointsDecidingLoss, AwayPoints: PointsDecidingWin}
	default:
		return Outcome{}
	}
}

// ComputeStandings folds matches into a ranked table.
func ComputeStandings(matches []match.Match) []standing.Standing {
	return ComputeStandingsWithRoster(matches, nil)
}

// ComputeStandingsWithRoster is ComputeStandings with extra roster teams that
// appear in the table even without matches.
func ComputeStandingsWithRoster(matches []match.Match, roster []string) []standing.Standing {
	order := make([]string, 0, len(roster)+2*len(matches))
	byTeam := make(map[string]*standing.Standing, cap(order))
	addTeam := func(name string) {
		if _, ok := byTeam[name]; ok {
			return
		}
		byTeam[name] = &standing.Standing{Team: name}
		order = append(order, name)
	}
	for _, name := range roster {
		addTeam(name)
	}
	for _, m := range matches {
		addTeam(m.HomeTeam)
		addTeam(m.AwayTeam)
	}

	for _, m := range matches {
		if !m.Status.CountsTowardStandings() {
			continue
		}
		// forfeit folds like played: the sheet does not say who forfeited.
		foldMatch(byTeam[m.HomeTeam], byTeam[m.AwayTeam], TallySets(m.Sets))
	}

	rows := make([]standing.Standing, 0, len(order))
	for _, name := range order {
		rows = append(rows, byTeam[name].WithRatios())
	}
	standing.DefaultRanking.Sort(rows)
	return rows
}

func foldMatch(home, away *standing.Standing, tally SetTally) {
	outcome := ResolveOutcome(tally)
	if home != nil {
		home.Played++
		home.SetsWon += tally.HomeSets
		home.SetsLost += tally.AwaySets
		home.PointsFor += tally.HomePoints
		home.PointsAgainst += tally.AwayPoints
		home.Points += outcome.HomePoints
		if outcome.Decided {
			if outcome.HomeWon {
				home.Won++
			} else {
				home.Lost++
			}
		}
	}
	if away != nil {
		away.Played++
		away.SetsWon += tally.AwaySets
		away.SetsLost += tally.HomeSets
		away.PointsFor += tally.AwayPoints
		away.PointsAgainst += tally.HomePoints
		away.Points += outcome.AwayPoints
		if outcome.Decided {
			if outcome.HomeWon {
				away.Lost++
			} else {
				away.Won++
			}
		}
	}
}
