package usecase

import (
	"slices"
	"testing"

	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/domain/round"
)

func matchIDs(items []match.Match) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.ID)
	}
	return out
}

func TestGroupByRound_OrdersRoundsAndMatches(t *testing.T) {
	t.Parallel()

	groups := GroupByRound([]match.Match{
		{ID: "m1", Round: match.ValidRound(2), Date: "2026-09-27"},
		{ID: "m2", Round: match.ValidRound(1), Date: "2026-09-20", Time: "10:00"},
		{ID: "m3", Round: match.ValidRound(1), Date: "2026-09-13"},
		{ID: "m4", Round: match.ValidRound(3), Date: "2026-10-04"},
	})

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	for i, want := range []int{1, 2, 3} {
		if groups[i].Round != match.ValidRound(want) {
			t.Fatalf("group %d: got round %+v want %d", i, groups[i].Round, want)
		}
	}
	if got := matchIDs(groups[0].Matches); !slices.Equal(got, []string{"m3", "m2"}) {
		t.Fatalf("round 1 order: got %v", got)
	}
}

func TestGroupByRound_UndatedLastAndStableTies(t *testing.T) {
	t.Parallel()

	groups := GroupByRound([]match.Match{
		{ID: "undated", Round: match.ValidRound(1)},
		{ID: "late", Round: match.ValidRound(1), Date: "2026-09-13", Time: "20:00"},
		{ID: "first", Round: match.ValidRound(1), Date: "2026-09-13", Time: "18:00"},
		{ID: "second", Round: match.ValidRound(1), Date: "2026-09-13", Time: "18:00"},
	})

	want := []string{"first", "second", "late", "undated"}
	if got := matchIDs(groups[0].Matches); !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestGroupByRound_InvalidRoundsShareLastGroup(t *testing.T) {
	t.Parallel()

	groups := GroupByRound([]match.Match{
		{ID: "a", Round: match.Round{}},
		{ID: "b", Round: match.ValidRound(2)},
		{ID: "c", Round: match.Round{Number: 7}},
		{ID: "d", Round: match.ValidRound(1)},
	})

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	last := groups[2]
	if last.Round.Valid || last.Label() != "Round ?" {
		t.Fatalf("expected invalid group last, got %+v", last.Round)
	}
	if got := matchIDs(last.Matches); !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("invalid group members: got %v", got)
	}
}

func TestGroupByRound_Partition(t *testing.T) {
	t.Parallel()

	input := []match.Match{
		{ID: "a", Round: match.ValidRound(1)},
		{ID: "b", Round: match.ValidRound(3)},
		{ID: "c", Round: match.ValidRound(1)},
		{ID: "d"},
	}
	groups := GroupByRound(input)

	seen := make(map[string]int)
	for _, g := range groups {
		for _, m := range g.Matches {
			seen[m.ID]++
		}
	}
	if len(seen) != len(input) {
		t.Fatalf("expected every match grouped once, got %v", seen)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("match %s appears %d times", id, n)
		}
	}
}

func TestLocateCurrentRound(t *testing.T) {
	t.Parallel()

	groups := []round.Group{
		{Round: match.ValidRound(1), Matches: []match.Match{{ID: "a", Date: "2026-09-01", Status: match.StatusPlayed}}},
		{Round: match.ValidRound(2), Matches: []match.Match{{ID: "b", Date: "2026-10-01", Status: match.StatusScheduled}}},
		{Round: match.ValidRound(3), Matches: []match.Match{
			{ID: "c", Date: "2026-10-20", Status: match.StatusLive},
			{ID: "d", Date: "2026-10-21", Status: match.StatusScheduled},
		}},
	}

	if got := LocateCurrentRound(groups, "2026-10-14"); got != 2 {
		t.Fatalf("expected cursor 2, got %d", got)
	}
	if got := LocateCurrentRound(groups, "2026-10-01"); got != 1 {
		t.Fatalf("match dated today should count, got %d", got)
	}
	if got := LocateCurrentRound(groups, "2027-01-01"); got != 0 {
		t.Fatalf("expected fallback to 0, got %d", got)
	}
	if got := LocateCurrentRound(nil, "2026-10-14"); got != 0 {
		t.Fatalf("expected 0 for empty schedule, got %d", got)
	}
}

func TestLocateCurrentRound_UndatedScheduledCounts(t *testing.T) {
	t.Parallel()

	groups := []round.Group{
		{Round: match.ValidRound(1), Matches: []match.Match{{ID: "a", Date: "2026-09-01", Status: match.StatusPlayed}}},
		{Round: match.ValidRound(2), Matches: []match.Match{{ID: "b", Status: match.StatusScheduled}}},
	}

	if got := LocateCurrentRound(groups, "2026-10-14"); got != 1 {
		t.Fatalf("expected undated scheduled round, got %d", got)
	}
}

func TestAdvanceCursor_Wraparound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cursor, delta, count, want int
	}{
		{cursor: 0, delta: -1, count: 3, want: 2},
		{cursor: 2, delta: 1, count: 3, want: 0},
		{cursor: 1, delta: -7, count: 3, want: 0},
		{cursor: 1, delta: 5, count: 3, want: 0},
		{cursor: 0, delta: 1, count: 1, want: 0},
		{cursor: 0, delta: 1, count: 0, want: 0},
		{cursor: 4, delta: -1, count: 0, want: 0},
	}
	for _, tc := range cases {
		if got := AdvanceCursor(tc.cursor, tc.delta, tc.count); got != tc.want {
			t.Fatalf("AdvanceCursor(%d,%d,%d) = %d want %d", tc.cursor, tc.delta, tc.count, got, tc.want)
		}
	}
}
