package usecase

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/riskibarqy/volley-league/internal/domain/match"
)

// Column names of the match sheet.
const (
	ColumnID       = "id"
	ColumnRound    = "round"
	ColumnDate     = "date"
	ColumnTime     = "time"
	ColumnHomeTeam = "home_team"
	ColumnAwayTeam = "away_team"
	ColumnStatus   = "status"
)

var setColumns = [match.SetSlots][2]string{
	{"set1_h", "set1_a"},
	{"set2_h", "set2_a"},
	{"set3_h", "set3_a"},
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04PM", "3:04 PM", "3PM", "3 PM"}

// RowIssue describes a field that was substituted with absence during normalization.
type RowIssue struct {
	Row    int
	Column string
	Value  string
}

// NormalizeMatches coerces raw rows into match records. No row is dropped.
func NormalizeMatches(rows []match.Row) []match.Match {
	out, _ := NormalizeMatchesWithIssues(rows)
	return out
}

func NormalizeMatchesWithIssues(rows []match.Row) ([]match.Match, []RowIssue) {
	out := make([]match.Match, 0, len(rows))
	var issues []RowIssue
	for i, row := range rows {
		item, rowIssues := normalizeRow(row)
		for _, issue := range rowIssues {
			issue.Row = i
			issues = append(issues, issue)
		}
		out = append(out, item)
	}
	return out, issues
}

func normalizeRow(row match.Row) (match.Match, []RowIssue) {
	var issues []RowIssue
	flag := func(column string) {
		issues = append(issues, RowIssue{Column: column, Value: row.Get(column)})
	}

	item := match.Match{
		ID:       row.Get(ColumnID),
		HomeTeam: row.Get(ColumnHomeTeam),
		AwayTeam: row.Get(ColumnAwayTeam),
		Status:   match.NormalizeStatus(row.Get(ColumnStatus)),
	}

	roundValue, ok := parseRound(row.Get(ColumnRound))
	if !ok {
		flag(ColumnRound)
	}
	item.Round = roundValue

	if raw := row.Get(ColumnDate); raw != "" {
		if date, ok := ParseDate(raw); ok {
			item.Date = date
		} else {
			flag(ColumnDate)
		}
	}
	if raw := row.Get(ColumnTime); raw != "" {
		if clock, ok := ParseClock(raw); ok {
			item.Time = clock
		} else {
			flag(ColumnTime)
		}
	}

	for slot, cols := range setColumns {
		homeRaw, awayRaw := row.Get(cols[0]), row.Get(cols[1])
		home, homeOK := ParseSetValue(homeRaw)
		away, awayOK := ParseSetValue(awayRaw)
		if homeRaw != "" && !homeOK {
			flag(cols[0])
		}
		if awayRaw != "" && !awayOK {
			flag(cols[1])
		}
		if homeOK && awayOK {
			item.Sets[slot] = &match.SetScore{Home: home, Away: away}
		}
	}

	return item, issues
}

// ParseSetValue parses a finite, non-negative, integral set score.
func ParseSetValue(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt32 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

func parseRound(raw string) (match.Round, bool) {
	n, ok := ParseSetValue(raw)
	if !ok || n <= 0 {
		return match.Round{}, false
	}
	return match.ValidRound(n), true
}

// ParseDate returns the zero-padded calendar date for raw.
func ParseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse(match.DateLayout, raw); err == nil {
		return parsed.Format(match.DateLayout), true
	}
	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return "", false
	}
	return parsed.Format(match.DateLayout), true
}

// ParseClock returns raw as a zero-padded 24h HH:MM time.
func ParseClock(raw string) (string, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(match.TimeLayout), true
		}
	}
	return "", false
}

// NormalizeTeamRows extracts distinct roster names in input order.
func NormalizeTeamRows(rows []match.Row) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		name := row.Get("team")
		if name == "" {
			name = row.Get("name")
		}
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
