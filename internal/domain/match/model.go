package match

import "strings"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPlayed    Status = "played"
	StatusForfeit   Status = "forfeit"
	StatusLive      Status = "live"
)

// SetSlots is the number of set columns a match row carries (best of three).
const SetSlots = 3

const (
	// DateLayout is zero-padded so lexicographic order equals chronological order.
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
	// UnknownDateKey sorts matches without a date after every dated match.
	UnknownDateKey = "9999-12-31"
)

// SetScore is one set result. A nil *SetScore means the set was not played.
type SetScore struct {
	Home int
	Away int
}

// IsPlaceholder reports the (0,0) pair used by spreadsheets for an unplayed set.
func (s SetScore) IsPlaceholder() bool {
	return s.Home == 0 && s.Away == 0
}

// Round is a round number with an explicit invalid state for malformed input.
type Round struct {
	Number int
	Valid  bool
}

func ValidRound(n int) Round {
	return Round{Number: n, Valid: true}
}

// Compare orders valid rounds ascending and puts invalid rounds last.
func (r Round) Compare(other Round) int {
	switch {
	case r.Valid && !other.Valid:
		return -1
	case !r.Valid && other.Valid:
		return 1
	case !r.Valid && !other.Valid:
		return 0
	case r.Number < other.Number:
		return -1
	case r.Number > other.Number:
		return 1
	default:
		return 0
	}
}

// Match is a normalized match record.
type Match struct {
	ID       string
	Round    Round
	Date     string
	Time     string
	HomeTeam string
	AwayTeam string
	Sets     [SetSlots]*SetScore
	Status   Status
}

// DateKey returns the date used for ordering, substituting UnknownDateKey when absent.
func (m Match) DateKey() string {
	if m.Date == "" {
		return UnknownDateKey
	}
	return m.Date
}

func NormalizeStatus(value string) Status {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return Status(status)
}

func (s Status) IsScheduled() bool {
	return s == StatusScheduled
}

func (s Status) IsPlayed() bool {
	return s == StatusPlayed
}

// CountsTowardStandings reports whether a match with this status is folded into the table.
func (s Status) CountsTowardStandings() bool {
	return s != StatusScheduled
}

// Row is one untyped row from a data source, keyed by column header.
type Row map[string]string

// NormalizeHeader is the canonical form of a column header.
func NormalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get looks a column up by trimmed, case-insensitive header name. When several
// headers normalize to the same name, the lexically smallest raw header wins.
func (r Row) Get(key string) string {
	if v, ok := r[key]; ok {
		return strings.TrimSpace(v)
	}
	want := NormalizeHeader(key)
	found, matched := "", false
	for k := range r {
		if NormalizeHeader(k) != want {
			continue
		}
		if !matched || k < found {
			found, matched = k, true
		}
	}
	if !matched {
		return ""
	}
	return strings.TrimSpace(r[found])
}
