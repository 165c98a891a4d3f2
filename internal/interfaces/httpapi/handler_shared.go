package httpapi

import (
	"time"

	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/domain/round"
	"github.com/riskibarqy/volley-league/internal/domain/standing"
	"github.com/riskibarqy/volley-league/internal/usecase"
)

type liveSnapshotRequest struct {
	Status    string            `json:"status" validate:"required,oneof=scheduled played forfeit live postponed"`
	Sets      []*liveSetRequest `json:"sets" validate:"max=3,dive"`
	UpdatedAt string            `json:"updatedAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type liveSetRequest struct {
	Home int `json:"home" validate:"gte=0"`
	Away int `json:"away" validate:"gte=0"`
}

type streamCommand struct {
	Action string `json:"action" validate:"required,oneof=next prev current"`
}

type standingDTO struct {
	Position      int     `json:"position"`
	Team          string  `json:"team"`
	Played        int     `json:"played"`
	Won           int     `json:"won"`
	Lost          int     `json:"lost"`
	Points        int     `json:"points"`
	SetsWon       int     `json:"setsWon"`
	SetsLost      int     `json:"setsLost"`
	PointsFor     int     `json:"pointsFor"`
	PointsAgainst int     `json:"pointsAgainst"`
	SetRatio      float64 `json:"setRatio"`
	PointsRatio   float64 `json:"pointsRatio"`
}

type roundSummaryDTO struct {
	Cursor     int    `json:"cursor"`
	Round      *int   `json:"round"`
	Label      string `json:"label"`
	MatchCount int    `json:"matchCount"`
	FirstDate  string `json:"firstDate,omitempty"`
}

type setScoreDTO struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type displayStateDTO struct {
	StatusLabel string `json:"statusLabel"`
	SetsWonHome int    `json:"setsWonHome"`
	SetsWonAway int    `json:"setsWonAway"`
	WhenText    string `json:"whenText"`
	IsLive      bool   `json:"isLive"`
	FromLive    bool   `json:"fromLive"`
}

type matchViewDTO struct {
	ID       string          `json:"id"`
	Round    *int            `json:"round"`
	Date     string          `json:"date,omitempty"`
	Time     string          `json:"time,omitempty"`
	HomeTeam string          `json:"homeTeam"`
	AwayTeam string          `json:"awayTeam"`
	Status   string          `json:"status"`
	Sets     []*setScoreDTO  `json:"sets"`
	Display  displayStateDTO `json:"display"`
}

type roundViewDTO struct {
	Empty   bool           `json:"empty"`
	Cursor  int            `json:"cursor"`
	Total   int            `json:"total"`
	Prev    int            `json:"prev"`
	Next    int            `json:"next"`
	Round   *int           `json:"round"`
	Label   string         `json:"label,omitempty"`
	Matches []matchViewDTO `json:"matches"`
}

type refreshJobDTO struct {
	Matches  int       `json:"matches"`
	Teams    int       `json:"teams"`
	Rounds   int       `json:"rounds"`
	LoadedAt time.Time `json:"loadedAt"`
}

type clearLiveDTO struct {
	MatchID string `json:"matchId"`
	Cleared bool   `json:"cleared"`
}

func (r liveSnapshotRequest) toSnapshot(matchID string, receivedAt time.Time) live.Snapshot {
	snapshot := live.Snapshot{
		MatchID:    matchID,
		Status:     match.NormalizeStatus(r.Status),
		ReceivedAt: receivedAt,
	}
	if parsed, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
		snapshot.ReceivedAt = parsed.UTC()
	}
	for i, item := range r.Sets {
		if i >= match.SetSlots || item == nil {
			continue
		}
		snapshot.Sets[i] = &match.SetScore{Home: item.Home, Away: item.Away}
	}
	return snapshot
}

func roundNumber(r match.Round) *int {
	if !r.Valid {
		return nil
	}
	n := r.Number
	return &n
}

func toStandingDTOs(items []standing.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, standingDTO{
			Position:      item.Position,
			Team:          item.Team,
			Played:        item.Played,
			Won:           item.Won,
			Lost:          item.Lost,
			Points:        item.Points,
			SetsWon:       item.SetsWon,
			SetsLost:      item.SetsLost,
			PointsFor:     item.PointsFor,
			PointsAgainst: item.PointsAgainst,
			SetRatio:      item.SetRatio,
			PointsRatio:   item.PointsRatio,
		})
	}
	return out
}

func toRoundSummaryDTOs(groups []round.Group) []roundSummaryDTO {
	out := make([]roundSummaryDTO, 0, len(groups))
	for i, group := range groups {
		summary := roundSummaryDTO{
			Cursor:     i,
			Round:      roundNumber(group.Round),
			Label:      group.Label(),
			MatchCount: len(group.Matches),
		}
		if len(group.Matches) > 0 {
			summary.FirstDate = group.Matches[0].Date
		}
		out = append(out, summary)
	}
	return out
}

func toMatchViewDTO(view usecase.MatchView) matchViewDTO {
	m := view.Match
	sets := make([]*setScoreDTO, match.SetSlots)
	for i, set := range m.Sets {
		if set != nil {
			sets[i] = &setScoreDTO{Home: set.Home, Away: set.Away}
		}
	}
	return matchViewDTO{
		ID:       m.ID,
		Round:    roundNumber(m.Round),
		Date:     m.Date,
		Time:     m.Time,
		HomeTeam: m.HomeTeam,
		AwayTeam: m.AwayTeam,
		Status:   string(m.Status),
		Sets:     sets,
		Display: displayStateDTO{
			StatusLabel: view.Display.StatusLabel,
			SetsWonHome: view.Display.SetsWonHome,
			SetsWonAway: view.Display.SetsWonAway,
			WhenText:    view.Display.WhenText,
			IsLive:      view.Display.IsLive,
			FromLive:    view.Display.FromLive,
		},
	}
}

func toRoundViewDTO(view usecase.RoundView) roundViewDTO {
	out := roundViewDTO{
		Empty:   view.Empty,
		Cursor:  view.Cursor,
		Total:   view.Total,
		Prev:    view.Prev,
		Next:    view.Next,
		Matches: make([]matchViewDTO, 0, len(view.Matches)),
	}
	if view.Empty {
		return out
	}
	out.Round = roundNumber(view.Round)
	out.Label = view.Label
	for _, item := range view.Matches {
		out.Matches = append(out.Matches, toMatchViewDTO(item))
	}
	return out
}
