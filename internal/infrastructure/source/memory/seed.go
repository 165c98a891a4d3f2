package memory

import "github.com/riskibarqy/volley-league/internal/domain/match"

func SeedTeamRows() []match.Row {
	return []match.Row{
		{"team": "Jakarta Elang"},
		{"team": "Bandung Petir"},
		{"team": "Surabaya Samudra"},
		{"team": "Medan Rajawali"},
	}
}

// SeedMatchRows is a three round double header with one round played.
func SeedMatchRows() []match.Row {
	return []match.Row{
		{
			"id": "r1-jkt-bdg", "round": "1", "date": "2026-09-26", "time": "16:00",
			"home_team": "Jakarta Elang", "away_team": "Bandung Petir",
			"set1_h": "25", "set1_a": "21", "set2_h": "23", "set2_a": "25", "set3_h": "15", "set3_a": "12",
			"status": "played",
		},
		{
			"id": "r1-sby-mdn", "round": "1", "date": "2026-09-26", "time": "19:00",
			"home_team": "Surabaya Samudra", "away_team": "Medan Rajawali",
			"set1_h": "25", "set1_a": "18", "set2_h": "25", "set2_a": "20",
			"status": "played",
		},
		{
			"id": "r2-jkt-sby", "round": "2", "date": "2026-10-17", "time": "16:00",
			"home_team": "Jakarta Elang", "away_team": "Surabaya Samudra",
			"status": "scheduled",
		},
		{
			"id": "r2-bdg-mdn", "round": "2", "date": "2026-10-17", "time": "19:00",
			"home_team": "Bandung Petir", "away_team": "Medan Rajawali",
			"status": "scheduled",
		},
		{
			"id": "r3-mdn-jkt", "round": "3", "date": "2026-10-31", "time": "16:00",
			"home_team": "Medan Rajawali", "away_team": "Jakarta Elang",
		},
		{
			"id": "r3-bdg-sby", "round": "3", "time": "19:00",
			"home_team": "Bandung Petir", "away_team": "Surabaya Samudra",
		},
	}
}
