// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; the only behavior is date-window membership.
package model

import "time"

// Team represents a basketball team.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// Player represents an athlete belonging to exactly one team.
// Team is resolved by the repository on lookup so aggregates can carry the team name.
type Player struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Team      *Team  `json:"team,omitempty"`
}

// Game represents a match between two teams on a calendar date.
type Game struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
}

// Season is a named date window; start and end dates are both inclusive.
type Season struct {
	ID        int64     `json:"id"`
	Year      int       `json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// IncludesDate reports whether d falls on a calendar day inside [StartDate, EndDate].
func (s Season) IncludesDate(d time.Time) bool {
	day := DateOf(d)
	return !day.Before(DateOf(s.StartDate)) && !day.After(DateOf(s.EndDate))
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PlayerGameStats is one player's box score for one game.
// A zero ID means the row has not been persisted yet.
type PlayerGameStats struct {
	ID            int64   `json:"id"`
	PlayerID      int64   `json:"player_id"`
	GameID        int64   `json:"game_id"`
	Points        int     `json:"points"`
	Rebounds      int     `json:"rebounds"`
	Assists       int     `json:"assists"`
	Steals        int     `json:"steals"`
	Blocks        int     `json:"blocks"`
	Fouls         int     `json:"fouls"`
	Turnovers     int     `json:"turnovers"`
	MinutesPlayed float64 `json:"minutes_played"`
	Player        *Player `json:"player,omitempty"`
	Game          *Game   `json:"game,omitempty"`
}

// PlayerAggregateStats holds a player's per-game averages over the current season.
// It is derived on demand and cached, never persisted.
type PlayerAggregateStats struct {
	PlayerID             int64   `json:"player_id"`
	FirstName            string  `json:"first_name"`
	LastName             string  `json:"last_name"`
	TeamName             string  `json:"team_name"`
	GamesPlayed          int     `json:"games_played"`
	AveragePoints        float64 `json:"average_points"`
	AverageRebounds      float64 `json:"average_rebounds"`
	AverageAssists       float64 `json:"average_assists"`
	AverageSteals        float64 `json:"average_steals"`
	AverageBlocks        float64 `json:"average_blocks"`
	AverageFouls         float64 `json:"average_fouls"`
	AverageTurnovers     float64 `json:"average_turnovers"`
	AverageMinutesPlayed float64 `json:"average_minutes_played"`
}

// TeamAggregateStats holds a team's averages: the mean of its players' per-game averages.
// GamesPlayed is the maximum games played by any single player in the window.
type TeamAggregateStats struct {
	TeamID               int64   `json:"team_id"`
	TeamName             string  `json:"team_name"`
	City                 string  `json:"city"`
	NumberOfPlayers      int     `json:"number_of_players"`
	GamesPlayed          int     `json:"games_played"`
	AveragePoints        float64 `json:"average_points"`
	AverageRebounds      float64 `json:"average_rebounds"`
	AverageAssists       float64 `json:"average_assists"`
	AverageSteals        float64 `json:"average_steals"`
	AverageBlocks        float64 `json:"average_blocks"`
	AverageFouls         float64 `json:"average_fouls"`
	AverageTurnovers     float64 `json:"average_turnovers"`
	AverageMinutesPlayed float64 `json:"average_minutes_played"`
}
