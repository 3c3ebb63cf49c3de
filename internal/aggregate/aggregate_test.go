package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/season-stats-service/internal/aggregate"
	"github.com/maxviazov/season-stats-service/internal/model"
)

var lakers = model.Team{ID: 1, Name: "Lakers", City: "Los Angeles"}

func lebron() model.Player {
	return model.Player{ID: 10, TeamID: lakers.ID, FirstName: "LeBron", LastName: "James", Position: "SF", Team: &lakers}
}

func row(playerID int64, points int) model.PlayerGameStats {
	return model.PlayerGameStats{PlayerID: playerID, Points: points}
}

func TestPlayerAverages_Mean(t *testing.T) {
	rows := []model.PlayerGameStats{
		{PlayerID: 10, Points: 30, Rebounds: 8, Assists: 7, Steals: 1, Blocks: 1, Fouls: 2, Turnovers: 3, MinutesPlayed: 36.5},
		{PlayerID: 10, Points: 24, Rebounds: 11, Assists: 10, Steals: 2, Blocks: 0, Fouls: 4, Turnovers: 2, MinutesPlayed: 34.0},
	}

	got := aggregate.PlayerAverages(lebron(), rows)

	assert.Equal(t, int64(10), got.PlayerID)
	assert.Equal(t, "LeBron", got.FirstName)
	assert.Equal(t, "James", got.LastName)
	assert.Equal(t, "Lakers", got.TeamName)
	assert.Equal(t, 2, got.GamesPlayed)
	assert.Equal(t, 27.0, got.AveragePoints)
	assert.Equal(t, 9.5, got.AverageRebounds)
	assert.Equal(t, 8.5, got.AverageAssists)
	assert.Equal(t, 1.5, got.AverageSteals)
	assert.Equal(t, 0.5, got.AverageBlocks)
	assert.Equal(t, 3.0, got.AverageFouls)
	assert.Equal(t, 2.5, got.AverageTurnovers)
	assert.Equal(t, 35.25, got.AverageMinutesPlayed)
}

func TestPlayerAverages_NoRounding(t *testing.T) {
	rows := []model.PlayerGameStats{row(10, 10), row(10, 10), row(10, 11)}
	got := aggregate.PlayerAverages(lebron(), rows)
	assert.Equal(t, float64(31)/3, got.AveragePoints)
}

func TestPlayerAverages_Empty(t *testing.T) {
	got := aggregate.PlayerAverages(lebron(), nil)

	assert.Equal(t, int64(10), got.PlayerID)
	assert.Equal(t, "Lakers", got.TeamName)
	assert.Zero(t, got.GamesPlayed)
	assert.Zero(t, got.AveragePoints)
	assert.Zero(t, got.AverageRebounds)
	assert.Zero(t, got.AverageMinutesPlayed)
}

func TestPlayerAverages_PlayerWithoutResolvedTeam(t *testing.T) {
	p := lebron()
	p.Team = nil
	got := aggregate.PlayerAverages(p, []model.PlayerGameStats{row(10, 5)})
	assert.Empty(t, got.TeamName)
	assert.Equal(t, 5.0, got.AveragePoints)
}

func TestTeamAverages_TwoLevel(t *testing.T) {
	// A: 30 and 24 over two games (27.0); B: 22 over one game.
	rows := []model.PlayerGameStats{row(1, 30), row(2, 22), row(1, 24)}

	got := aggregate.TeamAverages(lakers, rows)

	assert.Equal(t, int64(1), got.TeamID)
	assert.Equal(t, "Lakers", got.TeamName)
	assert.Equal(t, "Los Angeles", got.City)
	assert.Equal(t, 2, got.NumberOfPlayers)
	assert.Equal(t, 24.5, got.AveragePoints, "mean of per-player averages, not of rows")
	assert.Equal(t, 2, got.GamesPlayed, "max games of any player")
}

func TestTeamAverages_AllFields(t *testing.T) {
	rows := []model.PlayerGameStats{
		{PlayerID: 1, Points: 20, Rebounds: 10, Assists: 4, Steals: 2, Blocks: 2, Fouls: 3, Turnovers: 1, MinutesPlayed: 30},
		{PlayerID: 2, Points: 10, Rebounds: 2, Assists: 8, Steals: 0, Blocks: 0, Fouls: 1, Turnovers: 3, MinutesPlayed: 20},
	}
	got := aggregate.TeamAverages(lakers, rows)

	require.Equal(t, 2, got.NumberOfPlayers)
	assert.Equal(t, 1, got.GamesPlayed)
	assert.Equal(t, 15.0, got.AveragePoints)
	assert.Equal(t, 6.0, got.AverageRebounds)
	assert.Equal(t, 6.0, got.AverageAssists)
	assert.Equal(t, 1.0, got.AverageSteals)
	assert.Equal(t, 1.0, got.AverageBlocks)
	assert.Equal(t, 2.0, got.AverageFouls)
	assert.Equal(t, 2.0, got.AverageTurnovers)
	assert.Equal(t, 25.0, got.AverageMinutesPlayed)
}

func TestTeamAverages_Empty(t *testing.T) {
	got := aggregate.TeamAverages(lakers, []model.PlayerGameStats{})

	assert.Equal(t, "Lakers", got.TeamName)
	assert.Zero(t, got.NumberOfPlayers)
	assert.Zero(t, got.GamesPlayed)
	assert.Zero(t, got.AveragePoints)
	assert.Zero(t, got.AverageMinutesPlayed)
}

func TestTeamAverages_OrderIndependent(t *testing.T) {
	a := []model.PlayerGameStats{row(1, 30), row(2, 22), row(1, 24), row(3, 9)}
	b := []model.PlayerGameStats{row(3, 9), row(1, 24), row(2, 22), row(1, 30)}

	ga := aggregate.TeamAverages(lakers, a)
	gb := aggregate.TeamAverages(lakers, b)
	assert.InDelta(t, ga.AveragePoints, gb.AveragePoints, 1e-9)
	assert.Equal(t, ga.GamesPlayed, gb.GamesPlayed)
	assert.Equal(t, 3, ga.NumberOfPlayers)
}
