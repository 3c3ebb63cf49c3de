// Package aggregate turns raw per-game stat rows into season averages.
// Everything here is pure: no I/O, no locking, no caching.
package aggregate

import "github.com/maxviazov/season-stats-service/internal/model"

// totals accumulates integer fields as integers and minutes as a float,
// so integer sums stay exact until the final division.
type totals struct {
	games     int
	points    int
	rebounds  int
	assists   int
	steals    int
	blocks    int
	fouls     int
	turnovers int
	minutes   float64
}

func (t *totals) add(r model.PlayerGameStats) {
	t.games++
	t.points += r.Points
	t.rebounds += r.Rebounds
	t.assists += r.Assists
	t.steals += r.Steals
	t.blocks += r.Blocks
	t.fouls += r.Fouls
	t.turnovers += r.Turnovers
	t.minutes += r.MinutesPlayed
}

// averages holds per-game rates for one subject.
type averages struct {
	points, rebounds, assists, steals, blocks, fouls, turnovers, minutes float64
}

func (t totals) averages() averages {
	if t.games == 0 {
		return averages{}
	}
	n := float64(t.games)
	return averages{
		points:    float64(t.points) / n,
		rebounds:  float64(t.rebounds) / n,
		assists:   float64(t.assists) / n,
		steals:    float64(t.steals) / n,
		blocks:    float64(t.blocks) / n,
		fouls:     float64(t.fouls) / n,
		turnovers: float64(t.turnovers) / n,
		minutes:   t.minutes / n,
	}
}

func (a *averages) add(o averages) {
	a.points += o.points
	a.rebounds += o.rebounds
	a.assists += o.assists
	a.steals += o.steals
	a.blocks += o.blocks
	a.fouls += o.fouls
	a.turnovers += o.turnovers
	a.minutes += o.minutes
}

func (a averages) div(n int) averages {
	if n == 0 {
		return averages{}
	}
	d := float64(n)
	return averages{
		points:    a.points / d,
		rebounds:  a.rebounds / d,
		assists:   a.assists / d,
		steals:    a.steals / d,
		blocks:    a.blocks / d,
		fouls:     a.fouls / d,
		turnovers: a.turnovers / d,
		minutes:   a.minutes / d,
	}
}

// PlayerAverages computes a player's per-game averages from rows that already belong to
// the player and fall inside the season window. No rounding is applied.
// An empty rows slice yields GamesPlayed = 0 and zero averages with identity fields populated.
func PlayerAverages(player model.Player, rows []model.PlayerGameStats) model.PlayerAggregateStats {
	var t totals
	for _, r := range rows {
		t.add(r)
	}
	avg := t.averages()

	out := model.PlayerAggregateStats{
		PlayerID:             player.ID,
		FirstName:            player.FirstName,
		LastName:             player.LastName,
		GamesPlayed:          t.games,
		AveragePoints:        avg.points,
		AverageRebounds:      avg.rebounds,
		AverageAssists:       avg.assists,
		AverageSteals:        avg.steals,
		AverageBlocks:        avg.blocks,
		AverageFouls:         avg.fouls,
		AverageTurnovers:     avg.turnovers,
		AverageMinutesPlayed: avg.minutes,
	}
	if player.Team != nil {
		out.TeamName = player.Team.Name
	}
	return out
}

// TeamAverages computes a team's averages in two levels: each player's own per-game averages
// (divided by that player's game count), then the unweighted mean across distinct players.
// GamesPlayed is the maximum game count of any player in rows.
func TeamAverages(team model.Team, rows []model.PlayerGameStats) model.TeamAggregateStats {
	// Players are kept in first-appearance order so float summation is deterministic.
	byPlayer := make(map[int64]*totals)
	order := make([]int64, 0)
	for _, r := range rows {
		t, ok := byPlayer[r.PlayerID]
		if !ok {
			t = &totals{}
			byPlayer[r.PlayerID] = t
			order = append(order, r.PlayerID)
		}
		t.add(r)
	}

	var sum averages
	maxGames := 0
	for _, id := range order {
		t := byPlayer[id]
		if t.games > maxGames {
			maxGames = t.games
		}
		sum.add(t.averages())
	}
	avg := sum.div(len(order))

	return model.TeamAggregateStats{
		TeamID:               team.ID,
		TeamName:             team.Name,
		City:                 team.City,
		NumberOfPlayers:      len(order),
		GamesPlayed:          maxGames,
		AveragePoints:        avg.points,
		AverageRebounds:      avg.rebounds,
		AverageAssists:       avg.assists,
		AverageSteals:        avg.steals,
		AverageBlocks:        avg.blocks,
		AverageFouls:         avg.fouls,
		AverageTurnovers:     avg.turnovers,
		AverageMinutesPlayed: avg.minutes,
	}
}
