package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/season-stats-service/internal/metrics"
	"github.com/maxviazov/season-stats-service/internal/service"
)

// APIV1Prefix is the base path of the public API.
const APIV1Prefix = "/api/v1"

// Deps carries everything the HTTP surface needs. Nil services leave their routes unmounted.
type Deps struct {
	Pinger      Pinger
	Teams       service.TeamService
	Players     service.PlayerService
	Games       service.GameService
	Seasons     service.SeasonService
	Stats       service.StatsService
	SeasonStats service.SeasonStatsService

	Metrics        *metrics.Recorder
	MetricsHandler http.Handler
	// RequestTimeout bounds every API request; zero disables the bound.
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Register mounts middleware and all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	r.Use(gin.Recovery(), RequestID(), AccessLog(d.Logger), Metrics(d.Metrics))

	h := NewHealthHandler(d.Pinger)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)
	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	if d.RequestTimeout > 0 {
		api.Use(Timeout(d.RequestTimeout))
	}
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		if d.Teams != nil {
			NewTeamHandler(d.Teams, d.SeasonStats).Register(api)
		}
		if d.Players != nil {
			NewPlayerHandler(d.Players, d.SeasonStats).Register(api)
		}
		if d.Games != nil {
			NewGameHandler(d.Games).Register(api)
		}
		if d.Seasons != nil {
			NewSeasonHandler(d.Seasons).Register(api)
		}
		if d.Stats != nil {
			NewStatsHandler(d.Stats).Register(api)
		}
		if d.SeasonStats != nil {
			NewCacheHandler(d.SeasonStats).Register(api)
		}
	}
}
