package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/season-stats-service/internal/service"
	"github.com/maxviazov/season-stats-service/pkg/response"
)

type PlayerHandler struct {
	svc   service.PlayerService
	stats service.SeasonStatsService
}

func NewPlayerHandler(svc service.PlayerService, stats service.SeasonStatsService) *PlayerHandler {
	return &PlayerHandler{svc: svc, stats: stats}
}

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.POST("", h.create)
		g.GET("/:id", h.getByID)
		if h.stats != nil {
			g.GET("/:id/season-stats", h.seasonStats)
		}
	}
}

type createPlayerRequest struct {
	TeamID    int64  `json:"team_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), req.TeamID, req.FirstName, req.LastName, req.Position)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	id, ok := pathID(c, "id", "id")
	if !ok {
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) seasonStats(c *gin.Context) {
	id, ok := pathID(c, "id", "player_id")
	if !ok {
		return
	}
	agg, err := h.stats.GetPlayerSeasonStats(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, agg)
}
