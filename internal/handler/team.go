package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/season-stats-service/internal/service"
	"github.com/maxviazov/season-stats-service/pkg/response"
)

type TeamHandler struct {
	svc   service.TeamService
	stats service.SeasonStatsService
}

func NewTeamHandler(svc service.TeamService, stats service.SeasonStatsService) *TeamHandler {
	return &TeamHandler{svc: svc, stats: stats}
}

func (h *TeamHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/teams")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		// Use a stable wildcard name (team_id) so nested routes (e.g. players) can reuse it without Gin conflicts.
		g.GET("/:team_id", h.getByID)
		g.GET("/:team_id/players", h.listPlayers)
		if h.stats != nil {
			g.GET("/season-stats", h.allSeasonStats)
			g.GET("/:team_id/season-stats", h.seasonStats)
		}
	}
}

type createTeamRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}

func (h *TeamHandler) create(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	team, err := h.svc.CreateTeam(c.Request.Context(), req.Name, req.City)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, team)
}

func (h *TeamHandler) getByID(c *gin.Context) {
	id, ok := pathID(c, "team_id", "team_id")
	if !ok {
		return
	}
	team, err := h.svc.GetTeam(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, team)
}

func (h *TeamHandler) list(c *gin.Context) {
	res, err := h.svc.ListTeams(c.Request.Context(), pageQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *TeamHandler) listPlayers(c *gin.Context) {
	id, ok := pathID(c, "team_id", "team_id")
	if !ok {
		return
	}
	res, err := h.svc.ListPlayers(c.Request.Context(), id, pageQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *TeamHandler) seasonStats(c *gin.Context) {
	id, ok := pathID(c, "team_id", "team_id")
	if !ok {
		return
	}
	agg, err := h.stats.GetTeamSeasonStats(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, agg)
}

func (h *TeamHandler) allSeasonStats(c *gin.Context) {
	all, err := h.stats.GetAllTeamSeasonStats(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, all)
}
