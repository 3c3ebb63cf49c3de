package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/season-stats-service/internal/service"
	"github.com/maxviazov/season-stats-service/pkg/response"
)

type GameHandler struct {
	svc service.GameService
}

func NewGameHandler(svc service.GameService) *GameHandler { return &GameHandler{svc: svc} }

func (h *GameHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games")
	{
		g.POST("", h.create)
		g.GET("/:id", h.getByID)
		g.GET("", h.list)
	}
}

type createGameRequest struct {
	Date      string `json:"date"` // YYYY-MM-DD or RFC3339
	HomeTeam  int64  `json:"home_team_id"`
	AwayTeam  int64  `json:"away_team_id"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// parseDate accepts a calendar date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *GameHandler) create(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	parsedDate, err := parseDate(req.Date)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "date", Message: "must be YYYY-MM-DD or RFC3339"}}))
		return
	}
	game, err := h.svc.CreateGame(c.Request.Context(), parsedDate, req.HomeTeam, req.AwayTeam, req.HomeScore, req.AwayScore)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) getByID(c *gin.Context) {
	id, ok := pathID(c, "id", "id")
	if !ok {
		return
	}
	game, err := h.svc.GetGame(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) list(c *gin.Context) {
	res, err := h.svc.ListGames(c.Request.Context(), pageQuery(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
