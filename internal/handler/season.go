package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/season-stats-service/internal/service"
	"github.com/maxviazov/season-stats-service/pkg/response"
)

type SeasonHandler struct {
	svc service.SeasonService
}

func NewSeasonHandler(svc service.SeasonService) *SeasonHandler { return &SeasonHandler{svc: svc} }

func (h *SeasonHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/seasons")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/current", h.current)
	}
}

type createSeasonRequest struct {
	Year      int    `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *SeasonHandler) create(c *gin.Context) {
	var req createSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	var ferrs []service.FieldError
	start, err := parseDate(req.StartDate)
	if err != nil {
		ferrs = append(ferrs, service.FieldError{Field: "start_date", Message: "must be YYYY-MM-DD"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		ferrs = append(ferrs, service.FieldError{Field: "end_date", Message: "must be YYYY-MM-DD"})
	}
	if err := service.NewInvalidInputError(ferrs); err != nil {
		response.WriteError(c, err)
		return
	}
	season, err := h.svc.CreateSeason(c.Request.Context(), req.Year, start, end)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, season)
}

func (h *SeasonHandler) list(c *gin.Context) {
	seasons, err := h.svc.ListSeasons(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, seasons)
}

func (h *SeasonHandler) current(c *gin.Context) {
	season, err := h.svc.CurrentSeason(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, season)
}
