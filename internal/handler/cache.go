package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/season-stats-service/internal/service"
	"github.com/maxviazov/season-stats-service/pkg/response"
)

// CacheHandler exposes the administrative cache flush.
type CacheHandler struct {
	svc service.SeasonStatsService
}

func NewCacheHandler(svc service.SeasonStatsService) *CacheHandler { return &CacheHandler{svc: svc} }

func (h *CacheHandler) Register(r *gin.RouterGroup) {
	r.DELETE("/cache", h.clear)
}

func (h *CacheHandler) clear(c *gin.Context) {
	if err := h.svc.ClearCache(c.Request.Context()); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
