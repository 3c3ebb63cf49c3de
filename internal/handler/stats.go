package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/season-stats-service/internal/model"
	"github.com/maxviazov/season-stats-service/internal/service"
	"github.com/maxviazov/season-stats-service/pkg/response"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler { return &StatsHandler{svc: svc} }

func (h *StatsHandler) Register(r *gin.RouterGroup) {
	players := r.Group("/players")
	{
		players.POST("/:id/stats", h.logForPlayer)
		players.GET("/:id/stats", h.listByPlayer)
	}
	games := r.Group("/games")
	{
		games.POST("/:id/stats", h.logForGame)
		games.POST("/:id/stats/batch", h.logBatch)
		games.GET("/:id/stats", h.listByGame)
	}
}

// The id in the path always wins over the same field in the body.
func (h *StatsHandler) logForPlayer(c *gin.Context) {
	id, ok := pathID(c, "id", "player_id")
	if !ok {
		return
	}
	var req service.StatsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	req.PlayerID = &id
	h.log(c, req)
}

func (h *StatsHandler) logForGame(c *gin.Context) {
	id, ok := pathID(c, "id", "game_id")
	if !ok {
		return
	}
	var req service.StatsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	req.GameID = &id
	h.log(c, req)
}

func (h *StatsHandler) log(c *gin.Context, req service.StatsInput) {
	row, err := h.svc.LogStats(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, row)
}

// batchEntry is the per-entry outcome of a batch submission.
type batchEntry struct {
	Index  int                    `json:"index"`
	Status int                    `json:"status"`
	Stats  *model.PlayerGameStats `json:"stats,omitempty"`
	Error  *response.ErrorPayload `json:"error,omitempty"`
}

type batchResponse struct {
	Logged  int          `json:"logged"`
	Failed  int          `json:"failed"`
	Results []batchEntry `json:"results"`
}

// logBatch answers 201 when every entry was logged and 207 when at least one failed.
func (h *StatsHandler) logBatch(c *gin.Context) {
	id, ok := pathID(c, "id", "game_id")
	if !ok {
		return
	}
	var req []service.StatsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if len(req) == 0 {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "must contain at least one entry"}}))
		return
	}

	results := h.svc.LogBatchStats(c.Request.Context(), id, req)
	out := batchResponse{Results: make([]batchEntry, 0, len(results))}
	for _, res := range results {
		entry := batchEntry{Index: res.Index}
		if res.Err != nil {
			status, payload := response.MapError(res.Err)
			entry.Status, entry.Error = status, &payload
			out.Failed++
		} else {
			stats := res.Stats
			entry.Status, entry.Stats = http.StatusCreated, &stats
			out.Logged++
		}
		out.Results = append(out.Results, entry)
	}

	status := http.StatusCreated
	if out.Failed > 0 {
		status = http.StatusMultiStatus
	}
	response.WriteData(c, status, out)
}

func (h *StatsHandler) listByGame(c *gin.Context) {
	id, ok := pathID(c, "id", "game_id")
	if !ok {
		return
	}
	rows, err := h.svc.ListStatsByGame(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rows)
}

func (h *StatsHandler) listByPlayer(c *gin.Context) {
	id, ok := pathID(c, "id", "player_id")
	if !ok {
		return
	}
	rows, err := h.svc.ListStatsByPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rows)
}
