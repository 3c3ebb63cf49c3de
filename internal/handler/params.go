package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/season-stats-service/internal/repository"
	"github.com/maxviazov/season-stats-service/internal/service"
	"github.com/maxviazov/season-stats-service/pkg/response"
)

// pathID parses a positive int64 path parameter. On failure it writes a 400 and returns false.
func pathID(c *gin.Context, param, field string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(param)), 10, 64)
	if err != nil || id <= 0 {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: field, Message: "must be a valid integer > 0"}}))
		return 0, false
	}
	return id, true
}

// pageQuery reads limit/offset. Atoi errors are ignored intentionally, as 0 is a valid default
// for limit/offset, handled by the service layer.
func pageQuery(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return repository.Page{Limit: limit, Offset: offset}
}

// badBody reports an undecodable request body without leaking parser internals.
func badBody(c *gin.Context) {
	response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "malformed JSON"}}))
}
