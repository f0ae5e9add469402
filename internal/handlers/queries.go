package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantfold/studio/internal/services"
	"github.com/quantfold/studio/pkg/response"
)

// QueryHandler exposes statement execution APIs.
type QueryHandler struct {
	svc *services.QueryService
}

// NewQueryHandler constructs a handler using the provided service.
func NewQueryHandler(svc *services.QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type queryPayload struct {
	Connection string `json:"connection" validate:"required"`
	Query      string `json:"query" validate:"required"`
}

// Run executes a studio query on a live connection.
func (h *QueryHandler) Run(c *gin.Context) {
	var payload queryPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	out, err := h.svc.Run(c.Request.Context(), services.QueryInput{
		Connection: payload.Connection,
		Query:      payload.Query,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, out)
}

// RunRaw executes a statement verbatim on a live connection.
func (h *QueryHandler) RunRaw(c *gin.Context) {
	var payload queryPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	out, err := h.svc.RunRaw(c.Request.Context(), services.QueryInput{
		Connection: payload.Connection,
		Query:      payload.Query,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, out)
}
