package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantfold/studio/internal/services"
	"github.com/quantfold/studio/pkg/response"
)

// ConnectionHandler exposes the connection registry APIs.
type ConnectionHandler struct {
	svc *services.ConnectionService
}

// NewConnectionHandler constructs a handler using the provided service.
func NewConnectionHandler(svc *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

type modelSourcePayload struct {
	Alias    string `json:"alias"`
	Contents string `json:"contents"`
}

type fullModelPayload struct {
	Name    string               `json:"name" validate:"required"`
	Sources []modelSourcePayload `json:"sources"`
}

type upsertConnectionPayload struct {
	Name      string            `json:"name" validate:"required,max=128"`
	Type      string            `json:"type" validate:"required,max=64"`
	Model     *string           `json:"model"`
	FullModel *fullModelPayload `json:"full_model"`
	Extra     map[string]any    `json:"extra"`
}

// Upsert registers a new connection or refreshes an existing one. POST and
// PUT are interchangeable here; both replace the stored descriptor and attach
// a fresh executor.
func (h *ConnectionHandler) Upsert(c *gin.Context) {
	var payload upsertConnectionPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.UpsertConnectionInput{
		Name:  payload.Name,
		Type:  payload.Type,
		Model: payload.Model,
		Extra: payload.Extra,
	}
	if payload.FullModel != nil {
		input.FullModel = fullModelInput(payload.FullModel)
	}

	conn, err := h.svc.Upsert(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, conn)
}

// List returns all known connections.
func (h *ConnectionHandler) List(c *gin.Context) {
	items := h.svc.List(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"connections": items})
}

func fullModelInput(payload *fullModelPayload) *services.ModelInput {
	input := &services.ModelInput{Name: payload.Name}
	for _, source := range payload.Sources {
		input.Sources = append(input.Sources, modelSourceInput(source))
	}
	return input
}
