package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantfold/studio/internal/models"
	"github.com/quantfold/studio/internal/services"
	"github.com/quantfold/studio/pkg/response"
)

// ModelHandler exposes the model catalog APIs.
type ModelHandler struct {
	catalog *services.ModelCatalog
}

// NewModelHandler constructs a handler using the provided catalog.
func NewModelHandler(catalog *services.ModelCatalog) *ModelHandler {
	return &ModelHandler{catalog: catalog}
}

// List returns every registered model and its source aliases.
func (h *ModelHandler) List(c *gin.Context) {
	summaries, err := h.catalog.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"models": summaries})
}

func modelSourceInput(payload modelSourcePayload) models.ModelSource {
	return models.ModelSource{Alias: payload.Alias, Contents: payload.Contents}
}
