package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/quantfold/studio/pkg/errors"
	"github.com/quantfold/studio/pkg/response"
)

// Health returns a simple status payload useful for readiness checks.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, "healthy")
	}
}

// Terminate acknowledges a client-requested shutdown with a 503 and then
// triggers it. The desktop UI calls this when the user quits, so the bundled
// backend process does not outlive its window.
func Terminate(shutdown func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, appErrors.ErrTerminating)
		if shutdown != nil {
			go shutdown()
		}
	}
}
