package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vpetrenko/accountd/internal/common"
)

// handleServiceError translates a typed service failure into an HTTP status.
// Anything without a known kind is logged and reported as a 500.
func (s *Server) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrorConflict):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		errorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrorInvalidArgument):
		errorResponse(c, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(c.Request.Context(), "unhandled service error", "error", err.Error())
		errorResponse(c, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
