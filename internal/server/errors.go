package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/codeclock/internal/importer"
	"github.com/alexanderramin/codeclock/internal/ledger"
	"github.com/alexanderramin/codeclock/internal/tracker"
)

func statusFor(err error) int {
	var verr *importer.ValidationError
	switch {
	case errors.Is(err, ledger.ErrConfirmationRequired), errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrPausedManually):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrImplausibleDuration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tracker.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}
