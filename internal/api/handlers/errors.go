package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/models"
	"github.com/jroosing/bindzone/internal/zoneerr"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(kind zoneerr.Kind) int {
	switch kind {
	case zoneerr.KindNotFound:
		return http.StatusNotFound
	case zoneerr.KindAlreadyExists, zoneerr.KindDisabled:
		return http.StatusConflict
	case zoneerr.KindInvalidFormat:
		return http.StatusBadRequest
	case zoneerr.KindAccessDenied:
		return http.StatusForbidden
	case zoneerr.KindAuth, zoneerr.KindConnect, zoneerr.KindTransport:
		return http.StatusBadGateway
	case zoneerr.KindNoSpace:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err with the status of its kind. Internal errors are
// logged and answered with a generic message.
func (h *Handler) writeError(c *gin.Context, err error) {
	kind := zoneerr.KindOf(err)
	status := statusOf(kind)
	msg := err.Error()
	if kind == zoneerr.KindInternal {
		h.logger.Error("request failed", "path", c.FullPath(), "err", err)
		msg = "internal error"
	}
	c.JSON(status, models.ErrorResponse{Error: msg, Kind: string(kind)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: "Invalid request: " + err.Error(),
		Kind:  string(zoneerr.KindInvalidFormat),
	})
}
