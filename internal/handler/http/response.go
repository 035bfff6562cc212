package http

import (
	"log/slog"
	"net/http"

	"shop-crud/internal/apperror"
	"shop-crud/internal/logger"

	"github.com/gin-gonic/gin"
)

// Messages the API answers with.
const (
	MsgInvalidContentType = "invalid data format"
	MsgFormatError        = "format error"
	MsgServerError        = "server error"
	MsgPathError          = "path error"
	MsgPanic              = "error"
)

// Envelope wraps every response. Result is omitted when there is nothing to return.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

func writeOK(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Result: result})
}

func writeFail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// writeError maps an error kind to its status. Internal details are logged, never returned.
func writeError(c *gin.Context, err error) {
	switch kind := apperror.KindOf(err); kind {
	case apperror.KindFormat, apperror.KindValidation:
		writeFail(c, http.StatusBadRequest, apperror.MessageOf(err))
	case apperror.KindNotFound:
		writeFail(c, http.StatusNotFound, apperror.MessageOf(err))
	case apperror.KindInternal:
		logger.Error(c.Request.Context(), "Request failed",
			slog.String("error", err.Error()),
			slog.String("http.path", c.Request.URL.Path),
		)
		writeFail(c, http.StatusInternalServerError, MsgServerError)
	default:
		logger.Error(c.Request.Context(), "Unclassified error kind",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
		writeFail(c, http.StatusInternalServerError, MsgServerError)
	}
}
