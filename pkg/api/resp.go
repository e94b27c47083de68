package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"entregas/pkg/logger"
	"entregas/service"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": data})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": msg})
}

func forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrBlocked),
		errors.Is(err, service.ErrDriverNotApproved):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail maps service errors to a status and writes the error envelope.
// Unexpected errors are logged and hidden from the client.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			logger.String("request_id", c.GetString(ctxRequestID)),
			logger.String("path", c.FullPath()),
			logger.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": "internal error"})
		return
	}

	body := gin.H{"ok": false, "error": err.Error()}
	var fe *service.FieldError
	if errors.As(err, &fe) {
		body["error"] = fe.Message
		body["field"] = fe.Field
	}
	c.AbortWithStatusJSON(status, body)
}
