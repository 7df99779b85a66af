package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "agency_chat/pkg/errors"
)

// Envelope - единый формат ответа API: {success, message, data}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatusFromError(err), Envelope{
		Success: false,
		Message: err.Error(),
	})
}
