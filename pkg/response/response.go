package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

// Success sends the standard success envelope: {"success":true,"message":...}
// plus any operation-specific fields supplied by the caller.
func Success(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(status, body)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, fields gin.H) {
	Success(c, http.StatusCreated, message, fields)
}

// Raw sends a bare JSON payload without the envelope. A handful of legacy
// endpoints return unwrapped bodies and existing clients depend on that shape.
func Raw(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// Error converts any error into the uniform failure envelope
// {"success":false,"message":...,"error":...}.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, gin.H{
		"success": false,
		"message": appErr.Message,
		"error":   appErr.Code,
	})
}
