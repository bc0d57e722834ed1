package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes the success envelope, merging extra fields into the body.
func OK(c *gin.Context, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail writes the failure envelope with the given status and message.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}
