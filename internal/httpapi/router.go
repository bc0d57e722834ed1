package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polychat/internal/common"
	"polychat/internal/httpapi/handlers"
	"polychat/internal/httpapi/middleware"
	"polychat/internal/httpapi/web"
)

// NewRouter builds the gin engine around an injected handler set.
func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SessionCookie(h.JWTSecret))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
	})
	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	api.POST("/initialize", h.Initialize)
	api.POST("/chat", h.Chat)
	api.POST("/clear", h.Clear)
	api.GET("/summary", h.Summary)
	api.DELETE("/session", h.RemoveSession)

	return r
}
