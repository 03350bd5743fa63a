package sse

import "github.com/gin-gonic/gin"

// GinHandler adapts the handler to a gin route:
//
//	router.GET("/events", sse.GinHandler(handler))
func GinHandler(h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
