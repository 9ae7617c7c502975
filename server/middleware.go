package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "storefront_session"
	userHeader    = "X-User-ID"
	roleHeader    = "X-User-Role"
)

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// sessionID identifies the shopping session: header first, cookie fallback.
// Empty means the caller never started a session.
func sessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(sessionCookie); err == nil {
		return id
	}
	return ""
}

// requireSession aborts with 400 when no session is attached; bag and
// checkout operations are meaningless without one.
func requireSession(c *gin.Context) (string, bool) {
	id := sessionID(c)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session identifier"})
		return "", false
	}
	return id, true
}

// actorID is the authenticated user id handed in by the edge; empty means
// guest. Authentication itself happens upstream.
func actorID(c *gin.Context) string {
	return c.GetHeader(userHeader)
}

func (s *Server) requireAdmin(c *gin.Context) {
	if c.GetHeader(roleHeader) != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized access"})
		return
	}
	c.Next()
}
