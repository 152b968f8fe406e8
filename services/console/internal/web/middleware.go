package web

import (
	"context"
	"net/http"
	"time"

	"jobconsole/common/telemetry"
	"jobconsole/services/console/internal/messaging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionContextKey = "console.session"

var tracer = telemetry.GetTracer("jobconsole/console/web")

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}

func tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetAttributes(telemetry.Int("http.status_code", c.Writer.Status()))
	}
}

// sessions attaches the caller's Session to the request, creating it and its
// cookie on first contact. The session stays locked until the handler is done
// and the updated state has been saved.
func sessions(store *SessionStore, cookie string, ttl time.Duration, secure bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookie)
		if err != nil || !validID(id) {
			id = NewID()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie, id, int(ttl.Seconds()), "/", "", secure, true)

		sess, release := store.Acquire(c.Request.Context(), id)
		defer release()

		c.Request = c.Request.WithContext(messaging.WithSession(c.Request.Context(), id))
		c.Set(sessionContextKey, sess)
		c.Next()

		if err := store.Save(context.WithoutCancel(c.Request.Context()), sess); err != nil {
			logger.Error("failed to save session",
				zap.String("session_id", id),
				zap.Error(err))
		}
	}
}

func currentSession(c *gin.Context) *Session {
	return c.MustGet(sessionContextKey).(*Session)
}
