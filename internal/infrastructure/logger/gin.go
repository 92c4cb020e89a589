package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinRequestIDKey is the gin context key the RequestID middleware sets.
const GinRequestIDKey = "request_id"

// quietPrefixes are logged at debug level only.
var quietPrefixes = []string{"/public/", "/health"}

// GinMiddleware writes one access line per request and makes a
// request-scoped logger, tagged with the request id, available through the
// request's context.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		r := c.Request

		reqLogger := logger.With(zap.String("method", r.Method), zap.String("path", r.URL.Path))
		ctx := WithContext(r.Context(), reqLogger)
		if requestID := c.GetString(GinRequestIDKey); requestID != "" {
			ctx, reqLogger = WithRequestID(r.Context(), reqLogger, requestID)
		}
		c.Request = r.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if r.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", r.URL.RawQuery))
		}
		// Session runs later in the chain and puts the user id on c.Request.
		if userID := GetUserID(c.Request.Context()); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if status >= http.StatusMultipleChoices && status < http.StatusBadRequest {
			fields = append(fields, zap.String("location", c.Writer.Header().Get("Location")))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if ce := reqLogger.Check(accessLevel(status, r.URL.Path), "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func accessLevel(status int, path string) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	for _, prefix := range quietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return zapcore.DebugLevel
		}
	}
	return zapcore.InfoLevel
}

// Recovery turns a panic into a logged error with a stack trace and hands
// the request to onPanic, which renders the error page. When onPanic is nil
// or the response has already started, it aborts with a bare 500.
func Recovery(logger *zap.Logger, onPanic gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ForContext(c.Request.Context(), logger).Error("Panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)

			if onPanic == nil || c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			onPanic(c)
			c.Abort()
		}()
		c.Next()
	}
}
