package middleware

import (
	"net/http"

	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the *session.Session
const SessionKey = "crm_session"

// Session loads the session named by the cookie. Safe requests without a
// usable session get a fresh anonymous one so forms can carry a CSRF
// token. Store failures are handed to onError.
func Session(manager *session.Manager, onError gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		s, err := manager.Load(ctx, c.Request)
		switch {
		case err == nil:
		case session.IsNotFound(err):
			if !isSafeMethod(c.Request.Method) {
				c.Next()
				return
			}
			if s, err = manager.Start(ctx); err == nil {
				err = manager.WriteCookie(c.Writer, s)
			}
		}
		if err != nil {
			_ = c.Error(err)
			if onError == nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			onError(c)
			c.Abort()
			return
		}

		c.Set(SessionKey, s)
		if s.Authenticated() {
			ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), s.User.UserID.String())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// CurrentSession returns the request's session, or nil
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// CurrentUser returns the authenticated principal, or nil
func CurrentUser(c *gin.Context) *session.Principal {
	if s := CurrentSession(c); s != nil {
		return s.User
	}
	return nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
