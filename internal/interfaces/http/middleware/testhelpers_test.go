package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Replicator56/mini-crm/internal/infrastructure/auth"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSigner() *auth.CookieSigner {
	return auth.NewCookieSigner("test-secret-key-at-least-32-chars", "mini-crm")
}

func testNotices() *flash.Store {
	return flash.NewStore(testSigner(), "", false)
}

// withSession is a stand-in for the Session middleware
func withSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Set(SessionKey, s)
		}
		c.Next()
	}
}

// noticeOf decodes the notice a response set
func noticeOf(t *testing.T, rec *httptest.ResponseRecorder) *flash.Notice {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return testNotices().Take(httptest.NewRecorder(), req)
}
