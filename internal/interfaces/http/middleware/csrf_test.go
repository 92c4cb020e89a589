package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfRouter(s *session.Session) *gin.Engine {
	router := gin.New()
	router.Use(withSession(s), CSRF(testNotices()))
	router.GET("/clients", func(c *gin.Context) { c.String(http.StatusOK, "list") })
	router.POST("/clients", func(c *gin.Context) { c.String(http.StatusOK, "created") })
	return router
}

func formRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCSRF(t *testing.T) {
	s := &session.Session{ID: "sid", CSRFToken: "good-token"}

	t.Run("safe methods pass without a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		csrfRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("form token", func(t *testing.T) {
		w := httptest.NewRecorder()
		csrfRouter(s).ServeHTTP(w, formRequest(url.Values{CSRFField: {"good-token"}}))
		assert.Equal(t, "created", w.Body.String())
	})

	t.Run("header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/clients", nil)
		req.Header.Set(CSRFHeader, "good-token")
		w := httptest.NewRecorder()
		csrfRouter(s).ServeHTTP(w, req)
		assert.Equal(t, "created", w.Body.String())
	})

	cases := map[string]struct {
		session *session.Session
		token   string
	}{
		"missing token":   {session: s},
		"wrong token":     {session: s, token: "bad-token"},
		"no session":      {token: "good-token"},
		"prefix of token": {session: s, token: "good"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			form := url.Values{"name": {"Bob"}}
			if tc.token != "" {
				form.Set(CSRFField, tc.token)
			}
			w := httptest.NewRecorder()
			csrfRouter(tc.session).ServeHTTP(w, formRequest(form))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
			n := noticeOf(t, w)
			require.NotNil(t, n)
			assert.Equal(t, shared.ErrCSRF.Message, n.Message)
		})
	}
}

func TestCSRF_RedirectsToSameOriginReferer(t *testing.T) {
	s := &session.Session{ID: "sid", CSRFToken: "good-token"}

	cases := map[string]string{
		"http://example.com/clients/new":   "/clients/new",
		"http://example.com/clients?q=bob": "/clients?q=bob",
		"http://evil.test/clients/new":     "/",
		"http://example.com":               "/",
		"://not a url":                     "/",
	}
	for referer, want := range cases {
		t.Run(referer, func(t *testing.T) {
			req := formRequest(url.Values{})
			req.Host = "example.com"
			req.Header.Set("Referer", referer)
			w := httptest.NewRecorder()
			csrfRouter(s).ServeHTTP(w, req)
			assert.Equal(t, want, w.Header().Get("Location"))
		})
	}
}
