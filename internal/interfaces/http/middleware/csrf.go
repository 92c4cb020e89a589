package middleware

import (
	"crypto/subtle"
	"net/url"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/gin-gonic/gin"
)

// CSRFHeader is the header alternative to the _csrf form field
const CSRFHeader = "X-CSRF-Token"

// CSRF rejects mutating requests whose token does not match the session's.
// The request is redirected back to the same-origin Referer, or home,
// before any handler runs.
func CSRF(notices *flash.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		token := c.PostForm(CSRFField)
		if token == "" {
			token = c.GetHeader(CSRFHeader)
		}
		s := CurrentSession(c)
		if s == nil || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken)) != 1 {
			notices.Redirect(c, sameOriginReferer(c), flash.Error(shared.ErrCSRF.Message))
			return
		}
		c.Next()
	}
}

// sameOriginReferer returns the Referer path when it points at this host,
// "/" otherwise.
func sameOriginReferer(c *gin.Context) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host != c.Request.Host || u.Path == "" {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
