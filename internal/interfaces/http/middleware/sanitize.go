package middleware

import (
	"html"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// CSRFField is the form field carrying the anti-forgery token
const CSRFField = "_csrf"

// rawFields keep their submitted value: passwords may legitimately contain
// markup characters and the token is compared byte for byte.
var rawFields = map[string]bool{
	"password": true,
	CSRFField:  true,
}

// Sanitizer strips markup from submitted text
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer on bluemonday's strict policy
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// maxCleanPasses bounds the decode and strip loop in Clean.
const maxCleanPasses = 4

var angleStripper = strings.NewReplacer("<", "", ">", "")

// Clean removes every tag from v. Entities are decoded after each pass, so
// entity-encoded markup is stripped on the next pass, and the result is plain
// text that the templates escape exactly once. Input still changing after
// maxCleanPasses loses its angle brackets.
func (s *Sanitizer) Clean(v string) string {
	for range maxCleanPasses {
		out := html.UnescapeString(s.policy.Sanitize(v))
		if out == v {
			return out
		}
		v = out
	}
	return angleStripper.Replace(v)
}

// Sanitize cleans every query and form value in place, except rawFields.
func Sanitize(s *Sanitizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := c.Request
		if r.URL.RawQuery != "" {
			q := r.URL.Query()
			s.cleanValues(q)
			r.URL.RawQuery = q.Encode()
		}
		if !isSafeMethod(r.Method) {
			// Errors surface again, and are handled, when the handler binds.
			_ = r.ParseForm()
		}
		s.cleanValues(r.Form)
		s.cleanValues(r.PostForm)
		if r.MultipartForm != nil {
			s.cleanValues(r.MultipartForm.Value)
		}
		c.Next()
	}
}

func (s *Sanitizer) cleanValues(values url.Values) {
	for key, vs := range values {
		if rawFields[key] {
			continue
		}
		for i, v := range vs {
			vs[i] = s.Clean(v)
		}
	}
}
