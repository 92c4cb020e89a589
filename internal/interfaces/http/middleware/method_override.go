package middleware

import (
	"errors"
	"net/http"
	"strings"
)

// MethodOverrideField is the form or query field naming the real method
const MethodOverrideField = "_method"

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride routes POST requests carrying _method=PUT|PATCH|DELETE
// as that method. It wraps the engine because gin picks the route before
// any middleware runs.
//
// The form is parsed here, under maxBody, so later stages see the same
// values after the method changes: net/http never parses a DELETE body.
func MethodOverride(next http.Handler, maxBody int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if method := overrideMethod(w, r, maxBody); method != "" {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(w http.ResponseWriter, r *http.Request, maxBody int64) string {
	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		if err := r.ParseMultipartForm(maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return ""
		}
	}

	method := r.URL.Query().Get(MethodOverrideField)
	if method == "" && r.PostForm != nil {
		method = r.PostForm.Get(MethodOverrideField)
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if !overridable[method] {
		return ""
	}
	return method
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
