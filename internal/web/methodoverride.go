package web

import (
	"net/http"
	"strings"
)

// MethodOverride lets HTML forms issue PUT and DELETE requests through a
// `_method` query parameter or urlencoded form field. Multipart bodies are
// not inspected; file-upload forms put `_method` in the action URL.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.URL.Query().Get("_method")
			if m == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
				m = r.PostFormValue("_method")
			}
			switch strings.ToUpper(m) {
			case http.MethodPut, http.MethodDelete:
				r.Method = strings.ToUpper(m)
			}
		}
		next.ServeHTTP(w, r)
	})
}
