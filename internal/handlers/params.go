package handlers

import "net/http"

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not. It also supports the
// standard net/http PathValue API available in recent Go versions.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}

	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}

	if val := r.URL.Query().Get(name); val != "" {
		return val
	}

	return r.PathValue(name)
}

// contextUserID pulls the authenticated user id set by the JWT middleware.
func contextUserID(r *http.Request) (int, bool) {
	id, ok := r.Context().Value("user_id").(int)
	return id, ok
}

// contextRole pulls the authenticated user's role set by the JWT middleware.
func contextRole(r *http.Request) string {
	role, _ := r.Context().Value("role").(string)
	return role
}
