package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Route maps an exact method and path to a fixed text response.
type Route struct {
	Method string
	Path   string
	Status int
	Body   string
}

// DefaultRoutes is the route table the server starts with.
var DefaultRoutes = []Route{
	{Method: http.MethodGet, Path: "/", Status: http.StatusOK, Body: "Hello, World!"},
	{Method: http.MethodGet, Path: "/hello", Status: http.StatusOK, Body: "Hello, From hello route!"},
}

const healthPath = "/api/health"

var errInvalidRoute = errors.New("invalid route")

// validateRoutes returns a copy of routes with defaults filled in.
func validateRoutes(routes []Route) ([]Route, error) {
	out := make([]Route, 0, len(routes))
	seen := map[string]bool{http.MethodGet + " " + healthPath: true}

	for _, route := range routes {
		if route.Method == "" {
			route.Method = http.MethodGet
		}
		if route.Status == 0 {
			route.Status = http.StatusOK
		}
		if !strings.HasPrefix(route.Path, "/") || strings.ContainsAny(route.Path, "{} \t") {
			return nil, fmt.Errorf("%w: path %q must be an exact absolute path", errInvalidRoute, route.Path)
		}

		key := route.Method + " " + route.Path
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate route %s", errInvalidRoute, key)
		}
		seen[key] = true
		out = append(out, route)
	}
	return out, nil
}

// pattern is the ServeMux pattern that matches only this route's exact path.
// A trailing slash would otherwise register a subtree.
func (r Route) pattern() string {
	path := r.Path
	if strings.HasSuffix(path, "/") {
		path += "{$}"
	}
	return r.Method + " " + path
}

func (s *Server) routeHandler(route Route) http.Handler {
	body := []byte(route.Body)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.count(r, "route")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(route.Status)
		w.Write(body)
	})
}
