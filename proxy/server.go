// Package proxy forwards dashboard API requests to cluster services and plugins
package proxy

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

// NewHandler mounts every route below prefix:
//
//	<prefix><path>/{namespace}/{name}/*  service routes
//	<prefix><path>/{plugin}/*            plugin routes
func NewHandler(prefix string, routes []model.Route, d *Dispatcher) (http.Handler, error) {
	if err := ValidateRoutes(routes); err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}

	api := chi.NewRouter()
	for _, route := range routes {
		h := d.Handler(route)
		var pattern string
		switch route.Kind {
		case model.ServiceRouteKind:
			pattern = route.Path + "/{namespace}/{name}"
		case model.PluginRouteKind:
			pattern = route.Path + "/{plugin}"
		}
		api.Handle(pattern, h)
		api.Handle(pattern+"/*", h)
	}
	api.NotFound(routeNotFound)

	if prefix == "" || prefix == "/" {
		return api, nil
	}
	root := chi.NewRouter()
	root.NotFound(routeNotFound)
	root.Mount(prefix, api)
	return root, nil
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), w, &Error{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("Route %s %s not found.", r.Method, r.URL.Path),
		Outcome:    outcomeNotFound,
	})
}
