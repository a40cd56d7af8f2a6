package proxy

import (
	"context"
	"net/http"

	"k8s.io/apimachinery/pkg/types"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

//go:generate go run github.com/golang/mock/mockgen -package proxy -destination mock_deps_test.go -source deps.go

// Fetcher retrieves the custom resource gating a service
type Fetcher interface {
	Fetch(ctx context.Context, m model.ResourceModel, name types.NamespacedName) (*model.GatingResource, error)
}

// TokenSource derives the caller's access token from the inbound request
type TokenSource interface {
	Token(r *http.Request) (string, error)
}

// PluginSource provides read access to the current dashboard plugin configuration
type PluginSource interface {
	LookupPlugin(alias string) (model.Plugin, bool)
}
