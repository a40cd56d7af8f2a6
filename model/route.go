// Package model contains the routing data model shared by the proxy and controllers
package model

import (
	"fmt"
	"net"
	"strconv"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ClusterDomain is the in-cluster DNS suffix appended to service hosts
const ClusterDomain = "svc.cluster.local"

// RouteKind distinguishes how a route resolves its upstream
type RouteKind int

const (
	// ServiceRouteKind routes resolve a cluster service gated by a custom resource
	ServiceRouteKind RouteKind = iota
	// PluginRouteKind routes resolve a third party plugin from the dashboard configuration
	PluginRouteKind
)

func (k RouteKind) String() string {
	switch k {
	case ServiceRouteKind:
		return "service"
	case PluginRouteKind:
		return "plugin"
	}
	return fmt.Sprintf("RouteKind(%d)", int(k))
}

// Route is a proxy route registered at startup and shared read-only by all requests
type Route struct {
	// Name is used in logs and metrics
	Name string
	// Path is the mount path below the API prefix, i.e. /service/pipelines
	Path string
	Kind RouteKind
	// Service is set for ServiceRouteKind routes
	Service *ServiceRoute
}

// ResourceModel identifies the custom resource type gating a service
type ResourceModel struct {
	Group   string `yaml:"group"`
	Version string `yaml:"version"`
	Kind    string `yaml:"kind"`
	Plural  string `yaml:"plural"`
}

// GroupVersionResource returns the resource coordinates used by the dynamic client
func (m ResourceModel) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: m.Group, Version: m.Version, Resource: m.Plural}
}

// LocalAddress is a port-forwarded address used in development mode, i.e.
//
//	kubectl port-forward -n <namespace> svc/<service> <local port>:<service port>
type LocalAddress struct {
	Host string
	Port string
}

// IsZero is true when no local address was configured
func (a LocalAddress) IsZero() bool {
	return a.Host == "" && a.Port == ""
}

// ServiceRoute describes how to reach a cluster service gated by a custom resource
type ServiceRoute struct {
	Model ResourceModel
	Port  int
	// Prefix and Suffix are concatenated around the resource name to form the service name
	Prefix string
	Suffix string
	TLS    bool
	// Ready is an optional readiness predicate evaluated against the gating resource
	Ready Predicate
	// Local is used instead of the in-cluster address in development mode
	Local LocalAddress
	// DevOnly routes are only registered in development mode
	DevOnly bool
}

// Scheme returns the upstream scheme
func (s *ServiceRoute) Scheme() string {
	if s.TLS {
		return "https"
	}
	return "http"
}

// Authorize reports whether a bearer token must be attached to the outbound request.
// The TLS flag doubles as the authorization signal.
func (s *ServiceRoute) Authorize() bool {
	return s.TLS
}

// ServiceHost returns the in-cluster DNS name of the service backing the resource
func (s *ServiceRoute) ServiceHost(res *GatingResource) string {
	return s.Prefix + res.Name + s.Suffix + "." + res.Namespace + "." + ClusterDomain
}

// ServiceAddress returns host:port of the service backing the resource
func (s *ServiceRoute) ServiceAddress(res *GatingResource) string {
	return net.JoinHostPort(s.ServiceHost(res), strconv.Itoa(s.Port))
}
