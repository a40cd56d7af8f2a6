package proxy

import (
	"errors"
	"net"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

var errNoLocalAddress = errors.New("no local address configured for development mode")

// Resolver computes the upstream of a request
type Resolver struct {
	// DevMode routes service requests to locally forwarded ports instead of in-cluster DNS names
	DevMode bool
}

// ResolveService returns the upstream of a cluster service once its gating resource is known.
// The readiness predicate is evaluated first, so no target exists for an unready service.
func (r Resolver) ResolveService(route *model.ServiceRoute, res *model.GatingResource) (*model.UpstreamTarget, error) {
	kind := route.Model.Kind
	if route.Ready != nil && !route.Ready(res) {
		return nil, UnavailableError(kind, res.Name, nil)
	}

	target := &model.UpstreamTarget{Scheme: route.Scheme()}
	if r.DevMode {
		if route.Local.IsZero() {
			return nil, UnavailableError(kind, res.Name, errNoLocalAddress)
		}
		target.Host, target.Port = route.Local.Host, route.Local.Port
	} else {
		var err error
		if target.Host, target.Port, err = net.SplitHostPort(route.ServiceAddress(res)); err != nil {
			return nil, UnavailableError(kind, res.Name, err)
		}
	}

	if err := target.Validate(); err != nil {
		return nil, UnavailableError(kind, res.Name, err)
	}
	return target, nil
}

// ResolvePlugin returns the plugin's service URL as the upstream
func (r Resolver) ResolvePlugin(p model.Plugin) (*model.UpstreamTarget, error) {
	target, err := model.ParseUpstream(p.ServiceURL)
	if err != nil {
		return nil, notFoundError("Plugin", p.Alias, err, "plugin unavailable")
	}
	return target, nil
}
