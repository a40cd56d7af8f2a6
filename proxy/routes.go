package proxy

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

var dspaModel = model.ResourceModel{
	Group:   "datasciencepipelinesapplications.opendatahub.io",
	Version: "v1alpha1",
	Kind:    "DataSciencePipelinesApplication",
	Plural:  "datasciencepipelinesapplications",
}

var trustyAIModel = model.ResourceModel{
	Group:   "trustyai.opendatahub.io",
	Version: "v1alpha1",
	Kind:    "TrustyAIService",
	Plural:  "trustyaiservices",
}

// BuiltinRoutes returns the dashboard service and plugin routes.
// env looks up <SERVICE>_SERVICE_HOST and <SERVICE>_SERVICE_PORT for development mode.
func BuiltinRoutes(env func(string) string) []model.Route {
	return []model.Route{
		{
			Name: "pipelines",
			Path: "/service/pipelines",
			Kind: model.ServiceRouteKind,
			Service: &model.ServiceRoute{
				Model:  dspaModel,
				Port:   8443,
				Prefix: "ds-pipeline-",
				TLS:    true,
				Ready:  model.ConditionTrue("APIServerReady"),
				Local:  localAddress(env, "DS_PIPELINE_DSPA"),
			},
		},
		{
			Name: "trustyai",
			Path: "/service/trustyai",
			Kind: model.ServiceRouteKind,
			Service: &model.ServiceRoute{
				Model:  trustyAIModel,
				Port:   8443,
				Suffix: "-tls",
				TLS:    true,
				Ready:  model.ConditionTrue("Available"),
				Local:  localAddress(env, "TRUSTYAI_TAIS"),
			},
		},
		{
			Name: "mlmd",
			Path: "/service/mlmd",
			Kind: model.ServiceRouteKind,
			Service: &model.ServiceRoute{
				Model:  dspaModel,
				Port:   9090,
				Prefix: "ds-pipeline-metadata-envoy-",
				Ready: model.AllOf(
					model.FieldEquals("v2", "spec", "dspVersion"),
					model.ConditionTrue("APIServerReady"),
				),
				Local:   localAddress(env, "METADATA_ENVOY"),
				DevOnly: true,
			},
		},
		{
			Name: "plugin",
			Path: "/plugin",
			Kind: model.PluginRouteKind,
		},
	}
}

// ForMode drops development only routes unless running in development mode
func ForMode(routes []model.Route, devMode bool) []model.Route {
	dst := make([]model.Route, 0, len(routes))
	for _, r := range routes {
		if !devMode && r.Service != nil && r.Service.DevOnly {
			continue
		}
		dst = append(dst, r)
	}
	return dst
}

func localAddress(env func(string) string, service string) model.LocalAddress {
	if env == nil {
		return model.LocalAddress{}
	}
	return model.LocalAddress{
		Host: env(service + "_SERVICE_HOST"),
		Port: env(service + "_SERVICE_PORT"),
	}
}

// ValidateRoutes checks the route table before it is served
func ValidateRoutes(routes []model.Route) error {
	var errs *multierror.Error
	paths := make(map[string]string)
	for _, r := range routes {
		if r.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("route %q: name is required", r.Path))
		}
		if !strings.HasPrefix(r.Path, "/") || strings.HasSuffix(r.Path, "/") {
			errs = multierror.Append(errs, fmt.Errorf("route %s: path %q must start and not end with /", r.Name, r.Path))
		}
		if other, ok := paths[r.Path]; ok {
			errs = multierror.Append(errs, fmt.Errorf("route %s: path %q already used by %s", r.Name, r.Path, other))
		}
		paths[r.Path] = r.Name

		switch r.Kind {
		case model.ServiceRouteKind:
			if err := validateServiceRoute(r.Service); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("route %s: %w", r.Name, err))
			}
		case model.PluginRouteKind:
			if r.Service != nil {
				errs = multierror.Append(errs, fmt.Errorf("route %s: plugin routes do not take a service", r.Name))
			}
		default:
			errs = multierror.Append(errs, fmt.Errorf("route %s: unsupported kind %s", r.Name, r.Kind))
		}
	}
	return errs.ErrorOrNil()
}

func validateServiceRoute(svc *model.ServiceRoute) error {
	if svc == nil {
		return fmt.Errorf("service is required")
	}
	m := svc.Model
	if m.Version == "" || m.Kind == "" || m.Plural == "" {
		return fmt.Errorf("resource version, kind and plural are required")
	}
	if svc.Port < 1 || svc.Port > 65535 {
		return fmt.Errorf("port %d out of range", svc.Port)
	}
	return nil
}
