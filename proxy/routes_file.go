package proxy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

type routesFile struct {
	Routes []serviceRouteEntry `yaml:"routes"`
}

// serviceRouteEntry declares an additional service route, i.e.
//
//	routes:
//	- name: model-serving
//	  path: /service/modelserving
//	  group: serving.kserve.io
//	  version: v1beta1
//	  kind: InferenceService
//	  plural: inferenceservices
//	  port: 8443
//	  suffix: -predictor
//	  readyConditions: [Ready]
//	  localEnv: MODEL_SERVING
type serviceRouteEntry struct {
	Name                string `yaml:"name"`
	Path                string `yaml:"path"`
	model.ResourceModel `yaml:",inline"`
	Port                int      `yaml:"port"`
	Prefix              string   `yaml:"prefix"`
	Suffix              string   `yaml:"suffix"`
	TLS                 *bool    `yaml:"tls"`
	ReadyConditions     []string `yaml:"readyConditions"`
	LocalEnv            string   `yaml:"localEnv"`
	DevOnly             bool     `yaml:"devOnly"`
}

// LoadRoutesFile reads service routes from a YAML file
func LoadRoutesFile(path string, env func(string) string) ([]model.Route, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	routes, err := LoadRoutes(f, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return routes, nil
}

// LoadRoutes decodes service routes; TLS defaults to true
func LoadRoutes(r io.Reader, env func(string) string) ([]model.Route, error) {
	var src routesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&src); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	routes := make([]model.Route, 0, len(src.Routes))
	for _, e := range src.Routes {
		svc := &model.ServiceRoute{
			Model:   e.ResourceModel,
			Port:    e.Port,
			Prefix:  e.Prefix,
			Suffix:  e.Suffix,
			TLS:     e.TLS == nil || *e.TLS,
			DevOnly: e.DevOnly,
		}
		if len(e.ReadyConditions) > 0 {
			preds := make([]model.Predicate, 0, len(e.ReadyConditions))
			for _, c := range e.ReadyConditions {
				preds = append(preds, model.ConditionTrue(c))
			}
			svc.Ready = model.AllOf(preds...)
		}
		if e.LocalEnv != "" {
			svc.Local = localAddress(env, e.LocalEnv)
		}
		routes = append(routes, model.Route{
			Name:    e.Name,
			Path:    e.Path,
			Kind:    model.ServiceRouteKind,
			Service: svc,
		})
	}
	return routes, nil
}
