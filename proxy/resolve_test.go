package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

func TestResolveService(t *testing.T) {
	env := map[string]string{
		"DS_PIPELINE_DSPA_SERVICE_HOST": "localhost",
		"DS_PIPELINE_DSPA_SERVICE_PORT": "8143",
	}
	routes := BuiltinRoutes(func(k string) string { return env[k] })
	pipelines := routeByName(t, routes, "pipelines").Service
	trustyai := routeByName(t, routes, "trustyai").Service
	mlmd := routeByName(t, routes, "mlmd").Service

	ready := readyDSPA("dspa", "proj1", apiServerReady)
	v2 := model.NewGatingResource(newDSPA("dspa", "proj1", map[string]interface{}{"type": "APIServerReady", "status": "True"}))

	for _, tc := range []struct {
		name    string
		dev     bool
		route   *model.ServiceRoute
		res     *model.GatingResource
		expect  string
		errText string
	}{
		{
			name:   "pipelines",
			route:  pipelines,
			res:    ready,
			expect: "https://ds-pipeline-dspa.proj1.svc.cluster.local:8443",
		},
		{
			name:   "trustyai",
			route:  trustyai,
			res:    readyDSPA("tais", "ns", model.Condition{Type: "Available", Status: "True"}),
			expect: "https://tais-tls.ns.svc.cluster.local:8443",
		},
		{
			name:   "mlmd",
			route:  mlmd,
			res:    v2,
			expect: "http://ds-pipeline-metadata-envoy-dspa.proj1.svc.cluster.local:9090",
		},
		{
			name:    "mlmd requires v2",
			route:   mlmd,
			res:     ready,
			errText: "DataSciencePipelinesApplication 'dspa' service unavailable.",
		},
		{
			name:    "condition false",
			route:   pipelines,
			res:     readyDSPA("dspa", "proj1", model.Condition{Type: "APIServerReady", Status: "False"}),
			errText: "DataSciencePipelinesApplication 'dspa' service unavailable.",
		},
		{
			name:    "no conditions",
			route:   trustyai,
			res:     readyDSPA("tais", "ns"),
			errText: "TrustyAIService 'tais' service unavailable.",
		},
		{
			name:   "dev mode",
			dev:    true,
			route:  pipelines,
			res:    ready,
			expect: "https://localhost:8143",
		},
		{
			name:    "dev mode without local address",
			dev:     true,
			route:   trustyai,
			res:     readyDSPA("tais", "ns", model.Condition{Type: "Available", Status: "True"}),
			errText: errNoLocalAddress.Error(),
		},
		{
			name:    "dev mode with port only",
			dev:     true,
			route:   &model.ServiceRoute{Model: pipelines.Model, Port: 8443, TLS: true, Local: model.LocalAddress{Port: "8143"}},
			res:     ready,
			errText: "upstream host is empty",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			target, err := Resolver{DevMode: tc.dev}.ResolveService(tc.route, tc.res)
			if tc.errText != "" {
				require.Error(t, err)
				assert.Nil(t, target)
				var e *Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 404, e.StatusCode)
				assert.Equal(t, outcomeUnavailable, e.Outcome)
				assert.Contains(t, e.Message, tc.errText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, target.String())

			again, err := Resolver{DevMode: tc.dev}.ResolveService(tc.route, tc.res)
			require.NoError(t, err)
			assert.Equal(t, target, again)
		})
	}
}

func TestResolvePlugin(t *testing.T) {
	r := Resolver{}

	target, err := r.ResolvePlugin(model.Plugin{Alias: "modelRegistry", ServiceURL: "https://registry.example.com:8443/api"})
	require.NoError(t, err)
	assert.Equal(t, &model.UpstreamTarget{Scheme: "https", Host: "registry.example.com", Port: "8443", Path: "/api"}, target)

	for _, raw := range []string{"", "registry:8080", "ftp://registry", "http://"} {
		_, err := r.ResolvePlugin(model.Plugin{Alias: "broken", ServiceURL: raw})
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "Plugin 'broken' plugin unavailable.")
	}
}
