package cmd

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	validate "github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apiserver/pkg/server/healthz"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/opendatahub-io/dashboard-proxy/controllers/dashboard"
	"github.com/opendatahub-io/dashboard-proxy/model"
	"github.com/opendatahub-io/dashboard-proxy/proxy"
	"github.com/opendatahub-io/dashboard-proxy/util"
	"github.com/opendatahub-io/dashboard-proxy/util/health"
)

const (
	bindAddress                   = "bind-address"
	prefix                        = "prefix"
	devMode                       = "dev-mode"
	namespace                     = "namespace"
	dashboardConfig               = "dashboard-config"
	rateLimit                     = "rate-limit"
	rateBurst                     = "rate-burst"
	rateLimitTrustForwardedFor    = "rate-limit-trust-forwarded-for"
	routesFile                    = "routes-file"
	accessTokenHeader             = "access-token-header"
	upstreamTLSCAFile             = "upstream-tls-ca-file"
	upstreamTLSInsecureSkipVerify = "upstream-tls-insecure-skip-verify"

	dashboardConfigControllerName = "dashboard-config"
)

type serveOptions struct {
	BindAddress       string `validate:"required,hostname_port"`
	Prefix            string `validate:"omitempty,startswith=/"`
	DevMode           bool
	Namespace         string  `validate:"required"`
	DashboardConfig   string  `validate:"required"`
	RateLimit         float64 `validate:"gte=0"`
	RateBurst         int     `validate:"gte=0"`
	TrustForwardedFor bool
	RoutesFile        string `validate:"omitempty,file"`
	AccessTokenHeader string `validate:"required"`

	UpstreamTLSCAFile             string `validate:"omitempty,file"`
	UpstreamTLSInsecureSkipVerify bool

	MetricsAddr string `validate:"required"`
	ProbeAddr   string `validate:"required,hostname_port"`
	Debug       bool
}

func (o *serveOptions) setupFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.BindAddress, bindAddress, ":8080", "The address the proxy binds to.")
	flags.StringVar(&o.Prefix, prefix, "/api", "API root all routes are mounted below")
	flags.BoolVar(&o.DevMode, devMode, false,
		"route service requests to locally forwarded <SERVICE>_SERVICE_HOST/PORT addresses and use kube config credentials")
	flags.StringVar(&o.Namespace, namespace, "opendatahub", "namespace the dashboard is deployed to")
	flags.StringVar(&o.DashboardConfig, dashboardConfig, "odh-dashboard-config",
		fmt.Sprintf("name or namespace/name of the %s holding the plugin configuration", dashboard.ConfigGVK.Kind))
	flags.Float64Var(&o.RateLimit, rateLimit, 10, "requests per second allowed for each caller, 0 disables limiting")
	flags.IntVar(&o.RateBurst, rateBurst, 50, "request burst allowed for each caller")
	flags.BoolVar(&o.TrustForwardedFor, rateLimitTrustForwardedFor, false,
		"identify anonymous callers by X-Forwarded-For, only safe behind a proxy that overwrites it")
	flags.StringVar(&o.RoutesFile, routesFile, "", "YAML file declaring additional service routes")
	flags.StringVar(&o.AccessTokenHeader, accessTokenHeader, proxy.DefaultAccessTokenHeader,
		"request header carrying the caller's access token")
	flags.StringVar(&o.UpstreamTLSCAFile, upstreamTLSCAFile, "", "CA bundle used to verify upstream serving certificates")
	flags.BoolVar(&o.UpstreamTLSInsecureSkipVerify, upstreamTLSInsecureSkipVerify, false,
		"disable upstream TLS certificate chain and hostname check")
	flags.StringVar(&o.MetricsAddr, metricsBindAddress, ":9090", "The address the metric endpoint binds to, 0 disables it.")
	flags.StringVar(&o.ProbeAddr, healthProbeBindAddress, ":8081", "The address the probe endpoint binds to.")
	flags.BoolVar(&o.Debug, debug, false, "enable debug logging")
}

// Validate checks option values
func (o *serveOptions) Validate() error {
	return validate.New().Struct(o)
}

func (o *serveOptions) getDashboardConfig() (*types.NamespacedName, error) {
	name, err := util.ParseNamespacedName(o.DashboardConfig, util.WithDefaultNamespace(o.Namespace))
	if err != nil {
		return nil, fmt.Errorf("%s=%s: %w", dashboardConfig, o.DashboardConfig, err)
	}
	return name, nil
}

func (o *serveOptions) getRoutes() ([]model.Route, error) {
	routes := proxy.BuiltinRoutes(os.Getenv)
	if o.RoutesFile != "" {
		extra, err := proxy.LoadRoutesFile(o.RoutesFile, os.Getenv)
		if err != nil {
			return nil, err
		}
		routes = append(routes, extra...)
	}
	return proxy.ForMode(routes, o.DevMode), nil
}

func (o *serveOptions) getUpstreamTransport() (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: o.UpstreamTLSInsecureSkipVerify, //nolint:gosec
	}
	if o.UpstreamTLSCAFile == "" {
		return t, nil
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	data, err := os.ReadFile(o.UpstreamTLSCAFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", o.UpstreamTLSCAFile, err)
	}
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%s: no PEM certificates found", o.UpstreamTLSCAFile)
	}
	t.TLSClientConfig.RootCAs = pool
	return t, nil
}

type serveCmd struct {
	serveOptions
	cobra.Command
}

// ServeCommand creates command to run the dashboard proxy
func ServeCommand() (*cobra.Command, error) {
	cmd := serveCmd{
		Command: cobra.Command{
			Use:   "serve",
			Short: "runs the dashboard proxy",
		}}
	cmd.RunE = cmd.exec
	if err := cmd.setupFlags(); err != nil {
		return nil, err
	}
	return &cmd.Command, nil
}

func (s *serveCmd) setupFlags() error {
	flags := s.PersistentFlags()
	s.serveOptions.setupFlags(flags)
	if err := flags.MarkHidden(debug); err != nil {
		return err
	}
	return viperWalk(flags)
}

func (s *serveCmd) exec(*cobra.Command, []string) error {
	setupLogger(s.Debug)
	if err := s.Validate(); err != nil {
		return fmt.Errorf("options: %w", err)
	}

	ctx := ctrl.SetupSignalHandler()
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("get k8s api config: %w", err)
	}
	if err := waitForAPIServer(ctx, cfg); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	store := model.NewPluginStore()
	mgr, err := s.buildManager(cfg, store)
	if err != nil {
		return fmt.Errorf("build manager: %w", err)
	}
	handler, err := s.buildHandler(cfg, store)
	if err != nil {
		return fmt.Errorf("build proxy: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return mgr.Start(ctx) })
	eg.Go(func() error {
		return runHealthz(ctx, s.ProbeAddr, healthz.NamedCheck(health.DashboardConfigSynced, store.ReadyzCheck))
	})
	eg.Go(func() error {
		ctrl.Log.Info("serving dashboard proxy", "address", s.BindAddress, "prefix", s.Prefix, "devMode", s.DevMode)
		return runServer(ctx, s.BindAddress, handler)
	})
	return eg.Wait()
}

// buildManager runs the dashboard config controller on a cache restricted to the dashboard namespace
func (s *serveCmd) buildManager(cfg *rest.Config, store *model.PluginStore) (ctrl.Manager, error) {
	name, err := s.getDashboardConfig()
	if err != nil {
		return nil, err
	}
	scheme, err := getScheme()
	if err != nil {
		return nil, fmt.Errorf("get scheme: %w", err)
	}

	mgr, err := ctrl.NewManager(cfg, ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: s.MetricsAddr},
		HealthProbeBindAddress: "0",
		LeaderElection:         false,
		Cache: cache.Options{
			DefaultNamespaces: map[string]cache.Config{name.Namespace: {}},
		},
		Client: client.Options{
			Cache: &client.CacheOptions{Unstructured: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("manager: %w", err)
	}

	if err := dashboard.NewController(mgr, store, *name, dashboardConfigControllerName); err != nil {
		return nil, fmt.Errorf("dashboard config controller: %w", err)
	}
	return mgr, nil
}

func (s *serveCmd) buildHandler(cfg *rest.Config, store *model.PluginStore) (http.Handler, error) {
	routes, err := s.getRoutes()
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	fetcher, err := proxy.NewFetcher(cfg)
	if err != nil {
		return nil, err
	}
	transport, err := s.getUpstreamTransport()
	if err != nil {
		return nil, fmt.Errorf("upstream transport: %w", err)
	}

	tokens := &proxy.RequestTokenSource{Header: s.AccessTokenHeader}
	if s.DevMode {
		tokens.Fallback = cfg
	}

	guard := proxy.NewRateGuard(s.RateLimit, s.RateBurst)
	guard.TrustForwardedFor = s.TrustForwardedFor

	return proxy.NewHandler(s.Prefix, routes, &proxy.Dispatcher{
		Fetcher:   fetcher,
		Plugins:   store,
		Tokens:    tokens,
		Guard:     guard,
		Resolver:  proxy.Resolver{DevMode: s.DevMode},
		Transport: transport,
	})
}
