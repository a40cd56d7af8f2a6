package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

// RequestIDHeader is logged with every request, generated when absent
const RequestIDHeader = "X-Request-Id"

// Dispatcher resolves the upstream of each request on a registered route and forwards it.
//
// Resolution happens in a pre-dispatch stage that runs before any byte is forwarded:
// rate check, gating resource fetch, readiness evaluation, upstream resolution and token
// attachment. The stage either yields a decision or a structured error; the request is only
// proxied on a decision.
type Dispatcher struct {
	Fetcher  Fetcher
	Plugins  PluginSource
	Tokens   TokenSource
	Guard    *RateGuard
	Resolver Resolver
	// Transport performs the upstream calls, http.DefaultTransport if nil
	Transport http.RoundTripper

	once  sync.Once
	proxy *httputil.ReverseProxy
}

// decision is the outcome of the pre-dispatch stage, carried on the request context
type decision struct {
	target *model.UpstreamTarget
	token  string
	rest   string
	failed bool
}

type decisionKey struct{}

func (d *Dispatcher) init() {
	d.proxy = &httputil.ReverseProxy{
		Rewrite:       d.rewrite,
		Transport:     d.Transport,
		ErrorHandler:  d.upstreamError,
		FlushInterval: -1,
	}
}

// Handler serves a single route
func (d *Dispatcher) Handler(route model.Route) http.Handler {
	d.once.Do(d.init)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context()).WithValues(
			"route", route.Name,
			"request", requestID(r),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := log.IntoContext(r.Context(), logger)

		start := time.Now()
		dec, err := d.preDispatch(ctx, r, route)
		preDispatchSeconds.WithLabelValues(route.Name).Observe(time.Since(start).Seconds())
		if err != nil {
			e := asError(err)
			requestsTotal.WithLabelValues(route.Name, e.Outcome).Inc()
			logger.V(1).Info("request rejected", "status", e.StatusCode, "reason", e.Message)
			writeError(ctx, w, e)
			return
		}

		logger.Info("proxy request", "upstream", dec.target.String())
		d.proxy.ServeHTTP(w, r.WithContext(context.WithValue(ctx, decisionKey{}, dec)))

		outcome := outcomeForwarded
		if dec.failed {
			outcome = outcomeUpstreamError
		}
		requestsTotal.WithLabelValues(route.Name, outcome).Inc()
	})
}

func (d *Dispatcher) preDispatch(ctx context.Context, r *http.Request, route model.Route) (*decision, error) {
	if d.Guard.Exceeded(r) {
		return nil, RateLimitedError()
	}

	dec := &decision{rest: chi.URLParam(r, "*")}
	var (
		authorize bool
		err       error
	)
	switch route.Kind {
	case model.ServiceRouteKind:
		dec.target, err = d.resolveService(ctx, r, route.Service)
		authorize = route.Service.Authorize()
	case model.PluginRouteKind:
		var p model.Plugin
		p, dec.target, err = d.resolvePlugin(r)
		authorize = p.Authorize
	default:
		err = fmt.Errorf("unsupported route kind %s", route.Kind)
	}
	if err != nil {
		return nil, err
	}
	if err := dec.target.Validate(); err != nil {
		return nil, fmt.Errorf("route %s: %w", route.Name, err)
	}

	if authorize {
		if d.Tokens == nil {
			return nil, AuthError(ErrNoAccessToken)
		}
		token, err := d.Tokens.Token(r)
		if err != nil {
			return nil, AuthError(err)
		}
		dec.token = token
	}
	return dec, nil
}

func (d *Dispatcher) resolveService(ctx context.Context, r *http.Request, svc *model.ServiceRoute) (*model.UpstreamTarget, error) {
	name := types.NamespacedName{
		Namespace: chi.URLParam(r, "namespace"),
		Name:      chi.URLParam(r, "name"),
	}
	res, err := d.Fetcher.Fetch(ctx, svc.Model, name)
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			e = NotFoundError(svc.Model.Kind, name.Name, err)
		}
		return nil, e
	}
	return d.Resolver.ResolveService(svc, res)
}

func (d *Dispatcher) resolvePlugin(r *http.Request) (model.Plugin, *model.UpstreamTarget, error) {
	alias := chi.URLParam(r, "plugin")
	if d.Plugins == nil {
		return model.Plugin{}, nil, PluginUnavailableError(alias)
	}
	p, ok := d.Plugins.LookupPlugin(alias)
	if !ok {
		return p, nil, PluginUnavailableError(alias)
	}
	target, err := d.Resolver.ResolvePlugin(p)
	return p, target, err
}

func (d *Dispatcher) rewrite(pr *httputil.ProxyRequest) {
	dec := pr.In.Context().Value(decisionKey{}).(*decision)
	u := dec.target.URL()

	pr.Out.URL.Scheme = u.Scheme
	pr.Out.URL.User = u.User
	pr.Out.URL.Host = u.Host
	pr.Out.URL.RawQuery = joinQuery(u.RawQuery, pr.In.URL.RawQuery)
	p := joinPath(u.Path, dec.rest)
	if pr.In.URL.RawPath != "" {
		pr.Out.URL.RawPath = p
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
	} else {
		pr.Out.URL.RawPath = ""
	}
	pr.Out.URL.Path = p
	pr.Out.Host = ""

	switch {
	case dec.token != "":
		attachToken(pr.Out.Header, dec.token)
	case u.User != nil && pr.Out.Header.Get("Authorization") == "":
		// the transport does not turn URL credentials into a header
		password, _ := u.User.Password()
		pr.Out.SetBasicAuth(u.User.Username(), password)
	}
}

func (d *Dispatcher) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if dec, ok := ctx.Value(decisionKey{}).(*decision); ok {
		dec.failed = true
	}
	if errors.Is(err, context.Canceled) {
		log.FromContext(ctx).V(1).Info("caller went away, upstream request aborted")
		return
	}
	log.FromContext(ctx).Error(err, "upstream request failed")
	writeError(ctx, w, UpstreamError(err))
}

func joinPath(base, rest string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rest, "/")
}

// joinQuery appends the inbound query to the base query of the target
func joinQuery(base, in string) string {
	if base == "" || in == "" {
		return base + in
	}
	return base + "&" + in
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}
