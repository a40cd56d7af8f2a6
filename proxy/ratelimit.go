package proxy

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ForwardedUserHeader carries the authenticated user name set by the oauth proxy
	ForwardedUserHeader = "X-Forwarded-User"

	defaultLimiterIdleTTL = 10 * time.Minute
)

// RateGuard limits the request rate of each caller with a token bucket per caller.
// It is safe for concurrent use.
type RateGuard struct {
	// TrustForwardedFor keys anonymous callers by X-Forwarded-For instead of the connection address.
	// Only enable it behind a proxy that overwrites the header.
	TrustForwardedFor bool

	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	callers   map[string]*callerLimiter
	lastSweep time.Time
}

type callerLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

// NewRateGuard allows perSecond requests per caller with the given burst.
// A non positive rate disables limiting.
func NewRateGuard(perSecond float64, burst int) *RateGuard {
	if burst < 1 {
		burst = 1
	}
	return &RateGuard{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: defaultLimiterIdleTTL,
		now:     time.Now,
		callers: make(map[string]*callerLimiter),
	}
}

// Exceeded consumes one token for the caller and reports whether none was available
func (g *RateGuard) Exceeded(r *http.Request) bool {
	if g == nil || g.limit <= 0 {
		return false
	}

	now := g.now()
	key := CallerKey(r, g.TrustForwardedFor)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.sweep(now)
	c, ok := g.callers[key]
	if !ok {
		c = &callerLimiter{Limiter: rate.NewLimiter(g.limit, g.burst)}
		g.callers[key] = c
	}
	c.lastSeen = now
	return !c.AllowN(now, 1)
}

// sweep drops limiters of callers that were idle for longer than idleTTL
func (g *RateGuard) sweep(now time.Time) {
	if now.Sub(g.lastSweep) < g.idleTTL {
		return
	}
	g.lastSweep = now
	for key, c := range g.callers {
		if now.Sub(c.lastSeen) >= g.idleTTL {
			delete(g.callers, key)
		}
	}
}

// CallerKey identifies the caller: the forwarded user name if present, else the client address.
// X-Forwarded-For is only consulted when trustForwardedFor is set.
func CallerKey(r *http.Request, trustForwardedFor bool) string {
	if user := r.Header.Get(ForwardedUserHeader); user != "" {
		return "user:" + user
	}
	if fwd := r.Header.Get("X-Forwarded-For"); trustForwardedFor && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return "ip:" + strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
