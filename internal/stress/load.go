// Package stress fires concurrent requests at a running dashboard proxy and tallies the responses
package stress

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	forwardedUserHeader = "X-Forwarded-User"
	requestIDHeader     = "X-Request-Id"
)

// LoadTestConfig describes a load test run
type LoadTestConfig struct {
	// URL is requested by every worker, i.e. http://localhost:8080/api/service/pipelines/proj1/dspa/apis/v2beta1/healthz
	URL string
	// ReadyURL is polled before the test starts, if set
	ReadyURL         string
	ReadinessTimeout time.Duration
	Requests         int
	Concurrency      int
	// Callers spreads requests over that many distinct forwarded users
	Callers int
	Header  http.Header
	Client  *http.Client
}

// Report counts responses by status code
type Report struct {
	mu          sync.Mutex
	StatusCodes map[int]int
	Errors      int
	Duration    time.Duration
}

func (r *Report) add(code int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Errors++
		return
	}
	r.StatusCodes[code]++
}

// String renders the report as "200=10 429=5 errors=0"
func (r *Report) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]int, 0, len(r.StatusCodes))
	for code := range r.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	var b strings.Builder
	for _, code := range codes {
		fmt.Fprintf(&b, "%d=%d ", code, r.StatusCodes[code])
	}
	fmt.Fprintf(&b, "errors=%d", r.Errors)
	return b.String()
}

// LoadTest runs a load test
type LoadTest struct {
	LoadTestConfig
}

// Run waits for readiness and then issues all requests
func (l *LoadTest) Run(ctx context.Context) (*Report, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	if l.ReadyURL != "" {
		readyCtx, cancel := context.WithTimeout(ctx, l.ReadinessTimeout)
		err := AwaitReady(readyCtx, client, l.ReadyURL)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("await ready: %w", err)
		}
	}

	report := &Report{StatusCodes: make(map[int]int)}
	start := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(l.Concurrency, 1))
	for i := 0; i < l.Requests; i++ {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			code, err := l.do(ctx, client, i)
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Int("request", i).Msg("request failed")
			}
			report.add(code, err)
			return nil
		})
	}
	err := eg.Wait()
	report.Duration = time.Since(start)

	zerolog.Ctx(ctx).Info().
		Str("url", l.URL).
		Int("requests", l.Requests).
		Dur("duration", report.Duration).
		Str("responses", report.String()).
		Msg("load test done")
	return report, err
}

func (l *LoadTest) do(ctx context.Context, client *http.Client, i int) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return 0, err
	}
	for k, v := range l.Header {
		req.Header[k] = v
	}
	if l.Callers > 0 {
		req.Header.Set(forwardedUserHeader, fmt.Sprintf("stress-%d", i%l.Callers))
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
