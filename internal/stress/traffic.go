package stress

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// AwaitReady waits for the proxy to answer a 2xx status to the given URL, i.e. its /readyz endpoint
func AwaitReady(ctx context.Context, client *http.Client, url string) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0
	bo.MaxInterval = 5 * time.Second

	return backoff.RetryNotify(func() error {
		return tryRequest(ctx, client, url)
	}, backoff.WithContext(bo, ctx), func(err error, _ time.Duration) {
		zerolog.Ctx(ctx).Info().Err(err).Str("url", url).Msg("waiting for proxy")
	})
}

func tryRequest(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("new request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
