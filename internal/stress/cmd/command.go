// Package cmd provides the stress test command
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opendatahub-io/dashboard-proxy/internal/stress"
)

// Command returns the stress test command
func Command() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   "stress-test",
		Short: "fire concurrent requests at a running dashboard proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger()
			return run(withInterruptSignal(context.Background()))
		},
	}, nil
}

func setupLogger() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.DefaultContextLogger = &logger
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func testConfigFromEnv() (*stress.LoadTestConfig, error) {
	url := os.Getenv("STRESS_URL")
	if url == "" {
		return nil, fmt.Errorf("STRESS_URL environment variable not set")
	}

	requests, err := intFromEnv("STRESS_REQUESTS", 100)
	if err != nil {
		return nil, err
	}
	concurrency, err := intFromEnv("STRESS_CONCURRENCY", 10)
	if err != nil {
		return nil, err
	}
	callers, err := intFromEnv("STRESS_CALLERS", 1)
	if err != nil {
		return nil, err
	}

	readinessTimeout := time.Minute
	if v := os.Getenv("READINESS_TIMEOUT"); v != "" {
		if readinessTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("failed to parse READINESS_TIMEOUT: %w", err)
		}
	}

	header := make(http.Header)
	if token := os.Getenv("STRESS_ACCESS_TOKEN"); token != "" {
		header.Set("X-Forwarded-Access-Token", token)
	}

	return &stress.LoadTestConfig{
		URL:              url,
		ReadyURL:         os.Getenv("STRESS_READY_URL"),
		ReadinessTimeout: readinessTimeout,
		Requests:         requests,
		Concurrency:      concurrency,
		Callers:          callers,
		Header:           header,
		Client:           &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func run(ctx context.Context) error {
	cfg, err := testConfigFromEnv()
	if err != nil {
		return err
	}

	lt := stress.LoadTest{LoadTestConfig: *cfg}
	if _, err = lt.Run(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("error running stress test...")
	}
	return err
}

func withInterruptSignal(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ch := make(chan os.Signal, 2)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()
	return ctx
}
