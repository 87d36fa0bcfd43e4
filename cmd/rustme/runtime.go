package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/rustme/internal/cache"
	"github.com/gorewood/rustme/internal/generate"
	"github.com/gorewood/rustme/internal/logfields"
)

// Environment variables read at run time.
const (
	envUserAgent   = "RUSTME_USER_AGENT"
	envHTTPTimeout = "RUSTME_HTTP_TIMEOUT"
)

// setupLogging installs the default slog logger: text on stderr at INFO,
// DEBUG with --verbose, WARN with --quiet.
func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	switch {
	case boolFlag(cmd, "verbose"):
		level = slog.LevelDebug
	case boolFlag(cmd, "quiet"):
		level = slog.LevelWarn
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func userAgent() string {
	if agent := os.Getenv(envUserAgent); agent != "" {
		return agent
	}
	return cache.DefaultUserAgent + "/" + version
}

// httpTimeout parses RUSTME_HTTP_TIMEOUT. Unset or invalid means no timeout.
func httpTimeout(logger *slog.Logger) time.Duration {
	raw := os.Getenv(envHTTPTimeout)
	if raw == "" {
		return 0
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil || timeout < 0 {
		logger.Warn("ignoring invalid "+envHTTPTimeout, slog.String("value", raw), logfields.Error(err))
		return 0
	}
	return timeout
}

// newGenerator builds the Generator for one run with a fresh cache that
// carries the configured User-Agent and HTTP timeout.
func newGenerator(opts ...generate.Option) *generate.Generator {
	logger := slog.Default()
	c := cache.New(
		cache.WithLogger(logger),
		cache.WithUserAgent(userAgent()),
		cache.WithHTTPClient(&http.Client{Timeout: httpTimeout(logger)}),
	)
	base := []generate.Option{generate.WithCache(c), generate.WithLogger(logger)}
	return generate.New(append(base, opts...)...)
}
