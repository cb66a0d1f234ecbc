// Command faultgate-demo runs the resilience layer against simulated flaky
// map data sources and serves health and metrics endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	faultgate "github.com/faultgate/faultgate-go"
	"github.com/faultgate/faultgate-go/config"
	"github.com/faultgate/faultgate-go/contracts"
	"github.com/faultgate/faultgate-go/health"
	"github.com/faultgate/faultgate-go/metrics"
	"github.com/faultgate/faultgate-go/platform"
)

func main() {
	addr := flag.String("addr", ":8090", "Listen address for health and metrics")
	interval := flag.Duration("interval", 2*time.Second, "Delay between simulated loads")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	source := platform.NewRuntimeSource(platform.WithSourceLogger(logger))

	options, err := cfg.Options()
	if err != nil {
		slog.Error("invalid config values", "error", err)
		os.Exit(1)
	}
	options = append(options,
		faultgate.WithLogger(logger),
		faultgate.WithRecorder(collector),
		faultgate.WithFailureSource(source),
		faultgate.WithDegradationListener(contracts.DegradationListenerFunc(func(n contracts.DegradationNotice) {
			logger.Warn("component degraded", "component", n.Component, "operation", n.Operation, "error", n.Err)
		})),
	)

	boundary, err := faultgate.New(options...)
	if err != nil {
		slog.Error("failed to create boundary", "error", err)
		os.Exit(1)
	}

	boundary.RegisterFallbackHandler("mapData", func(ctx context.Context, cause error, ectx contracts.ErrorContext) (interface{}, error) {
		return map[string]interface{}{"cached": true, "features": 0}, nil
	})

	healthRegistry := health.NewRegistry()
	healthRegistry.SetMetadata("service", "faultgate-demo")
	healthRegistry.Register(health.NewBreakerChecker(boundary))
	healthRegistry.Register(health.NewErrorRateChecker(boundary, 10, 50))

	mux := http.NewServeMux()
	mux.Handle("/health", health.NewHandler(healthRegistry, 5*time.Second))
	mux.HandleFunc("/ready", health.ReadinessHandler(healthRegistry))
	mux.HandleFunc("/live", health.LivenessHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		slog.Info("serving health and metrics", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go simulateLoads(ctx, boundary, source, *interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("received signal, shutting down", "signal", sig)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
		os.Exit(1)
	}

	stats := boundary.Statistics()
	slog.Info("final statistics", "total", stats.Total, "byType", stats.ByType)
}

// simulateLoads drives the boundary with failures typical of a map UI:
// flaky marker fetches, malformed GeoJSON, denied geolocation, and the
// occasional panicking background job.
func simulateLoads(ctx context.Context, boundary *faultgate.Boundary, source *platform.RuntimeSource, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		tick++

		switch tick % 4 {
		case 0:
			result, err := boundary.HandleError(ctx, errors.New("network request failed"), contracts.ErrorContext{
				Component: "dataLoader",
				Operation: "loadMarkers",
			}, flakyLoad(0.6))
			if err != nil {
				slog.Warn("marker load failed", "error", err)
			} else {
				slog.Info("marker load recovered", "result", result)
			}
		case 1:
			result, err := boundary.HandleError(ctx, errors.New("invalid GeoJSON in layer response"), contracts.ErrorContext{
				Component: "mapData",
				Operation: "parseLayer",
			}, nil)
			if err != nil {
				slog.Warn("layer parse failed", "error", err)
			} else {
				slog.Info("layer served from fallback", "result", result)
			}
		case 2:
			_, _ = boundary.HandleError(ctx, errors.New("geolocation permission denied"), contracts.ErrorContext{
				Component: "locator",
				Operation: "watchPosition",
			}, nil)
		case 3:
			source.Go(func() error {
				if rand.Float64() < 0.3 {
					panic("background refresh walked off the end of the tile grid")
				}
				return nil
			})
		}
	}
}

// flakyLoad succeeds with the given probability on each attempt
func flakyLoad(successRate float64) faultgate.Operation {
	return func(ctx context.Context) (interface{}, error) {
		if rand.Float64() < successRate {
			return fmt.Sprintf("loaded %d markers", 100+rand.Intn(400)), nil
		}
		return nil, errors.New("network request failed: connection reset")
	}
}
