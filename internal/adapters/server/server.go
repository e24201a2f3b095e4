// Package server composes HTTP API and MCP transports into one process handler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hylla/phaseboard/internal/adapters/server/common"
	"github.com/hylla/phaseboard/internal/adapters/server/httpapi"
	"github.com/hylla/phaseboard/internal/adapters/server/mcpapi"
)

// defaultBindAddress defines the localhost-first serve default.
const defaultBindAddress = "127.0.0.1:8080"

// reservedPaths lists root routes the API and MCP endpoints may not shadow.
var reservedPaths = []string{"/healthz", "/readyz", "/metrics"}

// defaultShutdownTimeout bounds graceful shutdown time once context cancellation starts.
const defaultShutdownTimeout = 5 * time.Second

const (
	readHeaderTimeout = 10 * time.Second
	readinessTimeout  = 2 * time.Second
)

// Config defines serve-mode endpoint configuration.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// Dependencies defines app-facing adapters required by server transports.
type Dependencies struct {
	Boards common.BoardService
	// Metrics is optional; a fresh registry is built when nil.
	Metrics *Metrics
}

// NewHandler composes one root HTTP mux containing health, metrics, REST API, and MCP endpoints.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	normalizedCfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	if deps.Boards == nil {
		return nil, Config{}, fmt.Errorf("board service dependency is required")
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	mcpHandler, err := mcpapi.NewHandler(
		mcpapi.Config{
			ServerName:    normalizedCfg.ServerName,
			ServerVersion: normalizedCfg.ServerVersion,
			EndpointPath:  normalizedCfg.MCPEndpoint,
		},
		metrics.Instrument(transportMCP, deps.Boards),
	)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}
	boards := http.StripPrefix(normalizedCfg.APIEndpoint, httpapi.NewHandler(metrics.Instrument(transportHTTP, deps.Boards)))

	mux := http.NewServeMux()
	mux.Handle("/healthz", statusHandler(normalizedCfg, nil))
	mux.Handle("/readyz", statusHandler(normalizedCfg, deps.Boards))
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle(normalizedCfg.MCPEndpoint, mcpHandler)
	mux.Handle(normalizedCfg.APIEndpoint, boards)
	mux.Handle(normalizedCfg.APIEndpoint+"/", boards)
	return mux, normalizedCfg, nil
}

// Run serves until ctx ends, then drains in-flight requests.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, normalizedCfg, err := NewHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}
	httpServer := &http.Server{
		Addr:              normalizedCfg.HTTPBind,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve %s: %w", normalizedCfg.HTTPBind, err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// normalizeConfig applies defaults and validates endpoint collisions.
func normalizeConfig(cfg Config) (Config, error) {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}

	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, "/api/v1")
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, "/mcp")
	if cfg.APIEndpoint == cfg.MCPEndpoint {
		return Config{}, fmt.Errorf("api and mcp endpoints must differ")
	}
	for _, endpoint := range []string{cfg.APIEndpoint, cfg.MCPEndpoint} {
		if slices.Contains(reservedPaths, endpoint) {
			return Config{}, fmt.Errorf("endpoint %s collides with a reserved path", endpoint)
		}
	}

	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "phaseboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	return cfg, nil
}

// normalizeEndpoint normalizes one endpoint path and applies fallback defaults.
func normalizeEndpoint(path string, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = "/" + strings.Trim(path, "/")
	if path == "/" {
		return fallback
	}
	return path
}

// statusPayload is the body served by the health and readiness probes.
type statusPayload struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

// statusHandler reports liveness, or readiness when probe is set.
// Readiness fails while the board service cannot list projects.
func statusHandler(cfg Config, probe common.ProjectService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := statusPayload{Status: "ok", Server: cfg.ServerName, Version: cfg.ServerVersion}
		code := http.StatusOK
		if probe != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if _, err := probe.ListProjects(ctx); err != nil {
				payload.Status, payload.Error = "unavailable", err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(payload)
	})
}
