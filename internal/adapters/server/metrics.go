package server

import (
	"context"
	"net/http"

	"github.com/hylla/phaseboard/internal/adapters/server/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transport label values.
const (
	transportHTTP = "http"
	transportMCP  = "mcp"
)

// Metrics owns the serve-mode prometheus registry and board counters.
type Metrics struct {
	registry       *prometheus.Registry
	boardRequests  *prometheus.CounterVec
	reorderCommits *prometheus.CounterVec
}

// NewMetrics builds one isolated registry with process and Go collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		boardRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phaseboard_board_requests_total",
				Help: "Total number of board page reads by transport",
			},
			[]string{"transport"},
		),
		reorderCommits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phaseboard_reorder_commits_total",
				Help: "Total number of persisted stage reorders by transport and stage",
			},
			[]string{"transport", "stage"},
		),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument wraps svc so calls made through one transport are counted.
func (m *Metrics) Instrument(transport string, svc common.BoardService) common.BoardService {
	return &instrumentedService{next: svc, transport: transport, metrics: m}
}

// instrumentedService counts board reads and successful reorders.
type instrumentedService struct {
	next      common.BoardService
	transport string
	metrics   *Metrics
}

// ListProjects delegates without counting.
func (s *instrumentedService) ListProjects(ctx context.Context) ([]common.Project, error) {
	return s.next.ListProjects(ctx)
}

// Board counts every board read, failed or not.
func (s *instrumentedService) Board(ctx context.Context, req common.BoardRequest) (common.BoardPage, error) {
	s.metrics.boardRequests.WithLabelValues(s.transport).Inc()
	return s.next.Board(ctx, req)
}

// ReorderStage counts persisted reorders.
func (s *instrumentedService) ReorderStage(ctx context.Context, req common.ReorderRequest) (common.ReorderResult, error) {
	out, err := s.next.ReorderStage(ctx, req)
	if err != nil {
		return out, err
	}
	s.metrics.reorderCommits.WithLabelValues(s.transport, out.Stage).Inc()
	return out, nil
}
