package observability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var rpcLatencyBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5}

// RPCCollector holds the per-method request metrics of the prediction
// service and the catalogue size gauges.
type RPCCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec
	GroundTypes  prometheus.Gauge
	Stations     prometheus.Gauge
}

// NewRPCCollector registers the RPC metrics on reg, or on the default
// registry when reg is nil.
func NewRPCCollector(reg prometheus.Registerer) (*RPCCollector, error) {
	reg, gatherer := gathererFor(reg)
	c := &RPCCollector{gatherer: gatherer}
	var err error

	if c.RPCRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lfmf_rpc_requests_total",
		Help: "Handled prediction RPCs by service, method and gRPC code.",
	}, []string{"service", "method", "code"}), "lfmf_rpc_requests_total"); err != nil {
		return nil, err
	}
	if c.RPCDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lfmf_rpc_duration_seconds",
		Help:    "Prediction RPC latency in seconds.",
		Buckets: rpcLatencyBuckets,
	}, []string{"service", "method"}), "lfmf_rpc_duration_seconds"); err != nil {
		return nil, err
	}
	if c.GroundTypes, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lfmf_catalog_ground_types",
		Help: "Ground types in the catalogue.",
	}), "lfmf_catalog_ground_types"); err != nil {
		return nil, err
	}
	if c.Stations, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lfmf_catalog_stations",
		Help: "Stations in the catalogue.",
	}), "lfmf_catalog_stations"); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *RPCCollector) observe(fullMethod string, err error, elapsed time.Duration) {
	service, method := SplitMethod(fullMethod)
	if c.RPCRequests != nil {
		c.RPCRequests.WithLabelValues(service, method, status.Code(err).String()).Inc()
	}
	if c.RPCDurations != nil {
		c.RPCDurations.WithLabelValues(service, method).Observe(elapsed.Seconds())
	}
}

// UnaryServerInterceptor counts each call and observes its latency. A nil
// collector passes calls through.
func (c *RPCCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if c != nil {
			var full string
			if info != nil {
				full = info.FullMethod
			}
			c.observe(full, err, time.Since(start))
		}
		return resp, err
	}
}

// Handler serves the registry the collector was created on.
func (c *RPCCollector) Handler() http.Handler {
	g := c.gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (c *RPCCollector) SetCatalogCounts(groundTypes, stations int) {
	if c == nil {
		return
	}
	if c.GroundTypes != nil {
		c.GroundTypes.Set(float64(groundTypes))
	}
	if c.Stations != nil {
		c.Stations.Set(float64(stations))
	}
}

// SplitMethod turns "/pkg.Service/Method" into ("Service", "Method").
// Anything that does not have exactly one separating slash yields
// ("unknown", "unknown").
func SplitMethod(fullMethod string) (service, method string) {
	svc, m, ok := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	if !ok || strings.Contains(m, "/") {
		return "unknown", "unknown"
	}
	if i := strings.LastIndexByte(svc, '.'); i >= 0 {
		svc = svc[i+1:]
	}
	service, method = svc, m
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}
