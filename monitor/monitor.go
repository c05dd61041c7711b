// monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wfunc/dungeonfloor/logger"
)

type Metrics struct {
	FloorsGenerated   prometheus.Counter
	GenerationLatency prometheus.Histogram
	RoomsByRole       *prometheus.GaugeVec
	RoleOverRequests  prometheus.Counter
	RoomTransitions   prometheus.Counter
	CurrentFloor      prometheus.Gauge
	Spectators        prometheus.Gauge
	MessagesReceived  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FloorsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "floors_generated_total",
			Help:      "Number of floors generated",
		}),
		GenerationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "floor_generation_seconds",
			Help:      "Floor generation latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		RoomsByRole: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "floor_rooms",
			Help:      "Rooms on the current floor by role",
		}, []string{"role"}),
		RoleOverRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_over_requests_total",
			Help:      "Floors where a role request exceeded the eligible rooms",
		}),
		RoomTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_transitions_total",
			Help:      "Number of times the player changed rooms",
		}),
		CurrentFloor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_floor",
			Help:      "Index of the floor being played",
		}),
		Spectators: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "spectators",
			Help:      "Number of connected websocket spectators",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of messages received",
		}),
	}

	reg.MustRegister(
		m.FloorsGenerated,
		m.GenerationLatency,
		m.RoomsByRole,
		m.RoleOverRequests,
		m.RoomTransitions,
		m.CurrentFloor,
		m.Spectators,
		m.MessagesReceived,
	)

	return m
}

type Monitor struct {
	metrics      *Metrics
	gatherer     prometheus.Gatherer
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
	server       *http.Server
}

// NewMonitor registers its metrics with the default prometheus registry.
func NewMonitor(namespace string) *Monitor {
	return NewMonitorWithRegistry(namespace, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func NewMonitorWithRegistry(namespace string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		gatherer:  gatherer,
		startTime: time.Now(),
	}
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Handler serves /metrics and /debug/vars.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	return mux
}

var publishOnce sync.Once

func (m *Monitor) StartServer(addr string) {
	// 添加expvar指标
	publishOnce.Do(func() {
		expvar.Publish("uptime", expvar.Func(func() interface{} {
			return time.Since(m.startTime).Seconds()
		}))

		expvar.Publish("requests", expvar.Func(func() interface{} {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			return m.requestCount
		}))
	})

	m.server = &http.Server{Addr: addr, Handler: m.Handler()}
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("Metrics server stopped: %v", err)
		}
	}()
	logger.Log.Infof("Metrics server listening on %s", addr)
}

func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// ObserveFloor records a finished generation of floor index.
func (m *Monitor) ObserveFloor(index int, took time.Duration, roles map[string]int, overRequest bool) {
	m.metrics.FloorsGenerated.Inc()
	m.metrics.GenerationLatency.Observe(took.Seconds())
	m.metrics.CurrentFloor.Set(float64(index))
	m.metrics.RoomsByRole.Reset()
	for role, n := range roles {
		m.metrics.RoomsByRole.WithLabelValues(role).Set(float64(n))
	}
	if overRequest {
		m.metrics.RoleOverRequests.Inc()
	}
}

func (m *Monitor) IncRoomTransitions() {
	m.metrics.RoomTransitions.Inc()
}

func (m *Monitor) IncSpectators() {
	m.metrics.Spectators.Inc()
}

func (m *Monitor) DecSpectators() {
	m.metrics.Spectators.Dec()
}

func (m *Monitor) IncMessagesReceived() {
	m.metrics.MessagesReceived.Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}
