// Package app wires the configuration into a running distribution service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/symposia/revdist/api/distribute"
	"github.com/symposia/revdist/config"
	"github.com/symposia/revdist/core/distlog"
	"github.com/symposia/revdist/core/engine"
	coremetrics "github.com/symposia/revdist/core/metrics"
	"github.com/symposia/revdist/core/store"
	"github.com/symposia/revdist/infra/logger"
	"github.com/symposia/revdist/infra/metrics"
	"github.com/symposia/revdist/infra/notify"
	"github.com/symposia/revdist/internal/eventbus"
)

// Service owns the engine and its supporting infrastructure.
type Service struct {
	Engine *engine.Engine
	Store  store.Store
	Logs   distlog.LogStore

	bus      eventbus.EventBus
	sink     coremetrics.MetricsSink
	log      logger.Logger
	apiAddr  string
	apiToken string
	promAddr string

	mu       sync.Mutex
	eventMus map[string]*sync.Mutex
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := newStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	logs, err := newLogStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("log store: %w", err)
	}
	sink, err := newSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	eng, err := engine.New(st, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	bus := eventbus.New()
	eng.SetLogStore(logs)
	eng.SetMetricsSink(sink)
	eng.SetEventBus(bus)

	notifier, err := newNotifier(cfg.Notifier)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}
	eng.SetNotifier(notifier)

	return &Service{
		Engine:   eng,
		Store:    st,
		Logs:     logs,
		bus:      bus,
		sink:     sink,
		log:      logg,
		apiAddr:  cfg.API.Addr,
		apiToken: cfg.API.AuthToken,
		promAddr: cfg.Metrics.PrometheusAddr,
		eventMus: make(map[string]*sync.Mutex),
	}, nil
}

func newStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStore(cfg.Path)
	}
}

func newLogStore(cfg config.LoggingConfig) (distlog.LogStore, error) {
	switch cfg.Backend {
	case "sqlite":
		return distlog.NewSQLiteStore(cfg.Path)
	default:
		return distlog.NewJSONLStore(cfg.Path)
	}
}

func newSink(cfg config.MetricsConfig) (coremetrics.MetricsSink, error) {
	var sinks []coremetrics.MetricsSink
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "prometheus":
			sink, err := metrics.NewPromSink()
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, sink)
		case "influx":
			sinks = append(sinks, metrics.NewInfluxSinkWithFallback(sc.URL, sc.Token, sc.Org, sc.Bucket))
		case "nop":
			sinks = append(sinks, coremetrics.NopSink{})
		}
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

func newNotifier(cfg config.NotifierConfig) (engine.Notifier, error) {
	if cfg.Type == "mqtt" {
		return notify.NewMQTTNotifier(cfg.MQTT)
	}
	return notify.NewLogNotifier(), nil
}

// Distribute runs one distribution, serializing runs per event so that two
// concurrent requests for the same event never interleave.
func (s *Service) Distribute(ctx context.Context, req engine.Request) (engine.Summary, error) {
	mu := s.eventMu(req.EventID)
	mu.Lock()
	defer mu.Unlock()
	return s.Engine.Distribute(ctx, req)
}

func (s *Service) eventMu(eventID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.eventMus[eventID]
	if !ok {
		mu = &sync.Mutex{}
		s.eventMus[eventID] = mu
	}
	return mu
}

// Run starts the event collector and the HTTP servers, blocking until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	mux := http.NewServeMux()
	mux.Handle("/api/distribute", distribute.NewDistributeHandler(s, logger.New("api")))
	mux.Handle("/api/distribution/logs", distribute.NewLogHandler(s.Logs, s.apiToken))

	srv := &http.Server{Addr: s.apiAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()

	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	s.log.Infof("api listening on %s", s.apiAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if err := s.Engine.Close(); err != nil {
		return err
	}
	return s.Store.Close()
}
