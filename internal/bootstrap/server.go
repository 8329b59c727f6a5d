package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/domain/repository"
	"github.com/daffahilmyf/creature-catalog/internal/domain/service"
	"github.com/daffahilmyf/creature-catalog/internal/infra/persistence"
	"github.com/daffahilmyf/creature-catalog/internal/infra/provider"
	"github.com/daffahilmyf/creature-catalog/internal/transport/http/handlers"
	"github.com/daffahilmyf/creature-catalog/internal/transport/http/middleware"
	"github.com/daffahilmyf/creature-catalog/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, cfg config.Config) error {
	start := time.Now()
	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	conn, err := OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Infof("bootstrap: db ready in %s", time.Since(start))

	creatureRepo := persistence.NewCreatureRepository(conn)
	upstream := provider.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	creatureUC := usecase.NewCreature(creatureRepo, upstream, log)

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewEngine(cfg, log, creatureUC, conn, registry)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("bootstrap: server listening on %s (upstream=%s)", cfg.Server.Address, cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server error")
		return err
	}
	return nil
}

// NewEngine assembles the gin engine: middleware chain, creature routes and /metrics.
func NewEngine(cfg config.Config, log *logrus.Logger, creatures service.CreatureService, store repository.Store, registry *prometheus.Registry) *gin.Engine {
	dev := cfg.IsDevelopment()

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(log), middleware.Metrics(), middleware.Recovery(log, dev))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handler := handlers.NewHandler(creatures, store, dev)
	handlers.NewRouter(handler).RegisterRoutes(router, middleware.Idempotency(cfg.Server.RequireIdempotencyKey))
	return router
}

func newRegistry() (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	cs = append(cs, middleware.Collectors()...)
	cs = append(cs, provider.Collectors()...)
	for _, c := range cs {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func buildLogger(cfg config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	switch cfg.Log.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "console", "":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		return nil, errors.New("log format error: supported values are console or json")
	}
	return log, nil
}
