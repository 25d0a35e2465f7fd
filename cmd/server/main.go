package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	kychandler "kycreview/internal/kyc/handler"
	"kycreview/internal/kyc/querycache"
	"kycreview/internal/kyc/remote"
	"kycreview/internal/kyc/review"
	kycstore "kycreview/internal/kyc/store"
	"kycreview/internal/platform/config"
	"kycreview/internal/platform/httpserver"
	"kycreview/internal/platform/logger"
	"kycreview/internal/platform/metrics"
	redisclient "kycreview/internal/platform/redis"
	"kycreview/pkg/platform/circuit"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	sessionSweepEvery  = time.Minute
	shutdownTimeout    = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Review logic lives in internal/kyc.
func main() {
	config.LoadEnv()
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Format, cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Error("kycreview stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	consoleMetrics := metrics.New(reg)

	client := newRemoteClient(cfg.Remote, reg, log)

	cacheOpts := []querycache.Option{
		querycache.WithMetrics(querycache.NewMetrics(reg)),
		querycache.WithLogger(log),
		querycache.WithMaxAge(cfg.Cache.MaxAge),
	}
	var bus *querycache.RedisBus
	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
		bus = querycache.NewRedisBus(rc.Client, cfg.Redis.Channel, log)
		cacheOpts = append(cacheOpts, querycache.WithPublisher(bus))
	}
	cache := querycache.New(cacheOpts...)

	trail, err := newAuditTrail(ctx, cfg.Audit, reg, log)
	if err != nil {
		return err
	}
	defer trail.Close()

	records, err := kycstore.New(client, cache,
		kycstore.WithLogger(log),
		kycstore.WithAuditPublisher(trail.publisher),
	)
	if err != nil {
		return err
	}

	sessions := review.NewSessions(records,
		review.WithSessionListPath(cfg.Server.ListPath),
		review.WithSessionLogger(log),
		review.WithSessionGauge(consoleMetrics.SetReviewSessions),
	)
	defer sessions.CloseAll()

	router := chi.NewRouter()
	router.Get("/healthz", healthHandler(rc))
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	kychandler.New(records, sessions, trail.publisher, log,
		kychandler.WithAdminToken(cfg.Server.AdminToken),
		kychandler.WithAdminTokenHash(cfg.Server.AdminTokenHash),
		kychandler.WithMetrics(consoleMetrics),
		kychandler.WithListPath(cfg.Server.ListPath),
		kychandler.WithRequestTimeout(cfg.Server.RequestTimeout),
	).Register(router)

	if cfg.Server.AdminToken == "" && cfg.Server.AdminTokenHash == "" {
		log.Warn("ADMIN_TOKEN and ADMIN_TOKEN_HASH are empty; console routes are open")
	}

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting kycreview", "addr", cfg.Server.Addr, "remote", cfg.Remote.BaseURL, "audit_sink", cfg.Audit.Sink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sweepSessions(gctx, sessions, log)
		return nil
	})
	if bus != nil {
		g.Go(func() error {
			// Without the bus the cache still serves this process.
			if err := bus.Run(gctx, cache.ApplyRemote); err != nil {
				log.Error("cache invalidation bus stopped", "error", err)
			}
			return nil
		})
	}
	if trail.projector != nil {
		g.Go(func() error {
			return trail.projector.Run(gctx)
		})
	}
	return g.Wait()
}

func newRemoteClient(cfg config.Remote, reg prometheus.Registerer, log *slog.Logger) *remote.Client {
	var tokens remote.TokenSource
	if cfg.StaticToken != "" {
		tokens = remote.StaticToken(cfg.StaticToken)
	} else {
		tokens = remote.NewJWTSource(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	}
	return remote.New(cfg.BaseURL,
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		remote.WithTokenSource(tokens),
		remote.WithBreaker(circuit.New("kyc-remote",
			circuit.WithFailureThreshold(cfg.BreakerFailures),
			circuit.WithCooldown(cfg.BreakerCooldown),
		)),
		remote.WithMetrics(remote.NewMetrics(reg)),
		remote.WithLogger(log),
	)
}

// sweepSessions unmounts detail views abandoned without a close.
func sweepSessions(ctx context.Context, sessions *review.Sessions, log *slog.Logger) {
	ticker := time.NewTicker(sessionSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Expire(sessionIdleTimeout); n > 0 {
				log.Info("expired idle review sessions", "count", n)
			}
		}
	}
}

func healthHandler(rc *redisclient.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rc != nil {
			if err := rc.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
