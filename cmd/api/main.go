package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/db"
	httpx "github.com/geocoder89/campushub/internal/http"
	"github.com/geocoder89/campushub/internal/http/handlers"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/geocoder89/campushub/internal/session"
	"github.com/geocoder89/campushub/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("refusing to start", "err", err)
		os.Exit(1)
	}
	if cfg.DeviceTokenSecret == config.DefaultDeviceTokenSecret {
		log.Warn("using the built-in device token secret; set DEVICE_TOKEN_SECRET")
	}

	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELEndpoint, cfg.Env)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Error("slot backend init failed", "backend", cfg.SlotBackend, "err", err)
		os.Exit(1)
	}
	defer closeBackend()

	protected := storage.NewProtectedBackend(backend, storage.ProtectedConfig{
		Timeout:          cfg.StorageTimeout,
		FailureThreshold: cfg.StorageFailureThreshold,
		Cooldown:         cfg.StorageCooldown,
		HalfOpenMaxCalls: 1,
		OnStateChange: func(state string) {
			prom.SetBreakerState(cfg.SlotBackend, state)
			log.Warn("slot circuit breaker", "backend", cfg.SlotBackend, "state", state)
		},
	})
	prom.SetBreakerState(cfg.SlotBackend, protected.State())

	directory := auth.NewSeedDirectory(cfg.DemoPassword, auth.DemoAccounts()...)
	log.Info("demo accounts loaded", "emails", directory.Emails())

	manager := session.NewManager(session.ManagerConfig{
		Backend: storage.Instrument(protected, cfg.SlotBackend, prom),
		SlotKey: cfg.SlotKey,
		IdleTTL: cfg.StoreIdleTTL,
		Logger:  log,
		Template: session.Config{
			Authenticator: directory,
			Providers:     auth.NewRegistry(auth.NewDemoGoogleProvider()),
			Delay:         cfg.SimulatedLatency,
			Metrics:       prom,
		},
	})
	go manager.Run(ctx, time.Minute, prom.SetLiveStores)

	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	go func() {
		t := time.NewTicker(cfg.LoginRateWindow)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				loginLimiter.Prune()
			}
		}
	}()

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Sessions:     handlers.ManagerSessions(manager),
		Tokens:       auth.NewManager(cfg.DeviceTokenSecret, cfg.DeviceTokenTTL()),
		Ping:         manager.Ping,
		LoginLimiter: loginLimiter,
		Prom:         prom,
		Gatherer:     reg,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "slot_backend", cfg.SlotBackend)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")
	stopBackground()

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openBackend builds the durable slot backend named by SLOT_BACKEND.
func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, func(), error) {
	switch cfg.SlotBackend {
	case "memory":
		return storage.NewMemoryBackend(), func() {}, nil

	case "file":
		b, err := storage.NewFileBackend(cfg.SlotDir)
		if err != nil {
			return nil, nil, err
		}
		return b, func() {}, nil

	case "redis":
		client := storage.NewRedisClient(storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		return storage.NewRedisBackend(client, "campushub:"), func() { _ = client.Close() }, nil

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSlotSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return storage.NewPostgresBackend(pool), pool.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown slot backend %q", cfg.SlotBackend)
}
