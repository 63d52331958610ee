// Package app wires the vkyc server runtime: config, logging, storage, HTTP routes and the sweep worker.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"vkyc/cmd/internal/auth/api"
	"vkyc/cmd/internal/auth/credential"
	"vkyc/cmd/internal/auth/hmacauth"
	"vkyc/cmd/internal/auth/revocation"
	"vkyc/cmd/internal/auth/session"
	"vkyc/cmd/internal/metrics"
	"vkyc/cmd/internal/verification"
	"vkyc/cmd/internal/worker"
	"vkyc/cmd/security/token"
)

// App owns the process-level resources and the HTTP server wiring.
type App struct {
	cfg Config
	log Logger

	dbPool *pgxpool.Pool
	rdb    *redis.Client

	sessions *session.Service
	audit    api.AuditLog
	auth     *api.Handler
	sweeper  *worker.Worker
	handler  http.Handler
}

// stores groups the backend choice made by newStores.
type stores struct {
	clients    hmacauth.ClientStore
	auditors   session.AuditorStore
	records    verification.Store
	revocation revocation.Store
	audit      api.AuditLog
}

// New constructs a fully wired App. On error every resource opened so far is released.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}
	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	st, err := a.newStores(ctx)
	if err != nil {
		return nil, err
	}
	a.audit = st.audit

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewManager(reg)
	if err != nil {
		return nil, err
	}

	key, err := token.SigningKey(cfg.JWTSecret, token.MinSigningKeyBytes)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	codec, err := credential.NewCodec(key, sessCfg.Issuer)
	if err != nil {
		return nil, err
	}

	records, err := verification.NewService(st.records, verification.Config{PendingThreshold: cfg.PendingThreshold}, log)
	if err != nil {
		return nil, err
	}
	a.sessions, err = session.NewService(sessCfg, codec, st.revocation, records, log)
	if err != nil {
		return nil, err
	}
	auditors, err := session.NewAuditorService(sessCfg, codec, st.revocation, st.auditors, log)
	if err != nil {
		return nil, err
	}

	hcfg := hmacauth.DefaultConfig()
	hcfg.Tolerance = cfg.HMACTolerance
	hcfg.Diagnostic = cfg.Development()

	apiCfg, err := api.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	hcfg.MaxBodyBytes = apiCfg.MaxBodyBytes

	authn, err := hmacauth.NewAuthenticator(st.clients, hcfg)
	if err != nil {
		return nil, err
	}

	a.auth, err = api.NewHandler(log, apiCfg, api.Deps{
		Sessions: a.sessions,
		Auditors: auditors,
		Records:  records,
		HMAC:     authn,
	}, api.WithAuditLog(st.audit), api.WithMetrics(m))
	if err != nil {
		return nil, err
	}

	a.sweeper, err = worker.New(log, "session-sweep", cfg.SweepInterval, func(ctx context.Context) error {
		n, err := a.sessions.SweepStale(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		m.SessionsSwept(n)
		return nil
	}, worker.WithObserver(m.WorkerRun))
	if err != nil {
		return nil, err
	}

	a.handler = a.newRouter(reg)
	ok = true
	return a, nil
}

// newStores picks Postgres or in-memory persistence, and Redis or in-process revocation.
func (a *App) newStores(ctx context.Context) (stores, error) {
	var st stores

	if a.cfg.DatabaseURL == "" {
		fx, err := LoadFixtures(a.cfg.FixturesPath)
		if err != nil {
			return stores{}, err
		}
		a.log.Info("db.disabled.inmemory_store", "api_clients", len(fx.APIClients), "auditors", len(fx.Auditors))

		st.clients = hmacauth.NewMemoryClientStore(fx.Clients()...)
		st.auditors = session.NewMemoryAuditorStore(fx.AuditorAccounts()...)
		st.records = verification.NewMemoryStore()
		st.audit = api.NewMemoryAuditLog()
	} else {
		pool, err := NewDBPool(ctx, a.cfg)
		if err != nil {
			return stores{}, err
		}
		a.dbPool = pool
		a.log.Info("db.enabled.postgres_store")

		if st.clients, err = hmacauth.NewPostgresClientStore(pool); err != nil {
			return stores{}, err
		}
		if st.records, err = verification.NewPostgresStore(pool); err != nil {
			return stores{}, err
		}
		st.auditors = session.NewPostgresAuditorStore(pool)
		st.audit = api.NewPostgresAuditLog(pool)
	}

	if a.cfg.RedisURL == "" {
		a.log.Warn("redis.disabled.inmemory_revocation")
		st.revocation = revocation.NewMemoryStore()
		return st, nil
	}

	rdb, err := NewRedisClient(ctx, a.cfg)
	if err != nil {
		return stores{}, err
	}
	a.rdb = rdb
	if st.revocation, err = revocation.NewRedisStore(rdb); err != nil {
		return stores{}, err
	}
	a.log.Info("redis.enabled.revocation_store")
	return st, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the sweep worker and the HTTP server and blocks until ctx is done or the server fails.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.sweeper.Start(ctx)
	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbPool != nil, "redis_enabled", a.rdb != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

// Close stops the worker and releases the pool and Redis client. Safe to call twice.
func (a *App) Close() {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("redis.close.fail", "err", err)
		}
		a.rdb = nil
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
