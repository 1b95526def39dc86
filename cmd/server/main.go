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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"farmgate/internal/audit"
	auditHandler "farmgate/internal/audit/handler"
	"farmgate/internal/catalog"
	"farmgate/internal/identity"
	"farmgate/internal/links"
	"farmgate/internal/platform/config"
	"farmgate/internal/platform/database"
	"farmgate/internal/platform/health"
	"farmgate/internal/platform/kafka/producer"
	"farmgate/internal/platform/logger"
	"farmgate/internal/platform/metrics"
	"farmgate/internal/policy"
	sitesHandler "farmgate/internal/sites/handler"
	sitesService "farmgate/internal/sites/service"
	"farmgate/internal/summary"
	metadataMW "farmgate/pkg/platform/middleware/metadata"
	requestMW "farmgate/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing farmgate",
		"addr", cfg.Addr,
		"audit_sink", cfg.AuditSink,
		"sites_root", cfg.SitesRoot,
	)

	pool, err := database.New(database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxOpenConns / 5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	auditStore, cleanup, err := buildAuditStore(cfg, pool, log)
	if err != nil {
		log.Error("audit sink init failed", "sink", cfg.AuditSink, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	lb, err := links.NewBuilder(links.Config{
		FileBrowserURL: cfg.FileBrowserURL,
		AdminerURL:     cfg.AdminerURL,
		DBHost:         cfg.DBLinkHost,
		SFTPUser:       cfg.SFTPUser,
		SFTPPort:       cfg.SFTPPort,
	})
	if err != nil {
		log.Error("link builder init failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	cat := catalog.New(catalog.NewPostgresLister(pool.DB()), log)
	agg := summary.New(
		summary.NewPostgresStore(pool.DB()),
		summary.NewDiskUsageProber(cfg.SizeProbeLimit),
		cfg.SitesRoot,
		log,
		summary.WithConcurrency(cfg.SummaryConcurrency),
	)
	sites := sitesService.New(cat, policy.New(), agg, lb, cfg.SitesRoot, log)
	auditor := audit.NewLogger(auditStore, log)

	resolver := buildResolver(cfg)

	healthHandler := health.New()
	healthHandler.RegisterCheck("database", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Health(ctx)
	})

	router := chi.NewRouter()
	router.Use(requestMW.Recovery(log))
	router.Use(requestMW.RequestID)
	router.Use(requestMW.Logger(log))
	router.Use(requestMW.Timeout(cfg.RequestTimeout))
	router.Use(metadataMW.NewMiddleware(&metadataMW.Config{TrustedProxies: cfg.TrustedProxies}).Handler)

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(identity.RequireIdentity(resolver, log, m))
		sitesHandler.New(sites, log, m).Register(r)
		auditHandler.New(auditor, log, m).Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// buildResolver assembles the identity chain: trusted proxy headers first,
// then a bearer-token path. With a signing key configured, bearer tokens are
// verified locally; otherwise they are introspected against the identity
// provider.
func buildResolver(cfg config.Server) identity.Resolver {
	var bearer identity.Resolver
	if cfg.JWTSigningKey != "" {
		bearer = identity.NewJWTResolver(cfg.JWTSigningKey)
	} else {
		bearer = identity.NewIntrospectionClient(cfg.IdentityProviderURL, cfg.IntrospectionTimeout)
	}
	return identity.NewChainResolver(identity.NewHeaderResolver(), bearer)
}

// buildAuditStore selects the audit sink. When Kafka brokers are configured
// alongside a non-Kafka primary sink, records are additionally mirrored to the
// topic asynchronously. The returned cleanup flushes and closes whatever the
// sink holds open.
func buildAuditStore(cfg config.Server, pool *database.Pool, log *slog.Logger) (audit.Store, func(), error) {
	var (
		primary audit.Store
		cleanup func()
	)

	switch cfg.AuditSink {
	case "postgres":
		primary = audit.NewPostgresStore(pool.DB())
		cleanup = func() {}
	case "kafka":
		p, err := producer.New(producer.Config{
			Brokers:         cfg.AuditKafkaBrokers,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return audit.NewKafkaStore(p, cfg.AuditKafkaTopic), func() { p.Close() }, nil
	default:
		s, err := audit.NewFileStore(cfg.AuditLogPath)
		if err != nil {
			return nil, nil, err
		}
		primary = s
		cleanup = func() { s.Close() }
	}

	if cfg.AuditKafkaBrokers == "" {
		return primary, cleanup, nil
	}

	p, err := producer.New(producer.Config{
		Brokers:         cfg.AuditKafkaBrokers,
		DeliveryTimeout: 10 * time.Second,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	mirror := audit.NewMirror(audit.NewKafkaStore(p, cfg.AuditKafkaTopic), 256, log)

	inner := cleanup
	return audit.NewMirroredStore(primary, mirror), func() {
		mirror.Close()
		p.Close()
		inner()
	}, nil
}
