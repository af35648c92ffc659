package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/fernwood-labs/gatehouse/pkg/authn"
	"github.com/fernwood-labs/gatehouse/pkg/authority"
	"github.com/fernwood-labs/gatehouse/pkg/config"
	"github.com/fernwood-labs/gatehouse/pkg/httputil"
	"github.com/fernwood-labs/gatehouse/pkg/observability"
	"github.com/fernwood-labs/gatehouse/pkg/services"
	"github.com/fernwood-labs/gatehouse/pkg/ticket"
)

func main() {
	bootstrapUser := flag.String("bootstrap-user", "", "Seed user as name:password (for first-run setups)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Logging.Level, os.Stdout)
	metrics := observability.NewMetrics(nil)

	// Service-registry persistence
	var dao services.RegistryDAO
	var db *sql.DB
	switch cfg.Registry.Backend {
	case "postgres":
		db, err = sql.Open("postgres", cfg.Registry.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to open registry database: %v", err)
		}
		if cfg.Registry.AutoMigrate {
			if err := services.Migrate(db); err != nil {
				log.Fatalf("Failed to migrate registry schema: %v", err)
			}
		}
		dao = services.NewSQLRegistryDAO(db)
	default:
		dao = services.NewMemoryRegistryDAO()
	}

	manager, err := services.NewManager(dao, logger)
	if err != nil {
		log.Fatalf("Failed to load service registry: %v", err)
	}
	metrics.RegisteredServices.Set(float64(manager.Count()))

	// Ticket store
	ticketCfg := ticket.DefaultConfig()
	ticketCfg.MaxLiveTickets = cfg.Tickets.MaxLiveTickets
	registry := ticket.NewRegistry(ticketCfg)

	// Credential validation. Production deployments replace this with their
	// own validator; the static table covers first-run setups.
	validator := authn.NewStaticValidator()
	if *bootstrapUser != "" {
		name, password, ok := splitUser(*bootstrapUser)
		if !ok {
			log.Fatalf("Invalid -bootstrap-user value, want name:password")
		}
		validator.AddUser(name, password, nil)
		logger.WithField("user", name).Warn("bootstrap user enabled")
	}

	auth := authority.New(authority.Config{
		Tickets:        registry,
		Services:       manager,
		Validator:      validator,
		Logger:         logger,
		Metrics:        metrics,
		GrantingPolicy: ticket.NewSlidingWindowPolicy(cfg.Tickets.GrantingMaxIdle, cfg.Tickets.GrantingMaxLifetime),
		ServicePolicy:  ticket.NewMaxLifetimePolicy(cfg.Tickets.ServiceLifetime),
	})

	// Periodic reclamation of dead tickets. Purely an optimization; every
	// read path re-checks expiry on its own.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every "+cfg.Tickets.SweepInterval.String(), func() {
		removed := registry.ExpirePass()
		metrics.TicketsReclaimedTotal.Add(float64(removed))
		metrics.LiveTickets.Set(float64(registry.Count()))
		if removed > 0 {
			logger.WithField("removed", removed).Debug("ticket sweep completed")
		}
	}); err != nil {
		log.Fatalf("Failed to schedule ticket sweep: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// API server
	router := mux.NewRouter()
	authority.NewHandlers(auth).RegisterRoutes(router)
	services.NewHandlers(manager).RegisterRoutes(router)

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.MetricsMiddleware(metrics),
	)(router)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Ops server: health probes and metrics on a separate port
	opsMux := http.NewServeMux()
	opsMux.Handle("/healthz", observability.NewHealthChecker(db).Handler())
	opsMux.Handle("/metrics", metrics.Handler())
	opsServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.OpsPort,
		Handler: opsMux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("gatehouse API listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", opsServer.Addr).Info("ops endpoints listening")
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		apiServer.Shutdown(shutdownCtx)
		opsServer.Shutdown(shutdownCtx)
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func splitUser(s string) (name, password string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:], i > 0 && i < len(s)-1
		}
	}
	return "", "", false
}
