package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"phishguard/internal/api"
	"phishguard/internal/api/handlers"
	"phishguard/internal/config"
	"phishguard/internal/domain/services"
	"phishguard/internal/domain/services/ai"
	grpcserver "phishguard/internal/grpc/analysis"
	"phishguard/internal/infrastructure/cache"
	"phishguard/internal/infrastructure/database"
	"phishguard/internal/infrastructure/database/repository"
	"phishguard/internal/infrastructure/whois"
	"phishguard/internal/streaming"
	"phishguard/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("PHISHGUARD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction(cfg.App.Name)
	} else {
		log = logger.New(logger.Config{
			Service:    cfg.App.Name,
			Level:      cfg.Logger.Level,
			Format:     cfg.Logger.Format,
			TimeFormat: cfg.Logger.TimeFormat,
		})
	}

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting PhishGuard")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("servers stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	var (
		opts   []services.AnalysisServiceOption
		checks []handlers.ReadinessCheck
		probes []grpcserver.HealthCheck
	)

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer rc.Close()
		redisCache = rc
		opts = append(opts, services.WithResultCache(rc))
		checks = append(checks, handlers.ReadinessCheck{Name: "redis", Check: rc.Ping})
		probes = append(probes, rc.Ping)
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("rate limiting requires Redis, continuing without it")
	}

	if cfg.Database.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		opts = append(opts, services.WithHistory(repository.NewAnalysisRepository(db.Pool())))
		checks = append(checks, handlers.ReadinessCheck{Name: "postgres", Check: db.Ping})
		probes = append(probes, db.Ping)
	}

	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		p, err := streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing with local events only")
		} else {
			natsPublisher = p
			checks = append(checks, handlers.ReadinessCheck{Name: "nats", Check: func(context.Context) error {
				if !p.IsConnected() {
					return streaming.ErrNotConnected
				}
				return nil
			}})
		}
	}

	hub := streaming.NewWebSocketHub(log)
	go hub.Run(ctx)

	bus := streaming.NewEventBus(natsPublisher, hub, log)
	defer bus.Close()
	opts = append(opts, services.WithPublisher(bus))

	if cfg.Analysis.Whois.Enabled {
		opts = append(opts, services.WithDomainEnricher(whois.NewEnricher(cfg.Analysis.Whois.Timeout, log)))
	}

	svc := services.NewAnalysisService(newAnalyzer(cfg.Models, log), services.AnalysisServiceConfig{
		MaxInputLength: cfg.Analysis.MaxInputLength,
		CacheTTL:       cfg.Analysis.CacheTTL,
		HistoryLimit:   cfg.Analysis.HistoryLimit,
	}, log, opts...)

	if cfg.Models.Preload {
		go svc.Preload(ctx)
	}

	h := handlers.NewHandlers(handlers.Dependencies{
		Service: svc,
		Checks:  checks,
		Version: cfg.App.Version,
		Logger:  log,
	})

	routerOpts := []api.RouterOption{api.WithLiveFeed(http.HandlerFunc(hub.ServeWebSocket))}
	if redisCache != nil {
		routerOpts = append(routerOpts, api.WithRateLimitStore(redisCache))
	}
	router := api.NewRouter(*cfg, h, log, routerOpts...)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.HTTPPort)),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	grpcListener, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GRPCPort)))
	if err != nil {
		return fmt.Errorf("failed to create gRPC listener: %w", err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(log)))
	grpcserver.NewServer(svc, log).Register(grpcServer)
	grpcserver.RegisterHealthServer(ctx, grpcServer, 10*time.Second, log, probes...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", grpcListener.Addr().String()).Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			return fmt.Errorf("gRPC server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newAnalyzer wires the URL path and the lazily loaded message models
func newAnalyzer(cfg config.ModelsConfig, log *logger.Logger) *services.Analyzer {
	client := ai.NewInferenceClient(ai.InferenceConfig{
		Endpoint:        cfg.Endpoint,
		APIToken:        cfg.APIToken,
		ClassifierModel: cfg.ClassifierModel,
		SentimentModel:  cfg.SentimentModel,
		Timeout:         cfg.Timeout,
		WaitForModel:    cfg.WaitForModel,
	}, log)
	if !client.Configured() {
		log.Warn().Msg("no model endpoint configured, message analysis will return the fallback verdict")
	}

	messages := services.NewMessageAnalyzer(
		ai.NewLazyZeroShot(client.LoadZeroShot),
		ai.NewLazySentiment(client.LoadSentiment),
		log,
	)
	urls := services.NewURLAnalyzer(services.NewFeatureExtractor(log), log)
	return services.NewAnalyzer(urls, messages, log)
}
