package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"lexseal/internal/auditvault"
	auditvaulthandler "lexseal/internal/auditvault/handler"
	jwttoken "lexseal/internal/jwt_token"
	"lexseal/internal/ledger"
	"lexseal/internal/ledger/cache"
	"lexseal/internal/ledger/events"
	ledgermetrics "lexseal/internal/ledger/metrics"
	leveldbstore "lexseal/internal/ledger/store/leveldb"
	memorystore "lexseal/internal/ledger/store/memory"
	postgresstore "lexseal/internal/ledger/store/postgres"
	"lexseal/internal/platform/config"
	"lexseal/internal/platform/httpserver"
	"lexseal/internal/platform/logger"
	"lexseal/internal/platform/metrics"
	platformredis "lexseal/internal/platform/redis"
	"lexseal/internal/release"
	releasehandler "lexseal/internal/release/handler"
	"lexseal/internal/run"
	runhandler "lexseal/internal/run/handler"
	httptransport "lexseal/internal/transport/http"
	"lexseal/internal/verify"
	verifyhandler "lexseal/internal/verify/handler"
)

const (
	jwtIssuer   = "lexseal"
	jwtAudience = "lexseal-api"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open ledger store", "backend", string(cfg.Backend), "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	httpMetrics := metrics.New()
	ledgerMetrics := ledgermetrics.New()

	submitter := ledger.NewSubmitter(log,
		ledger.WithRetryWindow(cfg.SubmitRetryInitial, cfg.SubmitRetryWindow))

	clientOpts := []ledger.ClientOption{ledger.WithMetrics(ledgerMetrics)}

	redisClient, err := platformredis.New(cfg.RedisConfig())
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		clientOpts = append(clientOpts,
			ledger.WithReadCache(cache.NewRedisCache(redisClient.Client, cfg.CacheTTL, log)))
		log.Info("notarization read cache enabled", "ttl", cfg.CacheTTL.String())
	}

	group, ctx := errgroup.WithContext(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(ctx, cfg.KafkaBrokers, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err.Error())
			os.Exit(1)
		}
		buffered := events.NewBuffered(0, log, ledgerMetrics.IncrementEventsDropped)
		worker := events.NewWorker(buffered, kafkaSink)
		group.Go(func() error { return worker.Run(ctx) })
		group.Go(func() error {
			<-ctx.Done()
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return kafkaSink.Close(closeCtx)
		})
		clientOpts = append(clientOpts, ledger.WithEvents(buffered))
		log.Info("ledger event stream enabled", "brokers", cfg.KafkaBrokers)
	}

	client := ledger.NewClient(store, submitter, cfg.Publisher, log, clientOpts...)
	group.Go(func() error { return submitter.Run(ctx) })

	encryptor, err := auditvault.NewEncryptor(cfg.VaultKey)
	if err != nil {
		log.Error("invalid vault key", "error", err.Error())
		os.Exit(1)
	}
	vaultService := auditvault.NewService(encryptor, client, log)
	runService := run.NewService(client, vaultService, log)
	verifyService := verify.NewService(client, vaultService, log)
	releaseService := release.NewService(client, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := httptransport.NewRouter(httptransport.Handlers{
		Run:     runhandler.New(runService, log, httpMetrics, jwtValidator),
		Audit:   auditvaulthandler.New(vaultService, client, log, httpMetrics, jwtValidator),
		Verify:  verifyhandler.New(verifyService, log, httpMetrics),
		Release: releasehandler.New(releaseService, log, httpMetrics, jwtValidator),
	})

	srv := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("starting lexseal server",
			"addr", cfg.Addr,
			"backend", string(cfg.Backend),
			"publisher", cfg.Publisher,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}

// openStore selects the ledger backend. The returned cleanup closes any
// underlying handle and is safe to call once.
func openStore(ctx context.Context, cfg config.Server) (ledger.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store := postgresstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case config.BackendLevelDB:
		store, err := leveldbstore.Open(cfg.LevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		return memorystore.New(), func() {}, nil
	}
}
