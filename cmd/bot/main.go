package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/orourkera/getrucky-bot/internal/config"
	"github.com/orourkera/getrucky-bot/internal/content"
	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/gencache"
	"github.com/orourkera/getrucky-bot/internal/generator"
	"github.com/orourkera/getrucky-bot/internal/ledger"
	"github.com/orourkera/getrucky-bot/internal/platform/logging"
	"github.com/orourkera/getrucky-bot/internal/policy"
	"github.com/orourkera/getrucky-bot/internal/quota"
	"github.com/orourkera/getrucky-bot/internal/scheduler"
	"github.com/orourkera/getrucky-bot/internal/sentiment"
	"github.com/orourkera/getrucky-bot/internal/server"
	"github.com/orourkera/getrucky-bot/internal/social"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupDB connects the interaction ledger. An empty DATABASE_URL selects the
// in-memory ledger, which loses the audit trail on restart.
func setupDB(clock clockwork.Clock, cfg *config.Config) (domain.InteractionLog, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, interaction ledger is in-memory only")
		return ledger.NewMemoryLog(clock), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := ledger.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	pgLog := ledger.NewPostgresLog(pool)
	if err := pgLog.Migrate(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	return pgLog, pool
}

// setupCacheStore connects the generation cache. An empty REDIS_URL selects
// the in-memory store with a background eviction timer.
func setupCacheStore(clock clockwork.Clock, cfg *config.Config) (gencache.Store, *goredis.Client, func()) {
	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL not set, generation cache is in-memory only")
		store := gencache.NewMemoryStore(clock)
		stopEviction := store.StartEvictionTimer(10 * time.Minute)
		return store, nil, stopEviction
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to parse redis URL", "error", err)
		os.Exit(1)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	return gencache.NewRedisStore(client), client, func() {}
}

// redisPinger adapts the go-redis client to the server's health check.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func runGracefulShutdown(srv *server.Server, sched *scheduler.Scheduler) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Shutdown signal received, cleaning up...", "signal", sig.String())
		case err := <-sched.Fatal():
			slog.Error("Scheduler hit an unrecoverable error, shutting down", "error", err)
		}

		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	interactionLog, pool := setupDB(clock, cfg)
	if pool != nil {
		defer pool.Close()
	}

	store, redisClient, stopEviction := setupCacheStore(clock, cfg)
	defer stopEviction()
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	tracker, err := quota.New(cfg.WindowPolicies(), clock)
	if err != nil {
		slog.Error("Failed to create quota tracker", "error", err)
		os.Exit(1)
	}

	// Rebuild in-window counters from the ledger so a restart cannot mint
	// fresh budget mid-window.
	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 30*time.Second)
	if err := tracker.Restore(restoreCtx, interactionLog); err != nil {
		cancelRestore()
		slog.Error("Failed to restore quota state from ledger", "error", err)
		os.Exit(1)
	}
	cancelRestore()

	selector, err := content.NewSelector(content.DefaultWeights(), content.DefaultThemes(),
		rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		slog.Error("Failed to create content selector", "error", err)
		os.Exit(1)
	}
	prompts := content.NewPrompts(rand.New(rand.NewSource(time.Now().UnixNano())))
	templates := content.NewTemplates(rand.New(rand.NewSource(time.Now().UnixNano())))
	filter := content.NewFilter(cfg.BlocklistWords())
	classifier := sentiment.NewClassifier(cfg.KeywordList())

	engine := policy.NewEngine(tracker, policy.Options{
		LikeProbability:   cfg.LikeProbability,
		RepostAllowlist:   cfg.RepostAllowlistSet(),
		MinFollowers:      cfg.MinFollowers,
		MinCrosspostLikes: cfg.MinCrosspostLikes,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))

	// The platform transport and the text generation backend are deployed
	// as separate services. Until they are wired in, the bot runs every
	// decision path against no-network stand-ins.
	socialClient := social.NewDryRun()
	textGen := generator.NewBreaker(generator.NewDryRun())

	sched := scheduler.New(scheduler.Deps{
		Clock:      clock,
		Quota:      tracker,
		Cache:      gencache.New(store, cfg.CacheTTL),
		Selector:   selector,
		Prompts:    prompts,
		Templates:  templates,
		Filter:     filter,
		Classifier: classifier,
		Policy:     engine,
		Social:     socialClient,
		Generator:  textGen,
		Ledger:     interactionLog,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, scheduler.Options{
		BotHandle:           cfg.BotHandle,
		PostInterval:        cfg.PostInterval,
		MentionPollInterval: cfg.MentionPollInterval,
		SweepInterval:       cfg.EngagementSweepInterval,
		CallTimeout:         cfg.CallTimeout,
		RetryAttempts:       cfg.RetryAttempts,
		BackoffBase:         cfg.BackoffBase,
		RateLimitBackoff:    cfg.RateLimitBackoff,
		SearchTerms:         cfg.SearchTermList(),
		MinEngagement:       cfg.MinEngagement,
	})

	serverDeps := server.Deps{
		Quota:     tracker,
		Ledger:    interactionLog,
		Scheduler: sched,
		Breaker:   textGen,
	}
	if pool != nil {
		serverDeps.Postgres = pool
	}
	if redisClient != nil {
		serverDeps.Redis = redisPinger{client: redisClient}
	}
	srv := server.NewServer(cfg.Port, clock, serverDeps)

	if err := sched.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, sched)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
