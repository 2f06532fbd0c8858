package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"truck-presence-service/internal/adapters/drops"
	"truck-presence-service/internal/adapters/repositories"
	"truck-presence-service/internal/api"
	"truck-presence-service/internal/config"
	"truck-presence-service/internal/platform/db"
	"truck-presence-service/internal/ports"
	"truck-presence-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// dropBackend is the shared drop store plus the writer the feed pushes into.
type dropBackend interface {
	ports.DropStore
	ports.DropWriter
}

// main is the application composition root.
// It loads configuration and hands off to run; every failure exits here once,
// after run's deferred teardown has completed.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	configPath := flag.String("config", config.Get("CONFIG_PATH", "config.yaml"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// run wires concrete adapters (SQLite, Postgres, Redis) behind ports and
// serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	// The local claim ledger always lives in SQLite; only the drop store is selectable.
	ledgerDB, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer ledgerDB.Close()

	if err := repositories.InitSchema(ledgerDB); err != nil {
		return err
	}

	store, closeStore, err := openDropStore(cfg, ledgerDB)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedPath != "" {
		if err := repositories.SeedDropsFromJSON(ctx, store, cfg.SeedPath); err != nil {
			return err
		}
	}

	clock := ports.SystemClock{}
	history := repositories.NewSqliteClaimRepository(ledgerDB)

	expiry := services.NewExpiryWatcher(store, history, clock)
	expiry.Interval = cfg.ExpiryPoll()
	defer expiry.Close()

	ledger := services.NewClaimLedger(store, history, clock)
	ledger.Cooldown = cfg.ClaimCooldown()
	ledger.Watcher = expiry

	resumed, err := ledger.Resume(ctx)
	if err != nil {
		return err
	}
	log.Printf("claims resumed count=%d", resumed)

	schedules := services.NewScheduleWatcher(clock, cfg.Location())
	schedules.OnChange = func(st services.VendorOpenStatus) {
		log.Printf("vendor hours changed vendor=%s open=%t", st.VendorID, st.Open)
	}
	if err := schedules.Start(cfg.Schedule.Recheck); err != nil {
		return err
	}
	defer schedules.Stop()

	feed := services.NewLiveFeed(services.PresencePolicy{
		Grace:      cfg.PresenceGrace(),
		SessionTTL: cfg.PresenceSessionTTL(),
	})

	router := api.NewRouter(api.Deps{
		Feed:      feed,
		Drops:     store,
		DropSink:  store,
		Ledger:    ledger,
		Expiry:    expiry,
		Schedules: schedules,
		Clock:     clock,
	})

	log.Printf("Server listening addr=%s store=%s", cfg.Listen, cfg.Claims.Store)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func openDropStore(cfg *config.Config, ledgerDB *sql.DB) (dropBackend, func(), error) {
	switch cfg.Claims.Store {
	case config.StoreMemory:
		return drops.NewMemoryDropStore(nil), func() {}, nil

	case config.StoreSQLite:
		return repositories.NewSqliteDropRepository(ledgerDB), func() {}, nil

	case config.StorePostgres:
		pg, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(pg); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return repositories.NewSQLDropRepository(pg), func() { _ = pg.Close() }, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("open drop store: ping redis %q: %w", cfg.RedisAddr, err)
		}
		return drops.NewRedisDropStore(rdb), func() { _ = rdb.Close() }, nil
	}

	return nil, nil, fmt.Errorf("open drop store: unknown backend %q", cfg.Claims.Store)
}
