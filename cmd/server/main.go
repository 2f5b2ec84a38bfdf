package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/auth"
	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/config"
	"github.com/iliyamo/property-listing/internal/database"
	"github.com/iliyamo/property-listing/internal/handler"
	"github.com/iliyamo/property-listing/internal/idgen"
	"github.com/iliyamo/property-listing/internal/metrics"
	"github.com/iliyamo/property-listing/internal/middleware"
	"github.com/iliyamo/property-listing/internal/queue"
	"github.com/iliyamo/property-listing/internal/remote"
	"github.com/iliyamo/property-listing/internal/router"
	"github.com/iliyamo/property-listing/internal/scheduler"
	"github.com/iliyamo/property-listing/internal/service"
	"github.com/iliyamo/property-listing/internal/store"
	"github.com/iliyamo/property-listing/internal/theme"
)

func main() {
	cfg := config.Load() // Load environment config
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	rdb := config.NewRedisClient() // nil when Redis is unreachable; cache and rate limit are then off
	if rdb == nil {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var db *sql.DB
	if cfg.BridgeDriver == bridge.DriverMySQL {
		var err error
		if db, err = database.Open(ctx, cfg); err != nil {
			log.Fatalf("mysql: %v", err)
		}
		defer db.Close()
	}
	backend, err := bridge.Open(ctx, bridge.Options{
		Driver:      cfg.BridgeDriver,
		SQLitePath:  cfg.SQLitePath,
		DB:          db,
		Redis:       rdb,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		log.Fatalf("bridge: %v", err)
	}
	b := bridge.New(backend, bridge.WithFailureHook(m.BridgeFailureHook()))
	defer b.Close()

	// Commit middlewares run after the write-through sync, in this order.
	cacheCfg := config.LoadCacheConfig()
	mws := []store.Middleware{m.StoreMiddleware(), middleware.InvalidateCache(cacheCfg, rdb)}
	if cfg.EventsEnabled {
		mws = append(mws, service.EventMiddleware(service.NewPublisher(cfg.AMQPURL), time.Now))
		go func() {
			if err := queue.StartListingConsumer(ctx, cfg.AMQPURL, cfg.LogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("listing-consumer: stopped: %v", err)
			}
		}()
	}
	st := store.New(b, store.WithMiddleware(mws...))
	if err := st.Init(ctx); err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Dispose(context.Background())

	tokens := auth.TokenConfig{Secret: cfg.JWTSecret, TTLMin: cfg.AccessTTLMin}
	accounts := auth.NewAccounts(b, auth.WithBcryptCost(cfg.BcryptCost))
	accounts.Init(ctx)
	var verifier auth.Verifier = auth.JWTVerifier{Secret: cfg.JWTSecret}
	if cfg.MasterVerifyURL != "" {
		verifier = auth.HTTPVerifier{URL: cfg.MasterVerifyURL, Client: &http.Client{Timeout: 5 * time.Second}}
	}
	adminSession := auth.NewAdminSession(b, accounts, tokens)
	masterSession := auth.NewMasterSession(b, auth.MasterCredentials{Email: cfg.MasterEmail, PasswordHash: cfg.MasterPasswordHash}, tokens, verifier)
	// Master verification may call out; protected routes answer 503 until both settle.
	go adminSession.Init(ctx)
	go masterSession.Init(ctx)

	th := theme.New(b)
	th.Init(ctx)
	if cfg.ThemesFile != "" {
		if presets, err := theme.LoadPresets(cfg.ThemesFile); err != nil {
			log.Printf("theme presets: %v", err)
		} else {
			log.Printf("theme presets: %d loaded", th.ApplyPresets(ctx, presets))
		}
	}

	var fetcher remote.Fetcher
	if cfg.RemoteAPIURL != "" {
		fetcher = remote.NewClient(cfg.RemoteAPIURL)
		sched := scheduler.New(cfg.RemoteSyncCron, st, fetcher)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		defer sched.Stop()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.RegisterRoutes(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Metrics:   m.Handler(),
		Health:    handler.Health(st),
		Browse:    handler.NewBrowseHandler(st),
		Listings:  handler.NewListingHandler(st, idgen.New),
		Auth:      handler.NewAuthHandler(adminSession, masterSession),
		Accounts:  handler.NewAccountHandler(accounts),
		Theme:     handler.NewThemeHandler(th),
		Sync:      handler.NewSyncHandler(st, fetcher),
		Sessions:  []middleware.SessionSource{adminSession, masterSession},
		Cache:     middleware.NewRedisCache(cacheCfg, rdb, st),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, bridge=%s)", addr, cfg.Env, cfg.BridgeDriver)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
