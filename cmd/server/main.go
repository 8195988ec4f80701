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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/bets"
	"github.com/betpulse/live-gate/internal/betslip"
	"github.com/betpulse/live-gate/internal/config"
	"github.com/betpulse/live-gate/internal/feed"
	"github.com/betpulse/live-gate/internal/lockengine"
	"github.com/betpulse/live-gate/internal/metrics"
	"github.com/betpulse/live-gate/internal/model"
	"github.com/betpulse/live-gate/internal/poll"
	"github.com/betpulse/live-gate/internal/reconcile"
	"github.com/betpulse/live-gate/internal/risk"
	"github.com/betpulse/live-gate/internal/store"
	"github.com/betpulse/live-gate/internal/tracker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if cfg.Store.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.Store.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if cfg.Store.RedisURL != "" {
			opt, err := redis.ParseURL(cfg.Store.RedisURL)
			if err != nil {
				slog.Error("invalid redis url", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, cfg.Store.CacheTTL)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("database_url not set, using in-memory store (coupons will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Feed + decision pipeline ---
	feedClient := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.Timeout)
	trk := tracker.New()
	engine := lockengine.New(trk, lockengine.Config{
		RecencyWindow:   cfg.Lock.RecencyWindow,
		AttackThreshold: cfg.Lock.AttackThreshold,
		CriticalMinute:  cfg.Lock.CriticalMinute,
		CriticalMargin:  cfg.Lock.CriticalMargin,
	})
	verdicts := poll.NewVerdicts()

	// --- WebSocket hub ---
	wsHub := bets.NewWSHub()
	go wsHub.Run()

	// --- Stake limits ---
	maxStake, err := decimal.NewFromString(cfg.Risk.MaxStake)
	if err != nil {
		slog.Error("invalid risk.max_stake", "err", err)
		os.Exit(1)
	}
	maxExposure, err := decimal.NewFromString(cfg.Risk.MaxMatchExposure)
	if err != nil {
		slog.Error("invalid risk.max_match_exposure", "err", err)
		os.Exit(1)
	}
	limiter := risk.NewStakeLimiter(maxStake, maxExposure)

	// --- Services ---
	recon := reconcile.New(feedClient)
	slips := betslip.NewManager()

	poller := poll.NewManager(feedClient, engine, trk, verdicts,
		func(matchID string, verdict model.LockVerdict) {
			wsHub.Broadcast(bets.WSMessage{
				Type:    "lock_changed",
				MatchID: matchID,
				Locked:  verdict.Locked,
				Reason:  verdict.Reason,
			})
		},
		cfg.Poll.EventsInterval, cfg.Poll.StatsInterval)
	betsSvc := bets.NewService(st, slips, verdicts, recon, feedClient, limiter, poller, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"live-gate"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for lock and coupon broadcasts.
		r.Get("/ws", wsHub.HandleWS)

		// Match watching and lock verdicts.
		r.Post("/matches/{matchID}/watch", betsSvc.WatchMatch)
		r.Delete("/matches/{matchID}/watch", betsSvc.UnwatchMatch)
		r.Get("/matches/{matchID}/lock", betsSvc.GetLock)

		// Bet slip operations.
		r.Get("/slip/{userID}", betsSvc.GetSlip)
		r.Post("/slip/{userID}/selections", betsSvc.AddSelection)
		r.Delete("/slip/{userID}/selections/{matchID}/{marketName}", betsSvc.RemoveSelection)
		r.Delete("/slip/{userID}", betsSvc.ClearSlip)
		r.Put("/slip/{userID}/stake", betsSvc.SetStake)
		r.Post("/slip/{userID}/checkout", betsSvc.Checkout)

		// Placed coupons.
		r.Get("/coupons/{userID}", betsSvc.ListCoupons)
		r.Get("/coupons/{userID}/{couponID}", betsSvc.GetCoupon)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("live-gate listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down live-gate...")
	poller.StopAll()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("live-gate stopped")
}
