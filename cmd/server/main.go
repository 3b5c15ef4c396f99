package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_predictor/internal/app/di"
	"stock_predictor/internal/app/router"
	"stock_predictor/internal/config"
	"stock_predictor/internal/feature/regression/adapters/plot"
	regressionhandler "stock_predictor/internal/feature/regression/transport/handler"
	regressionusecase "stock_predictor/internal/feature/regression/usecase"
	symbollisthandler "stock_predictor/internal/feature/symbollist/transport/handler"
	symbollistusecase "stock_predictor/internal/feature/symbollist/usecase"
	infradb "stock_predictor/internal/platform/db"
	"stock_predictor/internal/platform/http/handler"
	jwtmw "stock_predictor/internal/platform/jwt"
	"stock_predictor/internal/platform/ratelimit"
	infraredis "stock_predictor/internal/platform/redis"
	"stock_predictor/internal/platform/scheduler"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.Open(infradb.Config{
		Driver:         cfg.Database.Driver,
		DSN:            cfg.Database.DSN,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		AutoMigrate:    cfg.Database.AutoMigrate,
	})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	defer sqlDB.Close()

	// Redis
	var rdb *redisv9.Client
	if cfg.RedisEnabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, infraredis.Options{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password}); err != nil {
			log.Println("[WARN] Redis unavailable. Falling back to SQL session storage.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Repository
	symbolStore := di.NewSymbolStore(rdb, db, cfg.Cache.SymbolTTL)
	modelStore, cleaner := di.NewModelStore(rdb, db, cfg.Session.TTL)
	renderer := plot.NewRenderer(cfg.Server.PlotPath)

	// Usecase
	symbolUC := symbollistusecase.NewSymbolUsecase(symbolStore)
	regressionUC := regressionusecase.NewRegressionUsecase(symbolUC, modelStore, renderer)

	// Handler
	checks := map[string]handler.Check{"db": sqlDB.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthH := handler.NewHealthHandler(checks)
	symbolH := symbollisthandler.NewSymbolHandler(symbolUC)
	regressionH := regressionhandler.NewRegressionHandler(regressionUC, cfg.Server.PlotURL, cfg.Server.MaxUploadBytes)

	var limiter *ratelimit.Limiter
	if cfg.Server.UploadRatePerMin >= 0 {
		limiter = ratelimit.NewPerMinute(cfg.Server.UploadRatePerMin)
	} else {
		log.Println("[WARN] Upload rate limiting is disabled.")
	}

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Health:        healthH,
		Symbols:       symbolH,
		Regression:    regressionH,
		Sessions:      jwtmw.NewGenerator(cfg.Session.Secret, cfg.Session.TTL),
		SecureCookie:  cfg.Session.SecureCookie,
		UploadLimiter: limiter,
		StaticDir:     cfg.Server.StaticDir,
	})

	// 定期クリーンアップ（SQLの期限切れモデル、アイドルなレート制限エントリ）
	var sweeper scheduler.LimiterSweeper
	if limiter != nil {
		sweeper = limiter
	}
	sched := scheduler.NewScheduler(ctx, cleaner, sweeper, 0)
	if err := sched.Register(cfg.Schedule.CleanupCron); err != nil {
		log.Fatal(err)
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Println("[INFO] listening on", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("[INFO] shutdown signal received")
	case err := <-serverErr:
		log.Println("[ERROR] server error:", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("[ERROR] server shutdown error:", err)
	}
}
