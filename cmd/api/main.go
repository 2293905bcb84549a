package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appcontext "github.com/SeakMengs/OpenSight/internal/app_context"
	"github.com/SeakMengs/OpenSight/internal/auth"
	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/controller"
	"github.com/SeakMengs/OpenSight/internal/database"
	"github.com/SeakMengs/OpenSight/internal/dataset"
	"github.com/SeakMengs/OpenSight/internal/detector"
	"github.com/SeakMengs/OpenSight/internal/env"
	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/internal/lock"
	"github.com/SeakMengs/OpenSight/internal/middleware"
	ratelimiter "github.com/SeakMengs/OpenSight/internal/rate_limiter"
	"github.com/SeakMengs/OpenSight/internal/repository"
	"github.com/SeakMengs/OpenSight/internal/route"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	defer logger.Sync()
	logger.Debugf("Configuration: %+v \n", cfg)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	if err := util.RegisterCustomValidations(); err != nil {
		logger.Panic(err)
	}

	storage, err := filestorage.NewLocalStorage(cfg.Storage.PATH)
	if err != nil {
		logger.Panicf("Failed to prepare storage at %s: %v", cfg.Storage.PATH, err)
	}
	logger.Infof("Storing projects in %s", storage.Root())

	mirror, err := filestorage.NewMirror(cfg.Minio, logger)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}
	if mirror.Enabled() {
		logger.Infof("Mirroring files to minio bucket %s", cfg.Minio.BUCKET)
	}

	locker, closeLocker := newLocker(cfg.Redis, logger)
	defer closeLocker()

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger)

	app := appcontext.Application{
		Config:     &cfg,
		Logger:     logger,
		Repository: repo,
		Storage:    storage,
		Mirror:     mirror,
		Locker:     locker,
		Detector:   detector.NewClient(cfg.Detector, logger),
		Dataset:    dataset.NewBuilder(repo.Image, storage, cfg.Dataset, logger),
		JWTService: jwtService,
	}

	if !cfg.AuthEnabled() {
		logger.Warn("AUTH_JWT_SECRET is not set, the api is open to anyone who can reach it")
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(_middleware.RequestIDMiddleware)

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "Retry-After", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))
	// images and archives are already compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/static"}), gzip.WithExcludedExtensions([]string{".zip", ".png", ".jpg", ".jpeg"})))
	r.Use(_middleware.RateLimiterMiddleware)
	r.MaxMultipartMemory = 8 << 20

	route.Register(r, controller.NewController(&app), _middleware)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// no WriteTimeout, training requests stay open until the detector finishes
	}

	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Panicf("Error running server: %v \n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("Shutdown server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
}

// newLocker uses redis when enabled so several api replicas share project locks.
func newLocker(cfg config.RedisConfig, logger *zap.SugaredLogger) (lock.Locker, func()) {
	if !cfg.ENABLED {
		logger.Info("Using in-process project locks")
		return lock.NewLocalLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.ADDR,
		Password: cfg.PASSWORD,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Panicf("Failed to connect to redis at %s: %v", cfg.ADDR, err)
	}
	logger.Infof("Using redis project locks at %s", cfg.ADDR)

	return lock.NewRedisLocker(client, cfg.LockTTL, logger), func() {
		if err := client.Close(); err != nil {
			logger.Errorf("Failed to close redis client: %v", err)
		}
	}
}
