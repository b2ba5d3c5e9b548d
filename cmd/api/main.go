package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-social-api/internal/core/auth"
	"go-social-api/internal/core/cache"
	"go-social-api/internal/core/config"
	"go-social-api/internal/core/database"
	"go-social-api/internal/core/logger"
	"go-social-api/internal/core/server"
	"go-social-api/internal/domain"
	"go-social-api/internal/realtime"
	"go-social-api/internal/repo"
	"go-social-api/internal/service"
	"go-social-api/internal/storage"
	gql "go-social-api/internal/transport/graphql"
	"go-social-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()

	// 数据库（失败直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Post{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLHr) * time.Hour,
	}

	images, err := storage.NewImages(cfg.Upload.Dir, log)
	if err != nil {
		log.Fatal("upload dir", zap.Error(err))
	}

	var feedCache *cache.Cache
	if cfg.Redis.Enable {
		feedCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("feed cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 广播 hub：单 goroutine 跑到进程退出
	hub := realtime.NewHub(log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	svc := service.New(service.Opts{
		DB:      db,
		Users:   repo.NewUserRepo(db),
		Posts:   repo.NewPostRepo(db),
		JWTer:   jwter,
		Images:  images,
		Hub:     hub,
		Cache:   feedCache,
		FeedTTL: cfg.Redis.FeedTTLSec,
		Log:     log,
	})

	schema, err := gql.NewSchema(svc)
	if err != nil {
		log.Fatal("build graphql schema", zap.Error(err))
	}

	r := router.New(router.Opts{
		Log:    log,
		Svc:    svc,
		Images: images,
		JWTer:  jwter,
		Hub:    hub,
		Schema: schema,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started", zap.String("addr", addr))

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	stopHub()
	log.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
