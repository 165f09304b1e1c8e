package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ossbridge/internal/api"
	"ossbridge/internal/bootstrap"
	"ossbridge/internal/config"
	"ossbridge/internal/logging"
	"ossbridge/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	logger.Info().Str("storage_driver", cfg.StorageDriver).Msg("配置加载完成，开始启动服务")

	components, err := bootstrap.Build(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("组装服务失败")
	}

	var auth *middleware.Authenticator
	if cfg.AuthEnabled {
		auth = middleware.NewAuthenticator(middleware.AuthOptions{
			APIKeys:   cfg.APIKeys,
			JWTSecret: cfg.JWTSecret,
			JWKSURL:   cfg.JWKSURL,
			Logger:    logger.With().Str("component", "auth").Logger(),
		})
		defer auth.Close()
	}

	fileHandler := api.NewFileHandler(components.Gateway, components.Fetcher, 0)
	router := api.NewRouter(cfg, logger, fileHandler, auth)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		ReadHeaderTimeout: 10 * time.Second,
		// 上传与下载可能持续较久
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
		Handler:      router,
	}

	logger.Info().Str("addr", srv.Addr).Msg("服务开始监听")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("监听失败")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("优雅关闭失败")
	}

	logger.Info().Msg("服务已停止")
}
