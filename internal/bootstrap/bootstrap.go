// Package bootstrap 根据配置组装存储驱动、网关与公网下载器，供 server 与 ossctl 共用。
package bootstrap

import (
	"fmt"

	"ossbridge/internal/config"
	"ossbridge/internal/fetch"
	"ossbridge/internal/service"
	"ossbridge/internal/storage"
	"ossbridge/internal/storage/local"
	"ossbridge/internal/storage/oss"
	"ossbridge/internal/storage/s3"

	"github.com/rs/zerolog"
)

// Components 是一次装配的结果。
type Components struct {
	Gateway *service.Gateway
	Fetcher *fetch.Fetcher
}

// Opener 按驱动名称选择存储实现。
func Opener(cfg *config.Config) (storage.Opener, error) {
	switch cfg.StorageDriver {
	case "", "oss":
		return oss.Opener(), nil
	case "s3":
		return s3.Opener(), nil
	case "local":
		return local.Opener(cfg.LocalDir), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Build 装配网关与下载器。
func Build(cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	opener, err := Opener(cfg)
	if err != nil {
		return nil, err
	}

	gateway := service.NewGateway(opener, cfg.Credentials(),
		service.WithLogger(logger.With().Str("component", "gateway").Logger()),
		service.WithCustomDomains(cfg.OSS.CustomDomains),
		service.WithAllowedEndpoints(cfg.OSS.AllowedEndpoints),
	)
	fetcher := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.FetchUserAgent),
		fetch.WithMaxBytes(cfg.FetchMaxBytes),
		fetch.WithLogger(logger.With().Str("component", "fetch").Logger()),
	)

	return &Components{Gateway: gateway, Fetcher: fetcher}, nil
}
