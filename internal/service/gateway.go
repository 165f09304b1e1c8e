// Package service 编排对象存储的上传与下载流程。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ossbridge/internal/files"
	"ossbridge/internal/naming"
	"ossbridge/internal/storage"

	"github.com/rs/zerolog"
)

// Gateway 把文件名解析、对象键生成与存储客户端组合在一起。
// 所有操作都是同步的，批量操作按输入顺序逐个执行。
type Gateway struct {
	opener           storage.Opener
	creds            storage.Credentials
	resolver         *naming.Resolver
	now              func() time.Time
	logger           zerolog.Logger
	customDomains    map[string]struct{}
	// 为空时不限制 URL 中的 endpoint
	allowedEndpoints map[string]struct{}
}

// Option 调整 Gateway 的可选行为。
type Option func(*Gateway)

// WithClock 注入时钟，便于测试日期目录与时间戳。
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger 设置日志器。
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithResolver 共享文件名解析器（以及其中的时间戳生成器）。
func WithResolver(r *naming.Resolver) Option {
	return func(g *Gateway) {
		if r != nil {
			g.resolver = r
		}
	}
}

// WithCustomDomains 登记绑定到 bucket 的自定义域名。
// 命中这些域名的 URL 不做 bucket 拆分，直接使用配置中的 bucket 与 endpoint。
func WithCustomDomains(hosts []string) Option {
	return func(g *Gateway) {
		for _, host := range hosts {
			host = strings.ToLower(strings.TrimSpace(host))
			if host != "" {
				g.customDomains[host] = struct{}{}
			}
		}
	}
}

// WithAllowedEndpoints 限制下载 URL 可以指向的 endpoint。
// 凭据会随请求发往 URL 中的 endpoint，对外暴露的部署应配置该列表。
func WithAllowedEndpoints(hosts []string) Option {
	return func(g *Gateway) {
		for _, host := range hosts {
			host = strings.ToLower(storage.EndpointHost(host))
			if host != "" {
				g.allowedEndpoints[host] = struct{}{}
			}
		}
	}
}

// NewGateway 创建网关。creds 是调用方配置的默认凭据。
func NewGateway(opener storage.Opener, creds storage.Credentials, opts ...Option) *Gateway {
	g := &Gateway{
		opener:           opener,
		creds:            creds,
		resolver:         naming.NewResolver(nil),
		now:              time.Now,
		logger:           zerolog.Nop(),
		customDomains:    map[string]struct{}{},
		allowedEndpoints: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Credentials 返回网关使用的默认凭据。
func (g *Gateway) Credentials() storage.Credentials {
	return g.creds
}

func (g *Gateway) open(ctx context.Context, creds storage.Credentials) (storage.Client, error) {
	if g == nil || g.opener == nil {
		return nil, errors.New("gateway not initialized")
	}
	client, err := g.opener.Open(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("%w: open bucket %s: %w", files.ErrStorage, creds.Bucket, err)
	}
	return client, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", files.ErrStorage, op, err)
}

// WithCredentials 返回使用另一组默认凭据的网关副本，其它设置保持不变。
func (g *Gateway) WithCredentials(creds storage.Credentials) *Gateway {
	clone := *g
	clone.creds = creds
	return &clone
}
