// Package fetch 通过匿名 HTTP GET 下载任意公网 URL。
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"ossbridge/internal/files"
	"ossbridge/internal/naming"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout 单次请求的默认超时。
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent 模拟常见浏览器，部分站点会拒绝默认的 Go UA。
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	// DefaultMaxBytes 响应体的默认上限。
	DefaultMaxBytes int64 = 100 << 20

	fallbackBase = "downloaded_file"
)

var dispositionFilename = regexp.MustCompile(`(?i)filename\*?=(?:UTF-8'')?["']?([^"';\s]+)`)

// ErrTooLarge 表示响应体超过配置的上限。
var ErrTooLarge = errors.New("response body exceeds limit")

// Fetcher 下载公网资源。零值不可用，请使用 New。
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    zerolog.Logger
}

// Option 调整 Fetcher。
type Option func(*Fetcher)

// WithTimeout 设置请求超时，非正数保持默认值。
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithUserAgent 覆盖请求头中的 User-Agent。
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes 限制响应体大小。
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHTTPClient 使用 client 的副本作为底层 HTTP 客户端，副本未设置超时时沿用当前超时。
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client == nil {
			return
		}
		c := *client
		if c.Timeout == 0 {
			c.Timeout = f.client.Timeout
		}
		f.client = &c
	}
}

// WithLogger 设置日志器。
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// New 创建 Fetcher。
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch 下载 rawURL 指向的资源。只接受 http/https，非 2xx 响应视为失败。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*files.ResolvedFile, error) {
	target, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", files.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", files.ErrFetchFailed, target.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: HTTP %d", files.ErrFetchFailed, target.Redacted(), resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", files.ErrFetchFailed, err)
	}
	if int64(len(content)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %w (%d bytes)", files.ErrFetchFailed, ErrTooLarge, f.maxBytes)
	}

	contentType := naming.StripParams(resp.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	filename := filenameFor(target, resp.Header.Get("Content-Disposition"), contentType)
	_, ext := naming.SplitExt(filename)
	if ext == "" {
		ext = naming.ExtensionForType(contentType, "")
	}

	f.logger.Debug().
		Str("url", target.Redacted()).
		Int("status", resp.StatusCode).
		Int("size", len(content)).
		Msg("public resource fetched")

	return &files.ResolvedFile{
		Filename:    filename,
		Extension:   naming.NormalizeExtension(ext),
		ContentType: contentType,
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

func parseURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: url", files.ErrMissingParameter)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", files.ErrInvalidURLFormat, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q must be an absolute http or https url", files.ErrInvalidURLFormat, rawURL)
	}
	return u, nil
}

// filenameFor 依次使用 URL 路径的最后一段、Content-Disposition、
// downloaded_file 加上由类型推断的扩展名。
func filenameFor(u *url.URL, disposition, contentType string) string {
	// 以 / 结尾的路径没有文件名
	if name := u.Path[strings.LastIndex(u.Path, "/")+1:]; name != "" {
		return name
	}
	if name := dispositionName(disposition); name != "" {
		return name
	}
	return fallbackBase + naming.ExtensionForType(contentType, "")
}

func dispositionName(header string) string {
	if header == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := naming.BaseName(params["filename"]); name != "" {
			return name
		}
	}
	m := dispositionFilename.FindStringSubmatch(header)
	if len(m) < 2 {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if decoded, err := url.QueryUnescape(name); err == nil {
		name = decoded
	}
	return naming.BaseName(name)
}
