package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Writer 定义对象存储写接口。
type Writer interface {
	// Put 以流的方式写入对象，size 未知时传 -1。
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Location, error)
	// PutFile 直接从本地路径上传对象。
	PutFile(ctx context.Context, key, path, contentType string) (Location, error)
}

// Reader 定义对象存储读接口。
type Reader interface {
	Get(ctx context.Context, key string) (*Object, error)
}

// Prober 用最小代价的远程调用（列举 1 个对象）确认凭据可用。
type Prober interface {
	Probe(ctx context.Context) error
}

// Signer 生成限时访问的签名 URL。
type Signer interface {
	Sign(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Client 组合了网关需要的全部存储能力。
type Client interface {
	Writer
	Reader
	Prober
	Signer
}

// Opener 按凭据（endpoint + bucket）打开存储客户端。
// 下载时 URL 中的 bucket 可能与配置不同，因此客户端按需创建。
type Opener interface {
	Open(ctx context.Context, creds Credentials) (Client, error)
}

// OpenerFunc 让普通函数满足 Opener。
type OpenerFunc func(ctx context.Context, creds Credentials) (Client, error)

func (f OpenerFunc) Open(ctx context.Context, creds Credentials) (Client, error) {
	return f(ctx, creds)
}

// Location 描述已经写入对象的可访问信息。
type Location struct {
	Key  string
	ETag string
}

// Object 是读取到的对象，调用方负责关闭 Body。
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

var (
	// ErrNotFound 表示对象或 bucket 不存在。
	ErrNotFound = errors.New("storage: object not found")
	// ErrSignUnsupported 表示当前驱动无法生成签名 URL。
	ErrSignUnsupported = errors.New("storage: signed url not supported by driver")
)

// StatusError 是驱动把 SDK 错误统一后的形式。
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Is 让 404 响应可以用 errors.Is(err, ErrNotFound) 判断。
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// StatusCode 提取错误链中的 HTTP 状态码，不存在时返回 0。
func StatusCode(err error) int {
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.StatusCode
	}
	return 0
}

// EndpointHost 去掉 endpoint 中可能带有的协议前缀与末尾斜杠。
func EndpointHost(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimRight(endpoint, "/")
}
