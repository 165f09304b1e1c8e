// Package ossurl 从对象存储 URL 中还原 bucket、endpoint 与对象键。
package ossurl

import (
	"fmt"
	"net/url"
	"strings"

	"ossbridge/internal/files"
)

// Location 是解析结果。HasBucket 为 false 时 Bucket 与 Host 均为空，
// 调用方需要使用自身配置的 bucket 和 endpoint。
type Location struct {
	Scheme    string
	Bucket    string
	Host      string
	Key       string
	HasBucket bool
}

// Parse 解析虚拟主机风格的 URL（https://bucket.endpoint/key）。
//
// 主机名包含点时按第一个点拆分为 bucket 与 endpoint（保留端口）；否则视为自定义域名，只返回对象键。
// 多级自定义域名（如 cdn.example.com）同样会被拆分，这是已知的局限。
func Parse(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", files.ErrInvalidURLFormat, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("%w: %q needs a scheme and a host", files.ErrInvalidURLFormat, raw)
	}

	key := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()

	if bucket, endpoint, ok := strings.Cut(host, "."); ok && bucket != "" && endpoint != "" {
		if port := u.Port(); port != "" {
			endpoint += ":" + port
		}
		return Location{Scheme: u.Scheme, Bucket: bucket, Host: endpoint, Key: key, HasBucket: true}, nil
	}
	return Location{Scheme: u.Scheme, Key: key}, nil
}
