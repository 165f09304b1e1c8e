// Package storage 定义对象存储客户端接口与凭据。
package storage

import (
	"fmt"
	"net/url"
	"strings"

	"ossbridge/internal/files"
	"ossbridge/internal/naming"
)

// Credentials 描述访问一个 bucket 所需的全部信息。
type Credentials struct {
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string
	Bucket          string
	Region          string // 为空时由驱动从 endpoint 推断
	UseHTTPS        bool
	PathStyle       bool   // 仅 s3 驱动使用，MinIO 需要 true
	Directory       string // 上传时的默认目录
	Filename        string // 单文件上传时的默认文件名
}

// Validate 在任何网络调用之前校验凭据。
func (c Credentials) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"access_key_id", c.AccessKeyID},
		{"access_key_secret", c.AccessKeySecret},
		{"endpoint", c.Endpoint},
		{"bucket", c.Bucket},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: credential %s", files.ErrMissingParameter, field.name)
		}
	}

	if c.Directory != "" && naming.HasForbiddenPrefix(c.Directory) {
		return fmt.Errorf("%w: default directory cannot start with space, / or \\", files.ErrInvalidDirectory)
	}
	if c.Filename != "" && naming.HasForbiddenPrefix(c.Filename) {
		return fmt.Errorf("%w: default filename cannot start with space, / or \\", files.ErrInvalidParameter)
	}
	return nil
}

// WithTarget 返回替换了 bucket / endpoint 的副本，空值保持原配置。
func (c Credentials) WithTarget(bucket, endpoint string) Credentials {
	out := c
	if bucket != "" {
		out.Bucket = bucket
	}
	if endpoint != "" {
		out.Endpoint = endpoint
	}
	return out
}

// Scheme 返回访问对象时使用的协议。
func (c Credentials) Scheme() string {
	if c.UseHTTPS {
		return "https"
	}
	return "http"
}

// ObjectURL 生成虚拟主机风格的静态访问地址：{scheme}://{bucket}.{endpoint}/{key}。
// 对象键按路径段转义，分隔符 / 保留。
func (c Credentials) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s://%s.%s/%s", c.Scheme(), c.Bucket, EndpointHost(c.Endpoint), strings.Join(segments, "/"))
}
