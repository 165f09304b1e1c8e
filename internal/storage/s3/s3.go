// Package s3 通过 S3 兼容协议访问对象存储（OSS 的 S3 兼容端点或 MinIO）。
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"ossbridge/internal/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage 实现了 storage.Client 接口，使用 S3 兼容存储。
type Storage struct {
	client *minio.Client
	bucket string
}

// New 创建新的 S3 存储实例。不会创建 bucket，bucket 是否可用由 Probe 判断。
func New(creds storage.Credentials) (*Storage, error) {
	lookup := minio.BucketLookupDNS
	if creds.PathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(storage.EndpointHost(creds.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(creds.AccessKeyID, creds.AccessKeySecret, ""),
		Secure:       creds.UseHTTPS,
		Region:       creds.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	client.SetAppInfo("ossbridge", "1.0")

	return &Storage{client: client, bucket: creds.Bucket}, nil
}

// Opener 返回按凭据创建 S3 客户端的 storage.Opener。
func Opener() storage.Opener {
	return storage.OpenerFunc(func(ctx context.Context, creds storage.Credentials) (storage.Client, error) {
		return New(creds)
	})
}

// Put 将内容写入 S3 存储。
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.Location, error) {
	if s == nil || s.client == nil {
		return storage.Location{}, fmt.Errorf("s3 storage uninitialized")
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return storage.Location{}, fmt.Errorf("put object: %w", translate(err))
	}

	return storage.Location{Key: info.Key, ETag: info.ETag}, nil
}

// PutFile 从本地路径上传对象。
func (s *Storage) PutFile(ctx context.Context, key, path, contentType string) (storage.Location, error) {
	if s == nil || s.client == nil {
		return storage.Location{}, fmt.Errorf("s3 storage uninitialized")
	}

	info, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return storage.Location{}, fmt.Errorf("put object from file: %w", translate(err))
	}

	return storage.Location{Key: info.Key, ETag: info.ETag}, nil
}

// Get 从 S3 存储读取对象。
func (s *Storage) Get(ctx context.Context, key string) (*storage.Object, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("s3 storage uninitialized")
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", translate(err))
	}

	// GetObject 是惰性的，Stat 才会真正发起请求
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat object: %w", translate(err))
	}

	return &storage.Object{
		Body:        obj,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

// Probe 列举最多一个对象以验证凭据与 bucket。
func (s *Storage) Probe(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("s3 storage uninitialized")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obj, ok := <-s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{MaxKeys: 1})
	if ok && obj.Err != nil {
		return fmt.Errorf("list objects: %w", translate(obj.Err))
	}
	return nil
}

// Sign 生成限时 GET 链接。
func (s *Storage) Sign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("s3 storage uninitialized")
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", translate(err))
	}
	return u.String(), nil
}

func translate(err error) error {
	if resp := minio.ToErrorResponse(err); resp.StatusCode != 0 {
		return &storage.StatusError{
			StatusCode: resp.StatusCode,
			Code:       resp.Code,
			Message:    resp.Message,
			Err:        err,
		}
	}
	return err
}
