// Package oss 使用阿里云 OSS Go SDK v2 访问对象存储。
package oss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ossbridge/internal/storage"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

const connectTimeout = 10 * time.Second

// Storage 实现了 storage.Client 接口，直接调用 OSS API。
type Storage struct {
	client *oss.Client
	bucket string
}

// New 根据凭据创建 OSS 客户端。region 为空时从 endpoint 推断，
// 推断失败则退回 V1 签名（V1 不需要 region）。
func New(creds storage.Credentials) (*Storage, error) {
	if creds.Endpoint == "" || creds.Bucket == "" {
		return nil, fmt.Errorf("oss endpoint and bucket are required")
	}

	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.AccessKeySecret)).
		WithEndpoint(storage.EndpointHost(creds.Endpoint)).
		WithConnectTimeout(connectTimeout).
		WithDisableSSL(!creds.UseHTTPS)

	region := creds.Region
	if region == "" {
		region = RegionFromEndpoint(creds.Endpoint)
	}
	if region != "" {
		cfg = cfg.WithRegion(region)
	} else {
		cfg = cfg.WithSignatureVersion(oss.SignatureVersionV1)
	}

	return &Storage{client: oss.NewClient(cfg), bucket: creds.Bucket}, nil
}

// Opener 返回按凭据创建 OSS 客户端的 storage.Opener。
func Opener() storage.Opener {
	return storage.OpenerFunc(func(ctx context.Context, creds storage.Credentials) (storage.Client, error) {
		return New(creds)
	})
}

// RegionFromEndpoint 从 oss-cn-hangzhou.aliyuncs.com 这类 endpoint 中提取 cn-hangzhou。
func RegionFromEndpoint(endpoint string) string {
	host := storage.EndpointHost(endpoint)
	if !strings.HasSuffix(host, ".aliyuncs.com") {
		return ""
	}
	first, _, _ := strings.Cut(host, ".")
	if !strings.HasPrefix(first, "oss-") {
		return ""
	}
	region := strings.TrimPrefix(first, "oss-")
	region = strings.TrimSuffix(region, "-internal")
	if region == "accelerate" || region == "accelerate-overseas" {
		return ""
	}
	return region
}

func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.Location, error) {
	if s == nil || s.client == nil {
		return storage.Location{}, fmt.Errorf("oss storage uninitialized")
	}

	req := &oss.PutObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
		Body:   r,
	}
	if contentType != "" {
		req.ContentType = oss.Ptr(contentType)
	}
	if size >= 0 {
		req.ContentLength = oss.Ptr(size)
	}

	res, err := s.client.PutObject(ctx, req)
	if err != nil {
		return storage.Location{}, fmt.Errorf("put object: %w", translate(err))
	}
	return storage.Location{Key: key, ETag: oss.ToString(res.ETag)}, nil
}

func (s *Storage) PutFile(ctx context.Context, key, path, contentType string) (storage.Location, error) {
	if s == nil || s.client == nil {
		return storage.Location{}, fmt.Errorf("oss storage uninitialized")
	}

	req := &oss.PutObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	}
	if contentType != "" {
		req.ContentType = oss.Ptr(contentType)
	}

	res, err := s.client.PutObjectFromFile(ctx, req, path)
	if err != nil {
		return storage.Location{}, fmt.Errorf("put object from file: %w", translate(err))
	}
	return storage.Location{Key: key, ETag: oss.ToString(res.ETag)}, nil
}

func (s *Storage) Get(ctx context.Context, key string) (*storage.Object, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("oss storage uninitialized")
	}

	res, err := s.client.GetObject(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", translate(err))
	}

	return &storage.Object{
		Body:        res.Body,
		ContentType: oss.ToString(res.ContentType),
		Size:        res.ContentLength,
	}, nil
}

// Probe 使用 ListObjectsV2(max-keys=1)：空 bucket 也返回 200，且权限要求低于 GetBucketInfo。
func (s *Storage) Probe(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("oss storage uninitialized")
	}

	_, err := s.client.ListObjectsV2(ctx, &oss.ListObjectsV2Request{
		Bucket:  oss.Ptr(s.bucket),
		MaxKeys: 1,
	})
	if err != nil {
		return fmt.Errorf("list objects: %w", translate(err))
	}
	return nil
}

func (s *Storage) Sign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("oss storage uninitialized")
	}

	res, err := s.client.Presign(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(s.bucket),
		Key:    oss.Ptr(key),
	}, oss.PresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign object: %w", translate(err))
	}
	return res.URL, nil
}

func translate(err error) error {
	var serr *oss.ServiceError
	if errors.As(err, &serr) {
		return &storage.StatusError{
			StatusCode: serr.StatusCode,
			Code:       serr.Code,
			Message:    serr.Message,
			Err:        err,
		}
	}
	return err
}
