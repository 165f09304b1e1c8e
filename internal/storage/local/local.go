// Package local 把对象保存在本地文件系统，目录结构为 {baseDir}/{bucket}/{key}。
// 用于开发环境与测试，不支持签名链接。
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ossbridge/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

// Storage 将对象写入本地文件系统。
type Storage struct {
	root string
}

// New 创建 bucket 目录并返回存储实例。
func New(baseDir, bucket string) (*Storage, error) {
	if baseDir == "" || bucket == "" {
		return nil, fmt.Errorf("local storage needs a base dir and a bucket")
	}
	root := filepath.Join(baseDir, filepath.Clean("/"+bucket))
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("ensure bucket dir: %w", err)
	}
	return &Storage{root: root}, nil
}

// Opener 返回一个按凭据中的 bucket 选择子目录的 storage.Opener，忽略 endpoint。
func Opener(baseDir string) storage.Opener {
	return storage.OpenerFunc(func(ctx context.Context, creds storage.Credentials) (storage.Client, error) {
		return New(baseDir, creds.Bucket)
	})
}

func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.Location, error) {
	if s == nil {
		return storage.Location{}, fmt.Errorf("local storage uninitialized")
	}

	select {
	case <-ctx.Done():
		return storage.Location{}, ctx.Err()
	default:
	}

	targetPath, err := s.resolve(key)
	if err != nil {
		return storage.Location{}, err
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return storage.Location{}, fmt.Errorf("ensure dir: %w", err)
	}

	tempPath := targetPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return storage.Location{}, fmt.Errorf("create temp file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(tempPath)
		return storage.Location{}, fmt.Errorf("write file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return storage.Location{}, fmt.Errorf("sync file: %w", err)
	}

	if err := file.Close(); err != nil {
		return storage.Location{}, fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return storage.Location{}, fmt.Errorf("rename temp file: %w", err)
	}

	return storage.Location{Key: key}, nil
}

func (s *Storage) PutFile(ctx context.Context, key, path, contentType string) (storage.Location, error) {
	src, err := os.Open(path)
	if err != nil {
		return storage.Location{}, fmt.Errorf("open source file: %w", err)
	}
	defer src.Close()

	return s.Put(ctx, key, src, -1, contentType)
}

// Get 打开对象文件，Content-Type 通过内容嗅探得到。
func (s *Storage) Get(ctx context.Context, key string) (*storage.Object, error) {
	if s == nil {
		return nil, fmt.Errorf("local storage uninitialized")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	targetPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectReader(file); err == nil {
		contentType = mtype.String()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("rewind file: %w", err)
	}

	return &storage.Object{Body: file, ContentType: contentType, Size: info.Size()}, nil
}

func (s *Storage) Probe(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("local storage uninitialized")
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrNotFound, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}
	return nil
}

func (s *Storage) Sign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", storage.ErrSignUnsupported
}

// resolve 把对象键映射到 bucket 目录内的路径，拒绝逃逸出目录的键。
func (s *Storage) resolve(key string) (string, error) {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if target != s.root && !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes bucket", key)
	}
	return target, nil
}
