package ossurl

import (
	"errors"
	"testing"

	"ossbridge/internal/files"
)

func TestParse_VirtualHostedStyle(t *testing.T) {
	loc, err := Parse("https://mybucket.oss-cn-hangzhou.aliyuncs.com/path/to/file.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loc.HasBucket || loc.Bucket != "mybucket" {
		t.Fatalf("expected bucket mybucket, got %+v", loc)
	}
	if loc.Host != "oss-cn-hangzhou.aliyuncs.com" {
		t.Fatalf("unexpected host %q", loc.Host)
	}
	if loc.Key != "path/to/file.png" {
		t.Fatalf("unexpected key %q", loc.Key)
	}
}

// 多级自定义域名会被拆成 bucket=cdn、host=example.com，行为确定但并非真实 bucket。
func TestParse_MultiLevelCustomDomain(t *testing.T) {
	loc, err := Parse("https://cdn.example.com/a%20b.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Key != "a b.png" {
		t.Fatalf("expected decoded key %q, got %q", "a b.png", loc.Key)
	}
	if !loc.HasBucket || loc.Bucket != "cdn" || loc.Host != "example.com" {
		t.Fatalf("expected first-dot split cdn/example.com, got %+v", loc)
	}
}

func TestParse_BareHostHasNoBucket(t *testing.T) {
	loc, err := Parse("http://localhost:9000/docs/%E6%96%87%E4%BB%B6.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.HasBucket || loc.Bucket != "" || loc.Host != "" {
		t.Fatalf("expected no bucket for bare host, got %+v", loc)
	}
	if loc.Key != "docs/文件.txt" {
		t.Fatalf("unexpected key %q", loc.Key)
	}
}

func TestParse_PortStaysWithEndpoint(t *testing.T) {
	loc, err := Parse("http://bucket.minio.local:9000/k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Bucket != "bucket" || loc.Host != "minio.local:9000" || loc.Key != "k" {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestParse_InvalidFormat(t *testing.T) {
	for _, raw := range []string{"", "docs/a.txt", "mybucket.oss.aliyuncs.com/a.txt", "https:///a.txt", "http://%zz"} {
		if _, err := Parse(raw); !errors.Is(err, files.ErrInvalidURLFormat) {
			t.Fatalf("%q: expected ErrInvalidURLFormat, got %v", raw, err)
		}
	}
}
