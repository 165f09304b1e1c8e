package oss

import (
	"testing"

	"ossbridge/internal/storage"
)

func TestRegionFromEndpoint(t *testing.T) {
	cases := map[string]string{
		"oss-cn-hangzhou.aliyuncs.com":          "cn-hangzhou",
		"https://oss-cn-shanghai.aliyuncs.com/": "cn-shanghai",
		"oss-cn-beijing-internal.aliyuncs.com":  "cn-beijing",
		"oss-accelerate.aliyuncs.com":           "",
		"s3.oss-cn-hangzhou.aliyuncs.com":       "",
		"minio.local:9000":                      "",
	}
	for endpoint, want := range cases {
		if got := RegionFromEndpoint(endpoint); got != want {
			t.Fatalf("%s: expected %q, got %q", endpoint, want, got)
		}
	}
}

func TestNew_RequiresEndpointAndBucket(t *testing.T) {
	creds := func(endpoint, bucket string) storage.Credentials {
		return storage.Credentials{
			AccessKeyID:     "id",
			AccessKeySecret: "secret",
			Endpoint:        endpoint,
			Bucket:          bucket,
			UseHTTPS:        true,
		}
	}

	if _, err := New(creds("", "bucket")); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	if _, err := New(creds("oss-cn-hangzhou.aliyuncs.com", "")); err == nil {
		t.Fatal("expected error for empty bucket")
	}
	if _, err := New(creds("oss-cn-hangzhou.aliyuncs.com", "bucket")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
