package s3

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"ossbridge/internal/storage"

	"github.com/minio/minio-go/v7"
)

func TestNew_AcceptsSchemeInEndpoint(t *testing.T) {
	s, err := New(storage.Credentials{
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
		Endpoint:        "https://oss-cn-hangzhou.aliyuncs.com/",
		Bucket:          "mybucket",
		UseHTTPS:        true,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if s.client.EndpointURL().Host != "oss-cn-hangzhou.aliyuncs.com" {
		t.Fatalf("unexpected endpoint %s", s.client.EndpointURL())
	}
}

func TestOpener_UsesBucketFromCredentials(t *testing.T) {
	client, err := Opener().Open(context.Background(), storage.Credentials{
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
		Endpoint:        "localhost:9000",
		Bucket:          "other",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if client.(*Storage).bucket != "other" {
		t.Fatalf("unexpected bucket")
	}
}

func TestTranslate(t *testing.T) {
	err := translate(minio.ErrorResponse{StatusCode: http.StatusNotFound, Code: "NoSuchKey", Message: "gone"})

	var statusErr *storage.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != "NoSuchKey" {
		t.Fatalf("expected status error, got %v", err)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("404 should match ErrNotFound")
	}

	plain := errors.New("dial tcp: refused")
	if translate(plain) != plain {
		t.Fatalf("non-service errors must pass through")
	}
}
