package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"ossbridge/internal/files"
)

func validCreds() Credentials {
	return Credentials{
		AccessKeyID:     "id",
		AccessKeySecret: "secret",
		Endpoint:        "oss-cn-hangzhou.aliyuncs.com",
		Bucket:          "mybucket",
		UseHTTPS:        true,
	}
}

func TestCredentials_ValidateRequiredFields(t *testing.T) {
	if err := validCreds().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blankers := []func(*Credentials){
		func(c *Credentials) { c.AccessKeyID = "" },
		func(c *Credentials) { c.AccessKeySecret = "  " },
		func(c *Credentials) { c.Endpoint = "" },
		func(c *Credentials) { c.Bucket = "" },
	}
	for i, blank := range blankers {
		creds := validCreds()
		blank(&creds)
		if err := creds.Validate(); !errors.Is(err, files.ErrMissingParameter) {
			t.Fatalf("case %d: expected ErrMissingParameter, got %v", i, err)
		}
	}
}

func TestCredentials_ValidateDefaults(t *testing.T) {
	creds := validCreds()
	creds.Directory = "/uploads"
	if err := creds.Validate(); !errors.Is(err, files.ErrInvalidDirectory) {
		t.Fatalf("expected ErrInvalidDirectory, got %v", err)
	}

	creds = validCreds()
	creds.Filename = ` name.txt`
	if err := creds.Validate(); !errors.Is(err, files.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestCredentials_ObjectURL(t *testing.T) {
	creds := validCreds()
	creds.Endpoint = "https://oss-cn-hangzhou.aliyuncs.com/"
	got := creds.ObjectURL("docs/a b.png")
	want := "https://mybucket.oss-cn-hangzhou.aliyuncs.com/docs/a%20b.png"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	creds.UseHTTPS = false
	if got := creds.ObjectURL("k"); got != "http://mybucket.oss-cn-hangzhou.aliyuncs.com/k" {
		t.Fatalf("unexpected http url %q", got)
	}
}

func TestStatusError_NotFound(t *testing.T) {
	err := fmt.Errorf("get object: %w", &StatusError{StatusCode: http.StatusNotFound, Code: "NoSuchKey"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected 404 StatusError to match ErrNotFound")
	}
	if StatusCode(err) != http.StatusNotFound {
		t.Fatalf("unexpected status %d", StatusCode(err))
	}
}
