package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ossbridge/internal/files"
)

func TestFetcher_Fetch_NameFromPath(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.Write([]byte("\x89PNG"))
	}))
	defer srv.Close()

	file, err := New().Fetch(context.Background(), srv.URL+"/images/%E5%9B%BE%E7%89%87.PNG")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if file.Filename != "图片.PNG" || file.Extension != ".png" {
		t.Fatalf("unexpected name: %s %s", file.Filename, file.Extension)
	}
	if file.ContentType != "image/png" || file.Size != 4 {
		t.Fatalf("unexpected file: %+v", file)
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("expected browser user agent, got %q", gotUA)
	}
}

func TestFetcher_Fetch_NameFromContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="quarterly.xlsx"`)
		// 阻止 net/http 按内容推断类型
		w.Header()["Content-Type"] = nil
		w.Write([]byte("sheet"))
	}))
	defer srv.Close()

	file, err := New().Fetch(context.Background(), srv.URL+"/export/")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if file.Filename != "quarterly.xlsx" || file.Extension != ".xlsx" {
		t.Fatalf("unexpected name: %+v", file)
	}
	if file.ContentType != "application/octet-stream" {
		t.Fatalf("expected default content type, got %s", file.ContentType)
	}
}

func TestFetcher_Fetch_FallbackName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	file, err := New().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if file.Filename != "downloaded_file.pdf" {
		t.Fatalf("unexpected filename %s", file.Filename)
	}
}

func TestFetcher_Fetch_ExtensionFromContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG"))
	}))
	defer srv.Close()

	file, err := New().Fetch(context.Background(), srv.URL+"/avatar")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if file.Filename != "avatar" {
		t.Fatalf("unexpected filename %s", file.Filename)
	}
	if file.Extension != ".png" || file.Metadata().Extension != ".png" {
		t.Fatalf("expected extension inferred from content type, got %q", file.Extension)
	}
}

func TestWithHTTPClient_DoesNotModifyCallerClient(t *testing.T) {
	client := &http.Client{}
	f := New(WithTimeout(5*time.Second), WithHTTPClient(client))

	if client.Timeout != 0 {
		t.Fatalf("caller client timeout changed to %s", client.Timeout)
	}
	if f.client == client || f.client.Timeout != 5*time.Second {
		t.Fatalf("expected a copy with the configured timeout, got %+v", f.client)
	}
}

func TestDispositionName_MalformedHeader(t *testing.T) {
	got := dispositionName(`attachment; filename=report%20v2.txt; foo`)
	if got != "report v2.txt" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestFetcher_Fetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/slow") {
			time.Sleep(200 * time.Millisecond)
		}
		if strings.HasSuffix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		fetcher *Fetcher
		url     string
		want    error
	}{
		{"empty", New(), "  ", files.ErrMissingParameter},
		{"no scheme", New(), "example.com/a.txt", files.ErrInvalidURLFormat},
		{"ftp", New(), "ftp://example.com/a.txt", files.ErrInvalidURLFormat},
		{"not found", New(), srv.URL + "/missing", files.ErrFetchFailed},
		{"too large", New(WithMaxBytes(16)), srv.URL + "/big", ErrTooLarge},
		{"timeout", New(WithTimeout(20 * time.Millisecond)), srv.URL + "/slow", files.ErrFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fetcher.Fetch(context.Background(), tt.url)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
