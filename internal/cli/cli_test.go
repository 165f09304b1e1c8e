package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"ossbridge/internal/bootstrap"
	"ossbridge/internal/fetch"
	"ossbridge/internal/files"
	"ossbridge/internal/service"
	"ossbridge/internal/storage"
	"ossbridge/internal/storage/local"
)

func localBuilder(t *testing.T) Builder {
	t.Helper()
	base := t.TempDir()
	creds := storage.Credentials{
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
		Endpoint:        "oss-cn-hangzhou.aliyuncs.com",
		Bucket:          "mybucket",
		Directory:       "cli",
	}
	components := &bootstrap.Components{
		Gateway: service.NewGateway(local.Opener(base), creds),
		Fetcher: fetch.New(),
	}
	return func(cmd *cobra.Command) (*bootstrap.Components, error) {
		return components, nil
	}
}

func run(t *testing.T, build Builder, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(build)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestUploadThenDownload(t *testing.T) {
	build := localBuilder(t)
	src := writeTemp(t, "notes.txt", "cli round trip")

	out, err := run(t, build, "upload", src, "--name", "renamed.txt")
	if err != nil {
		t.Fatalf("upload failed: %v (%s)", err, out)
	}
	var result files.UploadResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode upload output: %v (%s)", err, out)
	}
	if result.ObjectKey != "cli/renamed.txt" {
		t.Fatalf("unexpected object key %s", result.ObjectKey)
	}

	dest := t.TempDir()
	out, err = run(t, build, "download", result.FileURL, "-o", dest)
	if err != nil {
		t.Fatalf("download failed: %v (%s)", err, out)
	}
	data, err := os.ReadFile(filepath.Join(dest, "renamed.txt"))
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "cli round trip" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestUploadBatch(t *testing.T) {
	build := localBuilder(t)
	a := writeTemp(t, "a.txt", "a")
	b := writeTemp(t, "b.txt", "b")

	out, err := run(t, build, "upload", a, b, "--dir", "many", "--dir-mode", "yyyy_mm_dd_combined")
	if err != nil {
		t.Fatalf("batch upload failed: %v (%s)", err, out)
	}
	var summary files.BatchSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if summary.SuccessCount != 2 || summary.ErrorCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestUpload_InvalidDirectory(t *testing.T) {
	src := writeTemp(t, "a.txt", "a")

	_, err := run(t, localBuilder(t), "upload", src, "--dir", "/abs")
	if err == nil || !strings.Contains(err.Error(), "invalid directory") {
		t.Fatalf("expected invalid directory error, got %v", err)
	}
}

func TestDownload_BatchReportsFailures(t *testing.T) {
	build := localBuilder(t)
	src := writeTemp(t, "ok.txt", "ok")
	if _, err := run(t, build, "upload", src); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	dest := t.TempDir()
	urls := "http://mybucket.oss-cn-hangzhou.aliyuncs.com/cli/ok.txt;http://mybucket.oss-cn-hangzhou.aliyuncs.com/cli/missing.txt"
	out, err := run(t, build, "download", urls, "-o", dest)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("expected partial failure, got %v (%s)", err, out)
	}
	if _, err := os.Stat(filepath.Join(dest, "ok.txt")); err != nil {
		t.Fatalf("expected successful file to be saved: %v", err)
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, localBuilder(t), "validate")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "credentials ok: bucket mybucket") {
		t.Fatalf("unexpected output %q", out)
	}
}
