package naming

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ossbridge/internal/files"
)

var fixedDay = time.Date(2025, time.September, 10, 14, 30, 5, 0, time.UTC)

func TestBuildKey_DateModes(t *testing.T) {
	cases := []struct {
		mode files.DirectoryMode
		want string
	}{
		{files.DirectoryFlat, "docs/a.txt"},
		{files.DirectoryHierarchy, "docs/2025/09/10/a.txt"},
		{files.DirectoryCombined, "docs/20250910/a.txt"},
	}
	for _, tc := range cases {
		got, err := BuildKey(fixedDay, "docs", tc.mode, "a.txt")
		if err != nil {
			t.Fatalf("mode %s: unexpected error: %v", tc.mode, err)
		}
		if got != tc.want {
			t.Fatalf("mode %s: expected %q, got %q", tc.mode, tc.want, got)
		}
	}
}

func TestBuildKey_RejectsForbiddenDirectoryPrefix(t *testing.T) {
	for _, dir := range []string{" docs", "/docs", `\docs`, "/", ""} {
		_, err := BuildKey(fixedDay, dir, files.DirectoryFlat, "a.txt")
		if !errors.Is(err, files.ErrInvalidDirectory) {
			t.Fatalf("directory %q: expected ErrInvalidDirectory, got %v", dir, err)
		}
	}
}

func TestBuildKey_NormalizesSeparators(t *testing.T) {
	inputs := []struct {
		dir      string
		filename string
	}{
		{"docs/", "a.txt"},
		{"docs//", "/a.txt"},
		{`docs\sub`, `nested\a.txt`},
		{"docs/sub/", "a.txt/"},
		{"docs", `\\a.txt`},
	}
	modes := []files.DirectoryMode{files.DirectoryFlat, files.DirectoryHierarchy, files.DirectoryCombined}

	for _, in := range inputs {
		for _, mode := range modes {
			key, err := BuildKey(fixedDay, in.dir, mode, in.filename)
			if err != nil {
				t.Fatalf("%q + %q: unexpected error: %v", in.dir, in.filename, err)
			}
			if strings.Contains(key, `\`) {
				t.Fatalf("key %q contains a backslash", key)
			}
			if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
				t.Fatalf("key %q starts or ends with a slash", key)
			}
			if strings.Contains(key, "//") {
				t.Fatalf("key %q contains an empty segment", key)
			}
		}
	}

	key, _ := BuildKey(fixedDay, `docs\sub`, files.DirectoryFlat, `nested\a.txt`)
	if key != "docs/sub/nested/a.txt" {
		t.Fatalf("unexpected normalized key %q", key)
	}
}

func TestBuildKey_RequiresFilename(t *testing.T) {
	_, err := BuildKey(fixedDay, "docs", files.DirectoryFlat, "/")
	if !errors.Is(err, files.ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestBuildKey_UnknownMode(t *testing.T) {
	_, err := BuildKey(fixedDay, "docs", files.DirectoryMode("weekly"), "a.txt")
	if !errors.Is(err, files.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
