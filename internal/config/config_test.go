package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.HTTPPort != "8080" || cfg.StorageDriver != "oss" || !cfg.AuthEnabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.FetchTimeout != 30*time.Second || cfg.FetchMaxBytes != 100<<20 {
		t.Fatalf("unexpected fetch defaults: %v %d", cfg.FetchTimeout, cfg.FetchMaxBytes)
	}
	if len(cfg.APIKeys) != 1 || !cfg.OSS.UseHTTPS {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "objects")
	t.Setenv("OSSBRIDGE_PORT", "9090")
	t.Setenv("OSSBRIDGE_STORAGE_DRIVER", "LOCAL")
	t.Setenv("OSSBRIDGE_LOCAL_DIR", dir)
	t.Setenv("OSSBRIDGE_API_KEYS", "a, b,,c")
	t.Setenv("OSSBRIDGE_OSS_BUCKET", "mybucket")
	t.Setenv("OSSBRIDGE_OSS_ENDPOINT", "oss-cn-hangzhou.aliyuncs.com")
	t.Setenv("OSSBRIDGE_OSS_USE_HTTPS", "false")
	t.Setenv("OSSBRIDGE_OSS_DIRECTORY", "uploads")
	t.Setenv("OSSBRIDGE_OSS_CUSTOM_DOMAINS", "cdn.example.com")
	t.Setenv("OSSBRIDGE_OSS_ALLOWED_ENDPOINTS", "oss-cn-beijing.aliyuncs.com, oss-cn-shanghai.aliyuncs.com")
	t.Setenv("OSSBRIDGE_FETCH_TIMEOUT", "5s")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.HTTPPort != "9090" || cfg.StorageDriver != "local" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if strings.Join(cfg.APIKeys, "|") != "a|b|c" {
		t.Fatalf("unexpected api keys: %v", cfg.APIKeys)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected local dir to be created: %v", err)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Fatalf("unexpected fetch timeout: %v", cfg.FetchTimeout)
	}

	creds := cfg.Credentials()
	if creds.Bucket != "mybucket" || creds.UseHTTPS || creds.Directory != "uploads" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
	if len(cfg.OSS.CustomDomains) != 1 {
		t.Fatalf("unexpected custom domains: %v", cfg.OSS.CustomDomains)
	}
	if len(cfg.OSS.AllowedEndpoints) != 2 || cfg.OSS.AllowedEndpoints[1] != "oss-cn-shanghai.aliyuncs.com" {
		t.Fatalf("unexpected allowed endpoints: %v", cfg.OSS.AllowedEndpoints)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"driver", "OSSBRIDGE_STORAGE_DRIVER", "ftp", "storage_driver"},
		{"log level", "OSSBRIDGE_LOG_LEVEL", "verbose", "log_level"},
		{"directory", "OSSBRIDGE_OSS_DIRECTORY", "/root", "oss_directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := load(viper.New())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
