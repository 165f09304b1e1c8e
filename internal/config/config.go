package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ossbridge/internal/rule"
	"ossbridge/internal/storage"
)

// EnvPrefix 所有环境变量的前缀，例如 OSSBRIDGE_PORT。
const EnvPrefix = "OSSBRIDGE"

// Config 聚合服务启动需要的关键配置。
type Config struct {
	HTTPPort           string   `mapstructure:"port" rule:"required"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	RateLimitRPS       float64  `mapstructure:"rate_limit_rps" rule:"gte=0"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst" rule:"gte=0"`
	// 鉴权配置
	AuthEnabled bool     `mapstructure:"auth_enabled"`
	APIKeys     []string `mapstructure:"api_keys"`
	JWTSecret   string   `mapstructure:"jwt_secret"`
	JWKSURL     string   `mapstructure:"jwks_url" rule:"omitempty,url"`
	// 日志配置
	LogLevel string `mapstructure:"log_level" rule:"oneof=trace debug info warn error"`
	LogFile  string `mapstructure:"log_file"`
	// 存储配置
	StorageDriver string `mapstructure:"storage_driver" rule:"oneof=oss s3 local"`
	LocalDir      string `mapstructure:"local_dir"`
	OSS           OSSConfig
	// 公网下载配置
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	FetchUserAgent string        `mapstructure:"fetch_user_agent"`
	FetchMaxBytes  int64         `mapstructure:"fetch_max_bytes" rule:"gte=0"`
}

// OSSConfig 是默认凭据，对应 OSSBRIDGE_OSS_* 环境变量。
type OSSConfig struct {
	AccessKeyID      string   `mapstructure:"oss_access_key_id"`
	AccessKeySecret  string   `mapstructure:"oss_access_key_secret"`
	Endpoint         string   `mapstructure:"oss_endpoint"`
	Bucket           string   `mapstructure:"oss_bucket"`
	Region           string   `mapstructure:"oss_region"`
	UseHTTPS         bool     `mapstructure:"oss_use_https"`
	PathStyle        bool     `mapstructure:"oss_path_style"`
	Directory        string   `mapstructure:"oss_directory" rule:"omitempty,objdir"`
	Filename         string   `mapstructure:"oss_filename" rule:"omitempty,objdir"`
	CustomDomains    []string `mapstructure:"oss_custom_domains"`
	// 下载 URL 允许指向的 endpoint，为空表示不限制
	AllowedEndpoints []string `mapstructure:"oss_allowed_endpoints"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("cors_allowed_origins", "http://localhost:5173")
	v.SetDefault("rate_limit_rps", 1.0)
	v.SetDefault("rate_limit_burst", 60)
	v.SetDefault("auth_enabled", true)
	// 开发环境默认 key
	v.SetDefault("api_keys", "dev-api-key-123456")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwks_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("storage_driver", "oss")
	v.SetDefault("local_dir", "./data")
	v.SetDefault("oss_access_key_id", "")
	v.SetDefault("oss_access_key_secret", "")
	v.SetDefault("oss_endpoint", "")
	v.SetDefault("oss_bucket", "")
	v.SetDefault("oss_region", "")
	v.SetDefault("oss_use_https", true)
	v.SetDefault("oss_path_style", false)
	v.SetDefault("oss_directory", "")
	v.SetDefault("oss_filename", "")
	v.SetDefault("oss_custom_domains", "")
	v.SetDefault("oss_allowed_endpoints", "")
	v.SetDefault("fetch_timeout", "30s")
	v.SetDefault("fetch_user_agent", "")
	v.SetDefault("fetch_max_bytes", int64(100<<20))
}

// Load 依次读取 .env（若存在）与环境变量，并提供默认值。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := &Config{
		HTTPPort:           v.GetString("port"),
		CORSAllowedOrigins: parseList(v.GetString("cors_allowed_origins")),
		RateLimitRPS:       v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:     v.GetInt("rate_limit_burst"),
		AuthEnabled:        v.GetBool("auth_enabled"),
		APIKeys:            parseList(v.GetString("api_keys")),
		JWTSecret:          v.GetString("jwt_secret"),
		JWKSURL:            v.GetString("jwks_url"),
		LogLevel:           strings.ToLower(v.GetString("log_level")),
		LogFile:            v.GetString("log_file"),
		StorageDriver:      strings.ToLower(v.GetString("storage_driver")),
		LocalDir:           v.GetString("local_dir"),
		OSS: OSSConfig{
			AccessKeyID:      v.GetString("oss_access_key_id"),
			AccessKeySecret:  v.GetString("oss_access_key_secret"),
			Endpoint:         v.GetString("oss_endpoint"),
			Bucket:           v.GetString("oss_bucket"),
			Region:           v.GetString("oss_region"),
			UseHTTPS:         v.GetBool("oss_use_https"),
			PathStyle:        v.GetBool("oss_path_style"),
			Directory:        v.GetString("oss_directory"),
			Filename:         v.GetString("oss_filename"),
			CustomDomains:    parseList(v.GetString("oss_custom_domains")),
			AllowedEndpoints: parseList(v.GetString("oss_allowed_endpoints")),
		},
		FetchTimeout:   v.GetDuration("fetch_timeout"),
		FetchUserAgent: v.GetString("fetch_user_agent"),
		FetchMaxBytes:  v.GetInt64("fetch_max_bytes"),
	}

	if err := rule.ValidateStruct(cfg); err != nil {
		if errs := rule.Errors(err); errs != nil {
			return nil, fmt.Errorf("invalid configuration: %s", errs.String())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.StorageDriver == "local" {
		if err := ensureDir(cfg.LocalDir); err != nil {
			return nil, fmt.Errorf("确保存储目录失败: %w", err)
		}
	}

	return cfg, nil
}

// Credentials 把配置转换为默认存储凭据。
func (c *Config) Credentials() storage.Credentials {
	return storage.Credentials{
		AccessKeyID:     c.OSS.AccessKeyID,
		AccessKeySecret: c.OSS.AccessKeySecret,
		Endpoint:        c.OSS.Endpoint,
		Bucket:          c.OSS.Bucket,
		Region:          c.OSS.Region,
		UseHTTPS:        c.OSS.UseHTTPS,
		PathStyle:       c.OSS.PathStyle,
		Directory:       c.OSS.Directory,
		Filename:        c.OSS.Filename,
	}
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("路径 %s 已存在但不是目录", path)
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}

	return err
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}

	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
