// Package cli 实现 ossctl 命令行工具，与 HTTP 服务共用同一套网关。
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ossbridge/internal/bootstrap"
	"ossbridge/internal/config"
	"ossbridge/internal/logging"
)

// Builder 负责装配命令执行所需的组件，测试时可替换。
type Builder func(cmd *cobra.Command) (*bootstrap.Components, error)

// DefaultBuilder 从 .env 与环境变量加载配置后装配组件。
func DefaultBuilder(cmd *cobra.Command) (*bootstrap.Components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.LevelDebugValue
	}
	logger := logging.New(logging.Options{Level: level, File: cfg.LogFile, Console: cmd.ErrOrStderr()})

	return bootstrap.Build(cfg, logger)
}

// NewRootCommand 创建 ossctl 根命令。
func NewRootCommand(build Builder) *cobra.Command {
	if build == nil {
		build = DefaultBuilder
	}

	root := &cobra.Command{
		Use:           "ossctl",
		Short:         "Upload to and download from Aliyun OSS buckets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newUploadCommand(build),
		newDownloadCommand(build),
		newFetchCommand(build),
		newValidateCommand(build),
	)
	return root
}

// Execute 运行 ossctl。
func Execute() error {
	return NewRootCommand(nil).Execute()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeOutput 把内容写入 output；output 为已存在的目录时使用 filename 作为文件名。
func writeOutput(output, filename string, content []byte) (string, error) {
	target := output
	if target == "" {
		target = filename
	} else if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, filename)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}
