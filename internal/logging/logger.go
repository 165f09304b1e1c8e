// Package logging 基于 zerolog 创建日志器，支持控制台与 lumberjack 轮转文件输出。
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 7
	fileMaxAgeDays = 28
)

// Options 控制日志输出。
type Options struct {
	Level   string    // trace / debug / info / warn / error
	File    string    // 为空时不写文件
	Console io.Writer // 默认 os.Stderr
}

// New 创建一个结构化日志器，级别无法解析时退回 info。
func New(opts Options) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		if opts.Level != "" {
			fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", opts.Level)
		}
		lvl = zerolog.InfoLevel
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}}

	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			Compress:   true,
		})
	}

	return zerolog.New(io.MultiWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "ossbridge").
		Logger()
}
