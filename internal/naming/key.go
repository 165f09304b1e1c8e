// Package naming 负责对象键与文件名的生成规则。
package naming

import (
	"fmt"
	"strings"
	"time"

	"ossbridge/internal/files"
)

// BuildKey 按目录模式生成对象键：{directory}[/{日期子目录}]/{filename}。
// 结果只使用 / 分隔，且不会以 / 开头或结尾。
func BuildKey(now time.Time, directory string, mode files.DirectoryMode, filename string) (string, error) {
	if err := ValidateDirectory(directory); err != nil {
		return "", err
	}
	dir := strings.Trim(directory, "/")
	if dir == "" {
		return "", fmt.Errorf("%w: directory is empty", files.ErrInvalidDirectory)
	}

	segments := []string{dir}
	switch mode {
	case files.DirectoryFlat, "":
	case files.DirectoryHierarchy:
		segments = append(segments,
			fmt.Sprintf("%04d", now.Year()),
			fmt.Sprintf("%02d", int(now.Month())),
			fmt.Sprintf("%02d", now.Day()),
		)
	case files.DirectoryCombined:
		segments = append(segments, now.Format("20060102"))
	default:
		return "", fmt.Errorf("%w: directory_mode %q", files.ErrInvalidParameter, mode)
	}

	if strings.Trim(strings.ReplaceAll(filename, `\`, "/"), "/") == "" {
		return "", fmt.Errorf("%w: filename", files.ErrMissingParameter)
	}
	segments = append(segments, filename)

	return normalizeKey(strings.Join(segments, "/")), nil
}

// ValidateDirectory 拒绝空目录以及以空格、/、\ 开头的目录。
func ValidateDirectory(directory string) error {
	if directory == "" {
		return fmt.Errorf("%w: directory is empty", files.ErrInvalidDirectory)
	}
	if HasForbiddenPrefix(directory) {
		return fmt.Errorf("%w: %q cannot start with space, / or \\", files.ErrInvalidDirectory, directory)
	}
	return nil
}

// HasForbiddenPrefix 判断值是否以空格、/ 或 \ 开头。
func HasForbiddenPrefix(value string) bool {
	return strings.HasPrefix(value, " ") ||
		strings.HasPrefix(value, "/") ||
		strings.HasPrefix(value, `\`)
}

// normalizeKey 统一分隔符并去掉空段。
func normalizeKey(key string) string {
	parts := strings.Split(strings.ReplaceAll(key, `\`, "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, "/")
}
