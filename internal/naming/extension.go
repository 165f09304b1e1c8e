package naming

import (
	"path"
	"strings"
)

// 固定的 MIME 到扩展名映射，未命中时由调用方决定默认扩展名。
var extensionsByType = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/jpg":                ".jpg",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/svg+xml":            ".svg",
	"image/x-icon":             ".ico",
	"application/pdf":          ".pdf",
	"application/json":         ".json",
	"application/xml":          ".xml",
	"application/zip":          ".zip",
	"application/gzip":         ".gz",
	"application/msword":       ".doc",
	"application/vnd.ms-excel": ".xls",
	"text/plain":               ".txt",
	"text/html":                ".html",
	"text/csv":                 ".csv",
	"text/markdown":            ".md",
	"audio/mpeg":               ".mp3",
	"audio/wav":                ".wav",
	"video/mp4":                ".mp4",
	"video/quicktime":          ".mov",

	// Office Open XML
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// ExtensionForType 返回 MIME 类型对应的扩展名，忽略参数部分；未知类型返回 fallback。
func ExtensionForType(contentType, fallback string) string {
	mediaType := strings.ToLower(strings.TrimSpace(StripParams(contentType)))
	if ext, ok := extensionsByType[mediaType]; ok {
		return ext
	}
	return NormalizeExtension(fallback)
}

// StripParams 去掉 Content-Type 中 ; 之后的参数，例如 charset。
func StripParams(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}

// NormalizeExtension 转为小写并补齐前导点。
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// SplitExt 把文件名拆为 (base, ext)，行为与 path.Ext 一致，
// 但以点开头且没有其它点的名称（如 .env）视为无扩展名。
func SplitExt(name string) (string, string) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		return name, ""
	}
	return base, ext
}

// BaseName 返回路径中最后一段，兼容 \ 分隔符。
func BaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimRight(name, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
