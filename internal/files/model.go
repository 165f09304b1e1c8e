// Package files 定义上传、下载流程共用的领域模型与错误分类。
package files

import (
	"fmt"
	"strings"
)

// DirectoryMode 决定对象键中是否追加日期子目录。
type DirectoryMode string

const (
	DirectoryFlat      DirectoryMode = "no_subdirectory"
	DirectoryHierarchy DirectoryMode = "yyyy_mm_dd_hierarchy"
	DirectoryCombined  DirectoryMode = "yyyy_mm_dd_combined"
)

// ParseDirectoryMode 解析目录模式，空值返回默认的 no_subdirectory。
func ParseDirectoryMode(raw string) (DirectoryMode, error) {
	switch mode := DirectoryMode(strings.TrimSpace(raw)); mode {
	case "":
		return DirectoryFlat, nil
	case DirectoryFlat, DirectoryHierarchy, DirectoryCombined:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: directory_mode %q", ErrInvalidParameter, raw)
	}
}

// FilenameMode 决定显式文件名是否追加时间戳。
type FilenameMode string

const (
	FilenamePlain     FilenameMode = "filename"
	FilenameTimestamp FilenameMode = "filename_timestamp"
)

// ParseFilenameMode 解析文件名模式，空值返回默认的 filename。
func ParseFilenameMode(raw string) (FilenameMode, error) {
	switch mode := FilenameMode(strings.TrimSpace(raw)); mode {
	case "":
		return FilenamePlain, nil
	case FilenamePlain, FilenameTimestamp:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: filename_mode %q", ErrInvalidParameter, raw)
	}
}

// MaxBatchFiles 单次批量上传允许的最大文件数。
const MaxBatchFiles = 10

// DefaultSignedExpiry 签名链接默认有效期（秒）。
const DefaultSignedExpiry = 3600

// FileDescriptor 描述一个待上传文件以及推断文件名所需的提示信息。
type FileDescriptor struct {
	Content     Content
	Filename    string // 显式文件名，优先级最高
	SourceName  string // 来源文件的原始名称
	ContentType string // 声明的 MIME 类型
}

// UploadRequest 聚合一次上传调用的共享参数。
type UploadRequest struct {
	Files         []FileDescriptor
	Directory     string
	DirectoryMode DirectoryMode
	FilenameMode  FilenameMode
	Signed        bool
	SignedExpiry  int
}

// UploadStatus 标记单个文件的上传结果。
type UploadStatus string

const (
	StatusSuccess UploadStatus = "success"
	StatusError   UploadStatus = "error"
)

// UploadResult 对应输入中的一个文件，顺序与输入一致。
type UploadResult struct {
	Status      UploadStatus `json:"status"`
	Index       int          `json:"index"`
	Filename    string       `json:"filename"`
	ObjectKey   string       `json:"object_key,omitempty"`
	FileURL     string       `json:"file_url,omitempty"`
	Size        int64        `json:"size"`
	ContentType string       `json:"content_type,omitempty"`
	SourceName  string       `json:"source_name,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// BatchSummary 是批量上传的整体结果。
type BatchSummary struct {
	BatchID      string         `json:"batch_id"`
	SuccessCount int            `json:"success_count"`
	ErrorCount   int            `json:"error_count"`
	Results      []UploadResult `json:"results"`
}

// ResolvedFile 是下载得到的文件，存储下载与公网下载共用。
type ResolvedFile struct {
	Filename    string `json:"filename"`
	Extension   string `json:"extension"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Content     []byte `json:"content,omitempty"`
}

// Metadata 是随文件内容一并输出的描述信息。
type Metadata struct {
	Filename       string `json:"filename"`
	ContentType    string `json:"content_type"`
	Size           int64  `json:"size"`
	MimeType       string `json:"mime_type"`
	Extension      string `json:"extension"`
	IsImage        bool   `json:"is_image,omitempty"`
	DisplayAsImage bool   `json:"display_as_image,omitempty"`
	Type           string `json:"type,omitempty"`
}

// Metadata 生成输出元数据，图片类型额外带上展示标记。
func (f *ResolvedFile) Metadata() Metadata {
	meta := Metadata{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		MimeType:    f.ContentType,
		Extension:   f.Extension,
	}
	if strings.HasPrefix(f.ContentType, "image/") {
		meta.IsImage = true
		meta.DisplayAsImage = true
		meta.Type = "image"
	}
	return meta
}

// DownloadItem 是批量下载中单个 URL 的结果。
type DownloadItem struct {
	URL   string        `json:"url"`
	File  *ResolvedFile `json:"file,omitempty"`
	Error string        `json:"error,omitempty"`
}

// SplitURLList 按分号拆分 URL 列表，去掉首尾空白并丢弃空项。
func SplitURLList(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
