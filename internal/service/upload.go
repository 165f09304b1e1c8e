package service

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"ossbridge/internal/files"
	"ossbridge/internal/naming"
	"ossbridge/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// UploadFile 上传单个文件，任何失败都直接返回给调用方。
func (g *Gateway) UploadFile(ctx context.Context, req files.UploadRequest) (*files.UploadResult, error) {
	if len(req.Files) != 1 {
		return nil, fmt.Errorf("upload file: %w: expected exactly one file, got %d", files.ErrInvalidParameter, len(req.Files))
	}
	// 复制描述符切片，默认文件名不能写回调用方的数据
	req.Files = append([]files.FileDescriptor(nil), req.Files...)
	if req.Files[0].Filename == "" && g.creds.Filename != "" {
		req.Files[0].Filename = g.creds.Filename
	}

	req, err := g.prepareUpload(req)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	client, err := g.open(ctx, g.creds)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	result, err := g.uploadOne(ctx, client, req, 0, g.now())
	if err != nil {
		observeStorage("put", err)
		return nil, fmt.Errorf("upload file: %w", err)
	}
	observeStorage("put", nil)
	return &result, nil
}

// UploadBatch 逐个上传文件。参数校验失败时整个调用失败；
// 单个文件失败只记录在对应结果中，不影响其它文件，调用本身返回成功。
func (g *Gateway) UploadBatch(ctx context.Context, req files.UploadRequest) (*files.BatchSummary, error) {
	req, err := g.prepareUpload(req)
	if err != nil {
		return nil, fmt.Errorf("upload batch: %w", err)
	}

	client, err := g.open(ctx, g.creds)
	if err != nil {
		return nil, fmt.Errorf("upload batch: %w", err)
	}

	summary := &files.BatchSummary{
		BatchID: uuid.NewString(),
		Results: make([]files.UploadResult, 0, len(req.Files)),
	}
	logger := g.logger.With().Str("batch_id", summary.BatchID).Logger()

	for i := range req.Files {
		result, err := g.uploadOne(ctx, client, req, i, g.now())
		observeStorage("put", err)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("file upload failed")
			summary.ErrorCount++
			summary.Results = append(summary.Results, files.UploadResult{
				Status:     files.StatusError,
				Index:      i,
				Filename:   failedName(req.Files[i], i),
				SourceName: req.Files[i].SourceName,
				Error:      err.Error(),
			})
			continue
		}
		logger.Debug().Int("index", i).Str("object_key", result.ObjectKey).Msg("file uploaded")
		summary.SuccessCount++
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

// prepareUpload 执行所有对整个调用致命的校验，并补齐默认值。
func (g *Gateway) prepareUpload(req files.UploadRequest) (files.UploadRequest, error) {
	if err := g.creds.Validate(); err != nil {
		return req, err
	}

	switch n := len(req.Files); {
	case n == 0:
		return req, fmt.Errorf("%w: files", files.ErrMissingParameter)
	case n > files.MaxBatchFiles:
		return req, fmt.Errorf("%w: at most %d files per request, got %d", files.ErrInvalidParameter, files.MaxBatchFiles, n)
	}

	if req.Directory == "" {
		req.Directory = g.creds.Directory
	}
	if req.Directory == "" {
		return req, fmt.Errorf("%w: directory", files.ErrMissingParameter)
	}
	if err := naming.ValidateDirectory(req.Directory); err != nil {
		return req, err
	}

	dirMode, err := files.ParseDirectoryMode(string(req.DirectoryMode))
	if err != nil {
		return req, err
	}
	req.DirectoryMode = dirMode

	nameMode, err := files.ParseFilenameMode(string(req.FilenameMode))
	if err != nil {
		return req, err
	}
	req.FilenameMode = nameMode

	if req.SignedExpiry <= 0 {
		req.SignedExpiry = files.DefaultSignedExpiry
	}
	return req, nil
}

func (g *Gateway) uploadOne(ctx context.Context, client storage.Client, req files.UploadRequest, index int, now time.Time) (files.UploadResult, error) {
	desc := req.Files[index]
	if desc.Content == nil {
		return files.UploadResult{}, fmt.Errorf("%w: file %d has no content", files.ErrUnsupportedFileType, index+1)
	}

	size, err := desc.Content.Size()
	if err != nil {
		return files.UploadResult{}, fmt.Errorf("measure file %d: %w", index+1, err)
	}

	sourceName := desc.SourceName
	if path, ok := desc.Content.(files.Path); ok && sourceName == "" {
		sourceName = filepath.Base(string(path))
	}

	filename, ext := g.resolver.Resolve(naming.Hints{
		Filename:    desc.Filename,
		SourceName:  sourceName,
		ContentType: desc.ContentType,
		Index:       index,
		BatchSize:   len(req.Files),
		DefaultExt:  naming.UploadDefaultExt,
	}, req.FilenameMode, now)

	key, err := naming.BuildKey(now, req.Directory, req.DirectoryMode, filename)
	if err != nil {
		return files.UploadResult{}, err
	}

	contentType := detectContentType(desc, ext)

	switch content := desc.Content.(type) {
	case files.Path:
		if _, err := client.PutFile(ctx, key, string(content), contentType); err != nil {
			return files.UploadResult{}, storageErr(fmt.Sprintf("upload file %d", index+1), err)
		}
	default:
		body, err := content.Open()
		if err != nil {
			return files.UploadResult{}, fmt.Errorf("open file %d: %w", index+1, err)
		}
		_, err = client.Put(ctx, key, body, size, contentType)
		body.Close()
		if err != nil {
			return files.UploadResult{}, storageErr(fmt.Sprintf("upload file %d", index+1), err)
		}
	}

	fileURL := g.creds.ObjectURL(key)
	if req.Signed {
		signed, err := client.Sign(ctx, key, time.Duration(req.SignedExpiry)*time.Second)
		if err != nil {
			return files.UploadResult{}, storageErr(fmt.Sprintf("sign url for file %d", index+1), err)
		}
		fileURL = signed
	}

	return files.UploadResult{
		Status:      files.StatusSuccess,
		Index:       index,
		Filename:    filename,
		ObjectKey:   key,
		FileURL:     fileURL,
		Size:        size,
		ContentType: contentType,
		SourceName:  sourceName,
	}, nil
}

// detectContentType 依次使用声明的类型、内容嗅探、扩展名映射。
func detectContentType(desc files.FileDescriptor, ext string) string {
	if ct := naming.StripParams(desc.ContentType); ct != "" {
		return ct
	}

	switch content := desc.Content.(type) {
	case files.Bytes:
		return mimetype.Detect(content).String()
	case files.Path:
		if mtype, err := mimetype.DetectFile(string(content)); err == nil {
			return mtype.String()
		}
	}

	if ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}

func failedName(desc files.FileDescriptor, index int) string {
	switch {
	case strings.TrimSpace(desc.Filename) != "":
		return desc.Filename
	case strings.TrimSpace(desc.SourceName) != "":
		return naming.BaseName(desc.SourceName)
	default:
		return fmt.Sprintf("file_%d", index+1)
	}
}
