package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ossbridge/internal/files"
	"ossbridge/internal/naming"
	"ossbridge/internal/ossurl"
	"ossbridge/internal/storage"
)

const defaultContentType = "application/octet-stream"

// Target 指定要下载的对象：URL 或者配置 bucket 内的对象键，URL 优先。
type Target struct {
	URL string
	Key string
}

// Download 下载单个对象，失败时返回带上下文的错误。
func (g *Gateway) Download(ctx context.Context, target Target) (*files.ResolvedFile, error) {
	if err := g.creds.Validate(); err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}

	file, err := g.download(ctx, target)
	observeStorage("get", err)
	if err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}
	return file, nil
}

// DownloadBatch 下载以分号分隔的多个 URL。单个 URL 失败只记录在对应条目中。
func (g *Gateway) DownloadBatch(ctx context.Context, rawURLs string) ([]files.DownloadItem, error) {
	if err := g.creds.Validate(); err != nil {
		return nil, fmt.Errorf("download batch: %w", err)
	}

	urls := files.SplitURLList(rawURLs)
	if len(urls) == 0 {
		return nil, fmt.Errorf("download batch: %w: file_urls", files.ErrMissingParameter)
	}

	items := make([]files.DownloadItem, 0, len(urls))
	for _, u := range urls {
		file, err := g.download(ctx, Target{URL: u})
		observeStorage("get", err)
		if err != nil {
			g.logger.Warn().Err(err).Str("url", u).Msg("object download failed")
			items = append(items, files.DownloadItem{
				URL:   u,
				Error: fmt.Sprintf("failed to download file from %s: %v", u, err),
			})
			continue
		}
		items = append(items, files.DownloadItem{URL: u, File: file})
	}
	return items, nil
}

func (g *Gateway) download(ctx context.Context, target Target) (*files.ResolvedFile, error) {
	creds := g.creds
	key := strings.TrimLeft(target.Key, "/")

	if raw := strings.TrimSpace(target.URL); raw != "" {
		loc, err := ossurl.Parse(raw)
		if err != nil {
			return nil, err
		}
		if loc.HasBucket && !g.isCustomDomain(loc) {
			if !g.endpointAllowed(loc.Host) {
				return nil, fmt.Errorf("%w: endpoint %s is not allowed", files.ErrInvalidParameter, loc.Host)
			}
			creds = creds.WithTarget(loc.Bucket, loc.Host)
			creds.UseHTTPS = loc.Scheme == "https"
		}
		key = loc.Key
	}
	if key == "" {
		return nil, fmt.Errorf("%w: object key", files.ErrMissingParameter)
	}

	client, err := g.open(ctx, creds)
	if err != nil {
		return nil, err
	}

	obj, err := client.Get(ctx, key)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get %s/%s", creds.Bucket, key), err)
	}
	defer obj.Body.Close()

	content, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("read %s/%s", creds.Bucket, key), err)
	}

	contentType := naming.StripParams(obj.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	filename := naming.BaseName(key)
	_, ext := naming.SplitExt(filename)
	ext = naming.NormalizeExtension(ext)
	if ext == "" {
		ext = naming.ExtensionForType(contentType, naming.DownloadDefaultExt)
	}

	return &files.ResolvedFile{
		Filename:    filename,
		Extension:   ext,
		ContentType: contentType,
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

func (g *Gateway) isCustomDomain(loc ossurl.Location) bool {
	host := strings.ToLower(loc.Bucket + "." + loc.Host)
	if _, ok := g.customDomains[host]; ok {
		return true
	}
	// 端口不参与匹配
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		_, ok := g.customDomains[host[:idx]]
		return ok
	}
	return false
}

// endpointAllowed 判断 URL 中的 endpoint 是否可用于下载，配置中的 endpoint 始终可用。
func (g *Gateway) endpointAllowed(host string) bool {
	if len(g.allowedEndpoints) == 0 {
		return true
	}
	host = strings.ToLower(host)
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	if host == strings.ToLower(storage.EndpointHost(g.creds.Endpoint)) {
		return true
	}
	_, ok := g.allowedEndpoints[host]
	return ok
}
