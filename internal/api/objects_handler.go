package api

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"ossbridge/internal/files"
	"ossbridge/internal/service"
)

// fileView 是 JSON 形式输出的文件，content 以 base64 编码。
type fileView struct {
	Metadata files.Metadata `json:"metadata"`
	Content  []byte         `json:"content"`
}

type batchItemView struct {
	URL   string    `json:"url"`
	File  *fileView `json:"file,omitempty"`
	Error string    `json:"error,omitempty"`
}

type batchDownloadView struct {
	SuccessCount int             `json:"success_count"`
	ErrorCount   int             `json:"error_count"`
	Items        []batchItemView `json:"items"`
}

// GetObject 按 url 或 key 下载 bucket 中的对象。
func (h *FileHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gateway == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	target := service.Target{
		URL: strings.TrimSpace(r.URL.Query().Get("url")),
		Key: strings.TrimSpace(r.URL.Query().Get("key")),
	}
	if target.URL == "" && target.Key == "" {
		writeError(w, http.StatusBadRequest, "url or key is required")
		return
	}

	file, err := h.gateway.Download(r.Context(), target)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeFile(w, r, file)
}

// GetObjects 下载 urls 参数中以分号分隔的多个对象，单个失败不影响其它对象。
func (h *FileHandler) GetObjects(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gateway == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	items, err := h.gateway.DownloadBatch(r.Context(), r.URL.Query().Get("urls"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view := batchDownloadView{Items: make([]batchItemView, 0, len(items))}
	for _, item := range items {
		out := batchItemView{URL: item.URL, Error: item.Error}
		if item.File != nil {
			out.File = &fileView{Metadata: item.File.Metadata(), Content: item.File.Content}
			view.SuccessCount++
		} else {
			view.ErrorCount++
		}
		view.Items = append(view.Items, out)
	}

	writeJSON(w, http.StatusOK, envelope{Data: view})
}

// GetPublic 匿名下载任意公网 URL。
func (h *FileHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.fetcher == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	file, err := h.fetcher.Fetch(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeFile(w, r, file)
}

// writeFile 默认直接输出文件字节，并在响应头中附带元数据；format=json 时输出 JSON。
func writeFile(w http.ResponseWriter, r *http.Request, file *files.ResolvedFile) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, envelope{Data: fileView{Metadata: file.Metadata(), Content: file.Content}})
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", contentDisposition(file.Filename))
	w.Header().Set("X-File-Name", mime.QEncoding.Encode("utf-8", file.Filename))
	w.Header().Set("X-File-Extension", file.Extension)
	w.Header().Set("X-File-Size", strconv.FormatInt(file.Size, 10))
	w.WriteHeader(http.StatusOK)
	// 客户端可能已断开，无法再写入错误响应
	_, _ = w.Write(file.Content)
}

func contentDisposition(filename string) string {
	if disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); disposition != "" {
		return disposition
	}
	return fmt.Sprintf("attachment; filename=%q", filename)
}
