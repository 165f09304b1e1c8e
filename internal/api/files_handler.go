package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"ossbridge/internal/fetch"
	"ossbridge/internal/files"
	"ossbridge/internal/rule"
	"ossbridge/internal/service"
	"ossbridge/internal/storage"

	"github.com/go-chi/chi/v5"
)

// FileHandler 提供上传、下载与公网下载的 HTTP 端点。
type FileHandler struct {
	gateway        *service.Gateway
	fetcher        *fetch.Fetcher
	maxUploadBytes int64
}

func NewFileHandler(gateway *service.Gateway, fetcher *fetch.Fetcher, maxUploadBytes int64) *FileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &FileHandler{gateway: gateway, fetcher: fetcher, maxUploadBytes: maxUploadBytes}
}

func (h *FileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/files", h.UploadFile)
		r.Post("/files/batch", h.UploadBatch)
		r.Get("/objects", h.GetObject)
		r.Get("/objects/batch", h.GetObjects)
		r.Get("/public", h.GetPublic)
		r.Post("/credentials/validate", h.ValidateCredentials)
	})
}

type envelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	defaultMaxUploadBytes int64 = 100 * 1024 * 1024 // 100MB
	multipartMemoryBudget int64 = 16 * 1024 * 1024
)

// uploadForm 是上传请求中除文件以外的公共字段。
type uploadForm struct {
	Directory     string `form:"directory" rule:"omitempty,objdir"`
	DirectoryMode string `form:"directory_mode" rule:"omitempty,oneof=no_subdirectory yyyy_mm_dd_hierarchy yyyy_mm_dd_combined"`
	Filename      string `form:"filename" rule:"omitempty,objdir"`
	FilenameMode  string `form:"filename_mode" rule:"omitempty,oneof=filename filename_timestamp"`
	Signed        bool   `form:"signed"`
	SignedExpiry  int    `form:"signed_expired" rule:"gte=0"`
}

// UploadFile 接受 multipart/form-data 中的单个 file 字段并上传。
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gateway == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	form, cleanup, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	headers := r.MultipartForm.File["file"]
	if len(headers) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one file field is required")
		return
	}

	desc, closeFile, err := describeUpload(headers[0], form.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeFile()

	result, err := h.gateway.UploadFile(r.Context(), form.request([]files.FileDescriptor{desc}))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Data: result})
}

// UploadBatch 上传 files 字段中的多个文件。单个文件失败记录在结果中，响应仍为 200。
func (h *FileHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gateway == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	form, cleanup, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	headers := make([]*multipart.FileHeader, 0, len(r.MultipartForm.File["files"])+len(r.MultipartForm.File["file"]))
	headers = append(headers, r.MultipartForm.File["files"]...)
	headers = append(headers, r.MultipartForm.File["file"]...)
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "files field is required")
		return
	}
	if len(headers) > files.MaxBatchFiles {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per request", files.MaxBatchFiles))
		return
	}

	descs := make([]files.FileDescriptor, 0, len(headers))
	for _, header := range headers {
		desc, closeFile, err := describeUpload(header, "")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer closeFile()
		descs = append(descs, desc)
	}

	summary, err := h.gateway.UploadBatch(r.Context(), form.request(descs))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Data: summary})
}

// ValidateCredentials 校验配置中的凭据；请求体可携带 JSON 凭据覆盖配置。
func (h *FileHandler) ValidateCredentials(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gateway == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	gateway := h.gateway
	if r.Body != nil && r.ContentLength != 0 {
		var body credentialsRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := rule.ValidateStruct(body); err != nil {
			writeValidationError(w, err)
			return
		}
		gateway = gateway.WithCredentials(body.merge(gateway.Credentials()))
	}

	if err := gateway.ValidateCredentials(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	creds := gateway.Credentials()
	writeJSON(w, http.StatusOK, envelope{Data: map[string]any{
		"valid":    true,
		"bucket":   creds.Bucket,
		"endpoint": creds.Endpoint,
	}})
}

type credentialsRequest struct {
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	Endpoint        string `json:"endpoint"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	UseHTTPS        *bool  `json:"use_https"`
	Directory       string `json:"directory" rule:"omitempty,objdir"`
	Filename        string `json:"filename" rule:"omitempty,objdir"`
}

func (c credentialsRequest) merge(base storage.Credentials) storage.Credentials {
	out := base
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.AccessKeyID, c.AccessKeyID)
	set(&out.AccessKeySecret, c.AccessKeySecret)
	set(&out.Endpoint, c.Endpoint)
	set(&out.Bucket, c.Bucket)
	set(&out.Region, c.Region)
	set(&out.Directory, c.Directory)
	set(&out.Filename, c.Filename)
	if c.UseHTTPS != nil {
		out.UseHTTPS = *c.UseHTTPS
	}
	return out
}

func (h *FileHandler) parseUpload(w http.ResponseWriter, r *http.Request) (uploadForm, func(), bool) {
	var form uploadForm
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return form, nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemoryBudget)
	if err := r.ParseMultipartForm(multipartMemoryBudget); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request exceeds size limit")
			return form, nil, false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return form, nil, false
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	form.Directory = r.FormValue("directory")
	form.DirectoryMode = strings.TrimSpace(r.FormValue("directory_mode"))
	form.Filename = r.FormValue("filename")
	form.FilenameMode = strings.TrimSpace(r.FormValue("filename_mode"))
	form.Signed = parseBool(r.FormValue("signed"))
	if raw := strings.TrimSpace(r.FormValue("signed_expired")); raw != "" {
		expiry, err := strconv.Atoi(raw)
		if err != nil {
			cleanup()
			writeError(w, http.StatusBadRequest, "signed_expired must be an integer number of seconds")
			return form, nil, false
		}
		form.SignedExpiry = expiry
	}

	if err := rule.ValidateStruct(form); err != nil {
		cleanup()
		writeValidationError(w, err)
		return form, nil, false
	}
	return form, cleanup, true
}

func (f uploadForm) request(descs []files.FileDescriptor) files.UploadRequest {
	return files.UploadRequest{
		Files:         descs,
		Directory:     f.Directory,
		DirectoryMode: files.DirectoryMode(f.DirectoryMode),
		FilenameMode:  files.FilenameMode(f.FilenameMode),
		Signed:        f.Signed,
		SignedExpiry:  f.SignedExpiry,
	}
}

// describeUpload 把 multipart 文件包装成流式内容。
// 浏览器对未知类型统一声明 application/octet-stream，此时交给服务层按内容推断。
func describeUpload(header *multipart.FileHeader, filename string) (files.FileDescriptor, func(), error) {
	file, err := header.Open()
	if err != nil {
		return files.FileDescriptor{}, nil, fmt.Errorf("open uploaded file %s: %w", header.Filename, err)
	}

	contentType := header.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = ""
	}

	return files.FileDescriptor{
		Content:     files.NewStream(file),
		Filename:    strings.TrimSpace(filename),
		SourceName:  header.Filename,
		ContentType: contentType,
	}, func() { _ = file.Close() }, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	fields := rule.Errors(err)
	if fields == nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "invalid parameters: " + fields.String(), Fields: fields})
}

// writeServiceError 按错误分类映射 HTTP 状态码。
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case files.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, fetch.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, files.ErrStorage), errors.Is(err, files.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
