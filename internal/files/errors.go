package files

import "errors"

// 错误分类，调用方通过 errors.Is 判断。
var (
	ErrMissingParameter    = errors.New("missing parameter")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrInvalidDirectory    = errors.New("invalid directory")
	ErrInvalidURLFormat    = errors.New("invalid url format")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrStorage             = errors.New("storage error")
	ErrFetchFailed         = errors.New("fetch failed")
)

// IsValidation 判断错误是否属于参数校验阶段，这类错误总是让整个调用失败。
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingParameter) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrInvalidDirectory) ||
		errors.Is(err, ErrInvalidURLFormat) ||
		errors.Is(err, ErrUnsupportedFileType)
}
