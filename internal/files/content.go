package files

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Content 是上传文件内容的三种形态：内存字节、本地路径、可读流。
type Content interface {
	// Size 返回待上传的字节数，不消耗可重复读取的来源。
	Size() (int64, error)
	// Open 返回从当前位置开始的内容读取器，调用方负责关闭。
	Open() (io.ReadCloser, error)
	// Materialize 读取全部内容。
	Materialize() ([]byte, error)

	isContent()
}

// Bytes 是已经在内存中的文件内容。
type Bytes []byte

func (b Bytes) Size() (int64, error) { return int64(len(b)), nil }

func (b Bytes) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (b Bytes) Materialize() ([]byte, error) { return b, nil }

func (Bytes) isContent() {}

// Path 引用本地文件系统上的文件。
type Path string

func (p Path) Size() (int64, error) {
	info, err := os.Stat(string(p))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: file not found: %s", ErrMissingParameter, string(p))
		}
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFileType, string(p))
	}
	return info.Size(), nil
}

func (p Path) Open() (io.ReadCloser, error) {
	file, err := os.Open(string(p))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

func (p Path) Materialize() ([]byte, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (Path) isContent() {}

// Stream 包装一个读取器。可 Seek 的读取器在测量大小后恢复原位置，
// 不可 Seek 的读取器在首次访问时整体缓冲。
type Stream struct {
	r        io.Reader
	buf      []byte
	buffered bool
}

// NewStream 创建流式内容。
func NewStream(r io.Reader) *Stream {
	return &Stream{r: r}
}

func (s *Stream) Size() (int64, error) {
	if s == nil || s.r == nil {
		return 0, fmt.Errorf("%w: nil stream", ErrUnsupportedFileType)
	}
	if seeker, ok := s.r.(io.Seeker); ok && !s.buffered {
		cur, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, fmt.Errorf("locate stream: %w", err)
		}
		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, fmt.Errorf("measure stream: %w", err)
		}
		if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
			return 0, fmt.Errorf("rewind stream: %w", err)
		}
		return end - cur, nil
	}
	if err := s.buffer(); err != nil {
		return 0, err
	}
	return int64(len(s.buf)), nil
}

func (s *Stream) Open() (io.ReadCloser, error) {
	if s == nil || s.r == nil {
		return nil, fmt.Errorf("%w: nil stream", ErrUnsupportedFileType)
	}
	if _, ok := s.r.(io.Seeker); ok && !s.buffered {
		return io.NopCloser(s.r), nil
	}
	if err := s.buffer(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(s.buf)), nil
}

func (s *Stream) Materialize() ([]byte, error) {
	if s == nil || s.r == nil {
		return nil, fmt.Errorf("%w: nil stream", ErrUnsupportedFileType)
	}
	if seeker, ok := s.r.(io.Seeker); ok && !s.buffered {
		cur, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("locate stream: %w", err)
		}
		data, err := io.ReadAll(s.r)
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind stream: %w", err)
		}
		return data, nil
	}
	if err := s.buffer(); err != nil {
		return nil, err
	}
	return s.buf, nil
}

func (s *Stream) buffer() error {
	if s.buffered {
		return nil
	}
	data, err := io.ReadAll(s.r)
	if err != nil {
		return fmt.Errorf("buffer stream: %w", err)
	}
	s.buf = data
	s.buffered = true
	return nil
}

func (*Stream) isContent() {}
