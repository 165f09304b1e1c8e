package naming

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"ossbridge/internal/files"
)

const (
	// UploadDefaultExt 上传时无法推断扩展名时使用。
	UploadDefaultExt = ".dat"
	// DownloadDefaultExt 下载时无法推断扩展名时使用。
	DownloadDefaultExt = ""

	generatedBase = "upload"
)

// Hints 汇总推断文件名可用的全部线索，按字段顺序依次降低优先级。
type Hints struct {
	Filename    string // 显式文件名
	SourceName  string // 来源文件原始名称
	ContentType string // 声明的 MIME 类型
	Index       int    // 在批量请求中的位置，从 0 开始
	BatchSize   int
	DefaultExt  string
}

// Stamper 生成严格递增的毫秒级时间戳，同一进程内不会重复。
type Stamper struct {
	mu   sync.Mutex
	last time.Time
}

// Next 返回 YYYYMMDDHHMMSSmmm 形式的时间戳。
// 若时钟未前进（或回拨），在上一次结果的基础上加 1ms。
func (s *Stamper) Next(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := now.Truncate(time.Millisecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond).In(now.Location())
	}
	s.last = t

	return fmt.Sprintf("%s%03d", t.Format("20060102150405"), t.Nanosecond()/int(time.Millisecond))
}

// Resolver 根据提示信息推断输出文件名与扩展名。
type Resolver struct {
	stamper *Stamper
}

// NewResolver 创建解析器，stamper 为空时使用独立实例。
func NewResolver(stamper *Stamper) *Resolver {
	if stamper == nil {
		stamper = &Stamper{}
	}
	return &Resolver{stamper: stamper}
}

// Resolve 返回 (filename, extension)。
//
// 有显式文件名时：filename 模式原样使用，filename_timestamp 模式在扩展名前追加 _{时间戳}。
// 没有显式文件名时依次尝试：来源文件名、Content-Type 映射、生成的 upload / upload_{i+1}
// 加默认扩展名。扩展名总是小写并以点开头（非空时）。
func (r *Resolver) Resolve(h Hints, mode files.FilenameMode, now time.Time) (string, string) {
	if strings.TrimSpace(h.Filename) != "" {
		base, ext := SplitExt(h.Filename)
		if mode == files.FilenameTimestamp {
			return base + "_" + r.stamper.Next(now) + ext, NormalizeExtension(ext)
		}
		return h.Filename, NormalizeExtension(ext)
	}

	base := defaultBase(h)
	ext := ""
	if src := BaseName(strings.TrimSpace(h.SourceName)); src != "" {
		base, ext = SplitExt(src)
	}
	if ext == "" && h.ContentType != "" {
		ext = ExtensionForType(h.ContentType, "")
	}
	if ext == "" {
		ext = h.DefaultExt
	}
	ext = NormalizeExtension(ext)

	if mode == files.FilenameTimestamp {
		base = base + "_" + r.stamper.Next(now)
	}
	return base + ext, ext
}

func defaultBase(h Hints) string {
	if h.BatchSize > 1 {
		return fmt.Sprintf("%s_%d", generatedBase, h.Index+1)
	}
	return generatedBase
}
