package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CaptionFile 表示一个待处理的字幕文件
type CaptionFile struct {
	Path      string    // 文件路径
	Name      string    // 文件名
	Ext       string    // 文件扩展名
	Size      int64     // 文件大小（字节）
	ModTime   time.Time // 修改时间
	Processed bool      // 是否已处理
}

// CaptionScanner 用于扫描字幕文件
type CaptionScanner struct {
	Extensions      []string // 可识别的扩展名
	ExcludeSuffixes []string // 本工具自身的输出文件，扫描时跳过
}

// NewCaptionScanner 创建新的字幕扫描器
func NewCaptionScanner() *CaptionScanner {
	return &CaptionScanner{
		Extensions:      []string{".json3", ".json"},
		ExcludeSuffixes: []string{"_sentences.json", "_texts.json"},
	}
}

// IsCaptionFile 判断文件名是否为可处理的字幕文件
func (s *CaptionScanner) IsCaptionFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}

	lower := strings.ToLower(name)
	for _, suffix := range s.ExcludeSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, captionExt := range s.Extensions {
		if ext == captionExt {
			return true
		}
	}
	return false
}

// ScanDirectory 扫描指定目录中的字幕文件（非递归）
func (s *CaptionScanner) ScanDirectory(dir string) ([]CaptionFile, error) {
	var captionFiles []CaptionFile

	logrus.Infof("开始扫描目录: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		// 跳过目录和隐藏文件
		if entry.IsDir() || !s.IsCaptionFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logrus.Warnf("获取文件信息失败: %v", err)
			continue
		}

		path := filepath.Join(dir, entry.Name())
		captionFiles = append(captionFiles, CaptionFile{
			Path:    path,
			Name:    entry.Name(),
			Ext:     strings.ToLower(filepath.Ext(path)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	logrus.Infof("扫描完成，共找到 %d 个字幕文件", len(captionFiles))

	return captionFiles, nil
}

// FilterNewFiles 根据已处理记录过滤出新文件
func (s *CaptionScanner) FilterNewFiles(files []CaptionFile, processedPaths map[string]bool) []CaptionFile {
	var newFiles []CaptionFile

	for _, file := range files {
		if !processedPaths[file.Path] {
			newFiles = append(newFiles, file)
		}
	}

	logrus.Infof("过滤后剩余 %d 个新文件需要处理", len(newFiles))

	return newFiles
}
