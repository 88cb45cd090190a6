package asr

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// BaseSource 提供字幕源的公共功能：读取文件、计算校验和、读写缓存
type BaseSource struct {
	Path       string // 字幕文件路径
	FileBinary []byte // 文件二进制内容
	CRC32      uint32 // CRC32校验值
	CRC32Hex   string // 文件CRC32校验和（十六进制）
}

// NewBaseSource 从文件创建 BaseSource
func NewBaseSource(path string) (*BaseSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("无效的字幕路径: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("无效的字幕路径: %s 是目录", path)
	}

	utils.Debug("从文件读取字幕数据: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字幕文件失败: %w", err)
	}

	return NewBaseSourceFromBytes(path, data), nil
}

// NewBaseSourceFromBytes 从已读取的内容创建 BaseSource
func NewBaseSourceFromBytes(path string, data []byte) *BaseSource {
	b := &BaseSource{
		Path:       path,
		FileBinary: data,
	}
	b.calculateCRC32()
	return b
}

// calculateCRC32 计算文件的CRC32校验和
func (b *BaseSource) calculateCRC32() {
	b.CRC32 = crc32.ChecksumIEEE(b.FileBinary)
	b.CRC32Hex = fmt.Sprintf("%08x", b.CRC32)
	utils.Debug("计算的CRC32校验和: %s", b.CRC32Hex)
}

// Checksum 返回内容的CRC32（十六进制）
func (b *BaseSource) Checksum() string {
	return b.CRC32Hex
}

// GetCacheKey 获取缓存键名
func (b *BaseSource) GetCacheKey(prefix string) string {
	return fmt.Sprintf("%s-%s.json", prefix, b.CRC32Hex)
}

// LoadFromCache 从缓存目录读取 key 对应的JSON到 v，命中返回 true
func (b *BaseSource) LoadFromCache(cacheDir, cacheKey string, v interface{}) bool {
	if cacheDir == "" {
		return false
	}

	cacheFilePath := filepath.Join(cacheDir, cacheKey)
	if err := utils.LoadJSONFile(cacheFilePath, v); err != nil {
		if !os.IsNotExist(err) {
			utils.Warn("读取缓存失败 %s: %v", cacheFilePath, err)
		}
		return false
	}

	utils.Debug("命中缓存: %s", cacheFilePath)
	return true
}

// SaveToCache 把 v 以JSON保存到缓存目录
func (b *BaseSource) SaveToCache(cacheDir, cacheKey string, v interface{}) error {
	if cacheDir == "" {
		return nil
	}

	if err := utils.SaveJSONFile(filepath.Join(cacheDir, cacheKey), v); err != nil {
		return fmt.Errorf("保存缓存失败: %w", err)
	}
	return nil
}
