package asr

import (
	"context"
	"errors"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

// ErrUnrecognizedFormat 输入文档不是该字幕源能解析的格式
var ErrUnrecognizedFormat = errors.New("unrecognized caption format")

// ProgressCallback 是进度回调函数，用于通知读取过程的进度
type ProgressCallback func(percent int, message string)

// Source 定义了字幕源的接口，负责把输入文件解析为原始事件
type Source interface {
	// Format 返回字幕源格式名
	Format() string
	// Checksum 返回输入内容的CRC32（十六进制）
	Checksum() string
	// GetEvents 解析并返回原始事件
	GetEvents(ctx context.Context, callback ProgressCallback) ([]models.RawEvent, error)
}
