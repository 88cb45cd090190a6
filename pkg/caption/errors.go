package caption

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedEvent 原始事件缺少必需的时间字段
var ErrMalformedEvent = errors.New("malformed caption event")

// MalformedEventError 记录一个被跳过的格式错误事件，不会中断整批处理
type MalformedEventError struct {
	Index   int      // 事件在输入中的位置
	Missing []string // 缺失的字段
	Preview string   // 第一个片段的文本，便于定位
}

func (e *MalformedEventError) Error() string {
	preview := e.Preview
	if preview == "" {
		preview = "N/A"
	}
	return fmt.Sprintf("事件 #%d 缺少字段 %s: %q", e.Index, strings.Join(e.Missing, ","), preview)
}

func (e *MalformedEventError) Unwrap() error {
	return ErrMalformedEvent
}
