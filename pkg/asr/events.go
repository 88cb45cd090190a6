package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

// FormatEvents 已经是 models.RawEvent 数组的JSON
const FormatEvents = "events"

// EventsSource 读取以JSON数组保存的原始事件
type EventsSource struct {
	*BaseSource
}

// NewEventsSource 创建事件数组字幕源
func NewEventsSource(path string) (*EventsSource, error) {
	baseSource, err := NewBaseSource(path)
	if err != nil {
		return nil, err
	}
	return &EventsSource{BaseSource: baseSource}, nil
}

// Format 实现 Source 接口
func (s *EventsSource) Format() string {
	return FormatEvents
}

// GetEvents 实现 Source 接口
func (s *EventsSource) GetEvents(ctx context.Context, callback ProgressCallback) ([]models.RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(s.FileBinary)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrUnrecognizedFormat
	}

	var events []models.RawEvent
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}

	for i := range events {
		for j := range events[i].Fragments {
			events[i].Fragments[j].Text = norm.NFC.String(events[i].Fragments[j].Text)
		}
	}

	if callback != nil {
		callback(100, fmt.Sprintf("读取完成，共 %d 个事件", len(events)))
	}
	return events, nil
}
