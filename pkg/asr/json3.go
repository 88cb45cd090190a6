package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// FormatJSON3 YouTube timedtext json3 格式
const FormatJSON3 = "json3"

// JSON3Source 解析 YouTube timedtext json3 字幕
type JSON3Source struct {
	*BaseSource
}

// NewJSON3Source 创建 json3 字幕源
func NewJSON3Source(path string) (*JSON3Source, error) {
	baseSource, err := NewBaseSource(path)
	if err != nil {
		return nil, err
	}

	return &JSON3Source{
		BaseSource: baseSource,
	}, nil
}

// json3Document timedtext 响应结构
type json3Document struct {
	Events *[]json3Event `json:"events"`
}

type json3Event struct {
	TStartMs    *float64   `json:"tStartMs"`
	DDurationMs *float64   `json:"dDurationMs"`
	AAppend     int        `json:"aAppend"`
	Segs        []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8      string   `json:"utf8"`
	TOffsetMs *float64 `json:"tOffsetMs"`
}

// Format 实现 Source 接口
func (j *JSON3Source) Format() string {
	return FormatJSON3
}

// GetEvents 实现 Source 接口
func (j *JSON3Source) GetEvents(ctx context.Context, callback ProgressCallback) ([]models.RawEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if callback != nil {
		callback(0, "正在解析 json3...")
	}

	events, err := parseJSON3(j.FileBinary)
	if err != nil {
		return nil, err
	}

	if callback != nil {
		callback(100, fmt.Sprintf("解析完成，共 %d 个事件", len(events)))
	}
	utils.Debug("json3 解析完成: %s, %d 个事件", j.Path, len(events))

	return events, nil
}

func parseJSON3(data []byte) ([]models.RawEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrUnrecognizedFormat
	}

	var doc json3Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	if doc.Events == nil {
		return nil, fmt.Errorf("%w: 缺少 events 字段", ErrUnrecognizedFormat)
	}

	events := make([]models.RawEvent, 0, len(*doc.Events))
	for _, e := range *doc.Events {
		event := models.RawEvent{
			StartMs:         toMillis(e.TStartMs),
			DurationMs:      toMillis(e.DDurationMs),
			IsAppendNewline: e.AAppend == 1,
			Fragments:       make([]models.Fragment, 0, len(e.Segs)),
		}
		for _, seg := range e.Segs {
			event.Fragments = append(event.Fragments, models.Fragment{
				// 统一为NFC，使分解形式的假名也能匹配标记
				Text:     norm.NFC.String(seg.UTF8),
				OffsetMs: toMillis(seg.TOffsetMs),
			})
		}
		events = append(events, event)
	}

	return events, nil
}

func toMillis(v *float64) *int64 {
	if v == nil {
		return nil
	}
	ms := int64(math.Round(*v))
	return &ms
}
