package asr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// FormatAuto 按优先级依次尝试所有已注册格式
const FormatAuto = "auto"

// SourceCreator 基于已读取的文件内容创建字幕源
type SourceCreator func(base *BaseSource) Source

// SourceStats 字幕源统计数据
type SourceStats struct {
	SuccessCount int
	TotalCount   int
	Available    bool
}

// Registry 字幕源注册表，负责识别输入格式
type Registry struct {
	mu         sync.RWMutex
	creators   map[string]SourceCreator // 创建函数
	priorities map[string]int           // 优先级，越大越先尝试
	counters   map[string]int           // 识别成功次数
	stats      map[string]*SourceStats  // 统计信息
	formats    []string                 // 注册顺序
}

// NewRegistry 创建空的注册表
func NewRegistry() *Registry {
	return &Registry{
		creators:   make(map[string]SourceCreator),
		priorities: make(map[string]int),
		counters:   make(map[string]int),
		stats:      make(map[string]*SourceStats),
	}
}

// NewDefaultRegistry 创建注册了 json3 与 events 两种格式的注册表
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FormatJSON3, func(base *BaseSource) Source { return &JSON3Source{BaseSource: base} }, 10)
	r.Register(FormatEvents, func(base *BaseSource) Source { return &EventsSource{BaseSource: base} }, 5)
	return r
}

// Register 注册字幕源格式
func (r *Registry) Register(format string, creator SourceCreator, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.creators[format]; !exists {
		r.formats = append(r.formats, format)
	}
	r.creators[format] = creator
	r.priorities[format] = priority
	r.counters[format] = 0
	r.stats[format] = &SourceStats{Available: true}

	utils.Debug("注册字幕源格式: %s, 优先级: %d", format, priority)
}

// SetAvailable 启用或禁用某个格式的自动识别
func (r *Registry) SetAvailable(format string, available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stat, ok := r.stats[format]; ok {
		stat.Available = available
	}
}

// Formats 按优先级从高到低返回可用格式
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.formats))
	for _, f := range r.formats {
		if r.stats[f].Available {
			formats = append(formats, f)
		}
	}
	sort.SliceStable(formats, func(i, j int) bool {
		return r.priorities[formats[i]] > r.priorities[formats[j]]
	})
	return formats
}

// ReportResult 报告一次解析结果
func (r *Registry) ReportResult(format string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stat, exists := r.stats[format]; exists {
		if success {
			stat.SuccessCount++
			r.counters[format]++
		}
		stat.TotalCount++
	}
}

// Open 读取文件并解析为原始事件
// format 为 "auto" 时依次尝试各格式，ErrUnrecognizedFormat 表示换下一个格式
func (r *Registry) Open(ctx context.Context, path string, format string, callback ProgressCallback) (Source, []models.RawEvent, error) {
	base, err := NewBaseSource(path)
	if err != nil {
		return nil, nil, err
	}
	return r.Parse(ctx, base, format, callback)
}

// Parse 解析已读取的内容
func (r *Registry) Parse(ctx context.Context, base *BaseSource, format string, callback ProgressCallback) (Source, []models.RawEvent, error) {
	candidates := []string{format}
	if format == FormatAuto || format == "" {
		candidates = r.Formats()
	}
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("没有可用的字幕源格式")
	}

	var lastErr error
	for _, name := range candidates {
		r.mu.RLock()
		creator, ok := r.creators[name]
		r.mu.RUnlock()
		if !ok {
			return nil, nil, fmt.Errorf("未知的字幕源格式: %s", name)
		}

		source := creator(base)
		events, err := source.GetEvents(ctx, callback)
		r.ReportResult(name, err == nil)
		if err == nil {
			return source, events, nil
		}
		if !errors.Is(err, ErrUnrecognizedFormat) {
			return nil, nil, err
		}
		utils.Debug("%s 不是 %s 格式: %v", base.Path, name, err)
		lastErr = err
	}

	return nil, nil, fmt.Errorf("无法识别字幕格式 %s: %w", base.Path, lastErr)
}

// GetStats 获取格式使用统计信息
func (r *Registry) GetStats() map[string]map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]map[string]interface{})
	for name, stat := range r.stats {
		successRate := 0.0
		if stat.TotalCount > 0 {
			successRate = float64(stat.SuccessCount) / float64(stat.TotalCount) * 100
		}

		result[name] = map[string]interface{}{
			"count":        r.counters[name],
			"success_rate": fmt.Sprintf("%.1f%%", successRate),
			"available":    stat.Available,
			"priority":     r.priorities[name],
		}
	}

	return result
}
