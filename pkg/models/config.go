package models

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// 分句启发式默认值
const (
	DefaultPauseThresholdMs  int64 = 500
	DefaultLinguisticPauseMs int64 = 150
)

// DefaultLinguisticMarkers 默认的句末标记（日语句末助词与标点）
func DefaultLinguisticMarkers() []string {
	return []string{
		"です", "でした", "ます", "ました", "ません", "ますか", "ない",
		"だ", "かな", "かしら",
		"ください",
		"。", "？", "！",
	}
}

// DefaultConnectiveMarkers 默认的连接助词，以这些结尾的句子必须与后一句合并
// "が" 常作为转折独立成句，因此不在列表中
func DefaultConnectiveMarkers() []string {
	return []string{"に", "を", "は", "で", "て", "と", "も", "の", "本当", "やっぱ", "ども", "お"}
}

// Config 表示应用程序的配置
type Config struct {
	InputFolder   string `json:"input_folder" yaml:"input_folder" toml:"input_folder"`       // 字幕文件所在文件夹
	OutputFolder  string `json:"output_folder" yaml:"output_folder" toml:"output_folder"`    // 输出结果文件夹，空表示与输入同目录
	ArchiveFolder string `json:"archive_folder" yaml:"archive_folder" toml:"archive_folder"` // 监听模式下处理完成后移动输入文件，空表示不移动
	CacheDir      string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`                // 结果缓存目录
	UseCache      bool   `json:"use_cache" yaml:"use_cache" toml:"use_cache"`                // 内容未变化时复用上次结果
	SourceFormat  string `json:"source_format" yaml:"source_format" toml:"source_format"`    // 字幕源格式 (auto, json3, events)

	MaxRetries int     `json:"max_retries" yaml:"max_retries" toml:"max_retries"` // 读取失败最大重试次数
	RetryDelay float64 `json:"retry_delay" yaml:"retry_delay" toml:"retry_delay"` // 重试延迟（秒）
	MaxWorkers int     `json:"max_workers" yaml:"max_workers" toml:"max_workers"` // 批处理并发文件数

	PauseThresholdMs  int64    `json:"pause_threshold_ms" yaml:"pause_threshold_ms" toml:"pause_threshold_ms"`    // 纯停顿切分阈值
	LinguisticPauseMs int64    `json:"linguistic_pause_ms" yaml:"linguistic_pause_ms" toml:"linguistic_pause_ms"` // 语言标记后的停顿阈值
	LinguisticMarkers []string `json:"linguistic_markers" yaml:"linguistic_markers" toml:"linguistic_markers"`    // 句末标记
	ConnectiveMarkers []string `json:"connective_markers" yaml:"connective_markers" toml:"connective_markers"`    // 连接助词
	SegmentWorkers    int      `json:"segment_workers" yaml:"segment_workers" toml:"segment_workers"`             // 块级并行分句的 goroutine 数
	TraceDecisions    bool     `json:"trace_decisions" yaml:"trace_decisions" toml:"trace_decisions"`             // 将分句决策写入 debug 日志

	ExportSRT  bool `json:"export_srt" yaml:"export_srt" toml:"export_srt"`    // 导出SRT字幕
	ExportJSON bool `json:"export_json" yaml:"export_json" toml:"export_json"` // 导出结构化JSON
	ExportText bool `json:"export_text" yaml:"export_text" toml:"export_text"` // 导出纯文本JSON数组

	ShowProgress    bool `json:"show_progress" yaml:"show_progress" toml:"show_progress"`             // 显示进度条
	WatchDebounceMs int  `json:"watch_debounce_ms" yaml:"watch_debounce_ms" toml:"watch_debounce_ms"` // 监听模式去抖时间

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`    // 日志级别
	LogFile   string `json:"log_file" yaml:"log_file" toml:"log_file"`       // 日志文件
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"` // 日志格式 (text, json)
}

// ConfigValidationError 表示配置验证错误
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("配置验证错误: %s - %s", e.Field, e.Message)
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		InputFolder:       "./captions",
		OutputFolder:      "./output",
		ArchiveFolder:     "",
		CacheDir:          "./cache",
		UseCache:          true,
		SourceFormat:      "auto",
		MaxRetries:        3,
		RetryDelay:        1.0,
		MaxWorkers:        4,
		PauseThresholdMs:  DefaultPauseThresholdMs,
		LinguisticPauseMs: DefaultLinguisticPauseMs,
		LinguisticMarkers: DefaultLinguisticMarkers(),
		ConnectiveMarkers: DefaultConnectiveMarkers(),
		SegmentWorkers:    1,
		TraceDecisions:    false,
		ExportSRT:         true,
		ExportJSON:        true,
		ExportText:        false,
		ShowProgress:      true,
		WatchDebounceMs:   2000,
		LogLevel:          "INFO",
		LogFile:           "",
		LogFormat:         "text",
	}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return &ConfigValidationError{"MaxRetries", "必须在1-10之间"}
	}

	if c.MaxWorkers < 1 || c.MaxWorkers > 16 {
		return &ConfigValidationError{"MaxWorkers", "必须在1-16之间"}
	}

	if c.SegmentWorkers < 1 || c.SegmentWorkers > 64 {
		return &ConfigValidationError{"SegmentWorkers", "必须在1-64之间"}
	}

	if c.RetryDelay < 0.1 || c.RetryDelay > 10.0 {
		return &ConfigValidationError{"RetryDelay", "必须在0.1-10.0秒之间"}
	}

	if c.PauseThresholdMs < 0 || c.PauseThresholdMs > 60000 {
		return &ConfigValidationError{"PauseThresholdMs", "必须在0-60000毫秒之间"}
	}

	if c.LinguisticPauseMs < 0 || c.LinguisticPauseMs > 60000 {
		return &ConfigValidationError{"LinguisticPauseMs", "必须在0-60000毫秒之间"}
	}

	for _, m := range c.LinguisticMarkers {
		if strings.TrimSpace(m) == "" {
			return &ConfigValidationError{"LinguisticMarkers", "不能包含空标记"}
		}
	}

	for _, m := range c.ConnectiveMarkers {
		if strings.TrimSpace(m) == "" {
			return &ConfigValidationError{"ConnectiveMarkers", "不能包含空标记"}
		}
	}

	switch c.SourceFormat {
	case "auto", "json3", "events":
	default:
		return &ConfigValidationError{"SourceFormat", "必须是 auto, json3 或 events"}
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return &ConfigValidationError{"LogFormat", "必须是 text 或 json"}
	}

	if c.WatchDebounceMs < 0 {
		return &ConfigValidationError{"WatchDebounceMs", "不能为负数"}
	}

	if !c.ExportSRT && !c.ExportJSON && !c.ExportText {
		return &ConfigValidationError{"Export", "至少需要启用一种导出格式"}
	}

	return nil
}

// LoadFromFile 从文件加载配置，按扩展名选择 JSON/YAML/TOML
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("读取配置文件失败: %v", err)
		return err
	}

	if err := unmarshalConfig(path, data, c); err != nil {
		logrus.Errorf("解析配置文件失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// SaveToFile 保存配置到文件，格式由扩展名决定
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logrus.Errorf("创建目录失败: %v", err)
		return err
	}

	data, err := marshalConfig(path, c)
	if err != nil {
		logrus.Errorf("序列化配置失败: %v", err)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		logrus.Errorf("写入配置文件失败: %v", err)
		return err
	}

	return nil
}

// Update 批量更新配置，验证失败时回滚
func (c *Config) Update(updates map[string]interface{}) error {
	tempConfig := c.Clone()

	// 先序列化为JSON再反序列化到结构体中，map到struct的转换较为方便
	updateBytes, err := json.Marshal(updates)
	if err != nil {
		logrus.Errorf("序列化更新数据失败: %v", err)
		return err
	}

	if err := json.Unmarshal(updateBytes, c); err != nil {
		*c = *tempConfig
		logrus.Errorf("应用配置更新失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		*c = *tempConfig
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	clone := *c
	clone.LinguisticMarkers = append([]string(nil), c.LinguisticMarkers...)
	clone.ConnectiveMarkers = append([]string(nil), c.ConnectiveMarkers...)
	return &clone
}

// Reset 重置为默认配置
func (c *Config) Reset() {
	*c = *NewDefaultConfig()
}

// PrintConfig 以JSON格式输出当前配置
func (c *Config) PrintConfig(w io.Writer) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", bytes)
	return err
}

func configFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

func unmarshalConfig(path string, data []byte, c *Config) error {
	switch configFormat(path) {
	case "yaml":
		return yaml.Unmarshal(data, c)
	case "toml":
		return toml.Unmarshal(data, c)
	default:
		return json.Unmarshal(data, c)
	}
}

func marshalConfig(path string, c *Config) ([]byte, error) {
	switch configFormat(path) {
	case "yaml":
		return yaml.Marshal(c)
	case "toml":
		return toml.Marshal(c)
	default:
		return json.MarshalIndent(c, "", "  ")
	}
}
