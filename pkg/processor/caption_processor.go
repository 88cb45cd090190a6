package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/caption-sentencer/pkg/asr"
	"github.com/ccp-p/caption-sentencer/pkg/caption"
	"github.com/ccp-p/caption-sentencer/pkg/export"
	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// processedRecordFile 已处理文件记录，保存在缓存目录
const processedRecordFile = "processed_records.json"

// CaptionProcessor 字幕处理器：识别格式 -> 分句流水线 -> 导出
type CaptionProcessor struct {
	Config       *models.Config
	Registry     *asr.Registry
	SRTExporter  *export.SRTExporter
	JSONExporter *export.JSONExporter
	ErrorHandler *utils.ErrorHandler

	options    caption.Options
	configHash string

	mu        sync.Mutex
	saveMu    sync.Mutex      // 串行化记录的快照与写入
	processed map[string]bool // 已处理文件记录
}

// cachedResult 缓存中保存的内容
type cachedResult struct {
	Result    models.Result          `json:"result"`
	Sentences []models.FinalSentence `json:"sentences"`
}

// NewCaptionProcessor 创建新的字幕处理器
func NewCaptionProcessor(config *models.Config) *CaptionProcessor {
	var trace caption.TraceFunc
	if config.TraceDecisions {
		trace = caption.LogrusTrace(utils.Logger())
	}

	p := &CaptionProcessor{
		Config:       config,
		Registry:     asr.NewDefaultRegistry(),
		SRTExporter:  export.NewSRTExporter(config.OutputFolder),
		JSONExporter: export.NewJSONExporter(config.OutputFolder),
		ErrorHandler: utils.NewErrorHandler(config.MaxRetries, config.RetryDelay),
		options:      caption.OptionsFromConfig(config, trace),
		configHash:   heuristicsHash(config),
		processed:    make(map[string]bool),
	}
	p.loadProcessedRecords()
	return p
}

// Options 返回当前使用的流水线参数
func (p *CaptionProcessor) Options() caption.Options {
	return p.options
}

// ProcessFile 处理单个字幕文件并导出结果
func (p *CaptionProcessor) ProcessFile(ctx context.Context, filePath string) (*models.Result, error) {
	startTime := time.Now()
	filename := filepath.Base(filePath)

	base, err := p.readFile(ctx, filePath)
	if err != nil {
		return nil, err
	}

	result := &models.Result{
		RunID:       uuid.New().String(),
		FilePath:    filePath,
		Checksum:    base.Checksum(),
		InputBytes:  int64(len(base.FileBinary)),
		OutputFiles: make(map[string]string),
	}

	cacheKey := base.GetCacheKey("result-" + p.configHash)
	var cached cachedResult
	if p.Config.UseCache && base.LoadFromCache(p.Config.CacheDir, cacheKey, &cached) {
		utils.Info("内容未变化，使用缓存结果: %s", filename)
		*result = cached.Result
		result.RunID = uuid.New().String()
		result.FilePath = filePath
		result.InputBytes = int64(len(base.FileBinary))
		result.Cached = true
		result.Sentences = cached.Sentences
	} else {
		if err := p.runPipeline(ctx, base, result); err != nil {
			return nil, err
		}
		if p.Config.UseCache {
			entry := cachedResult{Result: *result, Sentences: result.Sentences}
			if err := base.SaveToCache(p.Config.CacheDir, cacheKey, entry); err != nil {
				utils.Warn("保存缓存失败: %v", err)
			}
		}
	}

	result.OutputFiles = p.exportAll(result.Sentences, filePath)
	if len(result.OutputFiles) == 0 && len(result.Sentences) > 0 {
		return nil, utils.NewError(fmt.Sprintf("导出 %s 失败", filename), errors.New("没有成功写入任何输出文件"))
	}

	result.ProcessTimeMs = time.Since(startTime).Milliseconds()
	p.MarkProcessed(filePath)

	utils.WithFields(logrus.Fields{
		"file":      filename,
		"format":    result.SourceFormat,
		"events":    result.EventCount,
		"sentences": result.SentenceCount,
		"cached":    result.Cached,
	}).Info("字幕处理完成")

	return result, nil
}

// Sentences 只运行分句流水线，不导出也不写缓存
func (p *CaptionProcessor) Sentences(ctx context.Context, filePath string) (*caption.Output, string, error) {
	base, err := p.readFile(ctx, filePath)
	if err != nil {
		return nil, "", err
	}

	source, events, err := p.Registry.Parse(ctx, base, p.Config.SourceFormat, nil)
	if err != nil {
		return nil, "", err
	}

	out := caption.Run(events, p.options)
	return &out, source.Format(), nil
}

// readFile 读取文件，监听模式下文件可能还在写入，因此失败时重试
func (p *CaptionProcessor) readFile(ctx context.Context, filePath string) (*asr.BaseSource, error) {
	var base *asr.BaseSource
	err := p.ErrorHandler.RetryContext(ctx, "读取 "+filepath.Base(filePath), func() error {
		b, err := asr.NewBaseSource(filePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return utils.Permanent(err)
			}
			return err
		}
		// 空文件通常表示写入尚未完成
		if len(b.FileBinary) == 0 {
			return fmt.Errorf("文件为空: %s", filePath)
		}
		base = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return base, nil
}

func (p *CaptionProcessor) runPipeline(ctx context.Context, base *asr.BaseSource, result *models.Result) error {
	source, events, err := p.Registry.Parse(ctx, base, p.Config.SourceFormat, func(percent int, message string) {
		utils.Debug("[%s] %d%% %s", filepath.Base(base.Path), percent, message)
	})
	if err != nil {
		return utils.NewError(fmt.Sprintf("解析 %s 失败", filepath.Base(base.Path)), err)
	}

	out := caption.Run(events, p.options)
	for _, diag := range out.Diagnostics {
		utils.Warn("%s: 跳过格式错误的事件: %v", filepath.Base(base.Path), diag)
	}

	result.SourceFormat = source.Format()
	result.EventCount = len(events)
	result.SkippedEvents = len(out.Diagnostics)
	result.BlockCount = len(out.Blocks)
	result.CandidateCount = len(out.Candidates)
	result.SentenceCount = len(out.Sentences)
	result.Sentences = out.Sentences
	if n := len(out.Sentences); n > 0 {
		result.DurationMs = out.Sentences[n-1].EndMs - out.Sentences[0].StartMs
	}
	return nil
}

// exportAll 写出所有启用的格式，单个格式失败只记录错误统计
func (p *CaptionProcessor) exportAll(sentences []models.FinalSentence, filePath string) map[string]string {
	outputFiles := make(map[string]string)

	exports := []struct {
		kind      string
		operation string
		enabled   bool
		export    func([]models.FinalSentence, string) (string, error)
	}{
		{"srt", "导出SRT字幕", p.Config.ExportSRT, p.SRTExporter.ExportSRT},
		{"json", "导出JSON", p.Config.ExportJSON, p.JSONExporter.ExportJSON},
		{"text", "导出文本列表", p.Config.ExportText, p.JSONExporter.ExportTextList},
	}

	for _, e := range exports {
		if !e.enabled {
			continue
		}
		err := p.ErrorHandler.SafeExecute(e.operation, func() error {
			path, err := e.export(sentences, filePath)
			if err != nil {
				return err
			}
			outputFiles[e.kind] = path
			return nil
		}, nil)
		if err != nil {
			utils.Warn("%v", err)
		}
	}

	return outputFiles
}

// IsProcessed 检查文件是否已处理
func (p *CaptionProcessor) IsProcessed(filePath string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed[filePath]
}

// ProcessedPaths 返回已处理文件记录的副本
func (p *CaptionProcessor) ProcessedPaths() map[string]bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	paths := make(map[string]bool, len(p.processed))
	for k, v := range p.processed {
		paths[k] = v
	}
	return paths
}

// MarkProcessed 记录文件已处理并持久化
func (p *CaptionProcessor) MarkProcessed(filePath string) {
	p.mu.Lock()
	p.processed[filePath] = true
	p.mu.Unlock()

	p.saveProcessedRecords()
}

// UpdateProcessedRecordOnRename 文件被重命名或归档后更新记录
func (p *CaptionProcessor) UpdateProcessedRecordOnRename(oldPath, newPath string) {
	p.mu.Lock()
	if !p.processed[oldPath] {
		p.mu.Unlock()
		return
	}
	delete(p.processed, oldPath)
	p.processed[newPath] = true
	p.mu.Unlock()

	utils.Debug("更新处理记录: %s -> %s", oldPath, newPath)
	p.saveProcessedRecords()
}

func (p *CaptionProcessor) recordPath() string {
	if p.Config.CacheDir == "" {
		return ""
	}
	return filepath.Join(p.Config.CacheDir, processedRecordFile)
}

func (p *CaptionProcessor) loadProcessedRecords() {
	path := p.recordPath()
	if path == "" {
		return
	}

	var records []string
	if err := utils.LoadJSONFile(path, &records); err != nil {
		if !os.IsNotExist(err) {
			utils.Warn("读取处理记录失败: %v", err)
		}
		return
	}
	for _, r := range records {
		p.processed[r] = true
	}
	utils.Debug("已加载 %d 条处理记录", len(records))
}

func (p *CaptionProcessor) saveProcessedRecords() {
	path := p.recordPath()
	if path == "" {
		return
	}

	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	records := make([]string, 0, len(p.processed))
	for r := range p.processed {
		records = append(records, r)
	}
	p.mu.Unlock()

	if err := utils.SaveJSONFile(path, records); err != nil {
		utils.Warn("保存处理记录失败: %v", err)
	}
}

// heuristicsHash 启发式参数的指纹，参数变化后缓存自动失效
func heuristicsHash(config *models.Config) string {
	data, _ := json.Marshal(struct {
		Format      string
		Pause       int64
		Linguistic  int64
		Markers     []string
		Connectives []string
	}{
		config.SourceFormat,
		config.PauseThresholdMs,
		config.LinguisticPauseMs,
		config.LinguisticMarkers,
		config.ConnectiveMarkers,
	})
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))
}
