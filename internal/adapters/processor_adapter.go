package adapters

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/processor"
	"github.com/ccp-p/caption-sentencer/pkg/scanner"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// CaptionFileProcessor 是处理字幕文件的接口
type CaptionFileProcessor interface {
	ProcessFile(filePath string) bool
	IsRecognizedFile(filePath string) bool
}

// ResultCallback 单个文件处理完成后的回调，失败时 result 为 nil
type ResultCallback func(filePath string, result *models.Result, err error)

// ProcessorAdapter 将字幕处理器适配为监控事件处理器
type ProcessorAdapter struct {
	Processor *processor.CaptionProcessor
	Scanner   *scanner.CaptionScanner

	ctx           context.Context
	archive       func(filePath string) (string, error)
	renameHandler func(oldPath, newPath string)
	onResult      ResultCallback
	mu            sync.Mutex // 同一时间只处理一个文件
}

// NewProcessorAdapter 创建新的处理器适配器
func NewProcessorAdapter(ctx context.Context, p *processor.CaptionProcessor, s *scanner.CaptionScanner) *ProcessorAdapter {
	return &ProcessorAdapter{
		Processor: p,
		Scanner:   s,
		ctx:       ctx,
	}
}

// SetArchiver 设置处理成功后的归档函数
func (a *ProcessorAdapter) SetArchiver(archive func(filePath string) (string, error)) {
	a.archive = archive
}

// SetRenameHandler 设置文件被移动后的回调
func (a *ProcessorAdapter) SetRenameHandler(handler func(oldPath, newPath string)) {
	a.renameHandler = handler
}

// SetResultCallback 设置处理结果回调
func (a *ProcessorAdapter) SetResultCallback(callback ResultCallback) {
	a.onResult = callback
}

// ProcessFile 处理文件
func (a *ProcessorAdapter) ProcessFile(filePath string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	result, err := a.Processor.ProcessFile(a.ctx, filePath)
	if a.onResult != nil {
		a.onResult(filePath, result, err)
	}
	if err != nil {
		utils.Error("处理文件失败 %s: %v", filepath.Base(filePath), err)
		return false
	}
	return true
}

// IsRecognizedFile 检查文件是否已处理
func (a *ProcessorAdapter) IsRecognizedFile(filePath string) bool {
	return a.Processor.IsProcessed(filePath)
}

// OnFileCreated 新文件出现时处理，已处理过的文件跳过
func (a *ProcessorAdapter) OnFileCreated(filePath string) {
	if a.Scanner != nil && !a.Scanner.IsCaptionFile(filePath) {
		return
	}
	if a.IsRecognizedFile(filePath) {
		utils.Debug("文件已处理过，跳过: %s", filePath)
		return
	}
	a.processAndArchive(filePath)
}

// OnFileModified 文件内容变化时重新处理
func (a *ProcessorAdapter) OnFileModified(filePath string) {
	if a.Scanner != nil && !a.Scanner.IsCaptionFile(filePath) {
		return
	}
	a.processAndArchive(filePath)
}

// OnFileDeleted 文件被删除
func (a *ProcessorAdapter) OnFileDeleted(filePath string) {
	utils.Debug("文件已删除: %s", filePath)
}

func (a *ProcessorAdapter) processAndArchive(filePath string) {
	if !a.ProcessFile(filePath) || a.archive == nil {
		return
	}

	newPath, err := a.archive(filePath)
	if err != nil {
		utils.Warn("归档文件失败 %s: %v", filepath.Base(filePath), err)
		return
	}
	if a.renameHandler != nil {
		a.renameHandler(filePath, newPath)
	}
}
