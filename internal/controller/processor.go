package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/ccp-p/caption-sentencer/internal/adapters"
	"github.com/ccp-p/caption-sentencer/internal/ui"
	"github.com/ccp-p/caption-sentencer/internal/watcher"
	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/processor"
	"github.com/ccp-p/caption-sentencer/pkg/scanner"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// batchBarID 批处理进度条
const batchBarID = "batch"

// FileResult 单个文件的处理结果
type FileResult struct {
	FilePath string
	Result   *models.Result
	Err      error
}

// Success 是否处理成功
func (r FileResult) Success() bool {
	return r.Err == nil && r.Result != nil
}

// Stats 本次运行的统计数据
type Stats struct {
	StartTime       time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	CachedFiles     int
	TotalSentences  int
}

// ProcessorController 处理器控制器，协调各个组件工作
type ProcessorController struct {
	Config *models.Config

	// UI组件
	ProgressManager *ui.ProgressManager
	Out             io.Writer

	// 处理组件
	Processor *processor.CaptionProcessor
	Scanner   *scanner.CaptionScanner

	ctx        context.Context
	cancelFunc context.CancelFunc

	Stats   Stats
	cleanup []func() // 清理函数列表
	mu      sync.Mutex
}

// NewProcessorController 创建处理器控制器，日志需在此之前初始化
func NewProcessorController(parent context.Context, config *models.Config, showProgress bool) *ProcessorController {
	ctx, cancel := context.WithCancel(parent)

	pc := &ProcessorController{
		Config:          config,
		ProgressManager: ui.NewProgressManager(showProgress),
		Out:             os.Stdout,
		Processor:       processor.NewCaptionProcessor(config),
		Scanner:         scanner.NewCaptionScanner(),
		ctx:             ctx,
		cancelFunc:      cancel,
	}
	pc.Stats.StartTime = time.Now()

	if showProgress {
		// 进度条占用终端时日志只写文件
		utils.EnableTerminalProgress(config.LogFile)
	}
	return pc
}

// Context 控制器的上下文，收到中断信号后取消
func (pc *ProcessorController) Context() context.Context {
	return pc.ctx
}

// ProcessFiles 使用有限并发处理一组文件，结果顺序与输入一致
func (pc *ProcessorController) ProcessFiles(paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	workers := pc.Config.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	pc.ProgressManager.CreateProgressBar(batchBarID, len(paths), "处理字幕", "准备中...")

	var wg sync.WaitGroup
	var done int
	sem := make(chan struct{}, workers) // 信号量限制并发

	for i, path := range paths {
		if pc.ctx.Err() != nil {
			results[i] = FileResult{FilePath: path, Err: pc.ctx.Err()}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(index int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := pc.Processor.ProcessFile(pc.ctx, path)
			results[index] = FileResult{FilePath: path, Result: result, Err: err}

			pc.mu.Lock()
			done++
			pc.fileCallback(done, len(paths), results[index])
			pc.mu.Unlock()

			pc.ProgressManager.IncrementProgressBar(batchBarID, filepath.Base(path))
		}(i, path)
	}

	wg.Wait()
	pc.ProgressManager.CompleteProgressBar(batchBarID, "完成")

	pc.mu.Lock()
	pc.updateStats(results)
	pc.mu.Unlock()
	return results
}

// ProcessFolder 扫描目录并处理其中的字幕文件，force 为 false 时跳过已处理的文件
func (pc *ProcessorController) ProcessFolder(dir string, force bool) ([]FileResult, error) {
	files, err := pc.Scanner.ScanDirectory(dir)
	if err != nil {
		return nil, err
	}
	if !force {
		files = pc.Scanner.FilterNewFiles(files, pc.Processor.ProcessedPaths())
	}

	if len(files) == 0 {
		utils.Info("没有需要处理的字幕文件: %s", dir)
		return nil, nil
	}
	utils.Info("找到 %d 个待处理的字幕文件", len(files))

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return pc.ProcessFiles(paths), nil
}

// StartWatchMode 先处理已有文件，然后监控输入文件夹直到上下文被取消
func (pc *ProcessorController) StartWatchMode() error {
	if err := utils.EnsureDirExists(pc.Config.InputFolder); err != nil {
		return fmt.Errorf("创建输入文件夹失败: %w", err)
	}
	if err := utils.EnsureDirExists(pc.Config.OutputFolder); err != nil {
		return fmt.Errorf("创建输出文件夹失败: %w", err)
	}

	if _, err := pc.ProcessFolder(pc.Config.InputFolder, false); err != nil {
		return err
	}

	adapter := adapters.NewProcessorAdapter(pc.ctx, pc.Processor, pc.Scanner)
	adapter.SetRenameHandler(pc.Processor.UpdateProcessedRecordOnRename)
	adapter.SetResultCallback(func(path string, result *models.Result, err error) {
		r := FileResult{FilePath: path, Result: result, Err: err}
		pc.mu.Lock()
		pc.fileCallback(0, 0, r)
		pc.updateStats([]FileResult{r})
		pc.mu.Unlock()
	})

	if pc.Config.ArchiveFolder != "" {
		archiver, err := watcher.NewFileArchiver(pc.Config.ArchiveFolder)
		if err != nil {
			return fmt.Errorf("创建归档文件夹失败: %w", err)
		}
		adapter.SetArchiver(archiver.Archive)
	}

	debounce := time.Duration(pc.Config.WatchDebounceMs) * time.Millisecond
	stop, err := watcher.StartFolderMonitoring(pc.Config.InputFolder, pc.Scanner.IsCaptionFile, adapter, debounce)
	if err != nil {
		return err
	}
	pc.addCleanup(stop)

	utils.Info("监控已启动，按Ctrl+C退出...")
	return pc.waitForTermination()
}

// HandleSignals 收到中断信号时取消上下文
func (pc *ProcessorController) HandleSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	pc.addCleanup(func() { signal.Stop(c) })

	go func() {
		select {
		case <-c:
			utils.Info("接收到中断信号，正在停止...")
			pc.cancelFunc()
		case <-pc.ctx.Done():
		}
	}()
}

// Stop 取消所有正在进行的处理
func (pc *ProcessorController) Stop() {
	pc.cancelFunc()
}

// Cleanup 逆序执行所有清理函数
func (pc *ProcessorController) Cleanup() {
	pc.mu.Lock()
	cleanup := pc.cleanup
	pc.cleanup = nil
	pc.mu.Unlock()

	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}

	pc.ProgressManager.CloseAll("已完成")
	pc.cancelFunc()
	utils.DisableTerminalProgress()
}

// PrintSummary 输出本次运行的统计信息
func (pc *ProcessorController) PrintSummary() {
	pc.mu.Lock()
	stats := pc.Stats
	pc.mu.Unlock()

	elapsed := time.Since(stats.StartTime).Seconds()
	fmt.Fprintln(pc.Out)
	fmt.Fprintf(pc.Out, "处理完成: 共 %d 个文件, 用时 %s (%s)\n", stats.TotalFiles, utils.FormatTimeDuration(elapsed), utils.GetCurrentTimeString())
	fmt.Fprintln(pc.Out, color.GreenString("成功: %d (缓存 %d), 句子总数: %d", stats.SuccessfulFiles, stats.CachedFiles, stats.TotalSentences))
	if stats.FailedFiles > 0 {
		fmt.Fprintln(pc.Out, color.RedString("失败: %d", stats.FailedFiles))
	}

	fmt.Fprintln(pc.Out, ui.StatsTable(pc.Processor.Registry.GetStats()))
	pc.Processor.ErrorHandler.PrintErrorStats()
}

func (pc *ProcessorController) addCleanup(cleanup func()) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cleanup = append(pc.cleanup, cleanup)
}

func (pc *ProcessorController) waitForTermination() error {
	<-pc.ctx.Done()
	return nil
}

// fileCallback 输出单个文件的处理结果，调用方持有 pc.mu
func (pc *ProcessorController) fileCallback(current, total int, r FileResult) {
	// 显示进度条时由进度条展示，避免输出混乱
	if pc.ProgressManager.Enabled() {
		if !r.Success() {
			utils.Error("处理失败: %s - %v", filepath.Base(r.FilePath), r.Err)
		}
		return
	}

	prefix := ""
	if total > 0 {
		prefix = fmt.Sprintf("[%d/%d] ", current, total)
	}

	filename := filepath.Base(r.FilePath)
	if !r.Success() {
		fmt.Fprintln(pc.Out, color.RedString("%s处理失败: %s - %v", prefix, filename, r.Err))
		return
	}

	status := "处理成功"
	if r.Result.Cached {
		status = "使用缓存"
	}
	fmt.Fprintln(pc.Out, color.GreenString("%s%s: %s (%d 句)", prefix, status, filename, r.Result.SentenceCount))
	for _, kind := range []string{"srt", "json", "text"} {
		if path, ok := r.Result.OutputFiles[kind]; ok {
			fmt.Fprintf(pc.Out, "  输出文件: %s\n", path)
		}
	}
	fmt.Fprintf(pc.Out, "  文件大小: %s, 处理用时: %s\n", utils.FormatFileSize(r.Result.InputBytes), utils.FormatMillis(r.Result.ProcessTimeMs))
}

// updateStats 累加处理结果，调用方持有 pc.mu
func (pc *ProcessorController) updateStats(results []FileResult) {
	for _, r := range results {
		pc.Stats.TotalFiles++
		if !r.Success() {
			pc.Stats.FailedFiles++
			continue
		}
		pc.Stats.SuccessfulFiles++
		pc.Stats.TotalSentences += r.Result.SentenceCount
		if r.Result.Cached {
			pc.Stats.CachedFiles++
		}
	}
}
