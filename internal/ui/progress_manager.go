package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// ProgressManager 管理多个进度条
type ProgressManager struct {
	progressBars map[string]*ProgressBar
	mutex        sync.Mutex
	enabled      bool
	out          io.Writer
}

// NewProgressManager 创建新的进度管理器，enabled 为 false 时所有操作都是空操作
func NewProgressManager(enabled bool) *ProgressManager {
	return &ProgressManager{
		progressBars: make(map[string]*ProgressBar),
		enabled:      enabled,
		out:          os.Stdout,
	}
}

// SetOutput 设置进度条输出目标
func (pm *ProgressManager) SetOutput(w io.Writer) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.out = w
}

// Enabled 是否显示进度条
func (pm *ProgressManager) Enabled() bool {
	return pm != nil && pm.enabled
}

// CreateProgressBar 创建并注册一个新的进度条
func (pm *ProgressManager) CreateProgressBar(id string, total int, prefix string, suffix string) *ProgressBar {
	if !pm.Enabled() {
		return nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	// 如果已经存在同名进度条，先完成它
	if bar, exists := pm.progressBars[id]; exists {
		bar.Complete("已被替换")
	}

	bar := NewProgressBar(total, prefix, suffix)
	bar.Out = pm.out
	pm.progressBars[id] = bar
	return bar
}

// GetProgressBar 获取已存在的进度条
func (pm *ProgressManager) GetProgressBar(id string) *ProgressBar {
	if !pm.Enabled() {
		return nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	return pm.progressBars[id]
}

// UpdateProgressBar 更新进度条
func (pm *ProgressManager) UpdateProgressBar(id string, current int, suffix string) {
	if !pm.Enabled() {
		return
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if bar, exists := pm.progressBars[id]; exists {
		bar.Update(current, suffix)
	}
}

// IncrementProgressBar 进度加一
func (pm *ProgressManager) IncrementProgressBar(id string, suffix string) {
	if !pm.Enabled() {
		return
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if bar, exists := pm.progressBars[id]; exists {
		bar.Increment(suffix)
	}
}

// CompleteProgressBar 完成并移除进度条
func (pm *ProgressManager) CompleteProgressBar(id string, suffix string) {
	if !pm.Enabled() {
		return
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if bar, exists := pm.progressBars[id]; exists {
		bar.Complete(suffix)
		delete(pm.progressBars, id)
	}
}

// CloseAll 完成所有进度条
func (pm *ProgressManager) CloseAll(suffix string) {
	if !pm.Enabled() {
		return
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	for _, id := range pm.sortedIDs() {
		pm.progressBars[id].Complete(suffix)
	}
	pm.progressBars = make(map[string]*ProgressBar)
}

// PrintStatus 打印当前所有进度条的状态
func (pm *ProgressManager) PrintStatus() {
	if !pm.Enabled() {
		return
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	fmt.Fprintln(pm.out, "\n当前进度状态:")
	for _, id := range pm.sortedIDs() {
		bar := pm.progressBars[id]
		fmt.Fprintf(pm.out, "- %s: %.1f%% (%d/%d) %s\n",
			id, bar.percent()*100, bar.Current, bar.Total, bar.Suffix)
	}
}

func (pm *ProgressManager) sortedIDs() []string {
	ids := make([]string, 0, len(pm.progressBars))
	for id := range pm.progressBars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
