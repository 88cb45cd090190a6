package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// FileEventHandler 是处理文件事件的接口
type FileEventHandler interface {
	OnFileCreated(filePath string)
	OnFileModified(filePath string)
	OnFileDeleted(filePath string)
}

// FileFilter 判断路径是否需要处理
type FileFilter func(filePath string) bool

// FolderMonitor 监控文件夹变化
// 同一文件的连续写入事件在去抖时间内只触发一次回调
type FolderMonitor struct {
	watcher      *fsnotify.Watcher
	folderPath   string
	filter       FileFilter
	handler      FileEventHandler
	debounceTime time.Duration
	pendingFiles map[string]*time.Timer
	delivered    map[string]bool // 已经回调过 OnFileCreated 的文件
	mutex        sync.Mutex
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewFolderMonitor 创建新的文件夹监控器
func NewFolderMonitor(folderPath string, filter FileFilter, handler FileEventHandler, debounceTime time.Duration) (*FolderMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	return &FolderMonitor{
		watcher:      watcher,
		folderPath:   folderPath,
		filter:       filter,
		handler:      handler,
		debounceTime: debounceTime,
		pendingFiles: make(map[string]*time.Timer),
		delivered:    make(map[string]bool),
		stopChan:     make(chan struct{}),
	}, nil
}

// Start 开始监控文件夹
func (m *FolderMonitor) Start() error {
	if err := os.MkdirAll(m.folderPath, 0755); err != nil {
		return fmt.Errorf("创建文件夹失败: %w", err)
	}

	if err := m.watcher.Add(m.folderPath); err != nil {
		return fmt.Errorf("添加监控文件夹失败: %w", err)
	}

	m.wg.Add(1)
	go m.watchLoop()

	utils.Info("开始监控文件夹: %s", m.folderPath)
	return nil
}

// Stop 停止监控，可重复调用
func (m *FolderMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.watcher.Close()
		m.wg.Wait()

		m.mutex.Lock()
		for path, timer := range m.pendingFiles {
			timer.Stop()
			delete(m.pendingFiles, path)
		}
		m.mutex.Unlock()

		utils.Info("停止监控文件夹: %s", m.folderPath)
	})
}

// PendingCount 等待去抖结束的文件数
func (m *FolderMonitor) PendingCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.pendingFiles)
}

func (m *FolderMonitor) watchLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopChan:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleFileEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			utils.Error("监控文件夹时出错: %v", err)
		}
	}
}

func (m *FolderMonitor) handleFileEvent(event fsnotify.Event) {
	filePath := event.Name

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		m.handleRemoved(filePath)
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !m.isTargetFile(filePath) {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	select {
	case <-m.stopChan:
		return
	default:
	}

	if timer, exists := m.pendingFiles[filePath]; exists {
		timer.Stop()
	}
	m.pendingFiles[filePath] = time.AfterFunc(m.debounceTime, func() {
		m.processFile(filePath)
	})

	utils.Debug("检测到文件变化: %s", filePath)
}

func (m *FolderMonitor) handleRemoved(filePath string) {
	m.mutex.Lock()
	if timer, exists := m.pendingFiles[filePath]; exists {
		timer.Stop()
		delete(m.pendingFiles, filePath)
	}
	wasDelivered := m.delivered[filePath]
	delete(m.delivered, filePath)
	m.mutex.Unlock()

	if wasDelivered && m.handler != nil {
		m.handler.OnFileDeleted(filePath)
	}
}

func (m *FolderMonitor) isTargetFile(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}
	return m.filter == nil || m.filter(filePath)
}

func (m *FolderMonitor) processFile(filePath string) {
	m.mutex.Lock()
	delete(m.pendingFiles, filePath)
	seen := m.delivered[filePath]
	m.delivered[filePath] = true
	m.mutex.Unlock()

	select {
	case <-m.stopChan:
		return
	default:
	}

	// 去抖期间文件可能已被移走
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		m.mutex.Lock()
		delete(m.delivered, filePath)
		m.mutex.Unlock()
		return
	}

	if m.handler == nil {
		return
	}
	if seen {
		utils.Info("文件已更新: %s", filePath)
		m.handler.OnFileModified(filePath)
		return
	}
	utils.Info("准备处理文件: %s", filePath)
	m.handler.OnFileCreated(filePath)
}

// StartFolderMonitoring 开始监控文件夹，返回停止函数
func StartFolderMonitoring(folder string, filter FileFilter, handler FileEventHandler, debounceTime time.Duration) (func(), error) {
	monitor, err := NewFolderMonitor(folder, filter, handler, debounceTime)
	if err != nil {
		return nil, err
	}

	if err := monitor.Start(); err != nil {
		monitor.watcher.Close()
		return nil, err
	}

	return monitor.Stop, nil
}
