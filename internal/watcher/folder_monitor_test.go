package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	created  []string
	modified []string
	deleted  []string
}

func (h *recordingHandler) OnFileCreated(filePath string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created = append(h.created, filePath)
}

func (h *recordingHandler) OnFileModified(filePath string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modified = append(h.modified, filePath)
}

func (h *recordingHandler) OnFileDeleted(filePath string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, filePath)
}

func (h *recordingHandler) counts() (int, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.created), len(h.modified), len(h.deleted)
}

func json3Only(path string) bool {
	return strings.HasSuffix(path, ".json3")
}

func startMonitor(t *testing.T, dir string, handler FileEventHandler) *FolderMonitor {
	t.Helper()
	monitor, err := NewFolderMonitor(dir, json3Only, handler, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, monitor.Start())
	t.Cleanup(monitor.Stop)
	return monitor
}

func TestFolderMonitorLifecycle(t *testing.T) {
	dir := t.TempDir()
	handler := &recordingHandler{}
	startMonitor(t, dir, handler)

	path := filepath.Join(dir, "talk.json3")
	require.NoError(t, os.WriteFile(path, []byte(`{"events": []}`), 0644))

	assert.Eventually(t, func() bool {
		created, _, _ := handler.counts()
		return created == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"events": [{}]}`), 0644))
	assert.Eventually(t, func() bool {
		_, modified, _ := handler.counts()
		return modified == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		_, _, deleted := handler.counts()
		return deleted == 1
	}, 2*time.Second, 10*time.Millisecond)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []string{path}, handler.created)
	assert.Equal(t, []string{path}, handler.deleted)
}

func TestFolderMonitorDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	handler := &recordingHandler{}
	monitor, err := NewFolderMonitor(dir, json3Only, handler, 300*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, monitor.Start())
	defer monitor.Stop()

	path := filepath.Join(dir, "partial.json3")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.WriteString(`{"events": []}`)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool {
		created, _, _ := handler.counts()
		return created == 1
	}, 3*time.Second, 20*time.Millisecond)

	// 去抖结束后不会再有额外的回调
	time.Sleep(400 * time.Millisecond)
	created, modified, _ := handler.counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 0, modified)
	assert.Equal(t, 0, monitor.PendingCount())
}

func TestFolderMonitorIgnoresFilteredFiles(t *testing.T) {
	dir := t.TempDir()
	handler := &recordingHandler{}
	startMonitor(t, dir, handler)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json3"), 0755))

	assert.Never(t, func() bool {
		created, modified, _ := handler.counts()
		return created+modified > 0
	}, 300*time.Millisecond, 20*time.Millisecond)
}

func TestFolderMonitorStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	monitor, err := NewFolderMonitor(dir, nil, &recordingHandler{}, time.Second)
	require.NoError(t, err)
	require.NoError(t, monitor.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json3"), []byte("{}"), 0644))
	assert.Eventually(t, func() bool { return monitor.PendingCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	monitor.Stop()
	monitor.Stop()
	assert.Equal(t, 0, monitor.PendingCount())
}

func TestStartFolderMonitoringCreatesFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "incoming")
	stop, err := StartFolderMonitoring(dir, json3Only, &recordingHandler{}, 10*time.Millisecond)
	require.NoError(t, err)
	defer stop()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileArchiver(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := filepath.Join(t.TempDir(), "archive")

	archiver, err := NewFileArchiver(targetDir)
	require.NoError(t, err)
	archiver.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	write := func() string {
		path := filepath.Join(sourceDir, "talk.json3")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
		return path
	}

	first, err := archiver.Archive(write())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(targetDir, "talk.json3"), first)

	second, err := archiver.Archive(write())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(targetDir, "talk_20240501123000.json3"), second)

	third, err := archiver.Archive(write())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(targetDir, "talk_20240501123000_1.json3"), third)

	data, err := os.ReadFile(third)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.NoFileExists(t, filepath.Join(sourceDir, "talk.json3"))
	assert.FileExists(t, first)
	assert.FileExists(t, second)
}

func TestFileArchiverMissingSource(t *testing.T) {
	archiver, err := NewFileArchiver(t.TempDir())
	require.NoError(t, err)

	_, err = archiver.Archive(filepath.Join(t.TempDir(), "missing.json3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
