package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "data.json")

	type payload struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}

	require.NoError(t, SaveJSONFile(path, payload{Name: "字幕", Items: []string{"a", "b"}}))
	assert.True(t, CheckFileExists(path))

	var loaded payload
	require.NoError(t, LoadJSONFile(path, &loaded))
	assert.Equal(t, "字幕", loaded.Name)
	assert.Equal(t, []string{"a", "b"}, loaded.Items)

	// 不留下临时文件
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadJSONFileErrors(t *testing.T) {
	dir := t.TempDir()

	var v map[string]interface{}
	err := LoadJSONFile(filepath.Join(dir, "missing.json"), &v)
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	assert.Error(t, LoadJSONFile(bad, &v))
}

func TestDirHelpers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	assert.False(t, CheckDirExists(dir))
	require.NoError(t, EnsureDirExists(dir))
	assert.True(t, CheckDirExists(dir))
	assert.False(t, CheckFileExists(dir))
	assert.NoError(t, EnsureDirExists(""))
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json3")
	dst := filepath.Join(dir, "archive", "src.json3")
	require.NoError(t, os.WriteFile(src, []byte("{}"), 0644))

	require.NoError(t, MoveFile(src, dst))
	assert.False(t, CheckFileExists(src))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "45s", FormatTimeDuration(45))
	assert.Equal(t, "2m 5s", FormatTimeDuration(125))
	assert.Equal(t, "1h 1m 1s", FormatTimeDuration(3661))
	assert.Equal(t, "1.25s", FormatMillis(1250))
	assert.Equal(t, "512.00 B", FormatFileSize(512))
	assert.Equal(t, "1.50 KB", FormatFileSize(1536))
	assert.Equal(t, "2.00 MB", FormatFileSize(2*1024*1024))

	_, err := time.ParseInLocation("2006-01-02 15:04:05", GetCurrentTimeString(), time.Local)
	assert.NoError(t, err)
}
