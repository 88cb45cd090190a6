package asr

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

const sampleJSON3 = `{
  "wireMagic": "pb3",
  "events": [
    {"tStartMs": 0, "dDurationMs": 3000, "id": 1, "wWinId": 1},
    {"tStartMs": 120, "dDurationMs": 2880, "wWinId": 1,
     "segs": [{"utf8": "今日は", "acAsrConf": 0}, {"utf8": " いい", "tOffsetMs": 400}]},
    {"tStartMs": 1500, "dDurationMs": 10, "wWinId": 1, "aAppend": 1, "segs": [{"utf8": "\\n"}]},
    {"tStartMs": 1600.4, "wWinId": 1, "segs": [{"utf8": "\u304b\u3099"}]}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestJSON3Source(t *testing.T) {
	path := writeFile(t, "sample.json3", sampleJSON3)

	source, err := NewJSON3Source(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON3, source.Format())
	assert.Equal(t, fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(sampleJSON3))), source.Checksum())

	var progress []int
	events, err := source.GetEvents(context.Background(), func(percent int, message string) {
		progress = append(progress, percent)
	})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, []int{0, 100}, progress)

	// 没有 segs 的窗口事件保留为空片段
	assert.Empty(t, events[0].Fragments)

	second := events[1]
	assert.Equal(t, int64(120), *second.StartMs)
	assert.Equal(t, int64(2880), *second.DurationMs)
	require.Len(t, second.Fragments, 2)
	assert.Nil(t, second.Fragments[0].OffsetMs)
	assert.Equal(t, " いい", second.Fragments[1].Text)
	assert.Equal(t, int64(400), second.Fragments[1].Offset())

	newline := events[2]
	assert.True(t, newline.IsAppendNewline)
	assert.Equal(t, `\n`, newline.Fragments[0].Text)

	last := events[3]
	assert.Equal(t, int64(1600), *last.StartMs)
	assert.Nil(t, last.DurationMs)
	// 分解形式的假名被规范为NFC
	assert.Equal(t, "\u304c", last.Fragments[0].Text)
}

func TestJSON3SourceRejectsOtherDocuments(t *testing.T) {
	for name, content := range map[string]string{
		"array.json":    `[{"start_ms": 0}]`,
		"noevents.json": `{"foo": 1}`,
		"broken.json":   `{"events": [`,
		"empty.json":    ``,
	} {
		source, err := NewJSON3Source(writeFile(t, name, content))
		require.NoError(t, err)

		_, err = source.GetEvents(context.Background(), nil)
		assert.True(t, errors.Is(err, ErrUnrecognizedFormat), name)
	}
}

func TestJSON3SourceCancelled(t *testing.T) {
	source, err := NewJSON3Source(writeFile(t, "sample.json3", sampleJSON3))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.GetEvents(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEventsSource(t *testing.T) {
	path := writeFile(t, "events.json", `[
  {"start_ms": 0, "duration_ms": 1000, "fragments": [{"text": "猫", "offset_ms": 0}, {"text": "が", "offset_ms": 100}]},
  {"start_ms": 1000, "fragments": [{"text": "いる"}], "is_append_newline": false}
]`)

	source, err := NewEventsSource(path)
	require.NoError(t, err)
	assert.Equal(t, FormatEvents, source.Format())

	events, err := source.GetEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].HasTiming())
	assert.False(t, events[1].HasTiming())
	assert.Equal(t, "が", events[0].Fragments[1].Text)

	source, err = NewEventsSource(writeFile(t, "doc.json", `{"events": []}`))
	require.NoError(t, err)
	_, err = source.GetEvents(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))
}

func TestNewBaseSourceErrors(t *testing.T) {
	_, err := NewBaseSource(filepath.Join(t.TempDir(), "missing.json3"))
	assert.Error(t, err)

	_, err = NewBaseSource(t.TempDir())
	assert.Error(t, err)
}

func TestBaseSourceCache(t *testing.T) {
	base := NewBaseSourceFromBytes("memory.json3", []byte(sampleJSON3))
	cacheDir := filepath.Join(t.TempDir(), "cache")
	key := base.GetCacheKey("result")
	assert.Equal(t, "result-"+base.CRC32Hex+".json", key)

	var sentences []models.FinalSentence
	assert.False(t, base.LoadFromCache(cacheDir, key, &sentences))

	want := []models.FinalSentence{{Text: "猫が", StartMs: 0, EndMs: 700, SplitReason: models.TimeGap(600)}}
	require.NoError(t, base.SaveToCache(cacheDir, key, want))
	assert.True(t, base.LoadFromCache(cacheDir, key, &sentences))
	assert.Equal(t, want, sentences)

	// 未配置缓存目录时不读写
	assert.NoError(t, base.SaveToCache("", key, want))
	assert.False(t, base.LoadFromCache("", key, &sentences))
}

func TestRegistryAutoDetect(t *testing.T) {
	registry := NewDefaultRegistry()
	assert.Equal(t, []string{FormatJSON3, FormatEvents}, registry.Formats())

	source, events, err := registry.Open(context.Background(), writeFile(t, "a.json3", sampleJSON3), FormatAuto, nil)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON3, source.Format())
	assert.Len(t, events, 4)

	source, events, err = registry.Open(context.Background(), writeFile(t, "b.json", `[]`), FormatAuto, nil)
	require.NoError(t, err)
	assert.Equal(t, FormatEvents, source.Format())
	assert.Empty(t, events)

	_, _, err = registry.Open(context.Background(), writeFile(t, "c.json", `"text"`), FormatAuto, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))

	stats := registry.GetStats()
	assert.Equal(t, 1, stats[FormatJSON3]["count"])
	assert.Equal(t, "33.3%", stats[FormatJSON3]["success_rate"])
	assert.Equal(t, 1, stats[FormatEvents]["count"])
	assert.Equal(t, "50.0%", stats[FormatEvents]["success_rate"])
	assert.Equal(t, 10, stats[FormatJSON3]["priority"])
}

func TestRegistryExplicitFormat(t *testing.T) {
	registry := NewDefaultRegistry()
	path := writeFile(t, "a.json3", sampleJSON3)

	_, _, err := registry.Open(context.Background(), path, FormatEvents, nil)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))

	_, _, err = registry.Open(context.Background(), path, "srt", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "srt")
}

func TestRegistrySetAvailable(t *testing.T) {
	registry := NewDefaultRegistry()
	registry.SetAvailable(FormatJSON3, false)
	assert.Equal(t, []string{FormatEvents}, registry.Formats())

	_, _, err := registry.Open(context.Background(), writeFile(t, "a.json3", sampleJSON3), FormatAuto, nil)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))

	registry.SetAvailable(FormatEvents, false)
	_, _, err = registry.Open(context.Background(), writeFile(t, "b.json", `[]`), FormatAuto, nil)
	assert.Error(t, err)
}
