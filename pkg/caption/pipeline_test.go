package caption

import (
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

func conversation() []models.RawEvent {
	return []models.RawEvent{
		event(0, 3000,
			frag("今日は", 0), frag("いい", 400), frag("天気", 700),
			frag("ですね", 900), frag("散歩", 1500), frag("に", 1700)),
		newlineEvent(2500),
		event(2600, 2000, frag("行き", 0), frag("ましょう", 300), frag("！", 1500)),
		event(4000, 1000, frag("うん", 0)),
	}
}

func TestRunEndToEnd(t *testing.T) {
	out := Run(conversation(), DefaultOptions())

	require.Len(t, out.Blocks, 3)
	assert.Equal(t, int64(2600), out.Blocks[0].EndMs)
	assert.Equal(t, "行きましょう！", out.Blocks[1].Text)
	assert.Len(t, out.Blocks[1].Tokens, 2)

	require.Len(t, out.Candidates, 4)
	assert.Empty(t, out.Diagnostics)

	require.Len(t, out.Sentences, 2)
	assert.Equal(t, models.FinalSentence{
		Text: "今日はいい天気ですね", StartMs: 0, EndMs: 1500, SplitReason: models.TimeGap(600),
	}, out.Sentences[0])
	assert.Equal(t, models.FinalSentence{
		Text: "散歩に行きましょううん", StartMs: 1500, EndMs: 5000, SplitReason: models.EndOfBlock(),
	}, out.Sentences[1])
}

func TestRunProperties(t *testing.T) {
	events := append(conversation(),
		event(6000, 1200, frag("それで", 0), frag("駅まで", 200), frag("歩いた", 900), frag("んです", 1000)),
		event(7500, 800, frag("そう", 0), frag("ですか", 100), frag("。", 400)),
	)

	out := Run(events, DefaultOptions())
	require.Greater(t, len(out.Sentences), 2)

	for i, s := range out.Sentences {
		assert.NotEmpty(t, strings.TrimSpace(s.Text))
		assert.Less(t, s.StartMs, s.EndMs, "句子 %d: %q", i, s.Text)
		if i > 0 {
			assert.LessOrEqual(t, out.Sentences[i-1].EndMs, s.StartMs, "句子 %d 与前一句重叠", i)
		}
	}

	candidates := make([]models.SentenceCandidate, 0, len(out.Sentences))
	for _, s := range out.Sentences {
		candidates = append(candidates, s.Candidate())
	}
	assert.Equal(t, out.Sentences, Merge(candidates, DefaultOptions().ConnectiveMarkers, nil))
}

func TestRunReportsDiagnostics(t *testing.T) {
	events := append(conversation(), models.RawEvent{Fragments: []models.Fragment{frag("壊れた", 0)}})

	out := Run(events, DefaultOptions())
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, 4, out.Diagnostics[0].Index)
	assert.Len(t, out.Sentences, 2)
}

func TestRunEmptyInput(t *testing.T) {
	out := Run(nil, DefaultOptions())
	assert.Empty(t, out.Blocks)
	assert.Empty(t, out.Candidates)
	assert.Empty(t, out.Sentences)
}

func TestRunTraceDoesNotChangeResult(t *testing.T) {
	opts := DefaultOptions()
	opts.SegmentWorkers = 4
	plain := Run(conversation(), opts)

	var (
		mu      sync.Mutex
		records []TraceRecord
	)
	opts.Trace = func(r TraceRecord) {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, r)
	}
	traced := Run(conversation(), opts)

	assert.Equal(t, plain.Sentences, traced.Sentences)
	assert.NotEmpty(t, records)

	stages := map[Stage]bool{}
	for _, r := range records {
		stages[r.Stage] = true
	}
	assert.True(t, stages[StageNormalize])
	assert.True(t, stages[StageSegment])
	assert.True(t, stages[StageMerge])
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := models.NewDefaultConfig()
	cfg.PauseThresholdMs = 800
	cfg.LinguisticMarkers = []string{"ましょう"}
	cfg.SegmentWorkers = 3

	opts := OptionsFromConfig(cfg, nil)
	assert.Equal(t, int64(800), opts.PauseThresholdMs)
	assert.Equal(t, []string{"ましょう"}, opts.LinguisticMarkers.Markers())
	assert.Equal(t, 3, opts.SegmentWorkers)

	// "ですね" 不再是标记，600ms 的停顿也低于 800ms 阈值
	out := Run(conversation(), opts)
	require.Len(t, out.Sentences, 1)
	assert.Equal(t, "今日はいい天気ですね散歩に行きましょううん", out.Sentences[0].Text)
}

func TestLogrusTrace(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	opts := DefaultOptions()
	opts.Trace = LogrusTrace(logger)
	Run(conversation(), opts)

	require.NotEmpty(t, hook.AllEntries())
	entry := hook.AllEntries()[0]
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, StageNormalize, entry.Data["stage"])

	assert.Nil(t, LogrusTrace(nil))
}
