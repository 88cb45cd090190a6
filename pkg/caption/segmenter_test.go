package caption

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

func TestSegmentSplitsOnTimeGap(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 1000, tok("猫", 0), tok("が", 100), tok("いる", 700)),
	}

	candidates := Segment(blocks, defaultParams(), nil)
	require.Len(t, candidates, 2)

	assert.Equal(t, models.SentenceCandidate{
		Text: "猫が", StartMs: 0, EndMs: 700, SplitReason: models.TimeGap(600),
	}, candidates[0])
	assert.Equal(t, models.SentenceCandidate{
		Text: "いる", StartMs: 700, EndMs: 1000, SplitReason: models.EndOfBlock(),
	}, candidates[1])
}

func TestSegmentIgnoresTimeGapOnFirstToken(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 2000, tok("えっと", 0), tok("今日", 800), tok("は", 900)),
	}

	var ignored int
	trace := func(r TraceRecord) {
		if r.Decision == DecisionIgnoreFirstToken {
			ignored++
		}
	}

	candidates := Segment(blocks, defaultParams(), trace)
	require.Len(t, candidates, 1)
	assert.Equal(t, "えっと今日は", candidates[0].Text)
	assert.Equal(t, models.EndOfBlock(), candidates[0].SplitReason)
	assert.Equal(t, 1, ignored)
}

func TestSegmentSplitsOnLinguisticPause(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 1000, tok("これは", 0), tok("本です", 100), tok("次", 300)),
	}

	candidates := Segment(blocks, defaultParams(), nil)
	require.Len(t, candidates, 2)
	assert.Equal(t, "これは本です", candidates[0].Text)
	assert.Equal(t, models.LinguisticPause(200), candidates[0].SplitReason)
	assert.Equal(t, int64(300), candidates[0].EndMs)
	assert.Equal(t, "次", candidates[1].Text)
	assert.Equal(t, int64(300), candidates[1].StartMs)
}

func TestSegmentLinguisticMarkerNeedsPause(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 1000, tok("これは", 0), tok("本です", 100), tok("ね", 250)),
	}

	candidates := Segment(blocks, defaultParams(), nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "これは本ですね", candidates[0].Text)
}

func TestSegmentLinguisticMarkerOnFirstTokenIgnored(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 1000, tok("です", 0), tok("ね", 300)),
	}

	candidates := Segment(blocks, defaultParams(), nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ですね", candidates[0].Text)
}

func TestSegmentThresholdsAreStrict(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 2000, tok("a", 0), tok("b", 100), tok("c", 600), tok("です", 700), tok("d", 850)),
	}

	// 停顿 500 与 150 都恰好等于阈值，不切分
	candidates := Segment(blocks, defaultParams(), nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "abcですd", candidates[0].Text)
}

func TestSegmentTimeGapTakesPrecedence(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 2000, tok("今日は", 0), tok("晴れです", 200), tok("明日", 900)),
	}

	candidates := Segment(blocks, defaultParams(), nil)
	require.Len(t, candidates, 2)
	assert.Equal(t, models.TimeGap(700), candidates[0].SplitReason)
}

func TestSegmentCustomThresholds(t *testing.T) {
	params := SegmentParams{
		PauseThresholdMs:  50,
		LinguisticPauseMs: 10,
		LinguisticMarkers: NewMarkerSet("."),
	}
	blocks := []models.NormalizedBlock{
		block(0, 1000, tok("a", 0), tok("b", 10), tok("c", 100), tok("d", 110)),
	}

	candidates := Segment(blocks, params, nil)
	require.Len(t, candidates, 2)
	assert.Equal(t, "ab", candidates[0].Text)
	assert.Equal(t, models.TimeGap(90), candidates[0].SplitReason)
	assert.Equal(t, "cd", candidates[1].Text)
}

func TestSegmentBlocksAreIndependent(t *testing.T) {
	blocks := []models.NormalizedBlock{
		block(0, 500, tok("一", 0)),
		block(500, 2000, tok("二", 500), tok("三", 600), tok("四", 1500)),
	}

	candidates := Segment(blocks, defaultParams(), nil)
	require.Len(t, candidates, 3)
	assert.Equal(t, models.SentenceCandidate{Text: "一", StartMs: 0, EndMs: 500, SplitReason: models.EndOfBlock()}, candidates[0])
	assert.Equal(t, "二三", candidates[1].Text)
	assert.Equal(t, int64(500), candidates[1].StartMs)
	assert.Equal(t, "四", candidates[2].Text)
	assert.Equal(t, int64(2000), candidates[2].EndMs)
}

func TestSegmentEmptyBlocks(t *testing.T) {
	assert.Empty(t, Segment(nil, defaultParams(), nil))
	assert.Empty(t, Segment([]models.NormalizedBlock{{StartMs: 0, EndMs: 10}}, defaultParams(), nil))
}

func TestSegmentParallelMatchesSequential(t *testing.T) {
	var blocks []models.NormalizedBlock
	for i := int64(0); i < 50; i++ {
		start := i * 3000
		blocks = append(blocks, block(start, start+3000,
			tok(fmt.Sprintf("文%d", i), start),
			tok("です", start+200),
			tok("よ", start+600),
			tok("ね", start+1400),
		))
	}

	sequential := Segment(blocks, defaultParams(), nil)
	for _, workers := range []int{0, 1, 4, 64} {
		assert.Equal(t, sequential, SegmentParallel(blocks, defaultParams(), workers, nil), "workers=%d", workers)
	}
}
