package caption

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

// SegmentParams 分句阈值
type SegmentParams struct {
	PauseThresholdMs  int64     // 纯停顿切分阈值
	LinguisticPauseMs int64     // 语言标记后的停顿切分阈值
	LinguisticMarkers MarkerSet // 句末助词/标点
}

// Segment 按块内停顿与语言标记把每个文本块切分为候选句
// 块之间没有共享状态，块的最后一个片段总是结束当前句
func Segment(blocks []models.NormalizedBlock, params SegmentParams, trace TraceFunc) []models.SentenceCandidate {
	var candidates []models.SentenceCandidate
	for _, block := range blocks {
		candidates = append(candidates, segmentBlock(block, params, trace)...)
	}
	return candidates
}

// SegmentParallel 与 Segment 结果相同，但使用 workers 个 goroutine 并行处理各块
// 输出保持块的原始顺序；trace 必须可以被并发调用
func SegmentParallel(blocks []models.NormalizedBlock, params SegmentParams, workers int, trace TraceFunc) []models.SentenceCandidate {
	if workers <= 1 || len(blocks) < 2 {
		return Segment(blocks, params, trace)
	}
	if workers > len(blocks) {
		workers = len(blocks)
	}

	perBlock := make([][]models.SentenceCandidate, len(blocks))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perBlock[i] = segmentBlock(blocks[i], params, trace)
			}
		}()
	}
	for i := range blocks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var candidates []models.SentenceCandidate
	for _, c := range perBlock {
		candidates = append(candidates, c...)
	}
	return candidates
}

func segmentBlock(block models.NormalizedBlock, params SegmentParams, trace TraceFunc) []models.SentenceCandidate {
	tokens := block.Tokens
	if len(tokens) == 0 {
		return nil
	}

	var (
		candidates []models.SentenceCandidate
		buffer     []string
		bufStartMs = tokens[0].StartMs
	)

	for i, token := range tokens {
		buffer = append(buffer, token.Text)

		var (
			reason models.SplitReason
			split  bool
			endMs  int64
		)
		if i == len(tokens)-1 {
			reason, split, endMs = models.EndOfBlock(), true, block.EndMs
		} else {
			next := tokens[i+1]
			reason, split = params.decide(token, next.StartMs-token.StartMs, len(buffer), trace)
			endMs = next.StartMs
		}
		if !split {
			continue
		}

		text := strings.Join(buffer, "")
		if strings.TrimSpace(text) != "" {
			candidates = append(candidates, models.SentenceCandidate{
				Text:        text,
				StartMs:     bufStartMs,
				EndMs:       endMs,
				SplitReason: reason,
			})
			trace.emit(TraceRecord{Stage: StageSegment, Decision: DecisionSplit, Reason: reason.String(), Text: text, StartMs: bufStartMs})
		}

		buffer = buffer[:0]
		if i+1 < len(tokens) {
			bufStartMs = tokens[i+1].StartMs
		}
	}

	return candidates
}

// decide 判断在 token 之后是否切分
// 缓冲区只有一个片段时，基于时间的切分都会被忽略
func (p SegmentParams) decide(token models.Token, pauseMs int64, buffered int, trace TraceFunc) (models.SplitReason, bool) {
	if pauseMs > p.PauseThresholdMs {
		if buffered > 1 {
			return models.TimeGap(pauseMs), true
		}
		trace.emit(TraceRecord{Stage: StageSegment, Decision: DecisionIgnoreFirstToken, Reason: fmt.Sprintf("停顿 %dms 超过阈值，但只有一个片段", pauseMs), Text: token.Text, StartMs: token.StartMs})
		return models.SplitReason{}, false
	}

	marker, found := p.LinguisticMarkers.Contains(token.Text)
	if found && pauseMs > p.LinguisticPauseMs {
		if buffered > 1 {
			return models.LinguisticPause(pauseMs), true
		}
		trace.emit(TraceRecord{Stage: StageSegment, Decision: DecisionIgnoreFirstToken, Reason: fmt.Sprintf("标记 %q + 停顿 %dms，但只有一个片段", marker, pauseMs), Text: token.Text, StartMs: token.StartMs})
	}
	return models.SplitReason{}, false
}
