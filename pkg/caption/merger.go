package caption

import (
	"fmt"
	"strings"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

// Merge 单次向前遍历，把因块结束或以连接助词结尾而被切开的候选句合并回完整句子
// 合并后的句子继承后一句的切分原因，因此合并可以沿着链条一直向后传递
func Merge(candidates []models.SentenceCandidate, connectives MarkerSet, trace TraceFunc) []models.FinalSentence {
	merged := make([]models.FinalSentence, 0, len(candidates))

	for _, candidate := range candidates {
		text := strings.TrimSpace(candidate.Text)
		if text == "" {
			trace.emit(TraceRecord{Stage: StageMerge, Decision: DecisionSkipEmpty, Reason: "空句子", StartMs: candidate.StartMs})
			continue
		}

		current := models.FinalSentence{
			Text:        text,
			StartMs:     candidate.StartMs,
			EndMs:       candidate.EndMs,
			SplitReason: candidate.SplitReason,
		}

		if len(merged) == 0 {
			merged = append(merged, current)
			trace.emit(TraceRecord{Stage: StageMerge, Decision: DecisionPush, Reason: "第一句", Text: text, StartMs: current.StartMs})
			continue
		}

		previous := merged[len(merged)-1]
		trigger, shouldMerge := mergeTrigger(previous, connectives)
		if !shouldMerge {
			merged = append(merged, current)
			trace.emit(TraceRecord{Stage: StageMerge, Decision: DecisionPush, Reason: previous.SplitReason.String(), Text: text, StartMs: current.StartMs})
			continue
		}

		// 只替换最后一个元素，StartMs 保持不变
		previous.Text = strings.TrimSpace(previous.Text) + text
		previous.EndMs = current.EndMs
		previous.SplitReason = current.SplitReason
		merged[len(merged)-1] = previous
		trace.emit(TraceRecord{Stage: StageMerge, Decision: DecisionMerge, Reason: trigger, Text: previous.Text, StartMs: previous.StartMs})
	}

	sentences := make([]models.FinalSentence, 0, len(merged))
	for _, s := range merged {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func mergeTrigger(previous models.FinalSentence, connectives MarkerSet) (string, bool) {
	if previous.SplitReason.IsEndOfBlock() {
		return "End of Block", true
	}
	text := strings.TrimSpace(previous.Text)
	if text == "" {
		return "", false
	}
	if marker, ok := connectives.TrailingMatch(text); ok {
		return fmt.Sprintf("Ends with Particle (%s)", marker), true
	}
	return "", false
}
