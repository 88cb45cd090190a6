package caption

import (
	"fmt"
	"strings"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

// newlineEscape 字幕源用来表示换行的两字符转义
const newlineEscape = `\n`

// Normalize 清理原始事件，产出带绝对时间戳的文本块
// 格式错误的事件会被跳过并作为诊断信息返回，不会中断处理
func Normalize(events []models.RawEvent, trace TraceFunc) ([]models.NormalizedBlock, []*MalformedEventError) {
	content := make([]models.RawEvent, 0, len(events))
	positions := make([]int, 0, len(events))

	for i, event := range events {
		if len(event.Fragments) == 0 {
			trace.emit(TraceRecord{Stage: StageNormalize, Decision: DecisionDropNoFragments, Reason: fmt.Sprintf("事件 #%d 没有文本片段", i)})
			continue
		}
		if isNewlineArtifact(event) {
			trace.emit(TraceRecord{Stage: StageNormalize, Decision: DecisionDropNewline, Reason: fmt.Sprintf("事件 #%d 为换行标记", i)})
			continue
		}
		content = append(content, event)
		positions = append(positions, i)
	}

	var (
		blocks      []models.NormalizedBlock
		diagnostics []*MalformedEventError
	)

	for i, event := range content {
		if !event.HasTiming() {
			diag := newMalformedEventError(positions[i], event)
			diagnostics = append(diagnostics, diag)
			trace.emit(TraceRecord{Stage: StageNormalize, Decision: DecisionSkipMalformed, Reason: diag.Error(), Text: diag.Preview})
			continue
		}

		startMs := *event.StartMs
		endMs := startMs + *event.DurationMs
		// 下一个事件开始时，当前事件的显示窗口即结束
		if i+1 < len(content) && content[i+1].StartMs != nil {
			endMs = min(endMs, *content[i+1].StartMs)
		}

		block := buildBlock(startMs, endMs, event.Fragments)
		switch {
		case block.Text == "":
			trace.emit(TraceRecord{Stage: StageNormalize, Decision: DecisionDropEmpty, Reason: "清理后文本为空", StartMs: startMs})
		case len(block.Tokens) == 0:
			trace.emit(TraceRecord{Stage: StageNormalize, Decision: DecisionDropNoTokens, Reason: fmt.Sprintf("所有片段都晚于结束时间 %dms", endMs), Text: block.Text, StartMs: startMs})
		default:
			trace.emit(TraceRecord{Stage: StageNormalize, Decision: DecisionEmitBlock, Reason: fmt.Sprintf("%d-%dms, %d 个片段", startMs, endMs, len(block.Tokens)), Text: block.Text, StartMs: startMs})
			blocks = append(blocks, block)
		}
	}

	return blocks, diagnostics
}

func isNewlineArtifact(event models.RawEvent) bool {
	if !event.IsAppendNewline || len(event.Fragments) != 1 {
		return false
	}
	return event.Fragments[0].Text == newlineEscape
}

func buildBlock(startMs, endMs int64, fragments []models.Fragment) models.NormalizedBlock {
	var text strings.Builder
	tokens := make([]models.Token, 0, len(fragments))

	for _, fragment := range fragments {
		cleaned := cleanFragmentText(fragment.Text)
		if cleaned == "" {
			continue
		}
		text.WriteString(cleaned)

		at := startMs + fragment.Offset()
		// 超出结束时间的片段属于下一个事件的窗口
		if at < endMs {
			tokens = append(tokens, models.Token{Text: cleaned, StartMs: at})
		}
	}

	return models.NormalizedBlock{
		StartMs: startMs,
		EndMs:   endMs,
		Text:    text.String(),
		Tokens:  tokens,
	}
}

func cleanFragmentText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", ""))
}

func newMalformedEventError(index int, event models.RawEvent) *MalformedEventError {
	diag := &MalformedEventError{Index: index}
	if event.StartMs == nil {
		diag.Missing = append(diag.Missing, "start_ms")
	}
	if event.DurationMs == nil {
		diag.Missing = append(diag.Missing, "duration_ms")
	}
	if len(event.Fragments) > 0 {
		diag.Preview = event.Fragments[0].Text
	}
	return diag
}
