package models

import "fmt"

// Fragment 表示字幕事件中的一个文本片段
type Fragment struct {
	Text     string `json:"text"`                // 片段文本
	OffsetMs *int64 `json:"offset_ms,omitempty"` // 相对事件开始的偏移（毫秒），缺省为0
}

// Offset 返回片段偏移，未设置时为0
func (f Fragment) Offset() int64 {
	if f.OffsetMs == nil {
		return 0
	}
	return *f.OffsetMs
}

// RawEvent 表示字幕源输入的一个原始事件
// StartMs/DurationMs 使用指针，以便区分"缺失"和"为0"
type RawEvent struct {
	StartMs         *int64     `json:"start_ms,omitempty"`
	DurationMs      *int64     `json:"duration_ms,omitempty"`
	Fragments       []Fragment `json:"fragments"`
	IsAppendNewline bool       `json:"is_append_newline,omitempty"`
}

// HasTiming 判断事件是否携带完整的时间信息
func (e RawEvent) HasTiming() bool {
	return e.StartMs != nil && e.DurationMs != nil
}

// Token 表示带绝对时间戳的文本单元
type Token struct {
	Text    string `json:"text"`
	StartMs int64  `json:"start_ms"`
}

// NormalizedBlock 表示清理后的一个有内容的时间块
type NormalizedBlock struct {
	StartMs int64   `json:"start_ms"`
	EndMs   int64   `json:"end_ms"`
	Text    string  `json:"text"`
	Tokens  []Token `json:"tokens"`
}

// SplitKind 分句原因类型
type SplitKind string

const (
	SplitTimeGap         SplitKind = "time_gap"
	SplitLinguisticPause SplitKind = "linguistic_pause"
	SplitEndOfBlock      SplitKind = "end_of_block"
)

// SplitReason 记录一个句子在何种条件下被切分
type SplitReason struct {
	Kind    SplitKind `json:"kind"`
	PauseMs int64     `json:"pause_ms,omitempty"` // 仅时间类切分有效
}

// TimeGap 构造纯停顿切分原因
func TimeGap(pauseMs int64) SplitReason {
	return SplitReason{Kind: SplitTimeGap, PauseMs: pauseMs}
}

// LinguisticPause 构造语言标记+停顿切分原因
func LinguisticPause(pauseMs int64) SplitReason {
	return SplitReason{Kind: SplitLinguisticPause, PauseMs: pauseMs}
}

// EndOfBlock 构造块结束切分原因
func EndOfBlock() SplitReason {
	return SplitReason{Kind: SplitEndOfBlock}
}

// IsEndOfBlock 判断是否为块结束导致的切分
func (r SplitReason) IsEndOfBlock() bool {
	return r.Kind == SplitEndOfBlock
}

func (r SplitReason) String() string {
	switch r.Kind {
	case SplitTimeGap:
		return fmt.Sprintf("Time Gap (%dms)", r.PauseMs)
	case SplitLinguisticPause:
		return fmt.Sprintf("Linguistic + Pause (%dms)", r.PauseMs)
	case SplitEndOfBlock:
		return "End of Block"
	default:
		return string(r.Kind)
	}
}

// SentenceCandidate 分句阶段产出的候选句
type SentenceCandidate struct {
	Text        string      `json:"text"`
	StartMs     int64       `json:"start_ms"`
	EndMs       int64       `json:"end_ms"`
	SplitReason SplitReason `json:"split_reason"`
}

// FinalSentence 合并阶段产出的最终句子
// StartMs 在创建后不再改变，合并只更新 Text/EndMs/SplitReason
type FinalSentence struct {
	Text        string      `json:"text"`
	StartMs     int64       `json:"start_ms"`
	EndMs       int64       `json:"end_ms"`
	SplitReason SplitReason `json:"split_reason"`
}

// Candidate 将最终句子转换回候选句，用于再次合并
func (s FinalSentence) Candidate() SentenceCandidate {
	return SentenceCandidate(s)
}

// DurationMs 句子时长（毫秒）
func (s FinalSentence) DurationMs() int64 {
	return s.EndMs - s.StartMs
}
