package caption

import "github.com/sirupsen/logrus"

// Stage 流水线阶段
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageSegment   Stage = "segment"
	StageMerge     Stage = "merge"
)

// 各阶段的决策名称
const (
	DecisionDropNewline      = "drop_newline"
	DecisionDropNoFragments  = "drop_no_fragments"
	DecisionSkipMalformed    = "skip_malformed"
	DecisionDropEmpty        = "drop_empty"
	DecisionDropNoTokens     = "drop_no_tokens"
	DecisionEmitBlock        = "emit_block"
	DecisionSplit            = "split"
	DecisionIgnoreFirstToken = "ignore_first_token"
	DecisionSkipEmpty        = "skip_empty"
	DecisionPush             = "push"
	DecisionMerge            = "merge"
)

// TraceRecord 一条流水线决策记录
type TraceRecord struct {
	Stage    Stage
	Decision string
	Reason   string
	Text     string
	StartMs  int64
}

// TraceFunc 决策回调。SegmentParallel 会从多个 goroutine 调用它
type TraceFunc func(TraceRecord)

func (t TraceFunc) emit(r TraceRecord) {
	if t != nil {
		t(r)
	}
}

// LogrusTrace 将决策记录以 debug 级别写入 logrus
func LogrusTrace(logger logrus.FieldLogger) TraceFunc {
	if logger == nil {
		return nil
	}
	return func(r TraceRecord) {
		logger.WithFields(logrus.Fields{
			"stage":    r.Stage,
			"decision": r.Decision,
			"start_ms": r.StartMs,
			"text":     r.Text,
		}).Debug(r.Reason)
	}
}
