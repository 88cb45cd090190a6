package caption

import "github.com/ccp-p/caption-sentencer/pkg/models"

// Options 流水线的全部启发式参数，作为不可变的值显式传入
type Options struct {
	PauseThresholdMs  int64
	LinguisticPauseMs int64
	LinguisticMarkers MarkerSet
	ConnectiveMarkers MarkerSet
	SegmentWorkers    int // <=1 表示顺序分句
	Trace             TraceFunc
}

// DefaultOptions 返回默认启发式参数
func DefaultOptions() Options {
	return Options{
		PauseThresholdMs:  models.DefaultPauseThresholdMs,
		LinguisticPauseMs: models.DefaultLinguisticPauseMs,
		LinguisticMarkers: NewMarkerSet(models.DefaultLinguisticMarkers()...),
		ConnectiveMarkers: NewMarkerSet(models.DefaultConnectiveMarkers()...),
		SegmentWorkers:    1,
	}
}

// OptionsFromConfig 从应用配置构造流水线参数
func OptionsFromConfig(cfg *models.Config, trace TraceFunc) Options {
	return Options{
		PauseThresholdMs:  cfg.PauseThresholdMs,
		LinguisticPauseMs: cfg.LinguisticPauseMs,
		LinguisticMarkers: NewMarkerSet(cfg.LinguisticMarkers...),
		ConnectiveMarkers: NewMarkerSet(cfg.ConnectiveMarkers...),
		SegmentWorkers:    cfg.SegmentWorkers,
		Trace:             trace,
	}
}

// SegmentParams 提取分句阶段需要的参数
func (o Options) SegmentParams() SegmentParams {
	return SegmentParams{
		PauseThresholdMs:  o.PauseThresholdMs,
		LinguisticPauseMs: o.LinguisticPauseMs,
		LinguisticMarkers: o.LinguisticMarkers,
	}
}

// Output 一次流水线运行的各阶段产物
type Output struct {
	Blocks      []models.NormalizedBlock
	Candidates  []models.SentenceCandidate
	Sentences   []models.FinalSentence
	Diagnostics []*MalformedEventError
}

// Run 依次执行 Normalize -> Segment -> Merge
// 空输入或全部被过滤时返回空结果，不会报错
func Run(events []models.RawEvent, opts Options) Output {
	blocks, diagnostics := Normalize(events, opts.Trace)
	candidates := SegmentParallel(blocks, opts.SegmentParams(), opts.SegmentWorkers, opts.Trace)
	sentences := Merge(candidates, opts.ConnectiveMarkers, opts.Trace)

	return Output{
		Blocks:      blocks,
		Candidates:  candidates,
		Sentences:   sentences,
		Diagnostics: diagnostics,
	}
}
