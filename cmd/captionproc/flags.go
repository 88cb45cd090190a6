package main

import (
	"github.com/spf13/cobra"
)

// pipelineFlags 可以在命令行上覆盖的处理参数
type pipelineFlags struct {
	outputFolder      string
	sourceFormat      string
	pauseThresholdMs  int64
	linguisticPauseMs int64
	linguisticMarkers string
	connectiveMarkers string
	segmentWorkers    int
	trace             bool
	noCache           bool
}

func (f *pipelineFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.outputFolder, "output", "o", "", "输出文件夹，空表示与输入同目录")
	flags.StringVar(&f.sourceFormat, "format", "", "字幕源格式 (auto, json3, events)")
	flags.Int64Var(&f.pauseThresholdMs, "pause", 0, "纯停顿切分阈值（毫秒）")
	flags.Int64Var(&f.linguisticPauseMs, "linguistic-pause", 0, "语言标记后的停顿阈值（毫秒）")
	flags.StringVar(&f.linguisticMarkers, "markers", "", "句末标记，逗号分隔，替换默认列表")
	flags.StringVar(&f.connectiveMarkers, "connectives", "", "连接助词，逗号分隔，替换默认列表")
	flags.IntVar(&f.segmentWorkers, "segment-workers", 0, "块级并行分句的 goroutine 数")
	flags.BoolVar(&f.trace, "trace", false, "将分句决策写入 debug 日志")
	flags.BoolVar(&f.noCache, "no-cache", false, "不读写结果缓存")
}

// updates 只收集显式设置过的参数
func (f *pipelineFlags) updates(cmd *cobra.Command) map[string]interface{} {
	flags := cmd.Flags()
	updates := make(map[string]interface{})

	if flags.Changed("output") {
		updates["output_folder"] = f.outputFolder
	}
	if flags.Changed("format") {
		updates["source_format"] = f.sourceFormat
	}
	if flags.Changed("pause") {
		updates["pause_threshold_ms"] = f.pauseThresholdMs
	}
	if flags.Changed("linguistic-pause") {
		updates["linguistic_pause_ms"] = f.linguisticPauseMs
	}
	if flags.Changed("markers") {
		updates["linguistic_markers"] = splitMarkers(f.linguisticMarkers)
	}
	if flags.Changed("connectives") {
		updates["connective_markers"] = splitMarkers(f.connectiveMarkers)
	}
	if flags.Changed("segment-workers") {
		updates["segment_workers"] = f.segmentWorkers
	}
	if flags.Changed("trace") {
		updates["trace_decisions"] = f.trace
	}
	if flags.Changed("no-cache") {
		updates["use_cache"] = !f.noCache
	}
	return updates
}
