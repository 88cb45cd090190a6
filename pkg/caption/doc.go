// Package caption 将ASR生成的原始字幕事件转换为可独立显示的字幕句子。
//
// 处理分为三个只向前流动的阶段：
//
//	Normalize: 原始事件 -> 带时间戳的文本块
//	Segment:   文本块   -> 候选句（停顿与语言标记启发式）
//	Merge:     候选句   -> 最终句子（重新拼接结构性切分）
//
// 每个阶段都是输入和显式阈值的纯函数。决策过程可以通过 TraceFunc 观察，
// 是否开启追踪不会影响结果。
package caption
