package models

// Result 单个字幕文件的处理统计信息
type Result struct {
	RunID          string            `json:"run_id"`           // 本次处理的唯一标识
	FilePath       string            `json:"file_path"`        // 处理的文件路径
	SourceFormat   string            `json:"source_format"`    // 识别出的字幕源格式
	Checksum       string            `json:"checksum"`         // 输入内容的CRC32
	InputBytes     int64             `json:"input_bytes"`      // 输入文件大小
	OutputFiles    map[string]string `json:"output_files"`     // 输出文件路径
	EventCount     int               `json:"event_count"`      // 原始事件数
	SkippedEvents  int               `json:"skipped_events"`   // 格式错误被跳过的事件数
	BlockCount     int               `json:"block_count"`      // 清理后的块数
	CandidateCount int               `json:"candidate_count"`  // 分句候选数
	SentenceCount  int               `json:"sentence_count"`   // 合并后的句子数
	DurationMs     int64             `json:"duration_ms"`      // 字幕覆盖时长（毫秒）
	ProcessTimeMs  int64             `json:"process_time_ms"`  // 处理时间（毫秒）
	Cached         bool              `json:"cached,omitempty"` // 内容未变化，直接使用缓存结果
	Sentences      []FinalSentence   `json:"-"`
}
