package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// SRTExporter 负责将句子导出为SRT字幕文件
type SRTExporter struct {
	OutputFolder string // 为空时输出到输入文件所在目录
}

// NewSRTExporter 创建一个新的SRT导出器
func NewSRTExporter(outputFolder string) *SRTExporter {
	return &SRTExporter{
		OutputFolder: outputFolder,
	}
}

// FormatSRTTime 将毫秒数格式化为SRT时间格式 (HH:MM:SS,mmm)
// 负数按0处理，超过99小时时小时位自然扩展
func FormatSRTTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	minutes := ms % 3_600_000 / 60_000
	secs := ms % 60_000 / 1000
	milliseconds := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, milliseconds)
}

// GenerateSRTContent 生成SRT格式内容
func (e *SRTExporter) GenerateSRTContent(sentences []models.FinalSentence) string {
	var srtLines []string

	index := 0
	for _, sentence := range sentences {
		text := strings.TrimSpace(sentence.Text)
		if text == "" {
			continue
		}
		index++

		// 添加序号、时间范围和文本
		srtLines = append(srtLines, fmt.Sprintf("%d", index))
		srtLines = append(srtLines, fmt.Sprintf("%s --> %s", FormatSRTTime(sentence.StartMs), FormatSRTTime(sentence.EndMs)))
		srtLines = append(srtLines, text)
		srtLines = append(srtLines, "") // 空行分隔
	}

	return strings.Join(srtLines, "\n")
}

// ExportSRT 导出SRT格式字幕文件，返回输出路径
func (e *SRTExporter) ExportSRT(sentences []models.FinalSentence, filename string) (string, error) {
	outputFile := outputPath(e.OutputFolder, filename, ".srt")

	if err := utils.WriteFileAtomic(outputFile, []byte(e.GenerateSRTContent(sentences))); err != nil {
		return "", fmt.Errorf("写入SRT文件失败: %w", err)
	}

	utils.Info("已导出SRT字幕: %s", outputFile)
	return outputFile, nil
}

// outputPath 构建输出文件名: <输出目录>/<输入文件名去扩展名><suffix>
func outputPath(outputFolder, filename, suffix string) string {
	baseName := filepath.Base(filename)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))

	dir := outputFolder
	if dir == "" {
		dir = filepath.Dir(filename)
	}
	return filepath.Join(dir, baseName+suffix)
}
