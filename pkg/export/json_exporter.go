package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// SentenceEntry 导出文件中的一个句子
type SentenceEntry struct {
	Index   int    `json:"index"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Start   string `json:"start"` // HH:MM:SS,mmm
	End     string `json:"end"`
	Text    string `json:"text"`
	Reason  string `json:"reason"` // 切分原因，便于调参
}

// SentenceDocument 表示整个分句结果
type SentenceDocument struct {
	Source    string          `json:"source"`    // 输入文件名
	FullText  string          `json:"full_text"` // 所有句子拼接的文本
	Count     int             `json:"count"`
	Sentences []SentenceEntry `json:"sentences"`
}

// JSONExporter 负责将句子导出为JSON文件
type JSONExporter struct {
	OutputFolder string // 为空时输出到输入文件所在目录
}

// NewJSONExporter 创建一个新的JSON导出器
func NewJSONExporter(outputFolder string) *JSONExporter {
	return &JSONExporter{
		OutputFolder: outputFolder,
	}
}

// GenerateJSONContent 根据句子生成 SentenceDocument
func (e *JSONExporter) GenerateJSONContent(sentences []models.FinalSentence, filename string) SentenceDocument {
	doc := SentenceDocument{
		Source:    filepath.Base(filename),
		Sentences: make([]SentenceEntry, 0, len(sentences)),
	}

	// 构建完整文本和分段
	var fullTextBuilder strings.Builder
	for _, sentence := range sentences {
		text := strings.TrimSpace(sentence.Text)
		if text == "" {
			continue
		}
		fullTextBuilder.WriteString(text)

		doc.Sentences = append(doc.Sentences, SentenceEntry{
			Index:   len(doc.Sentences) + 1,
			StartMs: sentence.StartMs,
			EndMs:   sentence.EndMs,
			Start:   FormatSRTTime(sentence.StartMs),
			End:     FormatSRTTime(sentence.EndMs),
			Text:    text,
			Reason:  sentence.SplitReason.String(),
		})
	}

	doc.FullText = fullTextBuilder.String()
	doc.Count = len(doc.Sentences)
	return doc
}

// ExportJSON 导出结构化JSON文件，返回输出路径
func (e *JSONExporter) ExportJSON(sentences []models.FinalSentence, filename string) (string, error) {
	outputFile := outputPath(e.OutputFolder, filename, "_sentences.json")

	if err := utils.SaveJSONFile(outputFile, e.GenerateJSONContent(sentences, filename)); err != nil {
		return "", fmt.Errorf("写入JSON文件失败: %w", err)
	}

	utils.Info("已导出JSON文件: %s", outputFile)
	return outputFile, nil
}

// ExportTextList 仅导出句子文本组成的JSON数组，适合直接送入翻译
func (e *JSONExporter) ExportTextList(sentences []models.FinalSentence, filename string) (string, error) {
	outputFile := outputPath(e.OutputFolder, filename, "_texts.json")

	texts := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		if text := strings.TrimSpace(sentence.Text); text != "" {
			texts = append(texts, text)
		}
	}

	if err := utils.SaveJSONFile(outputFile, texts); err != nil {
		return "", fmt.Errorf("写入文本列表失败: %w", err)
	}

	utils.Info("已导出文本列表: %s", outputFile)
	return outputFile, nil
}
