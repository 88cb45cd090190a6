package ui

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ccp-p/caption-sentencer/pkg/export"
	"github.com/ccp-p/caption-sentencer/pkg/models"
)

// maxTextWidth 文本列的最大显示宽度，超出时换行
const maxTextWidth = 60

// SentenceTable 将句子渲染为表格字符串
func SentenceTable(sentences []models.FinalSentence) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "开始", "结束", "文本", "切分原因"})

	for i, s := range sentences {
		tw.AppendRow(table.Row{
			i + 1,
			export.FormatSRTTime(s.StartMs),
			export.FormatSRTTime(s.EndMs),
			s.Text,
			s.SplitReason.String(),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, WidthMax: maxTextWidth},
	})
	return tw.Render()
}

// RenderSentences 输出句子表格
func RenderSentences(w io.Writer, sentences []models.FinalSentence) {
	if len(sentences) == 0 {
		fmt.Fprintln(w, "(没有句子)")
		return
	}
	fmt.Fprintln(w, SentenceTable(sentences))
}

// StatsTable 将格式注册表的统计信息渲染为表格，按优先级从高到低排列
func StatsTable(stats map[string]map[string]interface{}) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, _ := stats[names[i]]["priority"].(int)
		pj, _ := stats[names[j]]["priority"].(int)
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"格式", "优先级", "识别次数", "成功率", "可用"})
	for _, name := range names {
		stat := stats[name]
		tw.AppendRow(table.Row{name, stat["priority"], stat["count"], stat["success_rate"], stat["available"]})
	}
	return tw.Render()
}
