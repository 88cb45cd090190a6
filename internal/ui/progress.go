package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ProgressBar 进度条结构
type ProgressBar struct {
	Total      int       // 总步数
	Current    int       // 当前进度
	Prefix     string    // 前缀
	Suffix     string    // 后缀
	Width      int       // 进度条宽度
	FillChar   string    // 填充字符
	EmptyChar  string    // 空白字符
	StartTime  time.Time // 开始时间
	LastUpdate time.Time // 上次更新时间
	Out        io.Writer // 输出目标，默认标准输出
}

// NewProgressBar 创建新的进度条
func NewProgressBar(total int, prefix string, suffix string) *ProgressBar {
	return &ProgressBar{
		Total:      total,
		Current:    0,
		Prefix:     prefix,
		Suffix:     suffix,
		Width:      30,
		FillChar:   "█",
		EmptyChar:  "░",
		StartTime:  time.Now(),
		LastUpdate: time.Now(),
		Out:        os.Stdout,
	}
}

// Update 更新进度
func (p *ProgressBar) Update(current int, suffix string) {
	if current < 0 {
		return
	}

	if current > p.Total {
		current = p.Total
	}

	p.Current = current

	if suffix != "" {
		p.Suffix = suffix
	}

	p.LastUpdate = time.Now()
	p.draw()
}

// Increment 增加进度
func (p *ProgressBar) Increment(suffix string) {
	p.Update(p.Current+1, suffix)
}

// Complete 完成进度条
func (p *ProgressBar) Complete(suffix string) {
	p.Update(p.Total, suffix)
	fmt.Fprintln(p.out())
}

func (p *ProgressBar) percent() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Current) / float64(p.Total)
}

// 绘制进度条
func (p *ProgressBar) draw() {
	percent := p.percent()
	elapsed := time.Since(p.StartTime)

	var remaining time.Duration
	if p.Current > 0 && percent > 0 {
		remaining = time.Duration(float64(elapsed) / percent * (1 - percent))
	}

	line := fmt.Sprintf("\r%s %s %3.0f%% | %d/%d | %s<%s | %s",
		p.Prefix, p.bar(), percent*100, p.Current, p.Total,
		formatDuration(elapsed), formatDuration(remaining), p.Suffix)

	color.New(color.FgCyan).Fprint(p.out(), line)
}

func (p *ProgressBar) bar() string {
	filled := int(p.percent() * float64(p.Width))
	if filled > p.Width {
		filled = p.Width
	}
	return "[" + strings.Repeat(p.FillChar, filled) + strings.Repeat(p.EmptyChar, p.Width-filled) + "]"
}

func (p *ProgressBar) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// String 返回进度条的字符串表示
func (p *ProgressBar) String() string {
	return fmt.Sprintf("%s %s %3.0f%% | %d/%d", p.Prefix, p.bar(), p.percent()*100, p.Current, p.Total)
}

// 格式化持续时间为 MM:SS 格式
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
