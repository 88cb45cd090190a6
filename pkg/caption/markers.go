package caption

import "strings"

// MarkerSet 有序、去重的标记集合（语言标记或连接助词）
type MarkerSet struct {
	markers []string
}

// NewMarkerSet 创建标记集合，空字符串和重复项会被忽略
func NewMarkerSet(markers ...string) MarkerSet {
	seen := make(map[string]struct{}, len(markers))
	kept := make([]string, 0, len(markers))
	for _, m := range markers {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		kept = append(kept, m)
	}
	return MarkerSet{markers: kept}
}

// Markers 返回标记副本
func (s MarkerSet) Markers() []string {
	out := make([]string, len(s.markers))
	copy(out, s.markers)
	return out
}

// Len 标记数量
func (s MarkerSet) Len() int {
	return len(s.markers)
}

// Contains 判断文本中是否出现任一标记（子串匹配），返回第一个命中的标记
func (s MarkerSet) Contains(text string) (string, bool) {
	for _, m := range s.markers {
		if strings.Contains(text, m) {
			return m, true
		}
	}
	return "", false
}

// TrailingMatch 判断文本是否以任一标记结尾，返回命中的标记
func (s MarkerSet) TrailingMatch(text string) (string, bool) {
	for _, m := range s.markers {
		if strings.HasSuffix(text, m) {
			return m, true
		}
	}
	return "", false
}
