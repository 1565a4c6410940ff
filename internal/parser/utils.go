package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"prodline/internal/model"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeLabel 规范化表头标签
// 小写、去首尾空白、压缩连续空白、去掉换行和制表符
func NormalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.ReplaceAll(label, "\n", " ")
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\t", " ")
	label = reSpaces.ReplaceAllString(label, " ")
	return strings.ToLower(label)
}

// ContainsAny 字符串是否包含任意关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ContainsAnyWord 是否按词边界包含任意关键词
// "io" 之类的短同义词只匹配完整词，不匹配 "information" 里的子串
func ContainsAnyWord(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}

// containsWord 词边界匹配（边界为非字母数字）
func containsWord(text, kw string) bool {
	if kw == "" {
		return false
	}
	for idx := 0; ; {
		j := strings.Index(text[idx:], kw)
		if j < 0 {
			return false
		}
		j += idx
		end := j + len(kw)
		if (j == 0 || !isWordChar(text[j-1])) && (end == len(text) || !isWordChar(text[end])) {
			return true
		}
		idx = j + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// levenshtein 编辑距离
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Similarity 标签与候选词的相似度 0-1
// 取编辑距离相似度与词元重叠率中的较大者
func Similarity(a, b string) float64 {
	a = NormalizeLabel(a)
	b = NormalizeLabel(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	editSim := 1 - float64(levenshtein(a, b))/float64(maxLen)

	overlap := tokenOverlap(a, b)
	if overlap > editSim {
		return overlap
	}
	return editSim
}

// tokenOverlap 词元重叠率（交集 / 较小集合）
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	common := 0
	for _, t := range tb {
		if set[t] {
			common++
		}
	}

	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	return float64(common) / float64(smaller)
}

// dateLayouts 支持的文本日期格式，按常见程度排列
// TNA 表混用 DD-MM-YY / DD/MM/YYYY / DD.MM.YYYY / ISO 等写法
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02-01-06",
	"02/01/2006",
	"02/01/06",
	"02.01.2006",
	"02.01.06",
	"2006/01/02",
	"2 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// excelEpoch Excel 序列日期的零点（1900 日期系统）
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate 解析日期单元格
// 接受文本日期的多种格式以及 Excel 日期序列数
func ParseDate(cell RawCell) (model.Date, bool) {
	s := strings.TrimSpace(cell.Value)
	if s == "" {
		return model.Date{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), true
		}
	}

	// 日期序列数。范围限定在 1954-2118 年，避免把普通数量值当成日期
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f >= 20000 && f < 80000 {
			days := int(f)
			return model.DateOf(excelEpoch.AddDate(0, 0, days)), true
		}
	}

	return model.Date{}, false
}

// ParseQuantity 解析数量单元格
// 接受千分位分隔符与首尾空白；非数字返回 false
func ParseQuantity(cell RawCell) (int, bool) {
	s := strings.TrimSpace(cell.Value)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// “1200.0” 这类导出残留按整数处理
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == float64(int(f)) {
			return int(f), true
		}
	}
	return 0, false
}
