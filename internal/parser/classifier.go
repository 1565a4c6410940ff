package parser

import (
	"context"
	"regexp"
	"strings"
)

// Strategy 列分类策略
// 输入每列的 raw_label 与采样值，输出与列对齐的 HeaderSpec。
// 默认实现是确定性的规则分类器；外部高精度分类器（如 LLM 服务）
// 可替换接入，失败或低置信度时回退到规则实现
type Strategy interface {
	Classify(ctx context.Context, req ClassifyRequest) ([]HeaderSpec, error)
}

// ClassifyRequest 分类输入
type ClassifyRequest struct {
	SheetName string
	Labels    []string
	Samples   [][]string // 每列最多若干个非空采样值
}

// RuleClassifier 规则分类器（确定性默认实现）
type RuleClassifier struct {
	vocab     *Vocabulary
	threshold float64 // 模糊匹配置信度阈值
}

// NewRuleClassifier 创建规则分类器
func NewRuleClassifier(vocab *Vocabulary, threshold float64) *RuleClassifier {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.75
	}
	return &RuleClassifier{vocab: vocab, threshold: threshold}
}

// 阶段列标签的子类别词元
var (
	plannedTokens = []string{"planned", "plan", "pln", "target", "tgt"}
	actualTokens  = []string{"actual", "act", "done", "completed", "complete"}
	qtyTokens     = []string{"qty", "quantity", "pcs"}

	// "{word} (plan|planned|actual|qty)" 形式的阶段列
	reStageLabel = regexp.MustCompile(`^(.+?)[\s\-_/(]+(planned date|plan date|actual date|planned qty|actual qty|planned|plan|pln|actual|act|qty|quantity|target|tgt|done)\.?[\s)]*$`)
)

// Classify 逐列分类：精确同义词 -> 阶段模式 -> 模糊匹配
// 规则分类从不失败；无法识别的列保持未映射，由下游保留为扩展字段
func (c *RuleClassifier) Classify(_ context.Context, req ClassifyRequest) ([]HeaderSpec, error) {
	specs := make([]HeaderSpec, len(req.Labels))
	for i, label := range req.Labels {
		var samples []string
		if i < len(req.Samples) {
			samples = req.Samples[i]
		}
		specs[i] = c.classifyLabel(i, label, samples)
	}
	return specs, nil
}

// classifyLabel 单列分类
func (c *RuleClassifier) classifyLabel(col int, label string, samples []string) HeaderSpec {
	spec := HeaderSpec{ColumnIndex: col, RawLabel: label}

	norm := NormalizeLabel(label)
	if norm == "" || strings.HasPrefix(norm, "col_") {
		return spec
	}

	// 合并表头："{阶段} | {子类别}"
	if parent, child, ok := strings.Cut(norm, " | "); ok {
		if stage, conf := c.matchStage(strings.TrimSpace(parent)); stage != "" {
			spec.Stage = stage
			spec.SubKind = detectSubKind(strings.TrimSpace(child), samples)
			spec.Confidence = conf
			return spec
		}
	}

	// 规范字段精确同义词
	if field, conf := c.matchFieldExact(norm); field != "" {
		spec.Field = field
		spec.Confidence = conf
		return spec
	}

	// 阶段模式："cutting plan" / "fabric actual" / "sewing qty"
	if m := reStageLabel.FindStringSubmatch(norm); m != nil {
		if stage, conf := c.matchStage(strings.TrimSpace(m[1])); stage != "" {
			spec.Stage = stage
			spec.SubKind = detectSubKind(m[2], samples)
			spec.Confidence = conf
			return spec
		}
	}

	// 模糊匹配（词元重叠 / 编辑距离）
	if field, conf := c.matchFieldFuzzy(norm); conf >= c.threshold {
		spec.Field = field
		spec.Confidence = conf
		return spec
	}
	if stage, conf := c.matchStageFuzzy(norm); conf >= c.threshold {
		spec.Stage = stage
		spec.SubKind = detectSubKind(norm, samples)
		spec.Confidence = conf
		return spec
	}

	return spec
}

// matchFieldExact 精确同义词命中
func (c *RuleClassifier) matchFieldExact(norm string) (CanonicalField, float64) {
	for field, syns := range c.vocab.Fields {
		for _, syn := range syns {
			if norm == syn {
				return field, 1.0
			}
		}
	}
	return "", 0
}

// matchFieldFuzzy 字段模糊匹配，返回最优候选
func (c *RuleClassifier) matchFieldFuzzy(norm string) (CanonicalField, float64) {
	var best CanonicalField
	bestConf := 0.0
	for field, syns := range c.vocab.Fields {
		for _, syn := range syns {
			if conf := Similarity(norm, syn); conf > bestConf {
				best = field
				bestConf = conf
			}
		}
	}
	return best, bestConf
}

// matchStage 阶段名精确（同义词）匹配
func (c *RuleClassifier) matchStage(text string) (string, float64) {
	for stage, syns := range c.vocab.Stages {
		for _, syn := range syns {
			if text == syn {
				return stage, 1.0
			}
		}
	}
	return "", 0
}

// matchStageFuzzy 阶段名模糊匹配
func (c *RuleClassifier) matchStageFuzzy(text string) (string, float64) {
	var best string
	bestConf := 0.0
	for stage, syns := range c.vocab.Stages {
		for _, syn := range syns {
			if conf := Similarity(text, syn); conf > bestConf {
				best = stage
				bestConf = conf
			}
		}
	}
	return best, bestConf
}

// detectSubKind 识别阶段列子类别
// 无明确词元时用采样值辅助：数值占多按数量列，其余按计划日期列
// （原始 TNA 表里单独的阶段日期列习惯上填计划日期）
func detectSubKind(text string, samples []string) SubKind {
	hasQty := ContainsAny(text, qtyTokens)
	hasActual := ContainsAny(text, actualTokens)
	hasPlanned := ContainsAny(text, plannedTokens)

	switch {
	case hasQty && hasActual:
		return SubActualQty
	case hasQty:
		return SubPlannedQty
	case hasActual:
		return SubActualDate
	case hasPlanned:
		return SubPlannedDate
	}

	if mostlyNumericSamples(samples) {
		return SubPlannedQty
	}
	return SubPlannedDate
}

// mostlyNumericSamples 采样值是否以纯数值为主（且不像日期序列）
func mostlyNumericSamples(samples []string) bool {
	if len(samples) == 0 {
		return false
	}
	numeric := 0
	for _, s := range samples {
		cell := tagCell(s)
		if cell.Kind == CellNumeric {
			if _, isDate := ParseDate(cell); !isDate {
				numeric++
			}
		}
	}
	return numeric*2 > len(samples)
}
