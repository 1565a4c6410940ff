package parser

// Vocabulary 表头识别词表
// Fields/Stages 的同义词用于精确与模糊匹配；StageOrder 决定 completed 判定的末阶段
type Vocabulary struct {
	Fields     map[CanonicalField][]string
	Stages     map[string][]string
	StageOrder []string
}

// DefaultVocabulary 内置词表
// 同义词取自常见 TNA 表供应商叫法，可由配置覆盖
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Fields: map[CanonicalField][]string{
			FieldOrderNumber: {"order", "order no", "order number", "order #", "io number", "io no", "io", "job", "job no", "po", "po no", "po number"},
			FieldStyle:       {"style", "style no", "style code", "style number", "style#"},
			FieldColor:       {"color", "colour", "clr", "shade"},
			FieldQuantity:    {"qty", "quantity", "order qty", "total qty", "pcs"},
			FieldFabric:      {"fabric", "fabric spec", "fabric description", "fabric desc", "fab"},
		},
		Stages: map[string][]string{
			"fabric":     {"fabric", "fabric in-house", "fab"},
			"cutting":    {"cutting", "cut"},
			"sewing":     {"sewing", "stitching", "sew"},
			"embroidery": {"embroidery", "emb", "print/emb"},
			"size_set":   {"size set", "size-set", "sizeset"},
			"vap":        {"vap", "value added process"},
			"feeding":    {"feeding", "line feeding"},
			"processing": {"processing", "process", "washing"},
			"finishing":  {"finishing", "finish", "packing"},
			"shipping":   {"shipping", "shipment", "ship", "ex-factory", "ex factory"},
		},
		StageOrder: []string{
			"fabric", "cutting", "sewing", "embroidery", "size_set",
			"vap", "feeding", "processing", "finishing", "shipping",
		},
	}
}

// LastStage 阶段顺序中的末阶段
func (v *Vocabulary) LastStage() string {
	if len(v.StageOrder) == 0 {
		return ""
	}
	return v.StageOrder[len(v.StageOrder)-1]
}

// KnownStage 是否为已配置的阶段
func (v *Vocabulary) KnownStage(name string) bool {
	_, ok := v.Stages[name]
	return ok
}

// KnownField 是否为规范字段
func (v *Vocabulary) KnownField(f CanonicalField) bool {
	_, ok := v.Fields[f]
	return ok
}

// allTokens 词表里的全部同义词，供表头行打分使用
func (v *Vocabulary) allTokens() []string {
	var tokens []string
	for _, syns := range v.Fields {
		tokens = append(tokens, syns...)
	}
	for _, syns := range v.Stages {
		tokens = append(tokens, syns...)
	}
	return tokens
}
