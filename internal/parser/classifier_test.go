package parser

import (
	"context"
	"testing"
)

func classifyOne(t *testing.T, label string, samples []string) HeaderSpec {
	t.Helper()
	c := NewRuleClassifier(DefaultVocabulary(), 0.75)
	specs, err := c.Classify(context.Background(), ClassifyRequest{
		SheetName: "TNA",
		Labels:    []string{label},
		Samples:   [][]string{samples},
	})
	if err != nil {
		t.Fatalf("classify %q: %v", label, err)
	}
	return specs[0]
}

func TestRuleClassifier_ExactFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  CanonicalField
	}{
		{"order no", FieldOrderNumber},
		{"IO Number", FieldOrderNumber},
		{"PO No", FieldOrderNumber},
		{"Style", FieldStyle},
		{"Colour", FieldColor},
		{"Qty", FieldQuantity},
		{"Order Qty", FieldQuantity},
		{"Fabric", FieldFabric},
	}
	for _, c := range cases {
		spec := classifyOne(t, c.label, nil)
		if spec.Field != c.want {
			t.Fatalf("label %q: field = %q, want %q", c.label, spec.Field, c.want)
		}
		if spec.Confidence != 1.0 {
			t.Fatalf("label %q: confidence = %v, want 1.0", c.label, spec.Confidence)
		}
	}
}

func TestRuleClassifier_StagePatterns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label   string
		stage   string
		subKind SubKind
	}{
		{"Cutting Plan", "cutting", SubPlannedDate},
		{"Cutting Actual", "cutting", SubActualDate},
		{"Sewing - Planned Date", "sewing", SubPlannedDate},
		{"Fabric Actual", "fabric", SubActualDate},
		{"Shipment Plan", "shipping", SubPlannedDate},
		{"Cutting Qty", "cutting", SubPlannedQty},
		{"Cutting (Act)", "cutting", SubActualDate},
	}
	for _, c := range cases {
		spec := classifyOne(t, c.label, nil)
		if spec.Stage != c.stage {
			t.Fatalf("label %q: stage = %q, want %q", c.label, spec.Stage, c.stage)
		}
		if spec.SubKind != c.subKind {
			t.Fatalf("label %q: subKind = %q, want %q", c.label, spec.SubKind, c.subKind)
		}
	}
}

func TestRuleClassifier_MergedHeader(t *testing.T) {
	t.Parallel()

	spec := classifyOne(t, "cutting | plan", nil)
	if spec.Stage != "cutting" || spec.SubKind != SubPlannedDate {
		t.Fatalf("merged header: got stage=%q subKind=%q", spec.Stage, spec.SubKind)
	}

	spec = classifyOne(t, "size set | actual", nil)
	if spec.Stage != "size_set" || spec.SubKind != SubActualDate {
		t.Fatalf("merged header: got stage=%q subKind=%q", spec.Stage, spec.SubKind)
	}
}

func TestRuleClassifier_BareFabricIsField(t *testing.T) {
	t.Parallel()

	// 裸 "Fabric" 是规范字段，"Fabric Plan" 才是阶段列
	if spec := classifyOne(t, "Fabric", nil); spec.Field != FieldFabric || spec.Stage != "" {
		t.Fatalf("bare fabric: got field=%q stage=%q", spec.Field, spec.Stage)
	}
	if spec := classifyOne(t, "Fabric Plan", nil); spec.Stage != "fabric" {
		t.Fatalf("fabric plan: got field=%q stage=%q", spec.Field, spec.Stage)
	}
}

func TestRuleClassifier_FuzzyFallback(t *testing.T) {
	t.Parallel()

	// 一字之差仍应命中
	spec := classifyOne(t, "Colr", nil)
	if spec.Field != FieldColor {
		t.Fatalf("fuzzy colr: got field=%q conf=%v", spec.Field, spec.Confidence)
	}
	if spec.Confidence >= 1.0 || spec.Confidence < 0.75 {
		t.Fatalf("fuzzy confidence out of range: %v", spec.Confidence)
	}
}

func TestRuleClassifier_UnknownStaysUnmapped(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"Remarks", "Merchandiser", "col_7"} {
		spec := classifyOne(t, label, nil)
		if spec.IsMapped() {
			t.Fatalf("label %q should stay unmapped, got field=%q stage=%q", label, spec.Field, spec.Stage)
		}
	}
}

func TestDetectSubKind_SampleAssist(t *testing.T) {
	t.Parallel()

	// 无明确词元时数值采样判数量列，否则默认计划日期
	if got := detectSubKind("cutting", []string{"1200", "800", "950"}); got != SubPlannedQty {
		t.Fatalf("numeric samples: got %q", got)
	}
	if got := detectSubKind("cutting", []string{"05-01-2026", "06-01-2026"}); got != SubPlannedDate {
		t.Fatalf("date samples: got %q", got)
	}
	if got := detectSubKind("cutting", nil); got != SubPlannedDate {
		t.Fatalf("no samples: got %q", got)
	}
}
