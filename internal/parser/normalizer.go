package parser

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"prodline/internal/model"
)

// Normalizer 将展平行解析为带类型的生产行项目
type Normalizer struct {
	vocab *Vocabulary
	today model.Date // 状态推导的评估日，测试中可注入
}

// NewNormalizer 创建规范化器
func NewNormalizer(vocab *Vocabulary, today model.Date) *Normalizer {
	return &Normalizer{vocab: vocab, today: today}
}

// Normalize 解析单条展平行
// 单元格解析失败记诊断、置空，行保留
func (n *Normalizer) Normalize(flat FlatRow, headers []HeaderSpec) (*model.ProductionLineItem, []model.Diagnostic) {
	item := &model.ProductionLineItem{
		ID:    uuid.New().String(),
		Dates: make(map[string]model.StageDates),
		Source: model.SourceRef{
			Sheet:    flat.Sheet,
			RowStart: flat.GroupRow,
			RowEnd:   flat.RowIndex,
		},
	}
	var diags []model.Diagnostic

	for _, h := range headers {
		cell := cellAt(flat.Cells, h.ColumnIndex)

		switch {
		case h.Field != "":
			n.applyField(item, h, cell, flat, &diags)

		case h.Stage != "" && n.vocab.KnownStage(h.Stage):
			n.applyStage(item, h, cell, flat, &diags)

		default:
			// 未识别列保留为扩展字段，可恢复、不致命
			if v := strings.TrimSpace(cell.Value); v != "" {
				if item.Extensions == nil {
					item.Extensions = make(map[string]string)
				}
				item.Extensions[h.RawLabel] = v
			}
		}
	}

	item.Status = DeriveStatus(item.Dates, n.vocab.StageOrder, n.today)
	return item, diags
}

// applyField 规范字段赋值
func (n *Normalizer) applyField(item *model.ProductionLineItem, h HeaderSpec, cell RawCell, flat FlatRow, diags *[]model.Diagnostic) {
	value := strings.TrimSpace(cell.Value)

	switch h.Field {
	case FieldOrderNumber:
		item.OrderNumber = value
	case FieldStyle:
		item.Style = value
	case FieldColor:
		item.Color = value
	case FieldFabric:
		item.Fabric = value
	case FieldQuantity:
		qty, ok := ParseQuantity(cell)
		if !ok {
			*diags = append(*diags, cellDiag(flat, h.ColumnIndex,
				fmt.Sprintf("unparseable quantity %q", cell.Value)))
			return
		}
		item.Quantity = &qty
	}
}

// applyStage 阶段列赋值
// 阶段数量列不进入 Dates 映射，以扩展字段保留原值
func (n *Normalizer) applyStage(item *model.ProductionLineItem, h HeaderSpec, cell RawCell, flat FlatRow, diags *[]model.Diagnostic) {
	if cell.IsEmpty() {
		return
	}

	switch h.SubKind {
	case SubPlannedQty, SubActualQty:
		if item.Extensions == nil {
			item.Extensions = make(map[string]string)
		}
		item.Extensions[h.RawLabel] = strings.TrimSpace(cell.Value)
		return
	}

	d, ok := ParseDate(cell)
	if !ok {
		*diags = append(*diags, cellDiag(flat, h.ColumnIndex,
			fmt.Sprintf("unparseable date %q for stage %s", cell.Value, h.Stage)))
		return
	}

	sd := item.Dates[h.Stage]
	if h.SubKind == SubActualDate {
		sd.Actual = &d
	} else {
		sd.Planned = &d
	}
	item.Dates[h.Stage] = sd
}

// DeriveStatus 按优先级推导状态，先命中者生效：
//  1. delayed      某阶段计划日期已过且该阶段无实际日期
//  2. completed    按阶段顺序排在最后的“出现过的”阶段已有实际日期
//  3. in_production 任一阶段已有实际日期
//  4. pending      无任何实际日期
//
// 单个逾期阶段即标记整条记录 delayed，即使后续阶段已有实际进度。
// “末阶段”取该记录实际出现的阶段里顺序最靠后的一个，
// 只有部分阶段列的表（如仅到 cutting）也能判定 completed
func DeriveStatus(dates map[string]model.StageDates, stageOrder []string, today model.Date) model.Status {
	for _, sd := range dates {
		if sd.Planned != nil && sd.Planned.Before(today) && sd.Actual == nil {
			return model.StatusDelayed
		}
	}

	last := ""
	for _, stage := range stageOrder {
		if _, ok := dates[stage]; ok {
			last = stage
		}
	}
	if last != "" {
		if sd := dates[last]; sd.Actual != nil {
			return model.StatusCompleted
		}
	}

	for _, sd := range dates {
		if sd.Actual != nil {
			return model.StatusInProduction
		}
	}

	return model.StatusPending
}

// cellDiag 构造单元格级诊断
func cellDiag(flat FlatRow, col int, msg string) model.Diagnostic {
	ref, _ := excelize.CoordinatesToCellName(col+1, flat.RowIndex)
	return model.Diagnostic{
		Sheet:   flat.Sheet,
		Row:     flat.RowIndex,
		Cell:    ref,
		Code:    model.DiagCellParseError,
		Message: msg,
	}
}
