package parser

import "errors"

// 引擎级错误
// 单元格/行级问题以 model.Diagnostic 记录，不作为 error 传播
var (
	// ErrFileFormat 工作簿无法解码，整批终止
	ErrFileFormat = errors.New("file format error: not a parseable workbook")
	// ErrHeaderNotFound 单个工作表找不到表头行，仅跳过该表
	ErrHeaderNotFound = errors.New("header row not found")
)

// CellKind 单元格原始值类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumeric
	CellDate
	CellText
)

// RawCell 装载阶段产出的原始单元格，不做语义解释
type RawCell struct {
	Value string
	Kind  CellKind
}

// IsEmpty 空单元格
func (c RawCell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// SheetGrid 单个工作表的二维网格
type SheetGrid struct {
	Index int // 工作簿内原始顺序
	Name  string
	Rows  [][]RawCell
}

// CanonicalField 封闭的规范字段词表
type CanonicalField string

const (
	FieldOrderNumber CanonicalField = "order_number"
	FieldStyle       CanonicalField = "style"
	FieldColor       CanonicalField = "color"
	FieldQuantity    CanonicalField = "quantity"
	FieldFabric      CanonicalField = "fabric"
)

// SubKind 阶段列的子类别
type SubKind string

const (
	SubPlannedDate SubKind = "planned_date"
	SubActualDate  SubKind = "actual_date"
	SubPlannedQty  SubKind = "planned_qty"
	SubActualQty   SubKind = "actual_qty"
)

// HeaderSpec 单列的表头解析与分类结果
// Field 与 Stage 互斥；两者都为空表示未识别列，保留到扩展字段
type HeaderSpec struct {
	ColumnIndex int            `json:"columnIndex"`
	RawLabel    string         `json:"rawLabel"`
	Field       CanonicalField `json:"field,omitempty"`
	Stage       string         `json:"stage,omitempty"`
	SubKind     SubKind        `json:"subKind,omitempty"`
	Confidence  float64        `json:"confidence"`
}

// IsMapped 是否映射到了规范字段或阶段
func (h HeaderSpec) IsMapped() bool {
	return h.Field != "" || h.Stage != ""
}

// IsGroupField 组标识字段（空白行继承仅对这些字段生效）
func (h HeaderSpec) IsGroupField() bool {
	return h.Field == FieldOrderNumber || h.Field == FieldStyle
}
