package model

import "time"

// DiagnosticCode 诊断问题类别
type DiagnosticCode string

const (
	DiagHeaderNotFound       DiagnosticCode = "header_not_found"
	DiagCellParseError       DiagnosticCode = "cell_parse_error"
	DiagGroupIdentityMissing DiagnosticCode = "group_identity_missing"
	DiagSheetEmpty           DiagnosticCode = "sheet_empty"
)

// Diagnostic 单条诊断信息
// Row/Cell 为 0 表示问题作用于整个工作表
type Diagnostic struct {
	Sheet   string         `json:"sheet"`
	Row     int            `json:"row,omitempty"`
	Cell    string         `json:"cell,omitempty"`
	Code    DiagnosticCode `json:"code"`
	Message string         `json:"message"`
}

// ExtractionBatch 一次提取的完整结果
// Items 与 Diagnostics 均按来源工作表顺序排列
type ExtractionBatch struct {
	SourceID    string                `json:"sourceId"`
	SourceFile  string                `json:"sourceFile"`
	SourceHash  string                `json:"sourceHash"`
	CreatedAt   time.Time             `json:"createdAt"`
	Items       []*ProductionLineItem `json:"items"`
	Diagnostics []Diagnostic          `json:"diagnostics"`
}
