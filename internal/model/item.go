package model

import "time"

// Status 生产状态
type Status string

const (
	StatusPending      Status = "pending"       // 所有阶段均未开工
	StatusInProduction Status = "in_production" // 至少一个阶段已有实际完成日期
	StatusCompleted    Status = "completed"     // 末阶段已有实际完成日期
	StatusDelayed      Status = "delayed"       // 存在已过计划日期但无实际日期的阶段
)

// StageDates 单个阶段的计划/实际日期
type StageDates struct {
	Planned *Date `json:"planned"`
	Actual  *Date `json:"actual"`
}

// SourceRef 记录来源（工作表 + 行范围）
// 颜色变体行继承款号时，RowStart 指向组首行
type SourceRef struct {
	Sheet    string `json:"sheet"`
	RowStart int    `json:"rowStart"`
	RowEnd   int    `json:"rowEnd"`
}

// ProductionLineItem 规范化后的生产行项目
// 创建后不再修改；重复导入产生新候选记录，由存储层按指纹合并
type ProductionLineItem struct {
	ID          string                `json:"id"`
	OrderNumber string                `json:"orderNumber"`
	Style       string                `json:"style"`
	Color       string                `json:"color"`
	Quantity    *int                  `json:"quantity"`
	Fabric      string                `json:"fabric"`
	Status      Status                `json:"status"`
	Dates       map[string]StageDates `json:"dates"`
	Source      SourceRef             `json:"source"`
	Fingerprint string                `json:"fingerprint"`
	Extensions  map[string]string     `json:"extensions,omitempty"` // 未识别列的原始标签 -> 值
	SourceFile  string                `json:"sourceFile"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// Identity 组标识是否有效
// 订单号与款号至少要有一个非空
func (p *ProductionLineItem) Identity() bool {
	return p.OrderNumber != "" || p.Style != ""
}
