package store

import (
	"errors"

	"prodline/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("item not found")

// ListOptions 查询选项
// Style/OrderNumber 为子串匹配，Status 为精确匹配
type ListOptions struct {
	Style       string
	OrderNumber string
	Status      model.Status
	Limit       int
	Offset      int
}

// ItemStore 生产行项目存储边界
// 引擎只依赖该契约，不绑定具体数据库。
// UpsertBatch 以指纹为幂等键：指纹已存在时替换而不是新增，
// 同一文件重复导入不会产生重复记录
type ItemStore interface {
	UpsertBatch(items []*model.ProductionLineItem) (int, error)
	List(opts ListOptions) ([]*model.ProductionLineItem, error)
	Count(opts ListOptions) (int, error)
	GetByID(id string) (*model.ProductionLineItem, error)
	Delete(id string) error
	StatusCounts() (map[model.Status]int, error)
	Close() error
}
