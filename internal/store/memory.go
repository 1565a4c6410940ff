package store

import (
	"sort"
	"strings"
	"sync"

	"prodline/internal/model"
)

// MemoryStore 内存存储实现
// 与 SQLite 实现遵循同一契约，用于测试和无盘运行
type MemoryStore struct {
	mu            sync.RWMutex
	byID          map[string]*model.ProductionLineItem
	byFingerprint map[string]string // fingerprint -> id
}

var _ ItemStore = (*MemoryStore)(nil)

// NewMemory 创建内存存储
func NewMemory() *MemoryStore {
	return &MemoryStore{
		byID:          make(map[string]*model.ProductionLineItem),
		byFingerprint: make(map[string]string),
	}
}

// UpsertBatch 批量写入，指纹已存在时替换（保留原 id 与 created_at）
func (s *MemoryStore) UpsertBatch(items []*model.ProductionLineItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if existingID, ok := s.byFingerprint[item.Fingerprint]; ok {
			existing := s.byID[existingID]
			replacement := *item
			replacement.ID = existing.ID
			replacement.CreatedAt = existing.CreatedAt
			s.byID[existingID] = &replacement
			continue
		}
		stored := *item
		s.byID[stored.ID] = &stored
		s.byFingerprint[stored.Fingerprint] = stored.ID
	}
	return len(items), nil
}

// List 按条件查询，按导入时间倒序
func (s *MemoryStore) List(opts ListOptions) ([]*model.ProductionLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filter(opts)
	sort.Slice(matched, func(a, b int) bool {
		if !matched[a].CreatedAt.Equal(matched[b].CreatedAt) {
			return matched[a].CreatedAt.After(matched[b].CreatedAt)
		}
		return matched[a].ID < matched[b].ID
	})

	start := opts.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	result := make([]*model.ProductionLineItem, 0, end-start)
	for _, item := range matched[start:end] {
		clone := *item
		result = append(result, &clone)
	}
	return result, nil
}

// Count 查询匹配条数
func (s *MemoryStore) Count(opts ListOptions) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filter(opts)), nil
}

// GetByID 按 id 查询单条
func (s *MemoryStore) GetByID(id string) (*model.ProductionLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *item
	return &clone, nil
}

// Delete 按 id 删除
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byFingerprint, item.Fingerprint)
	return nil
}

// StatusCounts 按状态统计条数
func (s *MemoryStore) StatusCounts() (map[model.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.Status]int)
	for _, item := range s.byID {
		counts[item.Status]++
	}
	return counts, nil
}

// Close 无资源可释放
func (s *MemoryStore) Close() error {
	return nil
}

// filter 过滤条件匹配（调用方需持锁）
func (s *MemoryStore) filter(opts ListOptions) []*model.ProductionLineItem {
	var matched []*model.ProductionLineItem
	for _, item := range s.byID {
		if opts.Style != "" && !strings.Contains(item.Style, opts.Style) {
			continue
		}
		if opts.OrderNumber != "" && !strings.Contains(item.OrderNumber, opts.OrderNumber) {
			continue
		}
		if opts.Status != "" && item.Status != opts.Status {
			continue
		}
		matched = append(matched, item)
	}
	return matched
}
