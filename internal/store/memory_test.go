package store

import (
	"errors"
	"testing"
	"time"

	"prodline/internal/model"
)

func TestMemory_UpsertIdempotent(t *testing.T) {
	t.Parallel()
	s := NewMemory()

	t0 := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	first := testItem("fp-1", "IO-1001", "ST-88", "Navy", model.StatusPending, t0)
	if _, err := s.UpsertBatch([]*model.ProductionLineItem{first}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second := testItem("fp-1", "IO-1001", "ST-88", "Navy", model.StatusCompleted, t0.Add(time.Hour))
	if _, err := s.UpsertBatch([]*model.ProductionLineItem{second}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	total, _ := s.Count(ListOptions{})
	if total != 1 {
		t.Fatalf("count = %d, want 1", total)
	}

	got, err := s.GetByID(first.ID)
	if err != nil {
		t.Fatalf("get by original id: %v", err)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Fatalf("created_at changed: %v", got.CreatedAt)
	}
	if got.Status != model.StatusCompleted {
		t.Fatalf("status not replaced: %q", got.Status)
	}
}

func TestMemory_ListOrderAndFilters(t *testing.T) {
	t.Parallel()
	s := NewMemory()

	t0 := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	items := []*model.ProductionLineItem{
		testItem("fp-a", "IO-1001", "ST-88", "Navy", model.StatusPending, t0),
		testItem("fp-b", "IO-2002", "ST-91", "Red", model.StatusDelayed, t0.Add(time.Minute)),
	}
	if _, err := s.UpsertBatch(items); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	all, err := s.List(ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Fingerprint != "fp-b" {
		t.Fatalf("ordering: %+v", all)
	}

	byStatus, err := s.List(ListOptions{Status: model.StatusDelayed, Limit: 10})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].OrderNumber != "IO-2002" {
		t.Fatalf("status filter: %+v", byStatus)
	}

	byOrder, err := s.List(ListOptions{OrderNumber: "1001", Limit: 10})
	if err != nil {
		t.Fatalf("list by order: %v", err)
	}
	if len(byOrder) != 1 || byOrder[0].Fingerprint != "fp-a" {
		t.Fatalf("order substring filter: %+v", byOrder)
	}
}

func TestMemory_DeleteFreesFingerprint(t *testing.T) {
	t.Parallel()
	s := NewMemory()

	item := testItem("fp-1", "IO-1", "ST-1", "Navy", model.StatusPending, time.Now().UTC())
	if _, err := s.UpsertBatch([]*model.ProductionLineItem{item}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Delete(item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetByID(item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}

	// 删除后同指纹可重新落库为新记录
	again := testItem("fp-1", "IO-1", "ST-1", "Navy", model.StatusPending, time.Now().UTC())
	if _, err := s.UpsertBatch([]*model.ProductionLineItem{again}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if _, err := s.GetByID(again.ID); err != nil {
		t.Fatalf("get new record: %v", err)
	}
}
