package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

func summaryOn(d int, total float64) *domain.EquitySummary {
	return &domain.EquitySummary{
		Date:  time.Date(2000, 1, d, 0, 0, 0, 0, time.UTC),
		Total: total,
	}
}

func TestEquitySummaryStore_InsertBulkAndGetAll(t *testing.T) {
	ctx := context.Background()
	s := NewEquitySummaryStore()

	err := s.InsertBulk(ctx, []*domain.EquitySummary{
		summaryOn(3, 10300),
		summaryOn(1, 10000),
		summaryOn(2, 10100),
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.Before(all[i-1].Date) {
			t.Error("summaries must come back date-sorted")
		}
	}
}

func TestEquitySummaryStore_DuplicateDatesTolerated(t *testing.T) {
	ctx := context.Background()
	s := NewEquitySummaryStore()

	err := s.InsertBulk(ctx, []*domain.EquitySummary{
		summaryOn(1, 10000),
		summaryOn(1, 10050),
	})
	if err != nil {
		t.Fatalf("duplicate dates must be accepted: %v", err)
	}

	all, _ := s.GetAll(ctx)
	if len(all) != 2 {
		t.Errorf("expected both rows kept, got %d", len(all))
	}
}

func TestEquitySummaryStore_GetByDateRange(t *testing.T) {
	ctx := context.Background()
	s := NewEquitySummaryStore()

	err := s.InsertBulk(ctx, []*domain.EquitySummary{
		summaryOn(1, 10000),
		summaryOn(5, 10500),
		summaryOn(10, 11000),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByDateRange(ctx,
		time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Total != 10500 {
		t.Errorf("expected only the Jan 5 row, got %+v", got)
	}
}
