package dataset

import (
	"sync"
	"testing"

	"github.com/ouyangqi017/Chubang/internal/model"
)

func records(n int) []model.EnrichedRecord {
	out := make([]model.EnrichedRecord, n)
	for i := range out {
		out[i].ProductName = "p"
		out[i].Amount = float64(i)
	}
	return out
}

// TestNewHolder 测试初始为空
func TestNewHolder(t *testing.T) {
	t.Parallel()

	h := NewHolder()
	snap := h.Current()
	if snap == nil || snap.Source != SourceEmpty || snap.Count() != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
	if snap.Records == nil {
		t.Fatalf("records should be non-nil")
	}
	if snap.ID == "" {
		t.Fatalf("snapshot id should be set")
	}
}

// TestReplace 测试替换后旧快照不受影响
func TestReplace(t *testing.T) {
	t.Parallel()

	h := NewHolder()
	first := h.Replace(SourceMock, "", records(3))
	second := h.Replace(SourceImport, "sales.xlsx", records(5))

	if first.Count() != 3 {
		t.Fatalf("old snapshot changed: %d", first.Count())
	}
	if h.Count() != 5 || h.Current() != second {
		t.Fatalf("current snapshot not replaced")
	}
	if second.FileName != "sales.xlsx" || second.Source != SourceImport {
		t.Fatalf("unexpected snapshot meta: %+v", second)
	}
	if first.ID == second.ID {
		t.Fatalf("snapshot ids should differ")
	}

	h.Clear()
	if h.Count() != 0 || h.Current().Source != SourceEmpty {
		t.Fatalf("clear failed")
	}
}

// TestConcurrentAccess 测试并发读写
func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	h := NewHolder()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			h.Replace(SourceImport, "", records(n))
		}(i)
		go func() {
			defer wg.Done()
			snap := h.Current()
			if snap.Count() != len(snap.Records) {
				t.Errorf("inconsistent snapshot")
			}
		}()
	}
	wg.Wait()
}
