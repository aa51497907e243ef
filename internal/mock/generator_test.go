package mock

import (
	"reflect"
	"testing"
	"time"

	"github.com/ouyangqi017/Chubang/internal/pipeline"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewGenerator(42).Generate(Options{Count: 200, Years: 2, Now: fixedNow})
	b := NewGenerator(42).Generate(Options{Count: 200, Years: 2, Now: fixedNow})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed should produce same data")
	}

	c := NewGenerator(43).Generate(Options{Count: 200, Years: 2, Now: fixedNow})
	if reflect.DeepEqual(a, c) {
		t.Fatalf("different seeds should differ")
	}
}

func TestGenerate_DateRangeAndFields(t *testing.T) {
	t.Parallel()

	records := NewGenerator(1).Generate(Options{Count: 1000, Years: 3, Now: fixedNow})
	if len(records) != 1000 {
		t.Fatalf("unexpected count: %d", len(records))
	}

	years := map[int]bool{}
	for _, r := range records {
		d, err := time.Parse(pipeline.DateLayout, r.Date)
		if err != nil {
			t.Fatalf("bad date %q: %v", r.Date, err)
		}
		if d.Year() < 2022 || d.After(fixedNow) {
			t.Fatalf("date out of range: %s", r.Date)
		}
		years[d.Year()] = true

		if r.ProductName == "" || r.Department == "" || r.Salesperson == "" || r.CustomerName == "" {
			t.Fatalf("missing field: %+v", r)
		}
		if r.Quantity < 0 {
			t.Fatalf("negative quantity: %+v", r)
		}
	}
	if len(years) != 3 {
		t.Fatalf("expected 3 years, got %v", years)
	}
}

func TestGenerate_ClassifiesIntoRealCategories(t *testing.T) {
	t.Parallel()

	raw := NewGenerator(7).Generate(Options{Count: 500, Years: 1, Now: fixedNow})
	enriched := pipeline.NewNormalizer(nil).Normalize(raw)

	cats := pipeline.AggregateByField(enriched, pipeline.FieldCategory)
	if len(cats) < 5 {
		t.Fatalf("expected several categories, got %+v", cats)
	}
	depts := pipeline.AggregateByField(enriched, pipeline.FieldDepartment)
	found := false
	for _, p := range depts {
		if p.Name == "华东销售部" {
			found = true
		}
	}
	if !found {
		t.Fatalf("seeded department missing: %+v", depts)
	}
}

func TestGenerate_ZeroCount(t *testing.T) {
	t.Parallel()

	if got := NewGenerator(1).Generate(Options{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}
