package mapping

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

func sampleCatalog() []models.Warehouse {
	return []models.Warehouse{
		{ID: 1, Type: models.WarehouseTypeZonal, Name: "North Zonal", IsActive: true},
		{ID: 2, Type: models.WarehouseTypeZonal, Name: "South Zonal", IsActive: true},
		{ID: 3, Type: models.WarehouseTypeDivision, Name: "Milan Division", IsActive: true},
		{ID: 4, Type: models.WarehouseTypeDivision, Name: "Turin Division", IsActive: false},
	}
}

func TestSelectStrategy_Nationwide(t *testing.T) {
	sel := SelectStrategy(models.StrategyNationwide, Selection{}, sampleCatalog())
	if !reflect.DeepEqual(sel.Primary, []int{1, 2}) {
		t.Fatalf("primary = %v, want [1 2]", sel.Primary)
	}
	if !reflect.DeepEqual(sel.Fallback, []int{3, 4}) {
		t.Fatalf("fallback = %v, want [3 4]", sel.Fallback)
	}
	if !sel.EnableFallback {
		t.Fatal("expected fallback enabled for nationwide")
	}
}

func TestSelectStrategy_SingleTierClearsEverything(t *testing.T) {
	current := Selection{Primary: []int{1}, Fallback: []int{3}, EnableFallback: true}
	for _, st := range []models.MappingStrategy{models.StrategyZonalOnly, models.StrategyDivisionOnly} {
		sel := SelectStrategy(st, current, sampleCatalog())
		if len(sel.Primary) != 0 || len(sel.Fallback) != 0 || sel.EnableFallback {
			t.Fatalf("%s: got %+v, want empty pools and fallback disabled", st, sel)
		}
	}
}

func TestSelectStrategy_ManualStrategiesKeepFallbackFlag(t *testing.T) {
	for _, st := range []models.MappingStrategy{models.StrategyZonalWithFallback, models.StrategyCustom} {
		for _, flag := range []bool{true, false} {
			current := Selection{Primary: []int{1, 2}, Fallback: []int{3}, EnableFallback: flag}
			sel := SelectStrategy(st, current, sampleCatalog())
			if len(sel.Primary) != 0 || len(sel.Fallback) != 0 {
				t.Fatalf("%s: manual picks survived: %+v", st, sel)
			}
			if sel.EnableFallback != flag {
				t.Fatalf("%s: enable_fallback = %v, want %v", st, sel.EnableFallback, flag)
			}
		}
	}
}

func TestSelectStrategy_EmptyCatalog(t *testing.T) {
	for _, st := range models.MappingStrategies {
		sel := SelectStrategy(st, Selection{}, nil)
		if len(sel.Primary) != 0 || len(sel.Fallback) != 0 {
			t.Fatalf("%s: expected empty pools, got %+v", st, sel)
		}
		if sel.Primary == nil || sel.Fallback == nil {
			t.Fatalf("%s: pools must be empty slices, not nil", st)
		}
	}
}

func TestToggleMembership(t *testing.T) {
	sets := [][]int{nil, {}, {1}, {1, 2, 3}, {5, 4}}
	for _, s := range sets {
		for _, id := range []int{1, 3, 9} {
			once := ToggleMembership(s, id)
			n := 0
			for _, v := range once {
				if v == id {
					n++
				}
			}
			if n > 1 {
				t.Fatalf("toggle(%v, %d) produced duplicates: %v", s, id, once)
			}
			twice := ToggleMembership(once, id)
			if len(twice) != len(s) {
				t.Fatalf("double toggle(%v, %d) = %v", s, id, twice)
			}
			for i := range s {
				if twice[i] != s[i] {
					t.Fatalf("double toggle(%v, %d) = %v", s, id, twice)
				}
			}
		}
	}
}

func TestToggleMembership_DoesNotMutateInput(t *testing.T) {
	in := []int{1, 2, 3}
	_ = ToggleMembership(in, 2)
	if !reflect.DeepEqual(in, []int{1, 2, 3}) {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestShouldShowSummary(t *testing.T) {
	if !ShouldShowSummary(nil, nil, models.StrategyNationwide) {
		t.Fatal("nationwide must always show the summary")
	}
	if ShouldShowSummary(nil, nil, models.StrategyCustom) {
		t.Fatal("empty custom mapping must hide the summary")
	}
	if !ShouldShowSummary(nil, []int{3}, models.StrategyZonalWithFallback) {
		t.Fatal("non-empty fallback must show the summary")
	}
}

func TestSummarize_NationwideIgnoresContents(t *testing.T) {
	lines := Summarize(models.StrategyNationwide, []int{7}, nil, false, CatalogLookup(sampleCatalog()))
	if len(lines) != 1 || lines[0] != NationwideSummary {
		t.Fatalf("got %v", lines)
	}
}

func TestSummarize_CustomScenario(t *testing.T) {
	catalog := sampleCatalog()[:3]
	sel := SelectStrategy(models.StrategyCustom, Selection{EnableFallback: true}, catalog)
	sel.Primary = ToggleMembership(sel.Primary, 1)
	sel.Fallback = ToggleMembership(sel.Fallback, 3)

	lines := Summarize(models.StrategyCustom, sel.Primary, sel.Fallback, sel.EnableFallback, CatalogLookup(catalog))
	want := []string{"Primary: North Zonal", "Fallback: Milan Division"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestSummarize_FallbackHiddenWhenDisabledAndUnknownNames(t *testing.T) {
	lines := Summarize(models.StrategyZonalWithFallback, []int{1, 42}, []int{3}, false, CatalogLookup(sampleCatalog()))
	want := []string{"Primary: North Zonal, Warehouse 42"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestSlotMismatches(t *testing.T) {
	got := SlotMismatches(Selection{Primary: []int{1, 3}, Fallback: []int{2, 99}}, sampleCatalog())
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].WarehouseID != 3 || got[0].Slot != "primary" || got[1].WarehouseID != 2 || got[1].Slot != "fallback" {
		t.Fatalf("unexpected mismatches %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		m       models.WarehouseMapping
		wantErr string
	}{
		{"empty custom is legal", models.WarehouseMapping{Type: models.StrategyCustom}, ""},
		{"unknown strategy", models.WarehouseMapping{Type: "regional"}, "unknown warehouse mapping type"},
		{"empty strategy", models.WarehouseMapping{}, "unknown warehouse mapping type"},
		{"zonal only with fallback", models.WarehouseMapping{Type: models.StrategyZonalOnly, PrimaryWarehouses: []int{1}, FallbackWarehouses: []int{3}}, "cannot have fallback_warehouses"},
		{"division only enabling fallback", models.WarehouseMapping{Type: models.StrategyDivisionOnly, EnableFallback: true}, "cannot enable fallback"},
		{"duplicate primary", models.WarehouseMapping{Type: models.StrategyCustom, PrimaryWarehouses: []int{1, 1}}, "listed twice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.m)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidMapping) || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("got %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateAgainst_RejectsInactiveAndUnknown(t *testing.T) {
	m := models.WarehouseMapping{Type: models.StrategyCustom, PrimaryWarehouses: []int{1}, FallbackWarehouses: []int{4, 77}, EnableFallback: true}
	err := ValidateAgainst(m, sampleCatalog())
	if !errors.Is(err, ErrInvalidMapping) || !strings.Contains(err.Error(), "4, 77") {
		t.Fatalf("got %v", err)
	}
}

func TestNormalize_NationwideDerivesFromActiveCatalog(t *testing.T) {
	m := Normalize(models.WarehouseMapping{Type: models.StrategyNationwide, PrimaryWarehouses: []int{3}, Notes: "  keep  "}, sampleCatalog())
	if !reflect.DeepEqual(m.PrimaryWarehouses, []int{1, 2}) || !reflect.DeepEqual(m.FallbackWarehouses, []int{3}) || !m.EnableFallback {
		t.Fatalf("got %+v", m)
	}
	if m.Notes != "keep" {
		t.Fatalf("notes = %q", m.Notes)
	}
}
