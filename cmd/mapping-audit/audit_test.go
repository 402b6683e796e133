package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

type fakeSource struct {
	warehouses []models.Warehouse
	mappings   []models.ProductWarehouseMapping
	err        error
}

func (f fakeSource) ListProductWarehouseMappings(context.Context) ([]models.ProductWarehouseMapping, error) {
	return f.mappings, f.err
}

func (f fakeSource) ListWarehouses(context.Context, db.WarehouseFilter) ([]models.Warehouse, error) {
	return f.warehouses, nil
}

func pwm(productID int, t models.MappingStrategy, primary, fallback []int, enable bool) models.ProductWarehouseMapping {
	return models.ProductWarehouseMapping{
		ProductID: productID,
		WarehouseMapping: models.WarehouseMapping{
			Type: t, PrimaryWarehouses: primary, FallbackWarehouses: fallback, EnableFallback: enable,
		},
	}
}

func TestAudit(t *testing.T) {
	src := fakeSource{
		warehouses: []models.Warehouse{
			{ID: 1, Type: models.WarehouseTypeZonal, Name: "North", IsActive: true},
			{ID: 2, Type: models.WarehouseTypeZonal, Name: "South", IsActive: false},
			{ID: 3, Type: models.WarehouseTypeDivision, Name: "Bergamo", IsActive: true},
		},
		mappings: []models.ProductWarehouseMapping{
			pwm(10, models.StrategyNationwide, []int{1}, []int{3}, true),          // clean
			pwm(11, models.StrategyCustom, []int{1, 2}, []int{}, false),           // inactive ref
			pwm(12, models.StrategyZonalOnly, []int{1}, []int{3}, false),          // invalid
			pwm(13, models.MappingStrategy("regional"), []int{1}, []int{}, false), // unknown
			pwm(14, models.StrategyZonalWithFallback, []int{9}, []int{}, false),   // missing ref
			pwm(15, models.StrategyNationwide, []int{1, 2}, []int{3}, true),       // drift + inactive
			pwm(16, models.MappingStrategy(""), []int{}, []int{}, false),          // unknown
		},
	}

	res, err := audit(context.Background(), src)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if res.CheckedMappings != 7 || res.Warehouses != 3 {
		t.Fatalf("unexpected totals %+v", res)
	}

	byProduct := map[int][]string{}
	for _, f := range res.Findings {
		byProduct[f.ProductID] = append(byProduct[f.ProductID], f.Kind)
	}
	if len(byProduct[10]) != 0 {
		t.Fatalf("clean mapping flagged: %v", byProduct[10])
	}
	expect := map[int][]string{
		11: {kindInactiveWarehouse},
		12: {kindInvalidMapping},
		13: {kindUnknownStrategy},
		14: {kindMissingWarehouse},
		15: {kindInactiveWarehouse, kindNationwideDrift},
		16: {kindUnknownStrategy},
	}
	for id, kinds := range expect {
		got := byProduct[id]
		if len(got) != len(kinds) {
			t.Fatalf("product %d: got %v, want %v", id, got, kinds)
		}
		for i := range kinds {
			if got[i] != kinds[i] {
				t.Fatalf("product %d: got %v, want %v", id, got, kinds)
			}
		}
	}

	counts := res.countByKind()
	if counts[kindInactiveWarehouse] != 2 || counts[kindNationwideDrift] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestAudit_SourceError(t *testing.T) {
	_, err := audit(context.Background(), fakeSource{err: errors.New("db down")})
	if err == nil {
		t.Fatal("expected error")
	}
}

type fakeCloudWatch struct {
	in *cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.in = in
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestPutMetrics(t *testing.T) {
	cw := &fakeCloudWatch{}
	r := result{CheckedMappings: 4, Findings: []auditFinding{{ProductID: 1, Kind: kindMissingWarehouse}}}
	if err := putMetrics(context.Background(), cw, "Test/NS", r); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(cw.in.Namespace) != "Test/NS" {
		t.Fatalf("unexpected namespace %q", aws.ToString(cw.in.Namespace))
	}
	// one total plus one datum per finding kind
	if len(cw.in.MetricData) != 6 {
		t.Fatalf("expected 6 metrics, got %d", len(cw.in.MetricData))
	}
	for _, d := range cw.in.MetricData[1:] {
		if aws.ToString(d.Dimensions[0].Value) == kindMissingWarehouse && aws.ToFloat64(d.Value) != 1 {
			t.Fatalf("missing_warehouse count = %v", aws.ToFloat64(d.Value))
		}
	}
}
