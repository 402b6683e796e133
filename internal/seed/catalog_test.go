package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/api/apitest"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

const sample = `
version: 1
warehouses:
  - name: North Zonal
    type: zonal
    location: Milan
  - name: Turin Division
    type: division
    location: Turin
`

func TestParseCatalogYAML(t *testing.T) {
	c, err := ParseCatalogYAML([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.Warehouses) != 2 || c.Warehouses[1].Location != "Turin" {
		t.Fatalf("unexpected catalog %+v", c)
	}
}

func TestParseCatalogYAML_Rejects(t *testing.T) {
	cases := map[string]string{
		"version":   "version: 2\nwarehouses: []\n",
		"bad type":  "version: 1\nwarehouses:\n  - name: A\n    type: regional\n",
		"no name":   "version: 1\nwarehouses:\n  - type: zonal\n",
		"duplicate": "version: 1\nwarehouses:\n  - name: A\n    type: zonal\n  - name: a\n    type: division\n",
		"syntax":    "version: [",
	}
	for name, in := range cases {
		if _, err := ParseCatalogYAML([]byte(in)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadCatalogAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warehouses.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	store := apitest.NewStore(apitest.SampleCatalog())
	created, err := Apply(context.Background(), store, c)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected only Turin to be created, got %d", created)
	}
	divisions := models.WarehouseTypeDivision
	ws, _ := store.ListWarehouses(context.Background(), db.WarehouseFilter{Type: &divisions})
	if len(ws) != 2 {
		t.Fatalf("expected two division warehouses, got %+v", ws)
	}

	again, err := Apply(context.Background(), store, c)
	if err != nil || again != 0 {
		t.Fatalf("second apply should be a no-op, got %d, %v", again, err)
	}
}
