package editor

import "github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"

// ProductList is the caller's copy of the product catalog
type ProductList []models.Product

// ApplyMapping merges a saved mapping into the product with productID.
// It reports false when the product is not in the list.
func (l ProductList) ApplyMapping(productID int, m models.WarehouseMapping) bool {
	for i := range l {
		if l[i].ID == productID {
			l[i].ApplyMapping(m)
			return true
		}
	}
	return false
}
