package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// AppProductLookup resolves products from the PocketBase products collection.
type AppProductLookup struct {
	App *pocketbase.PocketBase
}

func (l *AppProductLookup) FindProduct(id string) (*ProductInfo, error) {
	record, err := l.App.FindRecordById("products", id)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", id, err)
	}
	return &ProductInfo{
		ID:           record.Id,
		Name:         record.GetString("name"),
		Description:  record.GetString("description"),
		PartNumber:   record.GetString("part_number"),
		Manufacturer: record.GetString("manufacturer"),
		Price:        record.GetFloat("price"),
		NormalPrice:  record.GetFloat("normal_price"),
	}, nil
}
