package models

import (
	"time"

	"github.com/Ramsey-B/sorrel/pkg/database"
)

// SupplierItem is a row from the external procurement catalog. It is read-only from
// this service's perspective; the supplier system owns the data. Metadata carries
// whatever loosely-typed fields the upstream catalog attaches, without interpretation.
type SupplierItem struct {
	ID          FlexID                         `json:"id" db:"id"`
	Name        string                         `json:"name" db:"name"`
	SKU         string                         `json:"sku" db:"sku"`
	Description string                         `json:"description" db:"description"`
	SupplierID  FlexID                         `json:"supplier_id" db:"supplier_id"`
	Metadata    database.JSONB[map[string]any] `json:"metadata" db:"metadata"`
	CreatedAt   time.Time                      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time                     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// UnmappedItemsPage is one page of supplier items that have no variant linkage.
type UnmappedItemsPage struct {
	Items      []SupplierItem `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}
