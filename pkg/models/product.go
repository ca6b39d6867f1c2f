package models

import "encoding/json"

// ProductVariant is a purchasable SKU-level record in the product catalog. A variant
// belongs to at most one parent via the parent's variant id list.
type ProductVariant struct {
	ID         FlexID `json:"id"`
	Name       string `json:"name"`
	SupplierID FlexID `json:"supplier_id"`
	StyleCode  string `json:"style_code"`
	// Extra holds loosely-typed catalog fields we pass through without interpreting
	Extra map[string]json.RawMessage `json:"extra,omitempty"`
}

// HasSupplierID reports whether the variant carries a usable supplier id. Sentinel
// values mean "no supplier id" and never participate in matching.
func (v ProductVariant) HasSupplierID() bool {
	return !v.SupplierID.IsSentinel()
}

// ParentProduct groups one or more variants. Membership in VariantIDs defines the
// parent/variant relationship; a variant id should appear in at most one parent.
type ParentProduct struct {
	ID           FlexID                     `json:"id"`
	Name         string                     `json:"name"`
	Category     string                     `json:"category"`
	IsParent     bool                       `json:"is_parent"`
	VariantIDs   []FlexID                   `json:"variant_ids"`
	VariantCount int                        `json:"variant_count"`
	Extra        map[string]json.RawMessage `json:"extra,omitempty"`
}

// HasVariant reports whether variantID is in the parent's variant list.
func (p ParentProduct) HasVariant(variantID FlexID) bool {
	for _, id := range p.VariantIDs {
		if id == variantID {
			return true
		}
	}
	return false
}

// ParentWithItems is a parent joined with the supplier items its variants resolve to.
type ParentWithItems struct {
	ParentProduct
	SOSItems []SupplierItem `json:"sos_items"`
}

// ParentsPage is one page of the parent-centric join view.
type ParentsPage struct {
	Parents []ParentWithItems `json:"parents"`
	Total   int               `json:"total"`
}

// LinkResult is returned after a supplier item is linked to a parent.
type LinkResult struct {
	Parent  ParentProduct  `json:"parent"`
	Variant ProductVariant `json:"variant"`
}
