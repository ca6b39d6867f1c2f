package models

// LinkSOSToParentRequest links an existing supplier item to an existing parent product.
// SOSItem carries the item payload so the catalog write does not require a second
// supplier lookup; SOSItemID must agree with SOSItem.ID when both are present.
type LinkSOSToParentRequest struct {
	SOSItemID FlexID        `json:"sosItemId" validate:"required"`
	ParentID  FlexID        `json:"parentId" validate:"required"`
	SOSItem   *SupplierItem `json:"sosItem"`
}

// CreateParentFromSOSRequest creates a new parent product seeded with a single
// variant built from the supplier item.
type CreateParentFromSOSRequest struct {
	SOSItem    SupplierItem `json:"sosItem" validate:"required"`
	ParentName string       `json:"parentName" validate:"required"`
	Category   string       `json:"category"`
}

// UnlinkVariantRequest removes a variant from a parent's variant list.
type UnlinkVariantRequest struct {
	VariantID FlexID `json:"variantId" validate:"required"`
	ParentID  FlexID `json:"parentId" validate:"required"`
}
