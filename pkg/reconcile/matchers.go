package reconcile

import (
	"context"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/normalizers"
)

// ItemSource looks up supplier items by the keys the matchers use. Lookups return
// nil with no error when nothing matches.
type ItemSource interface {
	FindBySKU(ctx context.Context, sku string) (*models.SupplierItem, error)
	FindByName(ctx context.Context, name string) (*models.SupplierItem, error)
	FindByNamePrefix(ctx context.Context, prefix string) (*models.SupplierItem, error)
	FindBySupplierID(ctx context.Context, supplierID models.FlexID) (*models.SupplierItem, error)
}

// Matcher attempts to resolve a variant to the supplier item it represents.
// Matchers run in a fixed order and the first hit wins, so tier precedence is
// explicit and each tier is testable on its own.
type Matcher interface {
	Name() string
	Match(ctx context.Context, variant models.ProductVariant, source ItemSource) (*models.SupplierItem, error)
}

// DefaultMatchers returns the matching tiers in precedence order:
// SKU, exact name, normalized name prefix, then legacy supplier id.
func DefaultMatchers() []Matcher {
	return []Matcher{
		SKUMatcher{},
		ExactNameMatcher{},
		NormalizedNameMatcher{},
		SupplierIDMatcher{},
	}
}

// SKUMatcher matches the variant's style code against supplier item SKUs
type SKUMatcher struct{}

func (SKUMatcher) Name() string {
	return "sku"
}

func (SKUMatcher) Match(ctx context.Context, variant models.ProductVariant, source ItemSource) (*models.SupplierItem, error) {
	if variant.StyleCode == "" {
		return nil, nil
	}
	return source.FindBySKU(ctx, variant.StyleCode)
}

// ExactNameMatcher matches the variant's name against supplier item names verbatim
type ExactNameMatcher struct{}

func (ExactNameMatcher) Name() string {
	return "exact_name"
}

func (ExactNameMatcher) Match(ctx context.Context, variant models.ProductVariant, source ItemSource) (*models.SupplierItem, error) {
	if variant.Name == "" {
		return nil, nil
	}
	return source.FindByName(ctx, variant.Name)
}

// NormalizedNameMatcher strips the pack-size suffix from the variant name and
// matches supplier item names by case-insensitive prefix. When several items
// share the prefix the source's name ordering decides which one is returned.
type NormalizedNameMatcher struct{}

func (NormalizedNameMatcher) Name() string {
	return "normalized_name"
}

func (NormalizedNameMatcher) Match(ctx context.Context, variant models.ProductVariant, source ItemSource) (*models.SupplierItem, error) {
	prefix := normalizers.ApplyChain(variant.Name, "strip_quantity", "trim")
	if prefix == "" {
		return nil, nil
	}
	return source.FindByNamePrefix(ctx, prefix)
}

// SupplierIDMatcher is the legacy fallback on the variant's stored supplier id.
// Sentinel ids never match.
type SupplierIDMatcher struct{}

func (SupplierIDMatcher) Name() string {
	return "supplier_id"
}

func (SupplierIDMatcher) Match(ctx context.Context, variant models.ProductVariant, source ItemSource) (*models.SupplierItem, error) {
	if !variant.HasSupplierID() {
		return nil, nil
	}
	return source.FindBySupplierID(ctx, variant.SupplierID)
}
