// Package reconcile classifies supplier items as mapped or unmapped relative to
// the product catalog and applies the mutations that resolve unmapped items.
package reconcile

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sorrel/pkg/cache"
	"github.com/Ramsey-B/sorrel/pkg/errors"
	"github.com/Ramsey-B/sorrel/pkg/metrics"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

const (
	// DefaultScanPageSize is the page size used for full catalog scans
	DefaultScanPageSize = 1000

	// maxScanPages bounds a runaway scan if the store keeps returning full pages
	maxScanPages = 10000

	keyMappedIDs = "mapped-supplier-ids"
)

// ItemStore is the supplier item catalog mirror
type ItemStore interface {
	ItemSource
	List(ctx context.Context, page int, pageSize int) ([]models.SupplierItem, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id models.FlexID) (*models.SupplierItem, error)
}

// ProductStore is the external product catalog
type ProductStore interface {
	ListVariants(ctx context.Context, page int, pageSize int) ([]models.ProductVariant, error)
	ListParents(ctx context.Context, page int, pageSize int) ([]models.ParentProduct, int, error)
	GetParent(ctx context.Context, id models.FlexID) (*models.ParentProduct, error)
	GetVariant(ctx context.Context, id models.FlexID) (*models.ProductVariant, error)
	CreateVariant(ctx context.Context, variant models.ProductVariant) (*models.ProductVariant, error)
	CreateParent(ctx context.Context, parent models.ParentProduct) (*models.ParentProduct, error)
	UpdateParentVariants(ctx context.Context, parentID models.FlexID, variantIDs []models.FlexID) (*models.ParentProduct, error)
}

// EventSink receives reconciliation lifecycle events. A nil sink disables events.
type EventSink interface {
	ItemLinked(ctx context.Context, item models.SupplierItem, parentID models.FlexID, variantID models.FlexID)
	ParentCreated(ctx context.Context, parent models.ParentProduct, item models.SupplierItem)
	VariantUnlinked(ctx context.Context, variantID models.FlexID, parentID models.FlexID)
	CacheRefreshed(ctx context.Context, tags []string)
}

// Engine computes mapped/unmapped classifications and mutates the product catalog
// to resolve them. All id comparisons are on normalized string ids.
type Engine struct {
	items    ItemStore
	products ProductStore
	cache    cache.Cache
	events   EventSink
	matchers []Matcher
	pageSize int
	logger   ectologger.Logger
}

// NewEngine creates a reconciliation engine with the default matcher tiers
func NewEngine(items ItemStore, products ProductStore, c cache.Cache, events EventSink, logger ectologger.Logger) *Engine {
	return &Engine{
		items:    items,
		products: products,
		cache:    c,
		events:   events,
		matchers: DefaultMatchers(),
		pageSize: DefaultScanPageSize,
		logger:   logger,
	}
}

// WithScanPageSize overrides the full-scan page size. Intended for tests.
func (e *Engine) WithScanPageSize(pageSize int) *Engine {
	if pageSize > 0 {
		e.pageSize = pageSize
	}
	return e
}

// ComputeMappedSupplierIDs returns the set of supplier ids referenced by some
// variant. The scan walks every variant page until a short page signals
// end-of-data; the result is cached under the sos-mappings tag.
func (e *Engine) ComputeMappedSupplierIDs(ctx context.Context) (map[string]struct{}, cache.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.ComputeMappedSupplierIDs")
	defer span.End()

	return cache.GetOrCompute(ctx, e.cache, keyMappedIDs, []string{cache.TagSOSMappings, cache.TagProducts},
		func(ctx context.Context) (map[string]struct{}, error) {
			return e.scanMappedIDs(ctx)
		})
}

func (e *Engine) scanMappedIDs(ctx context.Context) (map[string]struct{}, error) {
	mapped := make(map[string]struct{})

	for page := 0; page < maxScanPages; page++ {
		variants, err := e.products.ListVariants(ctx, page, e.pageSize)
		if err != nil {
			e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"page": page}).Error("Failed to scan product variants")
			return nil, err
		}

		for _, variant := range variants {
			if variant.HasSupplierID() {
				mapped[variant.SupplierID.String()] = struct{}{}
			}
		}

		// A short or empty page ends the scan
		if len(variants) < e.pageSize {
			return mapped, nil
		}
	}

	return nil, fmt.Errorf("variant scan did not terminate after %d pages", maxScanPages)
}

// FindUnmapped returns one page of supplier items that no variant references.
// Page is zero-based. Total and totalPages are derived from the full filtered
// set so they stay consistent across pages of the same snapshot.
func (e *Engine) FindUnmapped(ctx context.Context, page int, limit int) (models.UnmappedItemsPage, cache.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.FindUnmapped")
	defer span.End()

	if page < 0 {
		page = 0
	}
	if limit < 1 {
		limit = 100
	}

	key := fmt.Sprintf("unmapped-items:page=%d:limit=%d", page, limit)
	tags := []string{cache.TagUnmappedItems, cache.TagSOSMappings}

	return cache.GetOrCompute(ctx, e.cache, key, tags,
		func(ctx context.Context) (models.UnmappedItemsPage, error) {
			return e.computeUnmappedPage(ctx, page, limit)
		})
}

func (e *Engine) computeUnmappedPage(ctx context.Context, page int, limit int) (models.UnmappedItemsPage, error) {
	result := models.UnmappedItemsPage{Items: []models.SupplierItem{}, Page: page}

	mapped, _, err := e.ComputeMappedSupplierIDs(ctx)
	if err != nil {
		return result, err
	}

	// The item scan is ordered by name, so the filtered list and its page
	// windows are deterministic for an unchanged store
	unmapped := []models.SupplierItem{}
	for scanPage := 0; scanPage < maxScanPages; scanPage++ {
		items, err := e.items.List(ctx, scanPage, e.pageSize)
		if err != nil {
			return result, err
		}

		for _, item := range items {
			if _, ok := mapped[item.ID.String()]; !ok {
				unmapped = append(unmapped, item)
			}
		}

		if len(items) < e.pageSize {
			break
		}
	}

	result.Total = len(unmapped)
	result.TotalPages = (result.Total + limit - 1) / limit

	start := page * limit
	if start < len(unmapped) {
		end := start + limit
		if end > len(unmapped) {
			end = len(unmapped)
		}
		result.Items = unmapped[start:end]
	}

	return result, nil
}

// MatchVariantToSupplierItem runs the matcher tiers in order and returns the
// first hit, or nil when no tier matches.
func (e *Engine) MatchVariantToSupplierItem(ctx context.Context, variant models.ProductVariant) (*models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.MatchVariantToSupplierItem")
	defer span.End()

	for _, matcher := range e.matchers {
		item, err := matcher.Match(ctx, variant, e.items)
		if err != nil {
			return nil, err
		}
		if item != nil {
			metrics.RecordMatch(matcher.Name())
			return item, nil
		}
	}

	metrics.RecordMatch("none")
	return nil, nil
}

// LinkSupplierItemToParent creates a variant for the supplier item and appends it
// to the parent's variant list. The two writes are not atomic: if the list update
// fails the created variant stays orphaned and the caller sees the error.
func (e *Engine) LinkSupplierItemToParent(ctx context.Context, item models.SupplierItem, parentID models.FlexID) (*models.ProductVariant, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.LinkSupplierItemToParent")
	defer span.End()

	parent, err := e.products.GetParent(ctx, parentID)
	if err != nil {
		metrics.RecordMutation("link", "failed")
		return nil, err
	}

	variant, err := e.products.CreateVariant(ctx, models.ProductVariant{
		Name:       item.Name,
		StyleCode:  item.SKU,
		SupplierID: item.ID,
	})
	if err != nil {
		metrics.RecordMutation("link", "failed")
		return nil, err
	}

	variantIDs := append(append([]models.FlexID{}, parent.VariantIDs...), variant.ID)
	if _, err := e.products.UpdateParentVariants(ctx, parentID, variantIDs); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"parent_id":  parentID,
			"variant_id": variant.ID,
		}).Error("Variant created but parent list update failed; variant is orphaned")
		metrics.RecordMutation("link", "failed")
		return nil, err
	}

	e.invalidate(ctx)
	if e.events != nil {
		e.events.ItemLinked(ctx, item, parentID, variant.ID)
	}
	metrics.RecordMutation("link", "success")

	return variant, nil
}

// CreateParentFromSupplierItem creates a parent product whose only variant is
// built from the supplier item.
func (e *Engine) CreateParentFromSupplierItem(ctx context.Context, item models.SupplierItem, parentName string, category string) (*models.LinkResult, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.CreateParentFromSupplierItem")
	defer span.End()

	if parentName == "" {
		return nil, errors.NewValidationError("parent name is required")
	}

	variant, err := e.products.CreateVariant(ctx, models.ProductVariant{
		Name:       item.Name,
		StyleCode:  item.SKU,
		SupplierID: item.ID,
	})
	if err != nil {
		metrics.RecordMutation("create_parent", "failed")
		return nil, err
	}

	parent, err := e.products.CreateParent(ctx, models.ParentProduct{
		Name:         parentName,
		Category:     category,
		IsParent:     true,
		VariantIDs:   []models.FlexID{variant.ID},
		VariantCount: 1,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"variant_id": variant.ID,
		}).Error("Variant created but parent creation failed; variant is orphaned")
		metrics.RecordMutation("create_parent", "failed")
		return nil, err
	}

	e.invalidate(ctx)
	if e.events != nil {
		e.events.ParentCreated(ctx, *parent, item)
	}
	metrics.RecordMutation("create_parent", "success")

	return &models.LinkResult{Parent: *parent, Variant: *variant}, nil
}

// UnlinkVariant removes variantID from the parent's variant list. Removing an id
// that is not in the list returns the parent unchanged.
func (e *Engine) UnlinkVariant(ctx context.Context, variantID models.FlexID, parentID models.FlexID) (*models.ParentProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.UnlinkVariant")
	defer span.End()

	parent, err := e.products.GetParent(ctx, parentID)
	if err != nil {
		metrics.RecordMutation("unlink", "failed")
		return nil, err
	}

	if !parent.HasVariant(variantID) {
		return parent, nil
	}

	variantIDs := make([]models.FlexID, 0, len(parent.VariantIDs)-1)
	for _, id := range parent.VariantIDs {
		if id != variantID {
			variantIDs = append(variantIDs, id)
		}
	}

	updated, err := e.products.UpdateParentVariants(ctx, parentID, variantIDs)
	if err != nil {
		metrics.RecordMutation("unlink", "failed")
		return nil, err
	}

	e.invalidate(ctx)
	if e.events != nil {
		e.events.VariantUnlinked(ctx, variantID, parentID)
	}
	metrics.RecordMutation("unlink", "success")

	return updated, nil
}

// ParentsWithSupplierItems returns one page of parents joined with the supplier
// items their variants resolve to.
func (e *Engine) ParentsWithSupplierItems(ctx context.Context, page int, limit int) (models.ParentsPage, cache.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.ParentsWithSupplierItems")
	defer span.End()

	if page < 0 {
		page = 0
	}
	if limit < 1 {
		limit = 50
	}

	key := fmt.Sprintf("parents-with-items:page=%d:limit=%d", page, limit)
	tags := []string{cache.TagParents, cache.TagProducts, cache.TagSOSMappings}

	return cache.GetOrCompute(ctx, e.cache, key, tags,
		func(ctx context.Context) (models.ParentsPage, error) {
			return e.computeParentsPage(ctx, page, limit)
		})
}

func (e *Engine) computeParentsPage(ctx context.Context, page int, limit int) (models.ParentsPage, error) {
	result := models.ParentsPage{Parents: []models.ParentWithItems{}}

	parents, total, err := e.products.ListParents(ctx, page, limit)
	if err != nil {
		return result, err
	}
	result.Total = total

	for _, parent := range parents {
		joined := models.ParentWithItems{ParentProduct: parent, SOSItems: []models.SupplierItem{}}

		for _, variantID := range parent.VariantIDs {
			variant, err := e.products.GetVariant(ctx, variantID)
			if err != nil {
				// A dangling variant id does not fail the whole view
				e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
					"parent_id":  parent.ID,
					"variant_id": variantID,
				}).Warn("Failed to load variant for parent view")
				continue
			}

			item, err := e.MatchVariantToSupplierItem(ctx, *variant)
			if err != nil {
				return result, err
			}
			if item != nil {
				joined.SOSItems = append(joined.SOSItems, *item)
			}
		}

		result.Parents = append(result.Parents, joined)
	}

	return result, nil
}

// RefreshCache drops every reconciliation cache entry
func (e *Engine) RefreshCache(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.RefreshCache")
	defer span.End()

	tags := cache.AllTags()
	if err := e.cache.Invalidate(ctx, tags...); err != nil {
		return err
	}
	if e.events != nil {
		e.events.CacheRefreshed(ctx, tags)
	}
	return nil
}

func (e *Engine) invalidate(ctx context.Context) {
	if err := e.cache.Invalidate(ctx, cache.AllTags()...); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Failed to invalidate reconciliation cache")
	}
}
