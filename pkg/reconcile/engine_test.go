package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sorrel/pkg/cache"
	sorrelerrors "github.com/Ramsey-B/sorrel/pkg/errors"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/normalizers"
)

type fakeItemStore struct {
	items []models.SupplierItem
	err   error
}

func (f *fakeItemStore) sorted() []models.SupplierItem {
	out := append([]models.SupplierItem{}, f.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeItemStore) List(_ context.Context, page int, pageSize int) ([]models.SupplierItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	items := f.sorted()
	start := page * pageSize
	if start >= len(items) {
		return []models.SupplierItem{}, nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func (f *fakeItemStore) Count(_ context.Context) (int, error) {
	return len(f.items), nil
}

func (f *fakeItemStore) Get(_ context.Context, id models.FlexID) (*models.SupplierItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, fmt.Errorf("supplier item %s not found", id)
}

func (f *fakeItemStore) FindBySKU(_ context.Context, sku string) (*models.SupplierItem, error) {
	if sku == "" {
		return nil, nil
	}
	for _, item := range f.sorted() {
		if item.SKU == sku {
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) FindByName(_ context.Context, name string) (*models.SupplierItem, error) {
	for _, item := range f.sorted() {
		if item.Name == name {
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) FindByNamePrefix(_ context.Context, prefix string) (*models.SupplierItem, error) {
	lower := strings.ToLower(prefix)
	for _, item := range f.sorted() {
		if strings.HasPrefix(strings.ToLower(item.Name), lower) {
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) FindBySupplierID(_ context.Context, supplierID models.FlexID) (*models.SupplierItem, error) {
	if supplierID.IsSentinel() {
		return nil, nil
	}
	for _, item := range f.sorted() {
		if item.SupplierID == supplierID {
			return &item, nil
		}
	}
	return nil, nil
}

type fakeProductStore struct {
	variants []models.ProductVariant
	parents  map[models.FlexID]*models.ParentProduct
	nextID   int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{parents: map[models.FlexID]*models.ParentProduct{}, nextID: 1}
}

func (f *fakeProductStore) newID() models.FlexID {
	id := models.FlexID(fmt.Sprintf("p%d", f.nextID))
	f.nextID++
	return id
}

func (f *fakeProductStore) ListVariants(_ context.Context, page int, pageSize int) ([]models.ProductVariant, error) {
	start := page * pageSize
	if start >= len(f.variants) {
		return []models.ProductVariant{}, nil
	}
	end := start + pageSize
	if end > len(f.variants) {
		end = len(f.variants)
	}
	return f.variants[start:end], nil
}

func (f *fakeProductStore) ListParents(_ context.Context, page int, pageSize int) ([]models.ParentProduct, int, error) {
	ids := make([]string, 0, len(f.parents))
	for id := range f.parents {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)

	out := []models.ParentProduct{}
	start := page * pageSize
	for i := start; i < len(ids) && i < start+pageSize; i++ {
		out = append(out, *f.parents[models.FlexID(ids[i])])
	}
	return out, len(ids), nil
}

func (f *fakeProductStore) GetParent(_ context.Context, id models.FlexID) (*models.ParentProduct, error) {
	parent, ok := f.parents[id]
	if !ok {
		return nil, sorrelerrors.NewNotFoundError("parent product", id.String())
	}
	copied := *parent
	copied.VariantIDs = append([]models.FlexID{}, parent.VariantIDs...)
	return &copied, nil
}

func (f *fakeProductStore) GetVariant(_ context.Context, id models.FlexID) (*models.ProductVariant, error) {
	for _, v := range f.variants {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, sorrelerrors.NewNotFoundError("variant", id.String())
}

func (f *fakeProductStore) CreateVariant(_ context.Context, variant models.ProductVariant) (*models.ProductVariant, error) {
	variant.ID = f.newID()
	f.variants = append(f.variants, variant)
	return &variant, nil
}

func (f *fakeProductStore) CreateParent(_ context.Context, parent models.ParentProduct) (*models.ParentProduct, error) {
	parent.ID = f.newID()
	parent.IsParent = true
	f.parents[parent.ID] = &parent
	return &parent, nil
}

func (f *fakeProductStore) UpdateParentVariants(_ context.Context, parentID models.FlexID, variantIDs []models.FlexID) (*models.ParentProduct, error) {
	parent, ok := f.parents[parentID]
	if !ok {
		return nil, sorrelerrors.NewNotFoundError("parent product", parentID.String())
	}
	parent.VariantIDs = append([]models.FlexID{}, variantIDs...)
	parent.VariantCount = len(variantIDs)
	copied := *parent
	return &copied, nil
}

func newTestEngine(items *fakeItemStore, products *fakeProductStore) *Engine {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(items, products, cache.NewMemoryCache(time.Minute), nil, logger)
}

func item(id, sku, name string) models.SupplierItem {
	return models.SupplierItem{ID: models.FlexID(id), SKU: sku, Name: name, SupplierID: models.FlexID(id)}
}

func TestEveryItemClassifiedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{
		item("1", "A1", "Alpha"),
		item("2", "B2", "Beta"),
		item("3", "C3", "Gamma"),
	}}
	products := newFakeProductStore()
	products.variants = []models.ProductVariant{
		{ID: "v1", Name: "Alpha", SupplierID: "1"},
	}

	engine := newTestEngine(items, products)

	mapped, _, err := engine.ComputeMappedSupplierIDs(ctx)
	require.NoError(t, err)

	page, _, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)

	unmappedIDs := map[string]struct{}{}
	for _, it := range page.Items {
		unmappedIDs[it.ID.String()] = struct{}{}
	}

	for _, it := range items.items {
		_, isMapped := mapped[it.ID.String()]
		_, isUnmapped := unmappedIDs[it.ID.String()]
		assert.NotEqual(t, isMapped, isUnmapped, "item %s must be in exactly one set", it.ID)
	}
}

func TestFindUnmappedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{
		item("1", "A1", "Alpha"),
		item("2", "B2", "Beta"),
		item("3", "C3", "Gamma"),
	}}
	products := newFakeProductStore()

	engine := newTestEngine(items, products)

	first, _, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)
	second, _, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Items, second.Items)
}

func TestSKUTierBeatsNameTier(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{
		item("1", "A1", "Widget"),
		item("2", "B2", "Widget / 10"),
	}}
	engine := newTestEngine(items, newFakeProductStore())

	variant := models.ProductVariant{StyleCode: "A1", Name: "Widget / 10"}
	matched, err := engine.MatchVariantToSupplierItem(ctx, variant)
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, models.FlexID("1"), matched.ID, "SKU tier must win over exact name tier")
}

func TestNormalizedNameTierStripsQuantitySuffix(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{
		item("1", "", "Widget Deluxe Edition"),
	}}
	engine := newTestEngine(items, newFakeProductStore())

	variant := models.ProductVariant{Name: "Widget Deluxe / 12 pk"}
	matched, err := engine.MatchVariantToSupplierItem(ctx, variant)
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, models.FlexID("1"), matched.ID)
	assert.Equal(t, "Widget Deluxe", normalizers.StripQuantitySuffix(variant.Name))
}

func TestSentinelSupplierIDNeverMatches(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{
		{ID: "1", Name: "Alpha", SupplierID: "-1"},
		{ID: "2", Name: "Beta", SupplierID: "0"},
	}}
	engine := newTestEngine(items, newFakeProductStore())

	for _, sentinel := range []models.FlexID{"-1", "0", ""} {
		variant := models.ProductVariant{Name: "No Such Name", SupplierID: sentinel}
		matched, err := engine.MatchVariantToSupplierItem(ctx, variant)
		require.NoError(t, err)
		assert.Nil(t, matched, "sentinel %q must not match", sentinel)
	}
}

func TestSentinelVariantsNeverMap(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{item("1", "A1", "Alpha")}}
	products := newFakeProductStore()
	products.variants = []models.ProductVariant{
		{ID: "v1", Name: "Something", SupplierID: "-1"},
		{ID: "v2", Name: "Other", SupplierID: "0"},
	}

	engine := newTestEngine(items, products)

	mapped, _, err := engine.ComputeMappedSupplierIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, mapped)
}

func TestLinkThenFindUnmappedExcludesItem(t *testing.T) {
	ctx := context.Background()
	target := item("1", "A1", "Alpha")
	items := &fakeItemStore{items: []models.SupplierItem{target, item("2", "B2", "Beta")}}
	products := newFakeProductStore()
	parent, err := products.CreateParent(ctx, models.ParentProduct{Name: "Parent"})
	require.NoError(t, err)

	engine := newTestEngine(items, products)

	before, _, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, before.Total)

	variant, err := engine.LinkSupplierItemToParent(ctx, target, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, variant.SupplierID)

	after, _, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Total)
	for _, it := range after.Items {
		assert.NotEqual(t, target.ID, it.ID, "linked item must no longer be unmapped")
	}
}

func TestLinkToMissingParentFails(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{item("1", "A1", "Alpha")}}
	engine := newTestEngine(items, newFakeProductStore())

	_, err := engine.LinkSupplierItemToParent(ctx, items.items[0], "missing")
	require.Error(t, err)
	assert.True(t, sorrelerrors.IsNotFoundError(err))
}

func TestUnmappedPagination(t *testing.T) {
	ctx := context.Background()
	allItems := make([]models.SupplierItem, 0, 1250)
	for i := 0; i < 1250; i++ {
		allItems = append(allItems, item(fmt.Sprintf("%d", i+1), fmt.Sprintf("SKU-%04d", i), fmt.Sprintf("Item %04d", i)))
	}
	items := &fakeItemStore{items: allItems}

	engine := newTestEngine(items, newFakeProductStore())

	page, _, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 1250, page.Total)
	assert.Equal(t, 13, page.TotalPages)
	assert.Len(t, page.Items, 100)

	last, _, err := engine.FindUnmapped(ctx, 12, 100)
	require.NoError(t, err)
	assert.Len(t, last.Items, 50)
	assert.Equal(t, 13, last.TotalPages)

	past, _, err := engine.FindUnmapped(ctx, 13, 100)
	require.NoError(t, err)
	assert.Empty(t, past.Items)
}

func TestUnlinkVariantRemovesFromParent(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductStore()
	parent, err := products.CreateParent(ctx, models.ParentProduct{Name: "Parent", VariantIDs: []models.FlexID{"v1", "v2"}, VariantCount: 2})
	require.NoError(t, err)

	engine := newTestEngine(&fakeItemStore{}, products)

	updated, err := engine.UnlinkVariant(ctx, "v1", parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.FlexID{"v2"}, updated.VariantIDs)
	assert.Equal(t, 1, updated.VariantCount)
}

func TestUnlinkAbsentVariantIsNoOp(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductStore()
	parent, err := products.CreateParent(ctx, models.ParentProduct{Name: "Parent", VariantIDs: []models.FlexID{"v1"}, VariantCount: 1})
	require.NoError(t, err)

	engine := newTestEngine(&fakeItemStore{}, products)

	updated, err := engine.UnlinkVariant(ctx, "not-there", parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.FlexID{"v1"}, updated.VariantIDs)
	assert.Equal(t, 1, updated.VariantCount)
}

func TestCreateParentFromSupplierItem(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{item("1", "A1", "Alpha")}}
	products := newFakeProductStore()

	engine := newTestEngine(items, products)

	result, err := engine.CreateParentFromSupplierItem(ctx, items.items[0], "Alpha Family", "widgets")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Family", result.Parent.Name)
	assert.Equal(t, "widgets", result.Parent.Category)
	assert.True(t, result.Parent.IsParent)
	require.Len(t, result.Parent.VariantIDs, 1)
	assert.Equal(t, result.Variant.ID, result.Parent.VariantIDs[0])
	assert.Equal(t, models.FlexID("1"), result.Variant.SupplierID)
}

func TestCreateParentRequiresName(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&fakeItemStore{}, newFakeProductStore())

	_, err := engine.CreateParentFromSupplierItem(ctx, item("1", "A1", "Alpha"), "", "")
	require.Error(t, err)
	assert.True(t, sorrelerrors.IsValidationError(err))
}

func TestShortPageTerminatesVariantScan(t *testing.T) {
	ctx := context.Background()
	products := newFakeProductStore()
	for i := 1; i <= 25; i++ {
		products.variants = append(products.variants, models.ProductVariant{
			ID:         models.FlexID(fmt.Sprintf("v%d", i)),
			SupplierID: models.FlexID(fmt.Sprintf("%d", i)),
		})
	}

	engine := newTestEngine(&fakeItemStore{}, products).WithScanPageSize(10)

	mapped, _, err := engine.ComputeMappedSupplierIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, mapped, 25)
}

func TestParentsWithSupplierItems(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemStore{items: []models.SupplierItem{item("1", "A1", "Alpha")}}
	products := newFakeProductStore()
	variant, err := products.CreateVariant(ctx, models.ProductVariant{Name: "Alpha", StyleCode: "A1", SupplierID: "1"})
	require.NoError(t, err)
	parent, err := products.CreateParent(ctx, models.ParentProduct{Name: "Parent", VariantIDs: []models.FlexID{variant.ID}, VariantCount: 1})
	require.NoError(t, err)

	engine := newTestEngine(items, products)

	page, _, err := engine.ParentsWithSupplierItems(ctx, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Parents, 1)
	assert.Equal(t, parent.ID, page.Parents[0].ID)
	require.Len(t, page.Parents[0].SOSItems, 1)
	assert.Equal(t, models.FlexID("1"), page.Parents[0].SOSItems[0].ID)
}

func TestMutationInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	target := item("1", "A1", "Alpha")
	items := &fakeItemStore{items: []models.SupplierItem{target}}
	products := newFakeProductStore()
	parent, err := products.CreateParent(ctx, models.ParentProduct{Name: "Parent"})
	require.NoError(t, err)

	engine := newTestEngine(items, products)

	// Prime the cache
	_, result, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)
	assert.False(t, result.Hit)
	_, result, err = engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)
	assert.True(t, result.Hit)

	_, err = engine.LinkSupplierItemToParent(ctx, target, parent.ID)
	require.NoError(t, err)

	// Read-after-write must observe fresh data, not the primed entry
	page, result, err := engine.FindUnmapped(ctx, 0, 100)
	require.NoError(t, err)
	assert.False(t, result.Hit)
	assert.Equal(t, 0, page.Total)
}
