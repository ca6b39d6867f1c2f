package supplieritem

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

const table = "supplier_items"

var columns = []string{"id", "name", "sku", "description", "supplier_id", "metadata", "created_at", "updated_at", "deleted_at"}

// Repository reads the mirrored supplier item catalog. The supplier system owns
// the data; writes here only happen through the sync upsert path.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new supplier item repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// List returns one page of supplier items ordered by name ascending. Page is
// zero-based; name ordering keeps unmapped pagination deterministic.
func (r *Repository) List(ctx context.Context, page int, pageSize int) ([]models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.List")
	defer span.End()

	if page < 0 {
		page = 0
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 1000
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.IsNull("deleted_at"))
	sb.OrderBy("name").Asc()
	sb.Limit(pageSize).Offset(page * pageSize)

	query, args := sb.Build()
	items := []models.SupplierItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"page": page, "page_size": pageSize}).Error("Failed to list supplier items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list supplier items")
	}

	return items, nil
}

// Count returns the number of live supplier items
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)
	sb.Where(sb.IsNull("deleted_at"))

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count supplier items")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count supplier items")
	}

	return count, nil
}

// Get retrieves a supplier item by ID
func (r *Repository) Get(ctx context.Context, id models.FlexID) (*models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id.String()),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var item models.SupplierItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("supplier item %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get supplier item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get supplier item")
	}

	return &item, nil
}

// FindBySKU retrieves the supplier item with the given SKU, or nil when absent
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.FindBySKU")
	defer span.End()

	if sku == "" {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("sku", sku),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name").Asc()
	sb.Limit(1)

	return r.findOne(ctx, sb)
}

// FindByName retrieves the supplier item whose name matches exactly, or nil when absent
func (r *Repository) FindByName(ctx context.Context, name string) (*models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.FindByName")
	defer span.End()

	if name == "" {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("name", name),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name").Asc()
	sb.Limit(1)

	return r.findOne(ctx, sb)
}

// FindByNamePrefix retrieves the first supplier item whose name starts with the
// given prefix, case-insensitive, in name order. Multiple items can share a
// prefix; the name ordering makes "first" stable for an unchanged table.
func (r *Repository) FindByNamePrefix(ctx context.Context, prefix string) (*models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.FindByNamePrefix")
	defer span.End()

	if prefix == "" {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.ILike("name", escapeLike(prefix)+"%"),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name").Asc()
	sb.Limit(1)

	return r.findOne(ctx, sb)
}

// FindBySupplierID retrieves the supplier item with the given legacy supplier id,
// or nil when absent. Sentinel ids never match.
func (r *Repository) FindBySupplierID(ctx context.Context, supplierID models.FlexID) (*models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.FindBySupplierID")
	defer span.End()

	if supplierID.IsSentinel() {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("supplier_id", supplierID.String()),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name").Asc()
	sb.Limit(1)

	return r.findOne(ctx, sb)
}

// Upsert inserts or refreshes a supplier item from the external catalog sync
func (r *Repository) Upsert(ctx context.Context, item *models.SupplierItem) (*models.SupplierItem, error) {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = models.FlexID(uuid.New().String())
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols("id", "name", "sku", "description", "supplier_id", "metadata", "created_at", "updated_at")
	sb.Values(item.ID.String(), item.Name, item.SKU, item.Description, item.SupplierID.String(), item.Metadata, now, item.UpdatedAt)

	query, args := sb.Build()
	query += " ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sku = EXCLUDED.sku, description = EXCLUDED.description, supplier_id = EXCLUDED.supplier_id, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at, deleted_at = NULL"

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"item_id": item.ID}).Error("Failed to upsert supplier item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert supplier item")
	}

	return item, nil
}

// Delete soft deletes a supplier item that disappeared from the external catalog
func (r *Repository) Delete(ctx context.Context, id models.FlexID) error {
	ctx, span := tracing.StartSpan(ctx, "supplieritem.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(table)
	sb.Set(
		sb.Assign("deleted_at", time.Now().UTC()),
	)
	sb.Where(sb.Equal("id", id.String()))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"item_id": id}).Error("Failed to delete supplier item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete supplier item")
	}

	return nil
}

func (r *Repository) findOne(ctx context.Context, sb *sqlbuilder.SelectBuilder) (*models.SupplierItem, error) {
	query, args := sb.Build()
	var item models.SupplierItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to query supplier item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query supplier item")
	}

	return &item, nil
}

// escapeLike escapes LIKE wildcards so user-entered names match literally
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
