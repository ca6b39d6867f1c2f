package supplieritem

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	repo "github.com/Ramsey-B/sorrel/internal/repositories/supplieritem"
	"github.com/Ramsey-B/sorrel/pkg/models"
)

// Register registers supplier item routes
func Register(g *echo.Group) {
	g.GET("/supplier-items", ListSupplierItems)
	g.GET("/supplier-items/:id", GetSupplierItem)
}

// ListSupplierItems returns one page of the supplier catalog mirror, name ascending
func ListSupplierItems(c echo.Context) error {
	ctx := c.Request().Context()

	page := 0
	if raw := c.QueryParam("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "page must be a non-negative integer")
		}
		page = parsed
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 1000")
		}
		limit = parsed
	}

	ctx, repository, err := ectoinject.GetContext[*repo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "supplier item repository unavailable")
	}

	items, err := repository.List(ctx, page, limit)
	if err != nil {
		return err
	}

	total, err := repository.Count(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items":      items,
		"total":      total,
		"page":       page,
		"totalPages": (total + limit - 1) / limit,
	})
}

// GetSupplierItem returns a single supplier item by id
func GetSupplierItem(c echo.Context) error {
	ctx := c.Request().Context()

	id := models.FlexID(c.Param("id"))

	ctx, repository, err := ectoinject.GetContext[*repo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "supplier item repository unavailable")
	}

	item, err := repository.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}
