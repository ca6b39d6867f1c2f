package parent

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/internal/repositories/supplieritem"
	"github.com/Ramsey-B/sorrel/pkg/errors"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/reconcile"
	"github.com/Ramsey-B/sorrel/pkg/utils"
)

// Register registers parent product routes
func Register(g *echo.Group) {
	g.GET("/parents-with-sos-items", GetParentsWithSOSItems)
	g.POST("/link-sos-to-parent", LinkSOSToParent)
	g.POST("/create-parent-from-sos", CreateParentFromSOS)
	g.POST("/unlink-variant", UnlinkVariant)
}

// GetParentsWithSOSItems returns parents joined with the supplier items their variants resolve to
func GetParentsWithSOSItems(c echo.Context) error {
	ctx := c.Request().Context()

	page := 0
	if raw := c.QueryParam("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "page must be a non-negative integer")
		}
		page = parsed
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 500")
		}
		limit = parsed
	}

	ctx, engine, err := ectoinject.GetContext[*reconcile.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "reconciliation engine unavailable")
	}

	result, cacheResult, err := engine.ParentsWithSupplierItems(ctx, page, limit)
	if err != nil {
		return err
	}

	if cacheResult.Hit {
		c.Response().Header().Set("X-Cache", "HIT")
	} else {
		c.Response().Header().Set("X-Cache", "MISS")
		c.Response().Header().Set("X-Query-Time-Ms", strconv.FormatInt(cacheResult.QueryTime.Milliseconds(), 10))
	}

	return c.JSON(http.StatusOK, result)
}

// LinkSOSToParent creates a variant for a supplier item and appends it to a parent
func LinkSOSToParent(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.LinkSOSToParentRequest](c)
	if err != nil {
		return err
	}

	item := req.SOSItem
	if item == nil {
		// The payload may omit the item body; resolve it from the catalog mirror
		ctx2, repo, rerr := ectoinject.GetContext[*supplieritem.Repository](ctx)
		if rerr != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "supplier item repository unavailable")
		}
		ctx = ctx2
		item, err = repo.Get(ctx, req.SOSItemID)
		if err != nil {
			return err
		}
	} else if item.ID != req.SOSItemID {
		return errors.ToHTTPError(errors.NewValidationError("sosItemId does not match sosItem.id"))
	}

	ctx, engine, err := ectoinject.GetContext[*reconcile.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "reconciliation engine unavailable")
	}

	variant, err := engine.LinkSupplierItemToParent(ctx, *item, req.ParentID)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"variantId": variant.ID,
	})
}

// CreateParentFromSOS creates a parent product from a supplier item
func CreateParentFromSOS(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.CreateParentFromSOSRequest](c)
	if err != nil {
		return err
	}

	ctx, engine, err := ectoinject.GetContext[*reconcile.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "reconciliation engine unavailable")
	}

	result, err := engine.CreateParentFromSupplierItem(ctx, req.SOSItem, req.ParentName, req.Category)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"parent":  result.Parent,
		"variant": result.Variant,
	})
}

// UnlinkVariant removes a variant from a parent's variant list
func UnlinkVariant(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.UnlinkVariantRequest](c)
	if err != nil {
		return err
	}

	ctx, engine, err := ectoinject.GetContext[*reconcile.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "reconciliation engine unavailable")
	}

	parent, err := engine.UnlinkVariant(ctx, req.VariantID, req.ParentID)
	if err != nil {
		return errors.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    parent,
	})
}
