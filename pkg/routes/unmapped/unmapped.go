package unmapped

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/pkg/cache"
	"github.com/Ramsey-B/sorrel/pkg/reconcile"
)

const (
	// HeaderCache reports whether the page came from cache ("HIT" or "MISS")
	HeaderCache = "X-Cache"
	// HeaderQueryTime reports compute time in milliseconds on a miss
	HeaderQueryTime = "X-Query-Time-Ms"
)

// Register registers unmapped item routes
func Register(g *echo.Group) {
	g.GET("/unmapped-items", GetUnmappedItems)
	g.POST("/refresh-cache", RefreshCache)
}

// GetUnmappedItems returns one page of supplier items with no variant linkage
func GetUnmappedItems(c echo.Context) error {
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

	ctx, engine, err := ectoinject.GetContext[*reconcile.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "reconciliation engine unavailable")
	}

	result, cacheResult, err := engine.FindUnmapped(ctx, page, limit)
	if err != nil {
		return err
	}

	setCacheHeaders(c, cacheResult)
	return c.JSON(http.StatusOK, result)
}

// RefreshCache drops every reconciliation cache entry
func RefreshCache(c echo.Context) error {
	ctx := c.Request().Context()

	ctx, engine, err := ectoinject.GetContext[*reconcile.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "reconciliation engine unavailable")
	}

	if err := engine.RefreshCache(ctx); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"tags":    cache.AllTags(),
	})
}

func setCacheHeaders(c echo.Context, result cache.Result) {
	if result.Hit {
		c.Response().Header().Set(HeaderCache, "HIT")
		return
	}
	c.Response().Header().Set(HeaderCache, "MISS")
	c.Response().Header().Set(HeaderQueryTime, strconv.FormatInt(result.QueryTime.Milliseconds(), 10))
}
