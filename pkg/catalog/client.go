// Package catalog is the client for the external product catalog service, which
// owns parent and variant records. Identifiers cross this boundary as FlexID so
// the engine never sees the upstream's mixed number/string representation.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sorrel/pkg/httpclient"
	"github.com/Ramsey-B/sorrel/pkg/metrics"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// Config holds product catalog connection settings
type Config struct {
	BaseURL  string
	Token    string
	PageSize int
	Timeout  time.Duration
}

// Client calls the product catalog REST API
type Client struct {
	http    *httpclient.Client
	baseURL string
	token   string
	logger  ectologger.Logger
}

// NewClient creates a new product catalog client
func NewClient(cfg Config, httpClient *httpclient.Client, logger ectologger.Logger) *Client {
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		logger:  logger,
	}
}

type listVariantsResponse struct {
	Data []models.ProductVariant `json:"data"`
}

type listParentsResponse struct {
	Data  []models.ParentProduct `json:"data"`
	Total int                    `json:"total"`
}

type parentResponse struct {
	Data models.ParentProduct `json:"data"`
}

type variantResponse struct {
	Data models.ProductVariant `json:"data"`
}

// ListVariants returns one page of variants, zero-based. A short or empty page
// means the scan reached end-of-data.
func (c *Client) ListVariants(ctx context.Context, page int, pageSize int) ([]models.ProductVariant, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Client.ListVariants")
	defer span.End()

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("is_parent", "false")

	var out listVariantsResponse
	if err := c.get(ctx, "/v1/products?"+query.Encode(), &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// ListParents returns one page of parent products with the total parent count
func (c *Client) ListParents(ctx context.Context, page int, pageSize int) ([]models.ParentProduct, int, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Client.ListParents")
	defer span.End()

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("is_parent", "true")

	var out listParentsResponse
	if err := c.get(ctx, "/v1/products?"+query.Encode(), &out); err != nil {
		return nil, 0, err
	}

	return out.Data, out.Total, nil
}

// GetParent retrieves a parent product by id
func (c *Client) GetParent(ctx context.Context, id models.FlexID) (*models.ParentProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Client.GetParent")
	defer span.End()

	var out parentResponse
	if err := c.get(ctx, "/v1/products/"+url.PathEscape(id.String()), &out); err != nil {
		return nil, err
	}
	if !out.Data.IsParent {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("parent product %s not found", id))
	}

	return &out.Data, nil
}

// GetVariant retrieves a variant by id
func (c *Client) GetVariant(ctx context.Context, id models.FlexID) (*models.ProductVariant, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Client.GetVariant")
	defer span.End()

	var out variantResponse
	if err := c.get(ctx, "/v1/products/"+url.PathEscape(id.String()), &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// CreateVariant creates a variant record
func (c *Client) CreateVariant(ctx context.Context, variant models.ProductVariant) (*models.ProductVariant, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Client.CreateVariant")
	defer span.End()

	var out variantResponse
	if err := c.post(ctx, "/v1/products", variant, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// CreateParent creates a parent product record
func (c *Client) CreateParent(ctx context.Context, parent models.ParentProduct) (*models.ParentProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Client.CreateParent")
	defer span.End()

	parent.IsParent = true
	var out parentResponse
	if err := c.post(ctx, "/v1/products", parent, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// UpdateParentVariants replaces a parent's variant id list
func (c *Client) UpdateParentVariants(ctx context.Context, parentID models.FlexID, variantIDs []models.FlexID) (*models.ParentProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Client.UpdateParentVariants")
	defer span.End()

	body := map[string]any{
		"variant_ids":   variantIDs,
		"variant_count": len(variantIDs),
	}

	var out parentResponse
	if err := c.put(ctx, "/v1/products/"+url.PathEscape(parentID.String()), body, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.http.Get(ctx, c.baseURL+path, c.headers())
	return c.handle(ctx, http.MethodGet, path, resp, err, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	resp, err := c.http.PostJSON(ctx, c.baseURL+path, body, c.headers())
	return c.handle(ctx, http.MethodPost, path, resp, err, out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	resp, err := c.http.PutJSON(ctx, c.baseURL+path, body, c.headers())
	return c.handle(ctx, http.MethodPut, path, resp, err, out)
}

func (c *Client) handle(ctx context.Context, method string, path string, resp *httpclient.Response, err error, out any) error {
	if err != nil {
		metrics.RecordHTTPRequest(method, "error", 0)
		return httperror.WrapError(http.StatusInternalServerError, err)
	}

	metrics.RecordHTTPRequest(method, strconv.Itoa(resp.StatusCode), resp.Duration.Seconds())

	if resp.StatusCode == http.StatusNotFound {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("catalog resource %s not found", path))
	}
	if !resp.IsSuccess() {
		c.logger.WithContext(ctx).WithFields(map[string]any{"status": resp.StatusCode, "path": path}).Error("Product catalog request failed")
		return httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("product catalog returned status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := resp.DecodeJSON(out); err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return nil
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{
		"Accept": "application/json",
	}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	return headers
}
