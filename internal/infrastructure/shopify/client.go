package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopbridge/backend/internal/domain/platform"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client implements the storefront port against the Shopify Admin REST API.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a Shopify client with the given configuration.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Order operations
// ---------------------------------------------------------------------------

// CreateOrder creates a storefront order for an imported marketplace order.
// Buyer notifications are always suppressed: an import must never re-email
// the buyer about a purchase they made elsewhere.
func (c *Client) CreateOrder(ctx context.Context, req *platform.CreateOrderRequest) (*platform.StorefrontOrder, error) {
	lines := make([]OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, OrderLine{
			SKU:              item.SKU,
			Title:            item.Title,
			Quantity:         item.Quantity,
			Price:            item.UnitPrice.StringFixed(2),
			RequiresShipping: true,
		})
	}

	payload := createOrderRequest{Order: NewOrder{
		LineItems: lines,
		ShippingAddress: &ShippingAddress{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Address1:  req.ShipTo.Line1,
			Address2:  req.ShipTo.Line2,
			City:      req.ShipTo.City,
			Province:  req.ShipTo.Region,
			Zip:       req.ShipTo.PostalCode,
			Country:   req.ShipTo.CountryCode,
			Phone:     req.ShipTo.Phone,
		},
		Tags:               req.SourceTag,
		Note:               req.Note,
		Currency:           req.Currency,
		FinancialStatus:    "paid",
		InventoryBehaviour: "decrement_ignoring_policy",
	}}
	if req.ShippingCost.IsPositive() {
		payload.Order.ShippingLines = []ShippingLine{
			{Title: "Marketplace shipping", Price: req.ShippingCost.StringFixed(2)},
		}
	}

	var resp orderResponse
	if err := c.doJSON(ctx, http.MethodPost, c.config.apiURL("orders.json"), payload, &resp); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, fmt.Errorf("shopify: create order returned no order")
	}
	order := convertOrder(resp.Order)
	return &order, nil
}

// SearchOrdersByTag returns recent orders carrying the given tag. The Admin
// REST API has no tag filter, so this fetches a recent page and filters
// locally; per-order source tags are unique, so at most one order matches.
func (c *Client) SearchOrdersByTag(ctx context.Context, tag string) ([]platform.StorefrontOrder, error) {
	q := url.Values{}
	q.Set("status", "any")
	q.Set("limit", "250")
	q.Set("fields", "id,name,created_at,total_price,currency,tags,note")

	var resp ordersResponse
	if err := c.doJSON(ctx, http.MethodGet, c.config.apiURL("orders.json")+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	matches := make([]platform.StorefrontOrder, 0, 1)
	for i := range resp.Orders {
		for _, t := range resp.Orders[i].TagList() {
			if t == tag {
				matches = append(matches, convertOrder(&resp.Orders[i]))
				break
			}
		}
	}
	return matches, nil
}

// SearchOrdersByDateRange returns orders created inside [from, to].
func (c *Client) SearchOrdersByDateRange(ctx context.Context, from, to time.Time) ([]platform.StorefrontOrder, error) {
	q := url.Values{}
	q.Set("status", "any")
	q.Set("limit", "250")
	q.Set("created_at_min", from.UTC().Format(time.RFC3339))
	q.Set("created_at_max", to.UTC().Format(time.RFC3339))
	q.Set("fields", "id,name,created_at,total_price,currency,tags,note")

	var resp ordersResponse
	if err := c.doJSON(ctx, http.MethodGet, c.config.apiURL("orders.json")+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	orders := make([]platform.StorefrontOrder, 0, len(resp.Orders))
	for i := range resp.Orders {
		orders = append(orders, convertOrder(&resp.Orders[i]))
	}
	return orders, nil
}

// ---------------------------------------------------------------------------
// Product operations
// ---------------------------------------------------------------------------

// GetProduct fetches a product's detail record.
func (c *Client) GetProduct(ctx context.Context, productID string) (*platform.StorefrontProduct, error) {
	var resp productResponse
	err := c.doJSON(ctx, http.MethodGet, c.config.apiURL("products/"+url.PathEscape(productID)+".json"), nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, platform.ErrNotFound
	}

	p := resp.Product
	images := make([]platform.ProductImage, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, platform.ProductImage{
			ID:  strconv.FormatInt(img.ID, 10),
			URL: img.Src,
		})
	}
	return &platform.StorefrontProduct{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Description: p.BodyHTML,
		ProductType: p.ProductType,
		Published:   p.PublishedAt != nil,
		Images:      images,
	}, nil
}

// GetVariantQuantity returns the storefront inventory quantity for a SKU.
func (c *Client) GetVariantQuantity(ctx context.Context, sku string) (int, error) {
	q := url.Values{}
	q.Set("limit", "250")
	q.Set("fields", "id,variants")

	var resp productsResponse
	if err := c.doJSON(ctx, http.MethodGet, c.config.apiURL("products.json")+"?"+q.Encode(), nil, &resp); err != nil {
		return 0, err
	}
	for i := range resp.Products {
		for _, v := range resp.Products[i].Variants {
			if v.SKU == sku {
				return v.InventoryQuantity, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: variant with sku %s", platform.ErrNotFound, sku)
}

// UpdateProductContent pushes a new title and description.
func (c *Client) UpdateProductContent(ctx context.Context, productID, title, description string) error {
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		return fmt.Errorf("shopify: invalid product id %q", productID)
	}
	payload := map[string]any{
		"product": map[string]any{
			"id":        id,
			"title":     title,
			"body_html": description,
		},
	}
	return c.doJSON(ctx, http.MethodPut, c.config.apiURL("products/"+productID+".json"), payload, nil)
}

// ListProductImages returns the product's images in position order.
func (c *Client) ListProductImages(ctx context.Context, productID string) ([]platform.ProductImage, error) {
	var resp imagesResponse
	err := c.doJSON(ctx, http.MethodGet, c.config.apiURL("products/"+url.PathEscape(productID)+"/images.json"), nil, &resp)
	if err != nil {
		return nil, err
	}
	images := make([]platform.ProductImage, 0, len(resp.Images))
	for _, img := range resp.Images {
		images = append(images, platform.ProductImage{
			ID:  strconv.FormatInt(img.ID, 10),
			URL: img.Src,
		})
	}
	return images, nil
}

// DeleteProductImage removes one image from a product.
func (c *Client) DeleteProductImage(ctx context.Context, productID, imageID string) error {
	resource := "products/" + url.PathEscape(productID) + "/images/" + url.PathEscape(imageID) + ".json"
	return c.doJSON(ctx, http.MethodDelete, c.config.apiURL(resource), nil, nil)
}

// UploadProductImage appends one image to a product by source URL.
func (c *Client) UploadProductImage(ctx context.Context, productID, imageURL string) (*platform.ProductImage, error) {
	payload := map[string]any{"image": map[string]any{"src": imageURL}}

	var resp imageResponse
	resource := "products/" + url.PathEscape(productID) + "/images.json"
	if err := c.doJSON(ctx, http.MethodPost, c.config.apiURL(resource), payload, &resp); err != nil {
		return nil, err
	}
	if resp.Image == nil {
		return nil, fmt.Errorf("shopify: image upload returned no image")
	}
	return &platform.ProductImage{
		ID:  strconv.FormatInt(resp.Image.ID, 10),
		URL: resp.Image.Src,
	}, nil
}

// PublishProduct flips a product to publicly visible.
func (c *Client) PublishProduct(ctx context.Context, productID string) error {
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		return fmt.Errorf("shopify: invalid product id %q", productID)
	}
	payload := map[string]any{
		"product": map[string]any{
			"id":        id,
			"status":    "active",
			"published": true,
		},
	}
	return c.doJSON(ctx, http.MethodPut, c.config.apiURL("products/"+productID+".json"), payload, nil)
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// doJSON performs one Admin API request. A nil out skips decoding.
func (c *Client) doJSON(ctx context.Context, method, rawURL string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("shopify: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("shopify: create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("shopify: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("shopify: parse response: %w", err)
	}
	return nil
}

// mapError converts an Admin API error body into a typed error where one of
// the known idempotent conflicts applies.
func (c *Client) mapError(status int, body []byte) error {
	var envelope errorResponse
	detail := string(body)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Errors != nil {
		detail = fmt.Sprintf("%v", envelope.Errors)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: HTTP 404: %s", platform.ErrNotFound, detail)
	}
	if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(detail), "already exists") {
		return fmt.Errorf("%w: %s", platform.ErrOrderAlreadyExists, detail)
	}
	return fmt.Errorf("shopify: HTTP %d: %s", status, detail)
}

// convertOrder maps the REST payload onto the boundary type the sync core
// operates on.
func convertOrder(o *Order) platform.StorefrontOrder {
	total, err := decimal.NewFromString(o.TotalPrice)
	if err != nil {
		total = decimal.Zero
	}
	return platform.StorefrontOrder{
		ID:         strconv.FormatInt(o.ID, 10),
		Name:       o.Name,
		CreatedAt:  o.CreatedAt,
		TotalPrice: total,
		Currency:   o.Currency,
		Tags:       o.TagList(),
		Note:       o.Note,
	}
}

// Ensure Client implements the storefront port
var _ platform.Storefront = (*Client)(nil)
