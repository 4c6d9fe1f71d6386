package shopify

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Order payloads
// ---------------------------------------------------------------------------

// Order is the Admin REST order resource, limited to the fields the sync
// core inspects.
type Order struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	CreatedAt  time.Time   `json:"created_at"`
	TotalPrice string      `json:"total_price"`
	Currency   string      `json:"currency"`
	Tags       string      `json:"tags"`
	Note       string      `json:"note"`
	LineItems  []OrderLine `json:"line_items,omitempty"`
}

// TagList splits Shopify's comma-separated tag string.
func (o *Order) TagList() []string {
	if o.Tags == "" {
		return nil
	}
	parts := strings.Split(o.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// OrderLine is one line item on an order.
type OrderLine struct {
	SKU      string `json:"sku,omitempty"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	// RequiresShipping defaults to true for physical goods.
	RequiresShipping bool `json:"requires_shipping"`
}

// ShippingAddress is the order's shipping address payload.
type ShippingAddress struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country_code,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ShippingLine carries the shipping charge as a single line.
type ShippingLine struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// NewOrder is the create-order request payload. Notification suppression is
// always on: imported orders must never re-email the buyer.
type NewOrder struct {
	LineItems            []OrderLine      `json:"line_items"`
	ShippingAddress      *ShippingAddress `json:"shipping_address,omitempty"`
	ShippingLines        []ShippingLine   `json:"shipping_lines,omitempty"`
	Tags                 string           `json:"tags,omitempty"`
	Note                 string           `json:"note,omitempty"`
	Currency             string           `json:"currency,omitempty"`
	FinancialStatus      string           `json:"financial_status,omitempty"`
	SendReceipt          bool             `json:"send_receipt"`
	SendFulfillmentEmail bool             `json:"send_fulfillment_receipt"`
	InventoryBehaviour   string           `json:"inventory_behaviour,omitempty"`
}

type createOrderRequest struct {
	Order NewOrder `json:"order"`
}

type orderResponse struct {
	Order *Order `json:"order"`
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

// ---------------------------------------------------------------------------
// Product payloads
// ---------------------------------------------------------------------------

// Product is the Admin REST product resource.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	PublishedAt *string   `json:"published_at"`
	Images      []Image   `json:"images,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant is one sellable variant of a product.
type Variant struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// Image is one product image.
type Image struct {
	ID       int64  `json:"id"`
	Src      string `json:"src"`
	Position int    `json:"position"`
}

type productResponse struct {
	Product *Product `json:"product"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

type imagesResponse struct {
	Images []Image `json:"images"`
}

type imageResponse struct {
	Image *Image `json:"image"`
}

// errorResponse is Shopify's error envelope. "errors" may be a string, a
// list, or a field map; raw JSON keeps all three readable.
type errorResponse struct {
	Errors any `json:"errors"`
}
