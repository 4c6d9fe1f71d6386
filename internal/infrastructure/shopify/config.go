package shopify

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds configuration for the Shopify Admin REST API.
type Config struct {
	// ShopDomain is the myshopify domain, e.g. "acme-vintage.myshopify.com".
	ShopDomain string
	// AccessToken is the Admin API access token for the custom app.
	AccessToken string
	// APIVersion is the Admin API version, e.g. "2024-01".
	APIVersion string
	// BaseURL overrides the https://<shop> endpoint. Tests point it at a
	// local server; production leaves it empty.
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

// DefaultAPIVersion is used when the config does not pin one.
const DefaultAPIVersion = "2024-01"

var (
	ErrConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrConfigMissingAccessToken = errors.New("shopify: access token is required")
)

// NewConfig creates a Shopify configuration with defaults.
func NewConfig(shopDomain, accessToken string) *Config {
	return &Config{
		ShopDomain:     shopDomain,
		AccessToken:    accessToken,
		APIVersion:     DefaultAPIVersion,
		TimeoutSeconds: 30,
	}
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.ShopDomain == "" {
		return ErrConfigMissingShopDomain
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// apiURL builds an Admin API URL for the given resource path, e.g.
// apiURL("orders.json") -> https://<shop>/admin/api/<version>/orders.json.
func (c *Config) apiURL(resource string) string {
	base := c.BaseURL
	if base == "" {
		base = "https://" + c.ShopDomain
	}
	return fmt.Sprintf("%s/admin/api/%s/%s", strings.TrimRight(base, "/"), c.APIVersion, resource)
}
