package ebay

import (
	"errors"
	"strings"
)

// Config holds configuration for the eBay Sell APIs.
type Config struct {
	// BaseURL is the API host. Production and sandbox hosts are known; tests
	// point this at a local server.
	BaseURL string
	// MarketplaceID is the eBay marketplace, e.g. "EBAY_US".
	MarketplaceID string
	// IsSandbox selects the sandbox host when BaseURL is empty.
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

const (
	// ProductionAPIURL is the production Sell API host.
	ProductionAPIURL = "https://api.ebay.com"
	// SandboxAPIURL is the sandbox Sell API host.
	SandboxAPIURL = "https://api.sandbox.ebay.com"
	// DefaultMarketplaceID is used when the config does not pin one.
	DefaultMarketplaceID = "EBAY_US"
)

// ErrConfigMissingMarketplace is returned for a blank marketplace id after
// defaulting, which only happens on explicit whitespace.
var ErrConfigMissingMarketplace = errors.New("ebay: marketplace id is required")

// NewConfig creates an eBay configuration with production defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:        ProductionAPIURL,
		MarketplaceID:  DefaultMarketplaceID,
		TimeoutSeconds: 30,
	}
}

// NewSandboxConfig creates an eBay configuration for the sandbox.
func NewSandboxConfig() *Config {
	return &Config{
		BaseURL:        SandboxAPIURL,
		MarketplaceID:  DefaultMarketplaceID,
		IsSandbox:      true,
		TimeoutSeconds: 30,
	}
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		if c.IsSandbox {
			c.BaseURL = SandboxAPIURL
		} else {
			c.BaseURL = ProductionAPIURL
		}
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.MarketplaceID == "" {
		c.MarketplaceID = DefaultMarketplaceID
	}
	if strings.TrimSpace(c.MarketplaceID) == "" {
		return ErrConfigMissingMarketplace
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
