package ebay

import (
	"context"
	"fmt"

	"github.com/shopbridge/backend/internal/domain/platform"
)

// StaticTokenProvider serves a fixed OAuth user token from configuration.
// Suitable for long-lived tokens managed outside the process; a refreshing
// provider can replace it behind the same interface.
type StaticTokenProvider struct {
	token string
}

var _ platform.TokenProvider = (*StaticTokenProvider)(nil)

// NewStaticTokenProvider creates a provider for a fixed token
func NewStaticTokenProvider(token string) (*StaticTokenProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: ebay token", platform.ErrNotConfigured)
	}
	return &StaticTokenProvider{token: token}, nil
}

// Token returns the configured token
func (p *StaticTokenProvider) Token(_ context.Context) (string, error) {
	return p.token, nil
}
