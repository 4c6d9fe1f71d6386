package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopbridge/backend/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// Duplicate detection
// ---------------------------------------------------------------------------

// MatchReason identifies which dedup layer matched a remote order.
type MatchReason string

const (
	// MatchReasonMappingExists: the local mapping table already has the
	// marketplace order id. Cheap and authoritative.
	MatchReasonMappingExists MatchReason = "order_mapping_exists"
	// MatchReasonTagFound: a storefront order already carries the source tag
	// for this marketplace order id.
	MatchReasonTagFound MatchReason = "source_tag_found"
	// MatchReasonFuzzy: a storefront order matched on creation window, total
	// amount and marketplace provenance heuristics.
	MatchReasonFuzzy MatchReason = "fuzzy_match"
)

// FuzzyMatchConfig holds the heuristic thresholds. The semantics are fixed;
// only the thresholds are tunable, and loosening them risks re-importing
// orders the layers exist to block.
type FuzzyMatchConfig struct {
	// Window is how far a storefront order's creation time may differ from
	// the marketplace order's.
	Window time.Duration
	// AmountToleranceMinorUnits is the allowed total difference, expressed
	// in minor currency units (1 = one cent).
	AmountToleranceMinorUnits int64
}

// DefaultFuzzyMatchConfig returns the thresholds the dedup layer shipped
// with: ±24h and one minor currency unit.
func DefaultFuzzyMatchConfig() FuzzyMatchConfig {
	return FuzzyMatchConfig{
		Window:                    24 * time.Hour,
		AmountToleranceMinorUnits: 1,
	}
}

// FuzzyMatcher decides whether a storefront order is plausibly the same sale
// as a marketplace order. Pure; no I/O.
type FuzzyMatcher struct {
	cfg FuzzyMatchConfig
	// sourceTagPrefix marks storefront orders imported from the marketplace
	// (e.g. "ebay"). Any tag with this prefix counts as provenance.
	sourceTagPrefix string
}

// NewFuzzyMatcher creates a matcher with the given thresholds.
func NewFuzzyMatcher(cfg FuzzyMatchConfig, sourceTagPrefix string) *FuzzyMatcher {
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	if cfg.AmountToleranceMinorUnits <= 0 {
		cfg.AmountToleranceMinorUnits = 1
	}
	return &FuzzyMatcher{cfg: cfg, sourceTagPrefix: sourceTagPrefix}
}

// Matches reports whether candidate looks like a duplicate of remote:
// created within the window, total equal within tolerance, and either tagged
// as marketplace-sourced or carrying the buyer handle in its note.
func (m *FuzzyMatcher) Matches(remote *platform.MarketplaceOrder, candidate *platform.StorefrontOrder) bool {
	delta := candidate.CreatedAt.Sub(remote.CreatedAt)
	if delta < 0 {
		delta = -delta
	}
	if delta > m.cfg.Window {
		return false
	}

	if !m.amountsClose(remote.Total, candidate.TotalPrice) {
		return false
	}

	if m.hasSourceTag(candidate) {
		return true
	}
	return remote.BuyerHandle != "" &&
		strings.Contains(strings.ToLower(candidate.Note), strings.ToLower(remote.BuyerHandle))
}

// amountsClose compares totals within the configured minor-unit tolerance.
func (m *FuzzyMatcher) amountsClose(a, b decimal.Decimal) bool {
	tolerance := decimal.New(m.cfg.AmountToleranceMinorUnits, -2)
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// hasSourceTag reports whether the order carries any marketplace source tag.
func (m *FuzzyMatcher) hasSourceTag(o *platform.StorefrontOrder) bool {
	if m.sourceTagPrefix == "" {
		return false
	}
	for _, t := range o.Tags {
		if strings.HasPrefix(strings.ToLower(t), strings.ToLower(m.sourceTagPrefix)) {
			return true
		}
	}
	return false
}
