package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopbridge/backend/internal/domain/audit"
	"github.com/shopbridge/backend/internal/domain/order"
	"github.com/shopbridge/backend/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds the import guard's safety thresholds.
type Config struct {
	// DefaultLookback is the window used when CreatedAfter is omitted.
	DefaultLookback time.Duration
	// MaxLookback is the hard ceiling on how far back a sweep may reach.
	// An unbounded backfill once re-imported the marketplace's entire
	// historical order set into the storefront and cascaded into the
	// connected point-of-sale system; the ceiling is not runtime-tunable.
	MaxLookback time.Duration
	// SourceTagPrefix prefixes the per-order tag written on imported
	// storefront orders ("<prefix>-<marketplace order id>").
	SourceTagPrefix string
	// Fuzzy holds the heuristic duplicate-match thresholds.
	Fuzzy order.FuzzyMatchConfig
	// MinInterval is the minimum delay between storefront order creations.
	MinInterval time.Duration
	// HourlyCap bounds order creations per rolling hour. 0 disables.
	HourlyCap int
}

// DefaultConfig returns the guard's shipped thresholds.
func DefaultConfig() Config {
	return Config{
		DefaultLookback: 24 * time.Hour,
		MaxLookback:     7 * 24 * time.Hour,
		SourceTagPrefix: "ebay-order",
		Fuzzy:           order.DefaultFuzzyMatchConfig(),
		MinInterval:     2 * time.Second,
		HourlyCap:       60,
	}
}

// ---------------------------------------------------------------------------
// Importer
// ---------------------------------------------------------------------------

// Importer is the order import safety guard: it pulls new orders from the
// marketplace and materializes them on the storefront at most once, without
// reaching further back in time than intended.
type Importer struct {
	cfg         Config
	mappingRepo order.MappingRepository
	auditLog    audit.LogRepository
	storefront  platform.Storefront
	marketplace platform.Marketplace
	matcher     *order.FuzzyMatcher
	limiter     *RateLimiter
	logger      *zap.Logger

	// now is injectable for window-clamp tests.
	now func() time.Time
}

// NewImporter creates an import guard. The rate limiter is owned by the
// caller (the orchestrator) so its in-memory counters outlive individual
// sweeps within one process.
func NewImporter(
	cfg Config,
	mappingRepo order.MappingRepository,
	auditLog audit.LogRepository,
	storefront platform.Storefront,
	marketplace platform.Marketplace,
	limiter *RateLimiter,
	logger *zap.Logger,
) *Importer {
	if cfg.DefaultLookback <= 0 {
		cfg.DefaultLookback = 24 * time.Hour
	}
	if cfg.MaxLookback <= 0 {
		cfg.MaxLookback = 7 * 24 * time.Hour
	}
	if cfg.SourceTagPrefix == "" {
		cfg.SourceTagPrefix = "ebay-order"
	}
	return &Importer{
		cfg:         cfg,
		mappingRepo: mappingRepo,
		auditLog:    auditLog,
		storefront:  storefront,
		marketplace: marketplace,
		matcher:     order.NewFuzzyMatcher(cfg.Fuzzy, strings.SplitN(cfg.SourceTagPrefix, "-", 2)[0]),
		limiter:     limiter,
		logger:      logger,
	}
}

// sourceTag builds the per-order provenance tag.
func (i *Importer) sourceTag(marketplaceOrderID string) string {
	return i.cfg.SourceTagPrefix + "-" + marketplaceOrderID
}

func (i *Importer) clock() time.Time {
	if i.now != nil {
		return i.now()
	}
	return time.Now()
}

// effectiveWindow applies the date-window policy: default 24h lookback,
// clamped to the 7-day ceiling. Returns the window start and whether the
// requested value was clamped.
func (i *Importer) effectiveWindow(requested *time.Time) (time.Time, bool) {
	now := i.clock()
	floor := now.Add(-i.cfg.MaxLookback)
	if requested == nil {
		return now.Add(-i.cfg.DefaultLookback), false
	}
	if requested.Before(floor) {
		return floor, true
	}
	return *requested, false
}

// ImportOrders runs one import sweep. Orders are processed strictly
// sequentially in the order the marketplace returned them; one order's
// failure never aborts the batch. Only a failure to fetch the remote order
// list at all is returned as an error.
func (i *Importer) ImportOrders(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	// Mutations require an explicit affirmative signal, not merely the
	// absence of a negative one.
	dryRun := opts.DryRun || !opts.Confirm

	createdAfter, clamped := i.effectiveWindow(opts.CreatedAfter)
	result := &ImportResult{
		DryRun:                dryRun,
		EffectiveCreatedAfter: createdAfter,
		Errors:                make([]ImportError, 0),
		Warnings:              make([]ImportWarning, 0),
	}
	if clamped {
		i.logger.Warn("Requested import window exceeds ceiling, clamping",
			zap.Timep("requested", opts.CreatedAfter),
			zap.Time("effective", createdAfter),
			zap.Duration("max_lookback", i.cfg.MaxLookback),
		)
		result.Warnings = append(result.Warnings, ImportWarning{
			Detail: fmt.Sprintf("created_after clamped to %s (max lookback %s)",
				createdAfter.Format(time.RFC3339), i.cfg.MaxLookback),
		})
	}

	remoteOrders, err := i.marketplace.FetchOrders(ctx, createdAfter)
	if err != nil {
		return nil, fmt.Errorf("fetch marketplace orders: %w", err)
	}

	i.logger.Info("Import sweep started",
		zap.Int("candidate_orders", len(remoteOrders)),
		zap.Bool("dry_run", dryRun),
		zap.Time("created_after", createdAfter),
	)

	for idx := range remoteOrders {
		remote := &remoteOrders[idx]

		reason, matchedID, err := i.findDuplicate(ctx, remote, dryRun)
		if err != nil {
			// A failed dedup check must never fall through to creation.
			i.recordFailure(ctx, result, remote.OrderID, fmt.Sprintf("duplicate check: %v", err))
			continue
		}
		if reason != "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, ImportWarning{
				MarketplaceOrderID: remote.OrderID,
				Reason:             reason,
				MatchedEntityID:    matchedID,
			})
			i.logger.Info("Skipping duplicate marketplace order",
				zap.String("marketplace_order_id", remote.OrderID),
				zap.String("reason", string(reason)),
				zap.String("matched_entity_id", matchedID),
			)
			if !dryRun && reason != order.MatchReasonMappingExists {
				// The remote layers just linked a mapping; that write gets a trail entry.
				i.appendAudit(ctx, remote.OrderID, audit.OutcomeSuccess,
					fmt.Sprintf("duplicate skipped (%s), linked to storefront order %s", reason, matchedID))
			}
			continue
		}

		if dryRun {
			result.Imported++
			i.logger.Info("Dry run: would import order",
				zap.String("marketplace_order_id", remote.OrderID),
				zap.String("total", remote.Total.String()),
			)
			continue
		}

		if err := i.limiter.Reserve(ctx); err != nil {
			if errors.Is(err, ErrHourlyCapReached) {
				// Stop creating; the window overlap picks these up next run.
				result.Warnings = append(result.Warnings, ImportWarning{
					Detail: fmt.Sprintf("hourly creation cap reached, %d orders deferred", len(remoteOrders)-idx),
				})
				i.logger.Warn("Hourly creation cap reached, deferring remaining orders",
					zap.Int("deferred", len(remoteOrders)-idx),
				)
				break
			}
			return result, err // context cancelled mid-wait
		}

		i.importOne(ctx, result, remote)
	}

	i.logger.Info("Import sweep finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Bool("dry_run", dryRun),
	)
	return result, nil
}

// findDuplicate runs the three dedup layers in order, short-circuiting on
// the first match. In live mode, matches found remotely (layers two and
// three) write a linked mapping row so the next sweep short-circuits at the
// cheap local layer.
func (i *Importer) findDuplicate(ctx context.Context, remote *platform.MarketplaceOrder, dryRun bool) (order.MatchReason, string, error) {
	// Layer 1: local mapping table. Cheap, authoritative once present.
	exists, err := i.mappingRepo.ExistsByMarketplaceOrderID(ctx, remote.OrderID)
	if err != nil {
		return "", "", err
	}
	if exists {
		return order.MatchReasonMappingExists, remote.OrderID, nil
	}

	// Layer 2: storefront orders already tagged with this marketplace id.
	tagged, err := i.storefront.SearchOrdersByTag(ctx, i.sourceTag(remote.OrderID))
	if err != nil {
		return "", "", err
	}
	if len(tagged) > 0 {
		if !dryRun {
			i.linkExisting(ctx, remote.OrderID, &tagged[0])
		}
		return order.MatchReasonTagFound, tagged[0].ID, nil
	}

	// Layer 3: fuzzy match on window + amount + provenance heuristics.
	window := i.cfg.Fuzzy.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	candidates, err := i.storefront.SearchOrdersByDateRange(ctx,
		remote.CreatedAt.Add(-window), remote.CreatedAt.Add(window))
	if err != nil {
		return "", "", err
	}
	for idx := range candidates {
		if i.matcher.Matches(remote, &candidates[idx]) {
			if !dryRun {
				i.linkExisting(ctx, remote.OrderID, &candidates[idx])
			}
			return order.MatchReasonFuzzy, candidates[idx].ID, nil
		}
	}
	return "", "", nil
}

// linkExisting records a mapping for an already-existing storefront order so
// future sweeps dedup at the local layer. A write failure here is logged but
// not fatal: the remote evidence that produced the match is still there.
func (i *Importer) linkExisting(ctx context.Context, marketplaceOrderID string, existing *platform.StorefrontOrder) {
	mapping, err := order.NewMapping(marketplaceOrderID, existing.ID, existing.Name, order.MappingStatusLinked)
	if err != nil {
		return
	}
	if err := i.mappingRepo.Save(ctx, mapping); err != nil && !errors.Is(err, order.ErrMappingAlreadyExists) {
		i.logger.Warn("Failed to record linked order mapping",
			zap.String("marketplace_order_id", marketplaceOrderID),
			zap.Error(err),
		)
	}
}

// importOne creates the storefront order, records the mapping and audits the
// outcome. All failure paths isolate to this order.
func (i *Importer) importOne(ctx context.Context, result *ImportResult, remote *platform.MarketplaceOrder) {
	req := i.buildCreateRequest(remote)

	created, err := i.storefront.CreateOrder(ctx, req)
	if err != nil {
		if errors.Is(err, platform.ErrOrderAlreadyExists) {
			// Lost a race with another actor; the desired end state exists.
			result.Skipped++
			result.Warnings = append(result.Warnings, ImportWarning{
				MarketplaceOrderID: remote.OrderID,
				Reason:             order.MatchReasonTagFound,
				Detail:             "storefront reported order already exists",
			})
			i.appendAudit(ctx, remote.OrderID, audit.OutcomeSuccess, "order already existed on storefront")
			return
		}
		i.recordFailure(ctx, result, remote.OrderID, err.Error())
		return
	}

	mapping, err := order.NewMapping(remote.OrderID, created.ID, created.Name, order.MappingStatusImported)
	if err == nil {
		err = i.mappingRepo.Save(ctx, mapping)
	}
	if err != nil && !errors.Is(err, order.ErrMappingAlreadyExists) {
		// The storefront order exists but the dedup row does not; surface
		// loudly. The next sweep relies on the tag layer to catch this.
		i.recordFailure(ctx, result, remote.OrderID,
			fmt.Sprintf("order %s created but mapping write failed: %v", created.ID, err))
		return
	}

	result.Imported++
	i.appendAudit(ctx, remote.OrderID, audit.OutcomeSuccess,
		fmt.Sprintf("imported as storefront order %s (%s)", created.ID, created.Name))
	i.logger.Info("Imported marketplace order",
		zap.String("marketplace_order_id", remote.OrderID),
		zap.String("storefront_order_id", created.ID),
		zap.String("storefront_order_name", created.Name),
	)
}

// buildCreateRequest maps a marketplace order onto a storefront create
// request: recipient name split on the first space, address passed through,
// line items 1:1, shipping as a single line. Notifications are suppressed by
// the storefront adapter on every order it creates.
func (i *Importer) buildCreateRequest(remote *platform.MarketplaceOrder) *platform.CreateOrderRequest {
	first, last := splitName(remote.ShipTo.FullName)
	items := make([]platform.OrderLineInput, 0, len(remote.Items))
	for _, li := range remote.Items {
		items = append(items, platform.OrderLineInput{
			SKU:       li.SKU,
			Title:     li.Title,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		})
	}
	return &platform.CreateOrderRequest{
		SourceTag:    i.sourceTag(remote.OrderID),
		Note:         fmt.Sprintf("Imported from eBay. Buyer: %s", remote.BuyerHandle),
		ShipTo:       remote.ShipTo,
		FirstName:    first,
		LastName:     last,
		Items:        items,
		ShippingCost: remote.ShippingCost,
		Currency:     remote.Currency,
	}
}

// splitName splits a full name on the first space.
func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func (i *Importer) recordFailure(ctx context.Context, result *ImportResult, marketplaceOrderID, message string) {
	result.Failed++
	result.Errors = append(result.Errors, ImportError{
		MarketplaceOrderID: marketplaceOrderID,
		Message:            message,
	})
	i.appendAudit(ctx, marketplaceOrderID, audit.OutcomeFailed, message)
	i.logger.Error("Order import failed",
		zap.String("marketplace_order_id", marketplaceOrderID),
		zap.String("detail", message),
	)
}

func (i *Importer) appendAudit(ctx context.Context, entityID string, outcome audit.Outcome, detail string) {
	entry := audit.NewEntry(audit.DirectionMarketplaceToStorefront, audit.EntityTypeOrder, entityID, outcome, detail)
	if err := i.auditLog.Append(ctx, entry); err != nil {
		i.logger.Warn("Failed to append sync log entry",
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}
