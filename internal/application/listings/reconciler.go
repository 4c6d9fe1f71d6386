package listings

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shopbridge/backend/internal/domain/audit"
	"github.com/shopbridge/backend/internal/domain/listing"
	"github.com/shopbridge/backend/internal/domain/platform"
	"github.com/shopbridge/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds the reconciler's pacing knobs.
type Config struct {
	// BatchDelay is the pause inserted between remote calls during a
	// reconcile-all sweep, to stay under the marketplace's rate limits.
	BatchDelay time.Duration
}

// DefaultConfig returns the reconciler's shipped settings.
func DefaultConfig() Config {
	return Config{BatchDelay: 500 * time.Millisecond}
}

// ---------------------------------------------------------------------------
// Reconciler
// ---------------------------------------------------------------------------

// Reconciler keeps a marketplace listing's published/ended state consistent
// with the storefront's inventory quantity for the same SKU. It handles the
// marketplace asymmetry that a still-published listing rejects a quantity of
// zero: ending a listing withdraws the offer first, and only then writes the
// zero quantity.
type Reconciler struct {
	cfg         Config
	mappingRepo listing.MappingRepository
	auditLog    audit.LogRepository
	storefront  platform.Storefront
	marketplace platform.Marketplace
	logger      *zap.Logger

	// sleep is injectable so batch tests don't wait out real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewReconciler creates a listing lifecycle reconciler.
func NewReconciler(
	cfg Config,
	mappingRepo listing.MappingRepository,
	auditLog audit.LogRepository,
	storefront platform.Storefront,
	marketplace platform.Marketplace,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		cfg:         cfg,
		mappingRepo: mappingRepo,
		auditLog:    auditLog,
		storefront:  storefront,
		marketplace: marketplace,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ReconcileInventory drives one SKU toward the target quantity. Target zero
// ends the listing; a positive target on an ended mapping relists it; a
// positive target on an active mapping is an ordinary quantity update.
// Failures are reported in the result, not returned: only a missing mapping
// or an unreachable inventory item surface as errors.
func (r *Reconciler) ReconcileInventory(ctx context.Context, sku string, targetQuantity int, opts ReconcileOptions) (*ReconcileResult, error) {
	if targetQuantity < 0 {
		return nil, fmt.Errorf("%w: negative target quantity %d for sku %s", shared.ErrInvalidInput, targetQuantity, sku)
	}

	mapping, err := r.mappingRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("load mapping for sku %s: %w", sku, err)
	}

	item, err := r.marketplace.GetInventoryItem(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory item %s: %w", sku, err)
	}

	result := &ReconcileResult{
		SKU:       sku,
		DryRun:    opts.DryRun,
		Quantity:  targetQuantity,
		ListingID: mapping.ListingID,
	}

	offer, err := r.currentOffer(ctx, sku, mapping)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	published := offer != nil && offer.Status.IsPublished()

	// No-op guard: remote quantity already matches and no forced transition
	// is pending. No mutating remote call is made.
	if item.Quantity == targetQuantity &&
		!(targetQuantity == 0 && published) &&
		!(targetQuantity > 0 && mapping.Status == listing.StatusEnded) {
		result.Success = true
		result.Action = ActionUnchanged
		return result, nil
	}

	switch {
	case targetQuantity == 0:
		r.end(ctx, result, mapping, offer, published)
	case mapping.Status == listing.StatusEnded:
		r.relist(ctx, result, mapping, offer, targetQuantity)
	default:
		r.updateQuantity(ctx, result, mapping, targetQuantity)
	}
	return result, nil
}

// currentOffer resolves the marketplace offer backing the mapping. A SKU with
// no offers at all is not an error here; the relist path recreates one.
func (r *Reconciler) currentOffer(ctx context.Context, sku string, mapping *listing.Mapping) (*platform.Offer, error) {
	offers, err := r.marketplace.GetOffersBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("fetch offers for sku %s: %w", sku, err)
	}
	for i := range offers {
		if mapping.OfferID != "" && offers[i].OfferID == mapping.OfferID {
			return &offers[i], nil
		}
	}
	if len(offers) > 0 {
		return &offers[0], nil
	}
	return nil, nil
}

// end transitions the listing to ended: withdraw first, then zero the
// quantity. Withdrawal of an already-unpublished offer is idempotent success;
// a zero-quantity write rejection after withdrawal is logged and tolerated
// because the listing is no longer live either way.
func (r *Reconciler) end(ctx context.Context, result *ReconcileResult, mapping *listing.Mapping, offer *platform.Offer, published bool) {
	result.Action = ActionEnded
	if result.DryRun {
		result.Success = true
		r.logger.Info("Dry run: would end listing",
			zap.String("sku", mapping.SKU),
			zap.String("listing_id", mapping.ListingID),
		)
		return
	}

	if published {
		if err := r.marketplace.WithdrawOffer(ctx, offer.OfferID); err != nil {
			if !platform.IsIdempotentConflict(err) {
				r.fail(ctx, result, mapping, fmt.Sprintf("withdraw offer %s: %v", offer.OfferID, err))
				return
			}
			r.logger.Info("Offer was already withdrawn",
				zap.String("sku", mapping.SKU),
				zap.String("offer_id", offer.OfferID),
			)
		}
	}

	// Quantity write comes strictly after withdrawal. Failure here is
	// non-fatal: the withdrawal already took the listing offline.
	if err := r.marketplace.SetInventoryQuantity(ctx, mapping.SKU, 0); err != nil {
		r.logger.Warn("Zero-quantity write rejected after withdrawal",
			zap.String("sku", mapping.SKU),
			zap.Error(err),
		)
	}

	if mapping.Status != listing.StatusEnded {
		if err := mapping.End(); err != nil {
			r.fail(ctx, result, mapping, fmt.Sprintf("mark ended: %v", err))
			return
		}
		if err := r.mappingRepo.Save(ctx, mapping); err != nil {
			r.fail(ctx, result, mapping, fmt.Sprintf("save mapping: %v", err))
			return
		}
	}

	result.Success = true
	r.appendAudit(ctx, mapping.SKU, audit.OutcomeSuccess, "listing ended")
	r.logger.Info("Listing ended",
		zap.String("sku", mapping.SKU),
		zap.String("listing_id", mapping.ListingID),
	)
}

// relist brings an ended mapping back to active: quantity first, then
// republish the existing offer, falling back to creating a replacement offer
// from stored business policies when the original is gone remotely. On total
// failure the mapping stays ended so a later retry is safe.
func (r *Reconciler) relist(ctx context.Context, result *ReconcileResult, mapping *listing.Mapping, offer *platform.Offer, targetQuantity int) {
	result.Action = ActionRelisted
	if result.DryRun {
		result.Success = true
		r.logger.Info("Dry run: would relist",
			zap.String("sku", mapping.SKU),
			zap.Int("quantity", targetQuantity),
		)
		return
	}

	if err := r.marketplace.SetInventoryQuantity(ctx, mapping.SKU, targetQuantity); err != nil {
		r.fail(ctx, result, mapping, fmt.Sprintf("set quantity to %d: %v", targetQuantity, err))
		return
	}

	offerID := mapping.OfferID
	if offerID == "" && offer != nil {
		offerID = offer.OfferID
	}

	if offerID != "" {
		listingID, err := r.marketplace.PublishOffer(ctx, offerID)
		if err == nil {
			if err := mapping.Relist(listingID); err != nil {
				r.fail(ctx, result, mapping, fmt.Sprintf("mark relisted: %v", err))
				return
			}
			if err := r.mappingRepo.Save(ctx, mapping); err != nil {
				r.fail(ctx, result, mapping, fmt.Sprintf("save mapping: %v", err))
				return
			}
			result.Success = true
			result.ListingID = listingID
			r.appendAudit(ctx, mapping.SKU, audit.OutcomeSuccess,
				fmt.Sprintf("listing relisted as %s", listingID))
			r.logger.Info("Republished existing offer",
				zap.String("sku", mapping.SKU),
				zap.String("listing_id", listingID),
			)
			return
		}
		r.logger.Warn("Republish failed, creating replacement offer",
			zap.String("sku", mapping.SKU),
			zap.String("offer_id", offerID),
			zap.Error(err),
		)
	}

	r.recreateOffer(ctx, result, mapping, targetQuantity)
}

// recreateOffer builds a brand-new offer from the merchant's stored business
// policies, defaulting price and category from the previous listing.
func (r *Reconciler) recreateOffer(ctx context.Context, result *ReconcileResult, mapping *listing.Mapping, targetQuantity int) {
	policies, err := r.marketplace.GetBusinessPolicies(ctx)
	if err != nil {
		r.fail(ctx, result, mapping, fmt.Sprintf("fetch business policies: %v", err))
		return
	}

	req := &platform.CreateOfferRequest{
		SKU:      mapping.SKU,
		Quantity: targetQuantity,
		Price:    mapping.Price,
		Currency: mapping.Currency,
		Policies: *policies,
	}
	newOfferID, err := r.marketplace.CreateOffer(ctx, req)
	if err != nil {
		r.fail(ctx, result, mapping, fmt.Sprintf("create replacement offer: %v", err))
		return
	}

	listingID, err := r.marketplace.PublishOffer(ctx, newOfferID)
	if err != nil {
		r.fail(ctx, result, mapping, fmt.Sprintf("publish replacement offer %s: %v", newOfferID, err))
		return
	}

	if err := mapping.RelistWithNewOffer(newOfferID, listingID); err != nil {
		r.fail(ctx, result, mapping, fmt.Sprintf("mark relisted: %v", err))
		return
	}
	if err := r.mappingRepo.Save(ctx, mapping); err != nil {
		r.fail(ctx, result, mapping, fmt.Sprintf("save mapping: %v", err))
		return
	}

	result.Success = true
	result.ListingID = listingID
	r.appendAudit(ctx, mapping.SKU, audit.OutcomeSuccess,
		fmt.Sprintf("listing recreated as %s (offer %s)", listingID, newOfferID))
	r.logger.Info("Created and published replacement offer",
		zap.String("sku", mapping.SKU),
		zap.String("offer_id", newOfferID),
		zap.String("listing_id", listingID),
	)
}

// updateQuantity is the ordinary path: active listing, nonzero target, only
// the number changes.
func (r *Reconciler) updateQuantity(ctx context.Context, result *ReconcileResult, mapping *listing.Mapping, targetQuantity int) {
	result.Action = ActionUpdated
	if result.DryRun {
		result.Success = true
		r.logger.Info("Dry run: would update quantity",
			zap.String("sku", mapping.SKU),
			zap.Int("quantity", targetQuantity),
		)
		return
	}

	if err := r.marketplace.SetInventoryQuantity(ctx, mapping.SKU, targetQuantity); err != nil {
		r.fail(ctx, result, mapping, fmt.Sprintf("set quantity to %d: %v", targetQuantity, err))
		return
	}

	result.Success = true
	r.appendAudit(ctx, mapping.SKU, audit.OutcomeSuccess,
		fmt.Sprintf("quantity updated to %d", targetQuantity))
	r.logger.Info("Inventory quantity updated",
		zap.String("sku", mapping.SKU),
		zap.Int("quantity", targetQuantity),
	)
}

// ReconcileAllActive sweeps every active mapping, reading the storefront
// quantity for each SKU and reconciling the marketplace toward it. Negative
// storefront quantities are floored to zero before they reach the
// marketplace. One SKU's failure never stops the sweep.
func (r *Reconciler) ReconcileAllActive(ctx context.Context, opts ReconcileOptions) (*BatchResult, error) {
	mappings, err := r.mappingRepo.FindByStatus(ctx, listing.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("load active mappings: %w", err)
	}

	batch := &BatchResult{DryRun: opts.DryRun, Errors: make([]ReconcileResult, 0)}
	r.logger.Info("Inventory reconcile sweep started",
		zap.Int("active_mappings", len(mappings)),
		zap.Bool("dry_run", opts.DryRun),
	)

	for i := range mappings {
		m := &mappings[i]
		batch.Processed++

		if i > 0 {
			if err := r.sleep(ctx, r.cfg.BatchDelay); err != nil {
				return batch, err
			}
		}

		quantity, err := r.storefront.GetVariantQuantity(ctx, m.SKU)
		if err != nil {
			batch.Failed++
			batch.Errors = append(batch.Errors, ReconcileResult{
				SKU:   m.SKU,
				Error: fmt.Sprintf("fetch storefront quantity: %v", err),
			})
			r.logger.Error("Failed to read storefront quantity",
				zap.String("sku", m.SKU),
				zap.Error(err),
			)
			continue
		}
		if quantity < 0 {
			r.logger.Warn("Negative storefront quantity floored to zero",
				zap.String("sku", m.SKU),
				zap.Int("quantity", quantity),
			)
			quantity = 0
		}

		result, err := r.ReconcileInventory(ctx, m.SKU, quantity, opts)
		switch {
		case err != nil:
			batch.Failed++
			batch.Errors = append(batch.Errors, ReconcileResult{SKU: m.SKU, Error: err.Error()})
			r.logger.Error("Reconcile failed",
				zap.String("sku", m.SKU),
				zap.Error(err),
			)
		case !result.Success:
			batch.Failed++
			batch.Errors = append(batch.Errors, *result)
		case result.Action == ActionUnchanged:
			batch.Skipped++
		default:
			batch.Updated++
		}
	}

	r.logger.Info("Inventory reconcile sweep finished",
		zap.Int("processed", batch.Processed),
		zap.Int("updated", batch.Updated),
		zap.Int("skipped", batch.Skipped),
		zap.Int("failed", batch.Failed),
	)
	return batch, nil
}

// fail records a failed single-SKU reconciliation in the result, the audit
// log and the mapping's last-error field.
func (r *Reconciler) fail(ctx context.Context, result *ReconcileResult, mapping *listing.Mapping, detail string) {
	result.Success = false
	result.Error = detail
	r.appendAudit(ctx, mapping.SKU, audit.OutcomeFailed, detail)
	r.logger.Error("Listing reconcile failed",
		zap.String("sku", mapping.SKU),
		zap.String("detail", detail),
	)
}

func (r *Reconciler) appendAudit(ctx context.Context, sku string, outcome audit.Outcome, detail string) {
	entry := audit.NewEntry(audit.DirectionStorefrontToMarketplace, audit.EntityTypeInventory, sku, outcome, detail)
	if err := r.auditLog.Append(ctx, entry); err != nil {
		r.logger.Warn("Failed to append sync log entry",
			zap.String("sku", sku),
			zap.Error(err),
		)
	}
}
