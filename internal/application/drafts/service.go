package drafts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopbridge/backend/internal/domain/audit"
	"github.com/shopbridge/backend/internal/domain/draft"
	"github.com/shopbridge/backend/internal/domain/platform"
	"github.com/shopbridge/backend/internal/domain/settings"
)

// AutoPublishReviewer is the reviewer identity recorded on drafts the policy
// fast path approves without a human in the loop.
const AutoPublishReviewer = "auto-publish"

// Service is the draft staging and approval workflow: generated content is
// staged as a pending draft and reaches the live storefront only through an
// explicit approval, or through the auto-publish fast path when the product
// has no existing content to protect.
type Service struct {
	draftRepo    draft.Repository
	settingsRepo settings.Repository
	auditLog     audit.LogRepository
	storefront   platform.Storefront
	logger       *zap.Logger
}

// NewService creates a draft workflow service.
func NewService(
	draftRepo draft.Repository,
	settingsRepo settings.Repository,
	auditLog audit.LogRepository,
	storefront platform.Storefront,
	logger *zap.Logger,
) *Service {
	return &Service{
		draftRepo:    draftRepo,
		settingsRepo: settingsRepo,
		auditLog:     auditLog,
		storefront:   storefront,
		logger:       logger,
	}
}

// ---------------------------------------------------------------------------
// Create / upsert
// ---------------------------------------------------------------------------

// CreateOrUpdateDraft stages proposed content for a product. When a pending
// draft already exists, the proposal's non-nil fields merge into it; a new
// draft additionally captures a live-content snapshot for reviewer comparison
// and may be promoted immediately by the auto-publish policy.
func (s *Service) CreateOrUpdateDraft(ctx context.Context, productID string, proposal draft.Proposal) (*CreateResult, error) {
	existing, err := s.draftRepo.FindPendingByProductID(ctx, productID)
	if err != nil && !errors.Is(err, draft.ErrNotFound) {
		return nil, fmt.Errorf("find pending draft for product %s: %w", productID, err)
	}

	if existing != nil {
		if err := existing.Merge(proposal); err != nil {
			return nil, err
		}
		if err := s.draftRepo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("save draft %s: %w", existing.ID, err)
		}
		s.logger.Info("Merged proposal into pending draft",
			zap.String("draft_id", existing.ID.String()),
			zap.String("product_id", productID),
		)
		return &CreateResult{DraftID: existing.ID, Merged: true}, nil
	}

	snapshot, err := s.resolveSnapshot(ctx, productID, proposal)
	if err != nil {
		return nil, err
	}

	d, err := draft.New(productID, proposal, snapshot)
	if err != nil {
		return nil, err
	}
	if err := s.draftRepo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft for product %s: %w", productID, err)
	}
	s.logger.Info("Created pending draft",
		zap.String("draft_id", d.ID.String()),
		zap.String("product_id", productID),
		zap.Bool("has_existing_content", snapshot.HasExistingContent()),
	)

	result := &CreateResult{DraftID: d.ID}
	if s.shouldAutoPublish(ctx, d) {
		s.autoPublish(ctx, d, result)
	}
	return result, nil
}

// resolveSnapshot uses the proposer's snapshot when it captured one, falling
// back to reading the live product.
func (s *Service) resolveSnapshot(ctx context.Context, productID string, proposal draft.Proposal) (draft.Snapshot, error) {
	if proposal.Snapshot != nil {
		return *proposal.Snapshot, nil
	}
	product, err := s.storefront.GetProduct(ctx, productID)
	if err != nil {
		return draft.Snapshot{}, fmt.Errorf("fetch product %s for snapshot: %w", productID, err)
	}
	images := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, img.URL)
	}
	return draft.Snapshot{
		Title:       product.Title,
		Description: product.Description,
		Images:      images,
		ProductType: product.ProductType,
	}, nil
}

// shouldAutoPublish evaluates the fast-path policy: any existing live content
// always blocks it; otherwise the per-product-type flag decides, with the
// global no-photos flag as fallback for untyped products.
func (s *Service) shouldAutoPublish(ctx context.Context, d *draft.Draft) bool {
	if d.Original.HasExistingContent() {
		return false
	}
	setting, err := s.settingsRepo.GetAutoPublish(ctx, d.Original.ProductType)
	if err == nil {
		return setting.Enabled
	}
	if !errors.Is(err, settings.ErrNotFound) {
		s.logger.Warn("Auto-publish policy lookup failed, skipping fast path",
			zap.String("draft_id", d.ID.String()),
			zap.Error(err),
		)
		return false
	}
	enabled, err := s.settingsRepo.GetBool(ctx, settings.KeyAutoPublishNoPhotos, false)
	if err != nil {
		s.logger.Warn("Auto-publish flag lookup failed, skipping fast path",
			zap.String("draft_id", d.ID.String()),
			zap.Error(err),
		)
		return false
	}
	return enabled
}

// autoPublish runs the just-created draft through the approval flow with both
// content types enabled. Failure leaves the draft pending for manual review.
func (s *Service) autoPublish(ctx context.Context, d *draft.Draft, result *CreateResult) {
	d.AutoPublished = true
	approval := s.approve(ctx, d, ApproveOptions{
		Photos:      true,
		Description: true,
		Reviewer:    AutoPublishReviewer,
	})
	if approval == nil || !approval.Success {
		d.AutoPublished = false
		s.logger.Warn("Auto-publish fast path failed, draft left pending",
			zap.String("draft_id", d.ID.String()),
		)
		return
	}
	result.AutoPublished = true
	s.logger.Info("Draft auto-published",
		zap.String("draft_id", d.ID.String()),
		zap.String("product_id", d.ProductID),
	)
}

// ---------------------------------------------------------------------------
// Approve / reject / list
// ---------------------------------------------------------------------------

// ApproveDraft pushes the selected content types live and marks the draft
// approved (both types) or partial (one type). Terminal drafts are rejected
// before any side effect.
func (s *Service) ApproveDraft(ctx context.Context, draftID uuid.UUID, opts ApproveOptions) (*ApproveResult, error) {
	d, err := s.draftRepo.FindByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", draft.ErrTerminalState, d.Status)
	}
	if !opts.Photos && !opts.Description {
		return nil, draft.ErrNothingToApprove
	}
	return s.approve(ctx, d, opts), nil
}

func (s *Service) approve(ctx context.Context, d *draft.Draft, opts ApproveOptions) *ApproveResult {
	result := &ApproveResult{DraftID: d.ID}

	if opts.Description && d.HasDescription() {
		title := d.Original.Title
		if d.HasTitle() {
			title = *d.Title
		}
		if err := s.storefront.UpdateProductContent(ctx, d.ProductID, title, *d.Description); err != nil {
			result.Error = fmt.Sprintf("push description: %v", err)
			s.appendAudit(ctx, d.ProductID, audit.OutcomeFailed, result.Error)
			return result
		}
	}

	if opts.Photos && d.HasImages() {
		if err := s.replaceImages(ctx, d); err != nil {
			result.Error = fmt.Sprintf("push images: %v", err)
			s.appendAudit(ctx, d.ProductID, audit.OutcomeFailed, result.Error)
			return result
		}
	}

	if opts.Publish {
		if err := s.storefront.PublishProduct(ctx, d.ProductID); err != nil {
			// Non-fatal: the content push already succeeded.
			result.PublishError = err.Error()
			s.logger.Warn("Product publish failed after content push",
				zap.String("draft_id", d.ID.String()),
				zap.String("product_id", d.ProductID),
				zap.Error(err),
			)
		} else {
			result.Published = true
		}
	}

	full := opts.Photos && opts.Description
	if err := d.Approve(opts.Reviewer, full); err != nil {
		result.Error = err.Error()
		return result
	}
	if err := s.draftRepo.Save(ctx, d); err != nil {
		result.Error = fmt.Sprintf("save draft: %v", err)
		return result
	}

	result.Success = true
	result.Status = d.Status
	s.appendAudit(ctx, d.ProductID, audit.OutcomeSuccess,
		fmt.Sprintf("draft %s %s by %s", d.ID, d.Status, opts.Reviewer))
	s.logger.Info("Draft approved",
		zap.String("draft_id", d.ID.String()),
		zap.String("product_id", d.ProductID),
		zap.String("status", d.Status.String()),
		zap.String("reviewer", opts.Reviewer),
	)
	return result
}

// replaceImages deletes every existing remote image, then uploads the draft
// images in order. The storefront API only appends, so a clean slate is the
// only way to guarantee the final ordering matches the draft.
func (s *Service) replaceImages(ctx context.Context, d *draft.Draft) error {
	existing, err := s.storefront.ListProductImages(ctx, d.ProductID)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	for _, img := range existing {
		if err := s.storefront.DeleteProductImage(ctx, d.ProductID, img.ID); err != nil {
			return fmt.Errorf("delete image %s: %w", img.ID, err)
		}
	}
	for _, url := range d.Images {
		if _, err := s.storefront.UploadProductImage(ctx, d.ProductID, url); err != nil {
			return fmt.Errorf("upload image %s: %w", url, err)
		}
	}
	return nil
}

// RejectDraft discards a pending draft. No storefront state is touched.
func (s *Service) RejectDraft(ctx context.Context, draftID uuid.UUID, reviewer string) error {
	d, err := s.draftRepo.FindByID(ctx, draftID)
	if err != nil {
		return err
	}
	if err := d.Reject(reviewer); err != nil {
		return err
	}
	if err := s.draftRepo.Save(ctx, d); err != nil {
		return fmt.Errorf("save draft %s: %w", draftID, err)
	}
	s.logger.Info("Draft rejected",
		zap.String("draft_id", draftID.String()),
		zap.String("product_id", d.ProductID),
		zap.String("reviewer", reviewer),
	)
	return nil
}

// GetDraft returns a single draft by id.
func (s *Service) GetDraft(ctx context.Context, draftID uuid.UUID) (*draft.Draft, error) {
	return s.draftRepo.FindByID(ctx, draftID)
}

// ListDrafts returns drafts matching the filter with the total count for
// pagination.
func (s *Service) ListDrafts(ctx context.Context, filter draft.Filter) (*ListResult, error) {
	data, err := s.draftRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	total, err := s.draftRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count drafts: %w", err)
	}
	return &ListResult{Data: data, Total: total}, nil
}

func (s *Service) appendAudit(ctx context.Context, productID string, outcome audit.Outcome, detail string) {
	entry := audit.NewEntry(audit.DirectionMarketplaceToStorefront, audit.EntityTypeProduct, productID, outcome, detail)
	if err := s.auditLog.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to append sync log entry",
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}
