package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	ErrNotFound          = errors.New("draft: not found")
	ErrInvalidProductID  = errors.New("draft: invalid storefront product id")
	ErrNotPending        = errors.New("draft: draft is not pending")
	ErrTerminalState     = errors.New("draft: draft is in a terminal state")
	ErrIllegalTransition = errors.New("draft: illegal status transition")
	ErrNothingToApprove  = errors.New("draft: no content selected for approval")
)

// ---------------------------------------------------------------------------
// Status state machine
// ---------------------------------------------------------------------------

// Status is the review state of a staged content change.
type Status string

const (
	// StatusPending awaits review. The only state that accepts edits.
	StatusPending Status = "pending"
	// StatusApproved: both content types were requested and pushed live.
	StatusApproved Status = "approved"
	// StatusPartial: only one content type was requested and pushed.
	StatusPartial Status = "partial"
	// StatusRejected: discarded without touching the storefront.
	StatusRejected Status = "rejected"
)

// IsValid returns true if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPartial, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is immutable. Approved, partial and
// rejected drafts can never change again.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusPartial || s == StatusRejected
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// transitions is the allowed-transition table. Pending is the only non-
// terminal state, so the table is small but keeps illegal moves (approving a
// rejected draft) rejected by construction.
var transitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusPartial, StatusRejected},
}

// CanTransition reports whether moving from s to target is legal.
func (s Status) CanTransition(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Content value objects
// ---------------------------------------------------------------------------

// Proposal carries the fields an enrichment run wants to change. Nil fields
// mean "no opinion" and never clear existing draft values on merge.
type Proposal struct {
	Title       *string
	Description *string
	Images      []string
	Tags        []string
	// Snapshot is the live content observed by the proposer, if it captured
	// one. Used to refresh the reviewer comparison on first write only.
	Snapshot *Snapshot
}

// Snapshot is the live storefront content at draft-creation time, kept for
// reviewer side-by-side comparison and for the auto-publish policy.
type Snapshot struct {
	Title       string
	Description string
	Images      []string
	ProductType string
}

// HasExistingContent reports whether the product had any live photos or
// description when the draft was created. Existing human-authored content
// always blocks the auto-publish fast path.
func (s Snapshot) HasExistingContent() bool {
	return len(s.Images) > 0 || s.Description != ""
}

// ---------------------------------------------------------------------------
// Draft Entity
// ---------------------------------------------------------------------------

// Draft is a staged, not-yet-live content change for a storefront product.
// At most one pending draft exists per product; new proposals merge into it.
type Draft struct {
	ID        uuid.UUID
	ProductID string

	// Proposed content. Nil/empty means the draft does not touch that field.
	Title       *string
	Description *string
	Images      []string
	Tags        []string

	// Original is the live content snapshot taken when the draft was created.
	Original Snapshot

	Status Status
	// AutoPublished marks drafts promoted by the policy fast path.
	AutoPublished bool

	// ReviewedBy is the reviewer identity for terminal transitions.
	ReviewedBy string
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending draft from a proposal and the live content snapshot.
func New(productID string, proposal Proposal, original Snapshot) (*Draft, error) {
	if productID == "" {
		return nil, ErrInvalidProductID
	}
	now := time.Now()
	d := &Draft{
		ID:        uuid.New(),
		ProductID: productID,
		Original:  original,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.merge(proposal)
	return d, nil
}

// Merge folds a new proposal into a pending draft. Only non-nil fields
// overwrite; unspecified fields keep their current values.
func (d *Draft) Merge(proposal Proposal) error {
	if d.Status != StatusPending {
		return ErrNotPending
	}
	d.merge(proposal)
	return nil
}

func (d *Draft) merge(p Proposal) {
	if p.Title != nil {
		d.Title = p.Title
	}
	if p.Description != nil {
		d.Description = p.Description
	}
	if len(p.Images) > 0 {
		d.Images = p.Images
	}
	if len(p.Tags) > 0 {
		d.Tags = p.Tags
	}
	d.UpdatedAt = time.Now()
}

// HasTitle reports whether the draft proposes a non-empty title.
func (d *Draft) HasTitle() bool {
	return d.Title != nil && *d.Title != ""
}

// HasDescription reports whether the draft proposes a non-empty description.
func (d *Draft) HasDescription() bool {
	return d.Description != nil && *d.Description != ""
}

// HasImages reports whether the draft proposes at least one image.
func (d *Draft) HasImages() bool {
	return len(d.Images) > 0
}

// transitionTo applies a checked status transition with reviewer metadata.
func (d *Draft) transitionTo(target Status, reviewer string) error {
	if d.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalState, d.Status)
	}
	if !d.Status.CanTransition(target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, d.Status, target)
	}
	now := time.Now()
	d.Status = target
	d.ReviewedBy = reviewer
	d.ReviewedAt = &now
	d.UpdatedAt = now
	return nil
}

// Approve marks the draft approved. full=true means both content types were
// requested and attempted; otherwise the draft lands in partial.
func (d *Draft) Approve(reviewer string, full bool) error {
	target := StatusApproved
	if !full {
		target = StatusPartial
	}
	return d.transitionTo(target, reviewer)
}

// Reject discards the draft. No storefront state is touched.
func (d *Draft) Reject(reviewer string) error {
	return d.transitionTo(StatusRejected, reviewer)
}

// ---------------------------------------------------------------------------
// Repository Interface
// ---------------------------------------------------------------------------

// Filter narrows draft listings.
type Filter struct {
	Status   *Status
	Page     int
	PageSize int
}

// Repository persists drafts. The one-pending-per-product invariant is
// enforced at this seam: FindPendingByProductID before insert.
type Repository interface {
	// FindByID finds a draft by id. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Draft, error)

	// FindPendingByProductID returns the product's pending draft, if any.
	FindPendingByProductID(ctx context.Context, productID string) (*Draft, error)

	// FindAll returns drafts matching the filter, newest first.
	FindAll(ctx context.Context, filter Filter) ([]Draft, error)

	// Count counts drafts matching the filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Save creates or updates a draft.
	Save(ctx context.Context, d *Draft) error
}
