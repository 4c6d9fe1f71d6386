package drafts

import (
	"github.com/google/uuid"

	"github.com/shopbridge/backend/internal/domain/draft"
)

// ApproveOptions selects which staged content types to push live.
type ApproveOptions struct {
	// Photos pushes the draft image list (delete-then-upload, preserving
	// draft ordering).
	Photos bool `json:"photos"`
	// Description pushes title and description.
	Description bool `json:"description"`
	// Publish additionally flips the product to publicly visible. A publish
	// failure does not fail the approval.
	Publish bool `json:"publish"`
	// Reviewer is the identity recorded on the terminal transition.
	Reviewer string `json:"reviewer"`
}

// ApproveResult reports one approval.
type ApproveResult struct {
	DraftID   uuid.UUID    `json:"draft_id"`
	Success   bool         `json:"success"`
	Status    draft.Status `json:"status"`
	Published bool         `json:"published"`
	// PublishError carries a non-fatal publish failure separately from the
	// content push outcome.
	PublishError string `json:"publish_error,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CreateResult reports a draft upsert.
type CreateResult struct {
	DraftID uuid.UUID `json:"draft_id"`
	// Merged is true when the proposal folded into an existing pending draft
	// instead of creating a new one.
	Merged bool `json:"merged"`
	// AutoPublished is true when the policy fast path approved the draft
	// immediately after creation.
	AutoPublished bool `json:"auto_published"`
}

// ListResult is a paginated draft listing.
type ListResult struct {
	Data  []draft.Draft `json:"data"`
	Total int64         `json:"total"`
}
