package listings

// ReconcileOptions controls a reconciliation pass.
type ReconcileOptions struct {
	// DryRun reports the action that would be taken without any remote
	// mutation.
	DryRun bool
}

// Action names the outcome of a single-SKU reconciliation.
type Action string

const (
	// ActionUnchanged: remote state already matched the target; nothing done.
	ActionUnchanged Action = "unchanged"
	// ActionEnded: the listing was withdrawn and quantity forced to zero.
	ActionEnded Action = "ended"
	// ActionRelisted: an ended listing was brought back to active.
	ActionRelisted Action = "relisted"
	// ActionUpdated: an ordinary quantity update on an active listing.
	ActionUpdated Action = "updated"
)

// ReconcileResult reports one single-SKU reconciliation.
type ReconcileResult struct {
	SKU     string `json:"sku"`
	Success bool   `json:"success"`
	Action  Action `json:"action"`
	DryRun  bool   `json:"dry_run"`
	// ListingID is the live listing id after the operation, when known.
	ListingID string `json:"listing_id,omitempty"`
	// Quantity is the target quantity the operation worked toward.
	Quantity int    `json:"quantity"`
	Error    string `json:"error,omitempty"`
}

// BatchResult aggregates a reconcile-all sweep. Per-SKU failures are carried
// in Errors; the sweep itself only errors when the mapping list cannot be
// loaded at all.
type BatchResult struct {
	Processed int               `json:"processed"`
	Updated   int               `json:"updated"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	DryRun    bool              `json:"dry_run"`
	Errors    []ReconcileResult `json:"errors,omitempty"`
}
