// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - order.go: Order identity mappings between storefront and marketplace
// - listing.go: SKU-keyed listing mappings with lifecycle status
// - audit.go: Sync log entries recording cross-platform operations
// - draft.go: Staged product drafts awaiting review
// - settings.go: Feature flags and per-type auto-publish settings
// - webhook.go: Durable webhook event records for replay
package models
