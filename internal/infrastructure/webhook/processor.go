package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shopbridge/backend/internal/application/listings"
	"github.com/shopbridge/backend/internal/domain/webhook"
)

// ---------------------------------------------------------------------------
// ProcessorConfig
// ---------------------------------------------------------------------------

// ProcessorConfig holds configuration for the webhook processor.
type ProcessorConfig struct {
	// QueueSize is the buffered channel capacity between intake and consumer.
	QueueSize int
	// ReplayBatch is how many pending rows are reloaded per replay pass.
	ReplayBatch int
}

// DefaultProcessorConfig returns default processor configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		QueueSize:   256,
		ReplayBatch: 100,
	}
}

// ---------------------------------------------------------------------------
// Processor
// ---------------------------------------------------------------------------

// InventoryReconciler reconciles one SKU against its marketplace listing.
type InventoryReconciler interface {
	ReconcileInventory(ctx context.Context, sku string, targetQuantity int, opts listings.ReconcileOptions) (*listings.ReconcileResult, error)
}

// Processor consumes persisted webhook events. The HTTP intake persists the
// raw payload row, enqueues the event id, and acknowledges immediately; this
// consumer parses and dispatches in the background. Events still pending at
// startup (a crash between ack and consumption) are replayed from the store,
// so delivery is at-least-once and handlers must tolerate repeats.
type Processor struct {
	config     ProcessorConfig
	events     webhook.Repository
	reconciler InventoryReconciler
	logger     *zap.Logger

	queue chan *webhook.Event

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewProcessor creates a webhook processor.
func NewProcessor(config ProcessorConfig, events webhook.Repository, reconciler InventoryReconciler, logger *zap.Logger) *Processor {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultProcessorConfig().QueueSize
	}
	if config.ReplayBatch <= 0 {
		config.ReplayBatch = DefaultProcessorConfig().ReplayBatch
	}
	return &Processor{
		config:     config,
		events:     events,
		reconciler: reconciler,
		logger:     logger,
		queue:      make(chan *webhook.Event, config.QueueSize),
	}
}

// Start starts the consumer loop and replays pending events from the store.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.consumeLoop(ctx)

	if err := p.replayPending(ctx); err != nil {
		p.logger.Error("Failed to replay pending webhook events", zap.Error(err))
	}

	p.logger.Info("Webhook processor started", zap.Int("queue_size", p.config.QueueSize))
	return nil
}

// Stop stops the consumer and waits for the in-flight event.
func (p *Processor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Webhook processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue persists a raw payload and hands it to the consumer. The write
// happens before the enqueue: once Enqueue returns nil the event survives a
// crash. A full queue is not an error; the replay pass picks the row up.
func (p *Processor) Enqueue(ctx context.Context, source, topic, entityID string, payload []byte) (*webhook.Event, error) {
	event, err := webhook.NewEvent(source, topic, entityID, payload)
	if err != nil {
		return nil, err
	}
	if err := p.events.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("persist webhook event: %w", err)
	}

	select {
	case p.queue <- event:
	default:
		p.logger.Warn("Webhook queue full, event deferred to replay",
			zap.String("event_id", event.ID.String()),
			zap.String("topic", topic),
		)
	}
	return event, nil
}

// replayPending reloads events persisted but never consumed.
func (p *Processor) replayPending(ctx context.Context) error {
	pending, err := p.events.FindPending(ctx, p.config.ReplayBatch)
	if err != nil {
		return err
	}
	for i := range pending {
		event := pending[i]
		select {
		case p.queue <- &event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if len(pending) > 0 {
		p.logger.Info("Replayed pending webhook events", zap.Int("count", len(pending)))
	}
	return nil
}

// consumeLoop drains the queue until the context is cancelled.
func (p *Processor) consumeLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.queue:
			p.consume(ctx, event)
		}
	}
}

// consume handles one event and records the outcome on its row.
func (p *Processor) consume(ctx context.Context, event *webhook.Event) {
	if err := p.dispatch(ctx, event); err != nil {
		event.MarkFailed(err.Error())
		p.logger.Error("Webhook event processing failed",
			zap.String("event_id", event.ID.String()),
			zap.String("topic", event.Topic),
			zap.Error(err),
		)
	} else {
		event.MarkProcessed()
	}

	if err := p.events.Save(ctx, event); err != nil {
		p.logger.Error("Failed to record webhook event outcome",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}

// inventoryPayload is the subset of a storefront inventory notification the
// consumer needs.
type inventoryPayload struct {
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// dispatch routes an event by topic.
func (p *Processor) dispatch(ctx context.Context, event *webhook.Event) error {
	switch event.Topic {
	case "inventory_levels/update", "products/update":
		var payload inventoryPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("parse inventory payload: %w", err)
		}
		if payload.SKU == "" {
			return fmt.Errorf("inventory payload missing sku")
		}
		quantity := payload.InventoryQuantity
		if quantity < 0 {
			quantity = 0
		}
		_, err := p.reconciler.ReconcileInventory(ctx, payload.SKU, quantity, listings.ReconcileOptions{})
		return err
	default:
		// Unknown topics are accepted and recorded, never retried.
		p.logger.Debug("Ignoring webhook topic", zap.String("topic", event.Topic))
		return nil
	}
}
