package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebhookIntake accepts raw platform webhook payloads for asynchronous
// processing. Enqueue persists the event before it returns.
type WebhookIntake interface {
	Enqueue(ctx context.Context, source, topic, entityID string, payload []byte) error
}

// WebhookHandler receives storefront webhook deliveries. It acknowledges as
// soon as the event is recorded; processing happens off the request path so
// the platform never times out waiting on a sync.
type WebhookHandler struct {
	BaseHandler
	intake WebhookIntake
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(intake WebhookIntake) *WebhookHandler {
	return &WebhookHandler{intake: intake}
}

// RegisterRoutes registers webhook routes on the given group
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/webhooks")
	group.POST("/storefront/:topic", h.ReceiveStorefront)
}

// maxWebhookBody caps a single webhook payload at 1 MiB
const maxWebhookBody = 1 << 20

// ReceiveStorefront records one storefront webhook delivery
func (h *WebhookHandler) ReceiveStorefront(c *gin.Context) {
	topic := c.Param("topic")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}

	// Shopify-style deliveries carry the subject id in a header; the topic
	// path segment uses "." where the platform uses "/".
	entityID := c.GetHeader("X-Entity-ID")

	if err := h.intake.Enqueue(c.Request.Context(), "storefront", normalizeTopic(topic), entityID, body); err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func normalizeTopic(topic string) string {
	out := make([]byte, len(topic))
	for i := 0; i < len(topic); i++ {
		if topic[i] == '.' {
			out[i] = '/'
		} else {
			out[i] = topic[i]
		}
	}
	return string(out)
}
