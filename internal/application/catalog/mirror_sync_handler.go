package catalog

import (
	"context"
	"fmt"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"go.uber.org/zap"
)

// MirrorSyncHandler logs template mirror refreshes and variant writes so
// that a mirror drifting from its primary variant can be traced
type MirrorSyncHandler struct {
	logger *zap.Logger
}

// NewMirrorSyncHandler creates a new handler for mirror sync events
func NewMirrorSyncHandler(logger *zap.Logger) *MirrorSyncHandler {
	return &MirrorSyncHandler{
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *MirrorSyncHandler) EventTypes() []string {
	return []string{
		catalog.EventTypeProductTemplateMirrorsSynced,
		catalog.EventTypeProductVariantUpdated,
	}
}

// Handle processes a mirror sync or variant update event
func (h *MirrorSyncHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *catalog.ProductTemplateMirrorsSyncedEvent:
		h.logger.Info("template mirrors synced",
			zap.String("template_id", e.TemplateID.String()),
			zap.Stringers("changed_fields", e.ChangedFields),
		)
	case *catalog.ProductVariantUpdatedEvent:
		h.logger.Debug("variant updated",
			zap.String("template_id", e.TemplateID.String()),
			zap.String("variant_id", e.VariantID.String()),
			zap.Stringers("fields", e.Fields),
		)
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

// Ensure MirrorSyncHandler implements shared.EventHandler
var _ shared.EventHandler = (*MirrorSyncHandler)(nil)
