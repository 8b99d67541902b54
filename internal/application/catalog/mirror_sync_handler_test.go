package catalog

import (
	"context"
	"testing"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMirrorSyncHandler_EventTypes(t *testing.T) {
	handler := NewMirrorSyncHandler(zap.NewNop())

	assert.ElementsMatch(t, []string{
		catalog.EventTypeProductTemplateMirrorsSynced,
		catalog.EventTypeProductVariantUpdated,
	}, handler.EventTypes())
}

func TestMirrorSyncHandler_Handle(t *testing.T) {
	t.Run("logs mirror sync", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		handler := NewMirrorSyncHandler(zap.New(core))

		template, err := catalog.NewProductTemplate("TPL-1", "Chair")
		require.NoError(t, err)
		variant, err := template.NewPrimaryVariant()
		require.NoError(t, err)
		require.NoError(t, variant.Write(catalog.Values{catalog.FieldHeight: decimal.NewFromInt(4)}))
		changed := template.SyncMirrors()

		event := catalog.NewProductTemplateMirrorsSyncedEvent(template, changed)
		require.NoError(t, handler.Handle(context.Background(), event))

		entries := logs.FilterMessage("template mirrors synced").All()
		require.Len(t, entries, 1)
		assert.Equal(t, template.ID.String(), entries[0].ContextMap()["template_id"])
	})

	t.Run("logs variant update", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		handler := NewMirrorSyncHandler(zap.New(core))

		variant, err := catalog.NewProductVariant(uuid.New(), "SKU-1")
		require.NoError(t, err)
		event := catalog.NewProductVariantUpdatedEvent(variant, []catalog.Field{catalog.FieldWidth})

		require.NoError(t, handler.Handle(context.Background(), event))
		assert.Equal(t, 1, logs.FilterMessage("variant updated").Len())
	})

	t.Run("rejects other events", func(t *testing.T) {
		handler := NewMirrorSyncHandler(zap.NewNop())
		event := &catalog.ProductTemplateDeletedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(
				catalog.EventTypeProductTemplateDeleted,
				catalog.AggregateTypeProductTemplate,
				uuid.New(),
			),
		}

		err := handler.Handle(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}
