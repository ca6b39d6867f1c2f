// Package events emits reconciliation lifecycle events
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sorrel/pkg/kafka"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Event types published on the mapping topic
const (
	EventTypeItemLinked      = "item.linked"
	EventTypeParentCreated   = "parent.created"
	EventTypeVariantUnlinked = "variant.unlinked"
	EventTypeCacheRefreshed  = "cache.refreshed"
)

// Emitter publishes mapping lifecycle events. Event emission is best-effort: a
// publish failure is logged but never fails the mutation that triggered it.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// ItemLinked emits an item.linked event after a supplier item is linked to a parent
func (e *Emitter) ItemLinked(ctx context.Context, item models.SupplierItem, parentID models.FlexID, variantID models.FlexID) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.ItemLinked")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"item":           item,
	})

	event := &kafka.MappingEvent{
		EventType: EventTypeItemLinked,
		SOSItemID: item.ID.String(),
		ParentID:  parentID.String(),
		VariantID: variantID.String(),
		Data:      data,
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit item.linked event")
	}
}

// ParentCreated emits a parent.created event after a parent is created from a supplier item
func (e *Emitter) ParentCreated(ctx context.Context, parent models.ParentProduct, item models.SupplierItem) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.ParentCreated")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"parent":         parent,
		"item":           item,
	})

	event := &kafka.MappingEvent{
		EventType: EventTypeParentCreated,
		SOSItemID: item.ID.String(),
		ParentID:  parent.ID.String(),
		Data:      data,
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit parent.created event")
	}
}

// VariantUnlinked emits a variant.unlinked event after a variant is removed from a parent
func (e *Emitter) VariantUnlinked(ctx context.Context, variantID models.FlexID, parentID models.FlexID) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.VariantUnlinked")
	defer span.End()

	event := &kafka.MappingEvent{
		EventType: EventTypeVariantUnlinked,
		ParentID:  parentID.String(),
		VariantID: variantID.String(),
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit variant.unlinked event")
	}
}

// CacheRefreshed emits a cache.refreshed event after an explicit cache refresh
func (e *Emitter) CacheRefreshed(ctx context.Context, tags []string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.CacheRefreshed")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"tags":           tags,
	})

	event := &kafka.MappingEvent{
		EventType: EventTypeCacheRefreshed,
		Data:      data,
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit cache.refreshed event")
	}
}
