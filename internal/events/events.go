// Package events carries domain events between entity services inside a
// single request. Dispatch is synchronous: the publisher blocks until every
// subscriber has run, so a subscriber's output (such as a provisioned
// invoice) is available before the HTTP response is written.
package events

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/models"
)

// ReferencesPopulated fires when a project gains its first JC or DC
// reference. IfAbsent asks the subscriber to skip provisioning when an
// invoice for the project already exists (the update path). Subscribers set
// Invoice on success.
type ReferencesPopulated struct {
	ProjectID primitive.ObjectID
	ActorID   primitive.ObjectID
	IfAbsent  bool

	Invoice *models.Invoice
}

// ReferencesPopulatedHandler consumes ReferencesPopulated events. Handlers
// are responsible for their own error containment; dispatch never fails.
type ReferencesPopulatedHandler interface {
	HandleReferencesPopulated(ctx context.Context, ev *ReferencesPopulated)
}

// Bus is the in-process event dispatcher. Subscriptions happen once during
// wiring, before any request is served.
type Bus struct {
	referencesPopulated []ReferencesPopulatedHandler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeReferencesPopulated registers a handler.
func (b *Bus) SubscribeReferencesPopulated(h ReferencesPopulatedHandler) {
	b.referencesPopulated = append(b.referencesPopulated, h)
}

// PublishReferencesPopulated dispatches the event to every subscriber in
// registration order.
func (b *Bus) PublishReferencesPopulated(ctx context.Context, ev *ReferencesPopulated) {
	for _, h := range b.referencesPopulated {
		h.HandleReferencesPopulated(ctx, ev)
	}
}
