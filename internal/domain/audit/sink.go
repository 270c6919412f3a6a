package audit

import (
	"context"

	"civic-backoffice/internal/domain/actor"
)

// Event is what business code hands to a Sink. Before and After are plain
// JSON-able snapshots; nil means "no state" (create has no Before, delete no After).
type Event struct {
	Actor       actor.Actor
	Action      Action
	EntityKind  EntityKind
	EntityID    string
	Before      map[string]any
	After       map[string]any
	Description string
	Metadata    map[string]any
}

// Sink records events. Implementations must never fail the caller.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}

// Provenance is the client network/device information of the current request.
type Provenance struct {
	IPAddress string
	UserAgent string
}

type provenanceKey struct{}

func WithProvenance(ctx context.Context, p Provenance) context.Context {
	return context.WithValue(ctx, provenanceKey{}, p)
}

func ProvenanceFrom(ctx context.Context) Provenance {
	if ctx == nil {
		return Provenance{}
	}
	p, _ := ctx.Value(provenanceKey{}).(Provenance)
	return p
}
