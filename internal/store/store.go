// Package store implements the persistence collaborator: a synchronous
// key-value blob store keyed by logical collection. The core owns no
// transaction semantics beyond non-interleaving read-modify-write per
// collection, which the repository layer provides on top of this.
package store

import (
	"context"
	"encoding/json"
)

// Collection names the logical record groups.
type Collection string

const (
	CollectionUsers         Collection = "users"
	CollectionImages        Collection = "images"
	CollectionAnalyses      Collection = "analyses"
	CollectionNotifications Collection = "notifications"
	CollectionAppointments  Collection = "appointments"
	CollectionSlots         Collection = "appointment_slots"
)

// Store is a blob store over whole collections. Get on an unknown
// collection returns an empty list, not an error.
type Store interface {
	Get(ctx context.Context, collection Collection) ([]json.RawMessage, error)
	Put(ctx context.Context, collection Collection, records []json.RawMessage) error
}
