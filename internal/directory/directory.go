// Package directory defines the identity directory, the durable system of
// record for completed links. The registry's linked entries are a cache over
// it and are re-derived from it on every join.
package directory

import (
	"context"

	"github.com/rolelink/rolelink/internal/model"
)

// Directory maps player ids to linked identity tags.
type Directory interface {
	// Lookup returns the linked tag for a player, or model.ErrLinkNotFound
	// if no link exists. Any other error is a transient failure.
	Lookup(ctx context.Context, id model.PlayerID) (model.IdentityTag, error)

	// Store durably records a completed link. At-most-once from the
	// caller's perspective; callers retry on later triggers, not here.
	Store(ctx context.Context, id model.PlayerID, tag model.IdentityTag) error
}
