package storage

import (
	"context"

	"github.com/rolelink/rolelink/internal/model"
)

// Storage defines the interface for link-record persistence
type Storage interface {
	// SaveLink stores a completed link, replacing any existing record for
	// the same player.
	SaveLink(ctx context.Context, record *model.LinkRecord) error

	// GetLink returns the link record for a player, or
	// model.ErrLinkNotFound.
	GetLink(ctx context.Context, id model.PlayerID) (*model.LinkRecord, error)

	// GetLinkByTag returns the link record for an identity tag, or
	// model.ErrLinkNotFound.
	GetLinkByTag(ctx context.Context, tag model.IdentityTag) (*model.LinkRecord, error)

	// DeleteLink removes a player's link record. Deleting an absent
	// record is not an error.
	DeleteLink(ctx context.Context, id model.PlayerID) error
}
