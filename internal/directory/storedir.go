package directory

import (
	"context"

	"github.com/rolelink/rolelink/internal/dependencies/clock"
	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/storage"
)

// StoreDirectory serves the directory straight from local storage, for
// deployments that embed the directory instead of calling a remote API.
type StoreDirectory struct {
	store storage.Storage
	clock clock.Clock
}

var _ Directory = (*StoreDirectory)(nil)

// NewStoreDirectory creates a directory backed by the given storage
func NewStoreDirectory(store storage.Storage, clock clock.Clock) *StoreDirectory {
	return &StoreDirectory{store: store, clock: clock}
}

func (d *StoreDirectory) Lookup(ctx context.Context, id model.PlayerID) (model.IdentityTag, error) {
	record, err := d.store.GetLink(ctx, id)
	if err != nil {
		return "", err
	}
	return record.IdentityTag, nil
}

func (d *StoreDirectory) Store(ctx context.Context, id model.PlayerID, tag model.IdentityTag) error {
	return d.store.SaveLink(ctx, &model.LinkRecord{
		PlayerID:    id,
		IdentityTag: tag,
		LinkedAt:    d.clock.Now(),
	})
}
