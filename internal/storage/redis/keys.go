package redis

import (
	"fmt"

	"github.com/rolelink/rolelink/internal/model"
)

// Key prefix for all directory data
const keyPrefix = "rolelink"

// linkKey returns the Redis key for a player's link record
func linkKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:link:%d", keyPrefix, id)
}

// tagIndexKey returns the Redis key for the identity_tag -> player_id index
func tagIndexKey(tag model.IdentityTag) string {
	return fmt.Sprintf("%s:idx:tag:%s", keyPrefix, tag)
}
