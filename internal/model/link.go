package model

import "time"

// PlayerID is the game session's numeric account identifier for a player.
// It is externally supplied and stable for the player's lifetime.
type PlayerID uint64

// IdentityTag is the stable handle of an identity on the social platform,
// e.g. "alice#0001".
type IdentityTag string

// LinkState enumerates the linking states a player can be in.
type LinkState string

const (
	// LinkStateUnlinked means no link and no outstanding verification code.
	LinkStateUnlinked LinkState = "unlinked"
	// LinkStatePending means a verification code has been issued and not
	// yet matched.
	LinkStatePending LinkState = "pending"
	// LinkStateLinked means the player is bound to an identity tag.
	LinkStateLinked LinkState = "linked"
)

// LinkStatus is a snapshot of one player's linking state. A player has
// exactly one LinkStatus at any instant.
type LinkStatus struct {
	State LinkState

	// Code and CodeCreatedAt are set only while State is LinkStatePending.
	Code          string
	CodeCreatedAt time.Time

	// IdentityTag is set only while State is LinkStateLinked.
	IdentityTag IdentityTag
}

// LinkRecord is a durably stored completed link, the directory's system of
// record for one player.
type LinkRecord struct {
	PlayerID    PlayerID    `json:"steam_id"`
	IdentityTag IdentityTag `json:"discord_tag"`
	LinkedAt    time.Time   `json:"linked_at"`
}
