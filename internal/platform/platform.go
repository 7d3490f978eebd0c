// Package platform defines the boundary to the social platform gateway.
package platform

import (
	"context"

	"github.com/rolelink/rolelink/internal/model"
)

// Reaction emoji posted on verification messages.
const (
	EmojiSuccess = "✔️" // heavy check mark
	EmojiFailure = "✖️" // heavy multiplication x
)

// MembershipSource resolves the set of groups an identity currently holds.
// An identity that exists but holds no groups yields an empty set and a nil
// error; a lookup failure yields a non-nil error, never a silent empty set.
type MembershipSource interface {
	Membership(ctx context.Context, tag model.IdentityTag) ([]model.GroupID, error)
}

// Reactor posts emoji feedback on a platform message. Best effort.
type Reactor interface {
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// MessageHandler receives inbound messages from the gateway.
type MessageHandler func(ctx context.Context, msg model.InboundMessage)

// Gateway is a connected social-platform client.
type Gateway interface {
	MembershipSource
	Reactor

	// OnMessage registers the handler invoked for every message seen in
	// the gateway's channels. Must be called before Start.
	OnMessage(handler MessageHandler)

	// LinkChannelName returns the display name of the designated linking
	// channel, for player-facing instructions.
	LinkChannelName(ctx context.Context) (string, error)

	Start(ctx context.Context) error
	Stop() error
}
