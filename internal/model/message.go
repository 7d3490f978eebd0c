package model

// MessageOrigin tags where an inbound message came from.
type MessageOrigin string

const (
	// OriginGameChat is the in-game chat transport.
	OriginGameChat MessageOrigin = "game_chat"
	// OriginPlatform is a channel on the social platform.
	OriginPlatform MessageOrigin = "platform"
)

// InboundMessage is a raw text message delivered by the host or the
// platform gateway.
type InboundMessage struct {
	Origin    MessageOrigin
	ChannelID string
	MessageID string

	// AuthorTag is the platform identity that produced the message.
	// Empty for game chat.
	AuthorTag IdentityTag
	// AuthorIsBot suppresses matching against automated traffic.
	AuthorIsBot bool

	Content string
}
