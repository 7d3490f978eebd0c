// Package host defines the boundary between this module and the game server
// it runs inside. The host supplies implementations at session start; the
// core never reaches into the server beyond these seams.
package host

import (
	"context"

	"github.com/rolelink/rolelink/internal/model"
)

// PermissionStore is the authoritative store of applied permission levels.
// The reconciler is the only writer in this module.
type PermissionStore interface {
	Level(ctx context.Context, id model.PlayerID) (model.Level, error)
	SetLevel(ctx context.Context, id model.PlayerID, level model.Level) error
}

// Notifier delivers a chat message to a single player. Best effort:
// failures are logged by callers and never retried.
type Notifier interface {
	Notify(ctx context.Context, id model.PlayerID, text string) error
}

// ServerInfo exposes the connection state the core needs for reminder
// suppression and full-server admission checks.
type ServerInfo interface {
	IsConnected(id model.PlayerID) bool
	MemberCount() int
	MemberLimit() int
}
