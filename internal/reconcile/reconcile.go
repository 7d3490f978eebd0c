// Package reconcile turns a set of social-platform group memberships into
// the single permission level applied on the game server.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rolelink/rolelink/internal/host"
	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/platform"
)

// ComputeLevel returns the highest configured tier whose group set
// intersects the membership, or model.LevelNone when no tier matches.
// Highest-wins is load-bearing: a member of both a moderator group and an
// admin group must come out admin.
func ComputeLevel(membership []model.GroupID, tiers model.TierMap) model.Level {
	for _, tier := range tiers.HighestFirst() {
		if tier.Matches(membership) {
			return tier.Level
		}
	}
	return model.LevelNone
}

// Reconciler is the only writer of externally visible permission levels
type Reconciler struct {
	membership  platform.MembershipSource
	permissions host.PermissionStore
	tiers       model.TierMap
	logger      *slog.Logger
}

// New creates a new Reconciler
func New(membership platform.MembershipSource, permissions host.PermissionStore, tiers model.TierMap, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		membership:  membership,
		permissions: permissions,
		tiers:       tiers,
		logger:      logger,
	}
}

// Reconcile fetches the identity's current membership and applies the
// resulting level. On a membership fetch failure the player keeps the
// last-applied level; the next join, poll tick or message retries.
func (r *Reconciler) Reconcile(ctx context.Context, id model.PlayerID, tag model.IdentityTag) error {
	groups, err := r.membership.Membership(ctx, tag)
	if err != nil {
		r.logger.Warn("membership lookup failed, keeping current level",
			slog.Uint64("player_id", uint64(id)),
			slog.String("identity_tag", string(tag)),
			slog.String("error", err.Error()))
		return fmt.Errorf("membership lookup for %q: %w", tag, err)
	}

	return r.ApplyLevel(ctx, id, ComputeLevel(groups, r.tiers))
}

// ApplyLevel writes the level to the host's permission store only when it
// differs from the currently applied one. A transition to LevelNone
// revokes elevated access rather than freezing at the last-known level.
func (r *Reconciler) ApplyLevel(ctx context.Context, id model.PlayerID, level model.Level) error {
	current, err := r.permissions.Level(ctx, id)
	if err != nil {
		r.logger.Warn("reading applied level failed",
			slog.Uint64("player_id", uint64(id)),
			slog.String("error", err.Error()))
		return fmt.Errorf("reading level for %d: %w", id, err)
	}

	if current == level {
		return nil
	}

	if err := r.permissions.SetLevel(ctx, id, level); err != nil {
		r.logger.Warn("applying level failed",
			slog.Uint64("player_id", uint64(id)),
			slog.String("error", err.Error()))
		return fmt.Errorf("setting level for %d: %w", id, err)
	}

	r.logger.Info("applied permission level",
		slog.Uint64("player_id", uint64(id)),
		slog.String("level", r.tiers.NameOf(level)))
	return nil
}

// Demote forces the player's applied level to LevelNone, used by the
// hidelink flow where a privileged player masks their rank on demand.
func (r *Reconciler) Demote(ctx context.Context, id model.PlayerID) error {
	return r.ApplyLevel(ctx, id, model.LevelNone)
}
