// Package admission decides whether a connection attempt against a full
// server may be provisionally admitted on reserved group membership. This
// runs synchronously before the normal join flow and is independent of the
// link registry.
package admission

import (
	"context"
	"log/slog"

	"github.com/rolelink/rolelink/internal/directory"
	"github.com/rolelink/rolelink/internal/host"
	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/platform"
)

// Config holds admission configuration
type Config struct {
	Enabled        bool
	ReservedGroups []model.GroupID
}

// Checker evaluates reserved-slot bypass requests
type Checker struct {
	directory  directory.Directory
	membership platform.MembershipSource
	server     host.ServerInfo
	cfg        Config
	logger     *slog.Logger
}

// New creates a new Checker
func New(dir directory.Directory, membership platform.MembershipSource, server host.ServerInfo, cfg Config, logger *slog.Logger) *Checker {
	return &Checker{
		directory:  dir,
		membership: membership,
		server:     server,
		cfg:        cfg,
		logger:     logger,
	}
}

// AllowReserved reports whether the connecting player should be admitted
// despite the server being at capacity. False means no opinion: the host
// applies its normal verdict. Lookup failures never admit.
func (c *Checker) AllowReserved(ctx context.Context, id model.PlayerID) bool {
	if !c.cfg.Enabled || len(c.cfg.ReservedGroups) == 0 {
		return false
	}

	// Only intervene once the server is actually full
	limit := c.server.MemberLimit()
	if limit <= 0 || c.server.MemberCount() < limit {
		return false
	}

	tag, err := c.directory.Lookup(ctx, id)
	if err != nil {
		return false
	}

	groups, err := c.membership.Membership(ctx, tag)
	if err != nil {
		return false
	}

	for _, reserved := range c.cfg.ReservedGroups {
		for _, g := range groups {
			if g == reserved {
				c.logger.Info("reserved slot bypass",
					slog.Uint64("player_id", uint64(id)),
					slog.String("identity_tag", string(tag)),
					slog.String("group", string(g)))
				return true
			}
		}
	}
	return false
}
