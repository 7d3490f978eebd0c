// Package factory wires the application components together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/rolelink/rolelink/internal/admission"
	"github.com/rolelink/rolelink/internal/config"
	"github.com/rolelink/rolelink/internal/dependencies/clock"
	"github.com/rolelink/rolelink/internal/dependencies/random"
	"github.com/rolelink/rolelink/internal/directory"
	"github.com/rolelink/rolelink/internal/directory/httpdir"
	"github.com/rolelink/rolelink/internal/host"
	"github.com/rolelink/rolelink/internal/platform"
	"github.com/rolelink/rolelink/internal/platform/discord"
	"github.com/rolelink/rolelink/internal/reconcile"
	"github.com/rolelink/rolelink/internal/registry"
	"github.com/rolelink/rolelink/internal/session"
	"github.com/rolelink/rolelink/internal/verify"
	"github.com/rolelink/rolelink/internal/watcher"
)

// HostDeps are the collaborators the game server supplies
type HostDeps struct {
	Permissions host.PermissionStore
	Notifier    host.Notifier
	Server      host.ServerInfo
}

// App contains all wired application components
type App struct {
	Config *config.Config

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Collaborator clients
	Directory directory.Directory
	Gateway   platform.Gateway // nil when the gateway feature is disabled

	// Core
	Registry   *registry.Registry
	Reconciler *reconcile.Reconciler
	Matcher    *verify.Matcher
	Watcher    *watcher.Watcher
	Admission  *admission.Checker
	Session    *session.Session
}

// New creates a new application with all dependencies wired. A missing bot
// token disables the gateway-backed features with one warning instead of
// failing startup.
func New(cfg *config.Config, deps HostDeps, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Permissions == nil || deps.Notifier == nil || deps.Server == nil {
		return nil, errors.New("host dependencies are required")
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var gateway platform.Gateway
	if cfg.GatewayEnabled() {
		gw, err := discord.New(discord.Config{
			BotToken:      cfg.Discord.BotToken,
			GuildID:       cfg.Discord.GuildID,
			LinkChannelID: cfg.Discord.LinkChannelID,
		}, logger)
		if err != nil {
			return nil, err
		}
		gateway = gw

		if cfg.Discord.LinkChannelID == "" {
			logger.Warn("no linking channel configured, verification-code linking is disabled")
		}
	} else {
		logger.Warn("no bot token set, the gateway features will not work at all")
	}

	dir := httpdir.New(cfg.Directory.URL, cfg.Directory.Token)

	return NewWithCollaborators(cfg, deps, dir, gateway, clock.New(), random.New(), logger), nil
}

// NewWithCollaborators wires the core around explicit collaborators,
// used directly by tests and embedded deployments.
func NewWithCollaborators(
	cfg *config.Config,
	deps HostDeps,
	dir directory.Directory,
	gateway platform.Gateway,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	var membership platform.MembershipSource = platform.Disconnected{}
	var reactor platform.Reactor
	if gateway != nil {
		membership = gateway
		reactor = gateway
	}

	reg := registry.New(clk, rnd, logger)
	rec := reconcile.New(membership, deps.Permissions, cfg.TierMap(), logger)
	matcher := verify.New(reg, dir, rec, deps.Notifier, reactor, cfg.Discord.LinkChannelID, logger)
	w := watcher.New(reg, deps.Server, deps.Permissions, deps.Notifier, clk, watcher.Config{
		Delay:             cfg.Reminders.Delay,
		ExcludePrivileged: cfg.RemindersExcludePrivileged(),
	}, logger)
	adm := admission.New(dir, membership, deps.Server, admission.Config{
		Enabled:        cfg.Reserved.Enabled,
		ReservedGroups: cfg.ReservedGroups(),
	}, logger)
	sess := session.New(cfg, reg, matcher, rec, w, adm, dir, gateway, deps.Notifier, logger)

	return &App{
		Config:     cfg,
		Clock:      clk,
		Random:     rnd,
		Directory:  dir,
		Gateway:    gateway,
		Registry:   reg,
		Reconciler: rec,
		Matcher:    matcher,
		Watcher:    w,
		Admission:  adm,
		Session:    sess,
	}
}
