// Package session is the host-facing facade: the game server invokes its
// lifecycle and event methods, and it routes them through the registry,
// watcher, matcher and reconciler.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rolelink/rolelink/internal/admission"
	"github.com/rolelink/rolelink/internal/config"
	"github.com/rolelink/rolelink/internal/directory"
	"github.com/rolelink/rolelink/internal/host"
	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/platform"
	"github.com/rolelink/rolelink/internal/reconcile"
	"github.com/rolelink/rolelink/internal/registry"
	"github.com/rolelink/rolelink/internal/verify"
	"github.com/rolelink/rolelink/internal/watcher"
)

// LinkCommand is the chat command players type to start linking
const LinkCommand = "/link"

// Session owns the per-session wiring. Construct one per loaded game
// session and Stop it on unload; all event methods are safe from any
// host dispatch goroutine.
type Session struct {
	cfg        *config.Config
	registry   *registry.Registry
	matcher    *verify.Matcher
	reconciler *reconcile.Reconciler
	watcher    *watcher.Watcher
	admission  *admission.Checker
	directory  directory.Directory
	gateway    platform.Gateway // nil when the gateway feature is disabled
	notifier   host.Notifier
	logger     *slog.Logger

	mu      sync.Mutex
	started bool
}

// New creates a Session from already constructed components; use the
// factory package for standard wiring.
func New(
	cfg *config.Config,
	reg *registry.Registry,
	matcher *verify.Matcher,
	rec *reconcile.Reconciler,
	w *watcher.Watcher,
	adm *admission.Checker,
	dir directory.Directory,
	gateway platform.Gateway,
	notifier host.Notifier,
	logger *slog.Logger,
) *Session {
	return &Session{
		cfg:        cfg,
		registry:   reg,
		matcher:    matcher,
		reconciler: rec,
		watcher:    w,
		admission:  adm,
		directory:  dir,
		gateway:    gateway,
		notifier:   notifier,
		logger:     logger,
	}
}

// Start connects the platform gateway and begins consuming its messages.
// Safe to call with the gateway disabled; linking then degrades to
// directory-only reconciliation.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.gateway == nil {
		s.logger.Warn("no bot token set, linking and membership reconciliation are disabled")
	} else {
		s.gateway.OnMessage(s.HandlePlatformMessage)
		if err := s.gateway.Start(ctx); err != nil {
			return fmt.Errorf("starting gateway: %w", err)
		}
	}

	s.started = true
	s.logger.Info("session started")
	return nil
}

// Stop tears the session down: timers cancelled, gateway disconnected,
// all in-memory link state cleared.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.watcher.Stop()
	var err error
	if s.gateway != nil {
		err = s.gateway.Stop()
	}
	s.registry.Reset()
	s.started = false
	s.logger.Info("session stopped")
	return err
}

// HandlePlayerJoined re-resolves the player against the directory. Linked
// players are reconciled immediately; unlinked ones get a connecting entry
// and, if enabled, a delayed reminder. Administrators are skipped entirely.
func (s *Session) HandlePlayerJoined(ctx context.Context, id model.PlayerID) {
	if s.cfg.IsAdministrator(id) {
		return
	}

	tag, err := s.directory.Lookup(ctx, id)
	switch {
	case err == nil:
		s.registry.MarkLinked(id, tag)
		// Errors are logged inside; the next trigger retries
		_ = s.reconciler.Reconcile(ctx, id, tag)

	case errors.Is(err, model.ErrLinkNotFound):
		s.registry.MarkUnlinked(id)
		s.registry.MarkConnecting(id)
		if s.cfg.RemindersEnabled() {
			s.watcher.Arm(id)
		}

	default:
		// Transient directory failure: keep prior state, retry on a
		// later trigger
		s.logger.Warn("directory lookup failed on join",
			slog.Uint64("player_id", uint64(id)),
			slog.String("error", err.Error()))
	}
}

// HandlePlayerLeft clears the player's connecting entry and pending code
func (s *Session) HandlePlayerLeft(id model.PlayerID) {
	s.watcher.Disarm(id)
	s.registry.MarkDisconnected(id)
}

// HandleChatMessage consumes in-game chat, reacting only to the link command
func (s *Session) HandleChatMessage(ctx context.Context, id model.PlayerID, text string) {
	if strings.TrimSpace(text) == LinkCommand {
		s.HandleLinkCommand(ctx, id)
	}
}

// HandleLinkCommand runs the /link flow: report the existing link and
// reconcile, or issue a code with instructions for the linking channel.
func (s *Session) HandleLinkCommand(ctx context.Context, id model.PlayerID) {
	if !s.cfg.LinkingEnabled() {
		s.logger.Debug("link command ignored, linking disabled", slog.Uint64("player_id", uint64(id)))
		return
	}

	result := s.registry.RequestLink(id)
	if result.AlreadyLinked {
		s.notify(ctx, id, fmt.Sprintf("Your account is linked to %s", result.IdentityTag))
		_ = s.reconciler.Reconcile(ctx, id, result.IdentityTag)
		return
	}
	if result.Code == "" {
		return
	}

	s.notify(ctx, id, fmt.Sprintf("Write '%s' in the %s channel on our Discord server", result.Code, s.linkChannelName(ctx)))
}

// HandlePlatformMessage feeds a gateway message to the verification matcher
func (s *Session) HandlePlatformMessage(ctx context.Context, msg model.InboundMessage) {
	s.matcher.HandleMessage(ctx, msg)
}

// HidePlayer forces the player's applied level back to none, for
// privileged players who want their rank masked.
func (s *Session) HidePlayer(ctx context.Context, id model.PlayerID) error {
	return s.reconciler.Demote(ctx, id)
}

// AllowReserved is the synchronous admission-control hook for connection
// attempts against a full server.
func (s *Session) AllowReserved(ctx context.Context, id model.PlayerID) bool {
	if s.admission == nil {
		return false
	}
	return s.admission.AllowReserved(ctx, id)
}

// Registry exposes read access to link state for host commands
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

func (s *Session) linkChannelName(ctx context.Context) string {
	if s.gateway != nil {
		if name, err := s.gateway.LinkChannelName(ctx); err == nil && name != "" {
			return "#" + name
		}
	}
	return "linking"
}

func (s *Session) notify(ctx context.Context, id model.PlayerID, text string) {
	if err := s.notifier.Notify(ctx, id, text); err != nil {
		s.logger.Warn("notify failed",
			slog.Uint64("player_id", uint64(id)),
			slog.String("error", err.Error()))
	}
}
