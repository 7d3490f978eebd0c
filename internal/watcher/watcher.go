// Package watcher arms one-shot delayed reminders for players who join
// without a known link.
package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rolelink/rolelink/internal/dependencies/clock"
	"github.com/rolelink/rolelink/internal/host"
	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/registry"
)

// ReminderText is the one-shot nudge sent to unlinked players
const ReminderText = "Write '/link' in chat to link your account with Discord"

// Config holds watcher configuration
type Config struct {
	// Delay before the reminder fires after an unlinked join
	Delay time.Duration
	// ExcludePrivileged skips reminders for players whose applied level
	// is already above none
	ExcludePrivileged bool
}

// DefaultConfig returns default watcher configuration
func DefaultConfig() Config {
	return Config{
		Delay:             5 * time.Second,
		ExcludePrivileged: true,
	}
}

// Watcher schedules reminders. Timers hold no locks across the delay;
// cancellation is a state recheck at fire time, so a timer that outlives a
// link or a disconnect elapses as a no-op.
type Watcher struct {
	registry    *registry.Registry
	server      host.ServerInfo
	permissions host.PermissionStore
	notifier    host.Notifier
	clock       clock.Clock
	cfg         Config
	logger      *slog.Logger

	mu      sync.Mutex
	timers  map[model.PlayerID]clock.Timer
	stopped bool
}

// New creates a new Watcher
func New(
	reg *registry.Registry,
	server host.ServerInfo,
	permissions host.PermissionStore,
	notifier host.Notifier,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Watcher {
	if cfg.Delay == 0 {
		cfg.Delay = DefaultConfig().Delay
	}
	return &Watcher{
		registry:    reg,
		server:      server,
		permissions: permissions,
		notifier:    notifier,
		clock:       clk,
		cfg:         cfg,
		logger:      logger,
		timers:      make(map[model.PlayerID]clock.Timer),
	}
}

// Arm schedules the player's reminder. Only one armed timer exists per
// player; rearming before firing replaces rather than stacks.
func (w *Watcher) Arm(id model.PlayerID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if old, ok := w.timers[id]; ok {
		old.Stop()
	}
	w.timers[id] = w.clock.AfterFunc(w.cfg.Delay, func() {
		w.fire(id)
	})
}

// Disarm cancels the player's reminder if one is armed
func (w *Watcher) Disarm(id model.PlayerID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[id]; ok {
		timer.Stop()
		delete(w.timers, id)
	}
}

// Stop cancels all timers; the watcher accepts no further arms
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, timer := range w.timers {
		timer.Stop()
		delete(w.timers, id)
	}
	w.stopped = true
}

// fire runs on the timer goroutine. A stale read here only risks a
// spurious reminder, which the state checks below suppress.
func (w *Watcher) fire(id model.PlayerID) {
	w.mu.Lock()
	delete(w.timers, id)
	w.mu.Unlock()

	if !w.registry.IsConnecting(id) {
		return
	}
	if !w.server.IsConnected(id) {
		return
	}
	if w.registry.StatusOf(id).State == model.LinkStateLinked {
		return
	}

	ctx := context.Background()
	if w.cfg.ExcludePrivileged {
		level, err := w.permissions.Level(ctx, id)
		if err == nil && level > model.LevelNone {
			w.registry.ClearConnecting(id)
			return
		}
	}

	// Exactly one reminder per connecting entry
	w.registry.ClearConnecting(id)

	if err := w.notifier.Notify(ctx, id, ReminderText); err != nil {
		w.logger.Warn("reminder notify failed",
			slog.Uint64("player_id", uint64(id)),
			slog.String("error", err.Error()))
		return
	}

	w.logger.Debug("reminder sent", slog.Uint64("player_id", uint64(id)))
}
