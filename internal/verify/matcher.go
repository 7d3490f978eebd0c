// Package verify matches inbound platform messages against outstanding
// verification codes and completes links.
package verify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rolelink/rolelink/internal/directory"
	"github.com/rolelink/rolelink/internal/host"
	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/platform"
	"github.com/rolelink/rolelink/internal/reconcile"
	"github.com/rolelink/rolelink/internal/registry"
)

// Matcher consumes messages from the designated linking channel. Code
// possession is the sole credential: a matching message binds the link to
// whichever platform identity produced it.
type Matcher struct {
	registry   *registry.Registry
	directory  directory.Directory
	reconciler *reconcile.Reconciler
	notifier   host.Notifier
	reactor    platform.Reactor // nil disables reactions

	linkChannelID string
	logger        *slog.Logger
}

// New creates a new Matcher listening on the given platform channel
func New(
	reg *registry.Registry,
	dir directory.Directory,
	rec *reconcile.Reconciler,
	notifier host.Notifier,
	reactor platform.Reactor,
	linkChannelID string,
	logger *slog.Logger,
) *Matcher {
	return &Matcher{
		registry:      reg,
		directory:     dir,
		reconciler:    rec,
		notifier:      notifier,
		reactor:       reactor,
		linkChannelID: linkChannelID,
		logger:        logger,
	}
}

// HandleMessage scans one inbound message. Messages from bots, from game
// chat, or from any channel other than the linking channel are ignored
// without scanning. Casual chat that matches no code is ignored silently.
func (m *Matcher) HandleMessage(ctx context.Context, msg model.InboundMessage) {
	if msg.AuthorIsBot {
		return
	}
	if msg.Origin != model.OriginPlatform || m.linkChannelID == "" || msg.ChannelID != m.linkChannelID {
		return
	}

	content := strings.ToUpper(strings.TrimSpace(msg.Content))
	if content == "" {
		return
	}

	pending := m.registry.PendingCodes()
	playerID, ok := pending[content]
	if !ok {
		return
	}

	// Keep the original issue time so a rollback restores the code as it was
	createdAt := m.registry.StatusOf(playerID).CodeCreatedAt

	if !m.registry.CompleteLink(playerID, msg.AuthorTag) {
		// Raced a disconnect or a duplicate completion; valid end state either way
		return
	}

	if err := m.directory.Store(ctx, playerID, msg.AuthorTag); err != nil {
		m.logger.Warn("persisting link failed, rolling back to pending",
			slog.Uint64("player_id", uint64(playerID)),
			slog.String("identity_tag", string(msg.AuthorTag)),
			slog.String("error", err.Error()))

		m.registry.RestorePending(playerID, content, createdAt)
		m.notify(ctx, playerID, "Link unsuccessful")
		m.react(ctx, msg, platform.EmojiFailure)
		return
	}

	m.logger.Info("link completed",
		slog.Uint64("player_id", uint64(playerID)),
		slog.String("identity_tag", string(msg.AuthorTag)))

	m.notify(ctx, playerID, "Link successful")
	m.react(ctx, msg, platform.EmojiSuccess)

	if err := m.reconciler.Reconcile(ctx, playerID, msg.AuthorTag); err != nil {
		// Already logged; the next join or poll retries
		return
	}
}

func (m *Matcher) notify(ctx context.Context, id model.PlayerID, text string) {
	if err := m.notifier.Notify(ctx, id, text); err != nil {
		m.logger.Warn("notify failed",
			slog.Uint64("player_id", uint64(id)),
			slog.String("error", err.Error()))
	}
}

func (m *Matcher) react(ctx context.Context, msg model.InboundMessage, emoji string) {
	if m.reactor == nil || msg.MessageID == "" {
		return
	}
	if err := m.reactor.React(ctx, msg.ChannelID, msg.MessageID, emoji); err != nil {
		m.logger.Debug("reaction failed", slog.String("error", err.Error()))
	}
}
