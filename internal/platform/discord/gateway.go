// Package discord implements the platform gateway on Discord.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/platform"
)

// Config holds Discord gateway settings
type Config struct {
	BotToken string
	// GuildID scopes member lookups; empty falls back to the first guild
	// the bot is in.
	GuildID string
	// LinkChannelID is the designated linking channel
	LinkChannelID string
}

// Gateway is a connected Discord client implementing platform.Gateway
type Gateway struct {
	cfg     Config
	session *discordgo.Session
	logger  *slog.Logger

	mu            sync.RWMutex
	handler       platform.MessageHandler
	removeHandler func()
	started       bool
}

var _ platform.Gateway = (*Gateway)(nil)

// New creates a Gateway; the token must be non-empty (callers disable the
// feature instead of constructing a tokenless gateway).
func New(cfg Config, logger *slog.Logger) (*Gateway, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("bot token is required")
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return &Gateway{
		cfg:     cfg,
		session: session,
		logger:  logger,
	}, nil
}

// OnMessage registers the inbound message handler; call before Start
func (g *Gateway) OnMessage(handler platform.MessageHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handler = handler
}

// Start opens the gateway connection
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return nil
	}

	g.removeHandler = g.session.AddHandler(g.onMessageCreate)
	if err := g.session.Open(); err != nil {
		g.removeHandler()
		g.removeHandler = nil
		return fmt.Errorf("opening discord gateway: %w", err)
	}

	g.started = true
	g.logger.Debug("discord gateway connected")
	return nil
}

// Stop closes the gateway connection
func (g *Gateway) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return nil
	}
	if g.removeHandler != nil {
		g.removeHandler()
		g.removeHandler = nil
	}
	g.started = false
	return g.session.Close()
}

func (g *Gateway) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	g.mu.RLock()
	handler := g.handler
	g.mu.RUnlock()

	if handler == nil || m.Author == nil {
		return
	}

	handler(context.Background(), model.InboundMessage{
		Origin:      model.OriginPlatform,
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		AuthorTag:   tagOf(m.Author),
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	})
}

// Membership returns the role ids the tagged identity holds in the guild.
// An identity that is not a guild member yields an empty set, not an error.
func (g *Gateway) Membership(ctx context.Context, tag model.IdentityTag) ([]model.GroupID, error) {
	member, err := g.findMember(tag)
	if err != nil {
		if errors.Is(err, model.ErrMemberNotFound) {
			return []model.GroupID{}, nil
		}
		return nil, err
	}

	groups := make([]model.GroupID, 0, len(member.Roles))
	for _, roleID := range member.Roles {
		groups = append(groups, model.GroupID(roleID))
	}
	return groups, nil
}

// React adds an emoji reaction to a platform message
func (g *Gateway) React(ctx context.Context, channelID, messageID, emoji string) error {
	return g.session.MessageReactionAdd(channelID, messageID, emoji)
}

// LinkChannelName resolves the display name of the linking channel
func (g *Gateway) LinkChannelName(ctx context.Context) (string, error) {
	if g.cfg.LinkChannelID == "" {
		return "", errors.New("no linking channel configured")
	}
	channel, err := g.session.Channel(g.cfg.LinkChannelID)
	if err != nil {
		return "", fmt.Errorf("resolving linking channel: %w", err)
	}
	return channel.Name, nil
}

func (g *Gateway) findMember(tag model.IdentityTag) (*discordgo.Member, error) {
	guildID, err := g.guildID()
	if err != nil {
		return nil, err
	}

	username, _ := splitTag(tag)
	members, err := g.session.GuildMembersSearch(guildID, username, 100)
	if err != nil {
		return nil, fmt.Errorf("searching guild members: %w", err)
	}

	for _, member := range members {
		if member.User != nil && tagOf(member.User) == tag {
			return member, nil
		}
	}
	return nil, model.ErrMemberNotFound
}

func (g *Gateway) guildID() (string, error) {
	if g.cfg.GuildID != "" {
		return g.cfg.GuildID, nil
	}
	guilds := g.session.State.Guilds
	if len(guilds) == 0 {
		return "", model.ErrGatewayClosed
	}
	return guilds[0].ID, nil
}

// tagOf renders a user's stable handle. Accounts migrated off
// discriminators use the bare username.
func tagOf(u *discordgo.User) model.IdentityTag {
	if u.Discriminator != "" && u.Discriminator != "0" {
		return model.IdentityTag(u.Username + "#" + u.Discriminator)
	}
	return model.IdentityTag(u.Username)
}

func splitTag(tag model.IdentityTag) (username, discriminator string) {
	s := string(tag)
	if idx := strings.LastIndex(s, "#"); idx != -1 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}
