package testutil

import (
	"context"
	"sync"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/platform"
)

// FakeGateway is an in-process platform gateway for tests. Membership and
// reactions delegate to the embedded fakes; Deliver pushes a message
// through the registered handler synchronously.
type FakeGateway struct {
	Members *FakeMembership
	Reactor *FakeReactor

	// ChannelName is returned by LinkChannelName
	ChannelName string

	mu      sync.Mutex
	handler platform.MessageHandler
	started bool
}

var _ platform.Gateway = (*FakeGateway)(nil)

// NewFakeGateway creates a FakeGateway with empty membership
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Members:     NewFakeMembership(),
		Reactor:     NewFakeReactor(),
		ChannelName: "linking",
	}
}

func (g *FakeGateway) Membership(ctx context.Context, tag model.IdentityTag) ([]model.GroupID, error) {
	return g.Members.Membership(ctx, tag)
}

func (g *FakeGateway) React(ctx context.Context, channelID, messageID, emoji string) error {
	return g.Reactor.React(ctx, channelID, messageID, emoji)
}

func (g *FakeGateway) OnMessage(handler platform.MessageHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handler = handler
}

func (g *FakeGateway) LinkChannelName(ctx context.Context) (string, error) {
	return g.ChannelName, nil
}

func (g *FakeGateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started = true
	return nil
}

func (g *FakeGateway) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started = false
	return nil
}

// Started reports whether Start has been called without a matching Stop
func (g *FakeGateway) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}

// Deliver feeds a message through the registered handler
func (g *FakeGateway) Deliver(ctx context.Context, msg model.InboundMessage) {
	g.mu.Lock()
	handler := g.handler
	g.mu.Unlock()
	if handler != nil {
		handler(ctx, msg)
	}
}
