package testutil

import (
	"context"
	"sync"

	"github.com/rolelink/rolelink/internal/model"
)

// FakeDirectory is an in-memory identity directory for tests. Set FailStore
// or FailLookup to simulate transient outages.
type FakeDirectory struct {
	mu         sync.Mutex
	links      map[model.PlayerID]model.IdentityTag
	FailStore  error
	FailLookup error
	StoreCalls int
}

// NewFakeDirectory creates an empty FakeDirectory
func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{links: make(map[model.PlayerID]model.IdentityTag)}
}

func (d *FakeDirectory) Lookup(ctx context.Context, id model.PlayerID) (model.IdentityTag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailLookup != nil {
		return "", d.FailLookup
	}
	tag, ok := d.links[id]
	if !ok {
		return "", model.ErrLinkNotFound
	}
	return tag, nil
}

func (d *FakeDirectory) Store(ctx context.Context, id model.PlayerID, tag model.IdentityTag) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.StoreCalls++
	if d.FailStore != nil {
		return d.FailStore
	}
	d.links[id] = tag
	return nil
}

// Set seeds a link without counting as a store call
func (d *FakeDirectory) Set(id model.PlayerID, tag model.IdentityTag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.links[id] = tag
}

// Get returns the stored tag, if any
func (d *FakeDirectory) Get(id model.PlayerID) (model.IdentityTag, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tag, ok := d.links[id]
	return tag, ok
}

// FakeMembership is a MembershipSource backed by a map. Set Err to simulate
// a query failure, which is distinct from an empty membership.
type FakeMembership struct {
	mu     sync.Mutex
	groups map[model.IdentityTag][]model.GroupID
	Err    error
}

// NewFakeMembership creates an empty FakeMembership
func NewFakeMembership() *FakeMembership {
	return &FakeMembership{groups: make(map[model.IdentityTag][]model.GroupID)}
}

func (m *FakeMembership) Membership(ctx context.Context, tag model.IdentityTag) ([]model.GroupID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	// Absent identities hold no groups; that is not an error
	return m.groups[tag], nil
}

// Set assigns an identity's groups
func (m *FakeMembership) Set(tag model.IdentityTag, groups ...model.GroupID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[tag] = groups
}

// FakePermissions is an in-memory host permission store counting writes
type FakePermissions struct {
	mu         sync.Mutex
	levels     map[model.PlayerID]model.Level
	WriteCount int
	FailRead   error
	FailWrite  error
}

// NewFakePermissions creates an empty FakePermissions
func NewFakePermissions() *FakePermissions {
	return &FakePermissions{levels: make(map[model.PlayerID]model.Level)}
}

func (p *FakePermissions) Level(ctx context.Context, id model.PlayerID) (model.Level, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailRead != nil {
		return model.LevelNone, p.FailRead
	}
	return p.levels[id], nil
}

func (p *FakePermissions) SetLevel(ctx context.Context, id model.PlayerID, level model.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWrite != nil {
		return p.FailWrite
	}
	p.WriteCount++
	p.levels[id] = level
	return nil
}

// Set seeds a level without counting as a write
func (p *FakePermissions) Set(id model.PlayerID, level model.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels[id] = level
}

// FakeNotifier records notifications sent to players
type FakeNotifier struct {
	mu       sync.Mutex
	Messages map[model.PlayerID][]string
	Err      error
}

// NewFakeNotifier creates an empty FakeNotifier
func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{Messages: make(map[model.PlayerID][]string)}
}

func (n *FakeNotifier) Notify(ctx context.Context, id model.PlayerID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Messages[id] = append(n.Messages[id], text)
	return nil
}

// Sent returns the messages delivered to one player
func (n *FakeNotifier) Sent(id model.PlayerID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.Messages[id]))
	copy(out, n.Messages[id])
	return out
}

// FakeServerInfo reports scripted connection state
type FakeServerInfo struct {
	mu        sync.Mutex
	connected map[model.PlayerID]bool
	Count     int
	Limit     int
}

// NewFakeServerInfo creates a FakeServerInfo with no connected players
func NewFakeServerInfo() *FakeServerInfo {
	return &FakeServerInfo{connected: make(map[model.PlayerID]bool)}
}

func (s *FakeServerInfo) IsConnected(id model.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected[id]
}

func (s *FakeServerInfo) MemberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Count
}

func (s *FakeServerInfo) MemberLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Limit
}

// SetConnected marks a player as connected or not
func (s *FakeServerInfo) SetConnected(id model.PlayerID, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected[id] = connected
}

// FakeReactor records emoji reactions posted to platform messages
type FakeReactor struct {
	mu        sync.Mutex
	Reactions []Reaction
}

// Reaction is one recorded reaction
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// NewFakeReactor creates an empty FakeReactor
func NewFakeReactor() *FakeReactor {
	return &FakeReactor{}
}

func (r *FakeReactor) React(ctx context.Context, channelID, messageID, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reactions = append(r.Reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

// All returns the recorded reactions
func (r *FakeReactor) All() []Reaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reaction, len(r.Reactions))
	copy(out, r.Reactions)
	return out
}
