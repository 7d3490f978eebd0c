package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rolelink/rolelink/internal/dependencies/mocks"
	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/registry"
	"github.com/rolelink/rolelink/internal/testutil"
)

const delay = 5 * time.Second

type WatcherSuite struct {
	suite.Suite
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	registry    *registry.Registry
	server      *testutil.FakeServerInfo
	permissions *testutil.FakePermissions
	notifier    *testutil.FakeNotifier
	watcher     *Watcher
}

func TestWatcherSuite(t *testing.T) {
	suite.Run(t, new(WatcherSuite))
}

func (s *WatcherSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = registry.New(s.clock, s.random, testutil.NopLogger())
	s.server = testutil.NewFakeServerInfo()
	s.permissions = testutil.NewFakePermissions()
	s.notifier = testutil.NewFakeNotifier()
	s.watcher = New(s.registry, s.server, s.permissions, s.notifier, s.clock,
		Config{Delay: delay, ExcludePrivileged: true}, testutil.NopLogger())
}

// join simulates an unlinked player joining: connected, connecting entry,
// reminder armed
func (s *WatcherSuite) join(id model.PlayerID) {
	s.server.SetConnected(id, true)
	s.registry.MarkConnecting(id)
	s.watcher.Arm(id)
}

func (s *WatcherSuite) TestReminderFiresOnceAfterDelay() {
	s.join(1001)

	s.clock.Advance(delay - time.Millisecond)
	s.Empty(s.notifier.Sent(1001))

	s.clock.Advance(time.Millisecond)
	s.Equal([]string{ReminderText}, s.notifier.Sent(1001))

	// Elapsing further does not fire again
	s.clock.Advance(time.Hour)
	s.Equal([]string{ReminderText}, s.notifier.Sent(1001))
	s.False(s.registry.IsConnecting(1001))
}

func (s *WatcherSuite) TestReminderSuppressedAfterLink() {
	s.join(1001)
	s.random.QueueString("K3F9")
	s.registry.RequestLink(1001)
	s.registry.CompleteLink(1001, "alice#0001")

	s.clock.Advance(delay)

	s.Empty(s.notifier.Sent(1001))
}

func (s *WatcherSuite) TestReminderSuppressedAfterDisconnect() {
	s.join(1001)
	s.server.SetConnected(1001, false)
	s.registry.MarkDisconnected(1001)

	s.clock.Advance(delay)

	s.Empty(s.notifier.Sent(1001))
}

func (s *WatcherSuite) TestReminderSuppressedForPrivilegedPlayer() {
	s.join(1001)
	s.permissions.Set(1001, 3)

	s.clock.Advance(delay)

	s.Empty(s.notifier.Sent(1001))
	s.False(s.registry.IsConnecting(1001))
}

func (s *WatcherSuite) TestPrivilegedPlayerRemindedWhenExclusionOff() {
	s.watcher = New(s.registry, s.server, s.permissions, s.notifier, s.clock,
		Config{Delay: delay, ExcludePrivileged: false}, testutil.NopLogger())
	s.join(1001)
	s.permissions.Set(1001, 3)

	s.clock.Advance(delay)

	s.Equal([]string{ReminderText}, s.notifier.Sent(1001))
}

func (s *WatcherSuite) TestRearmReplacesInsteadOfStacking() {
	s.join(1001)
	s.clock.Advance(2 * time.Second)
	s.watcher.Arm(1001)

	// The original deadline passes without firing
	s.clock.Advance(3 * time.Second)
	s.Empty(s.notifier.Sent(1001))

	// The replacement deadline fires exactly once
	s.clock.Advance(2 * time.Second)
	s.Equal([]string{ReminderText}, s.notifier.Sent(1001))
}

func (s *WatcherSuite) TestDisarmCancelsReminder() {
	s.join(1001)
	s.watcher.Disarm(1001)

	s.clock.Advance(delay)

	s.Empty(s.notifier.Sent(1001))
}

func (s *WatcherSuite) TestStopCancelsAllAndRejectsArms() {
	s.join(1001)
	s.join(1002)
	s.watcher.Stop()

	s.watcher.Arm(1003)
	s.registry.MarkConnecting(1003)
	s.server.SetConnected(1003, true)

	s.clock.Advance(delay)

	s.Empty(s.notifier.Sent(1001))
	s.Empty(s.notifier.Sent(1002))
	s.Empty(s.notifier.Sent(1003))
}

func (s *WatcherSuite) TestZeroDelayFallsBackToDefault() {
	w := New(s.registry, s.server, s.permissions, s.notifier, s.clock,
		Config{}, testutil.NopLogger())
	s.server.SetConnected(1001, true)
	s.registry.MarkConnecting(1001)
	w.Arm(1001)

	s.clock.Advance(DefaultConfig().Delay)

	s.Equal([]string{ReminderText}, s.notifier.Sent(1001))
}
