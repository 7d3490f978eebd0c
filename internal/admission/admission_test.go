package admission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/testutil"
)

type CheckerSuite struct {
	suite.Suite
	directory  *testutil.FakeDirectory
	membership *testutil.FakeMembership
	server     *testutil.FakeServerInfo
	ctx        context.Context
}

func TestCheckerSuite(t *testing.T) {
	suite.Run(t, new(CheckerSuite))
}

func (s *CheckerSuite) SetupTest() {
	s.directory = testutil.NewFakeDirectory()
	s.membership = testutil.NewFakeMembership()
	s.server = testutil.NewFakeServerInfo()
	s.server.Count = 10
	s.server.Limit = 10
	s.ctx = context.Background()
}

func (s *CheckerSuite) checker(cfg Config) *Checker {
	return New(s.directory, s.membership, s.server, cfg, testutil.NopLogger())
}

func (s *CheckerSuite) enabled() Config {
	return Config{Enabled: true, ReservedGroups: []model.GroupID{"77"}}
}

func (s *CheckerSuite) TestAllowsReservedMemberOnFullServer() {
	s.directory.Set(1001, "alice#0001")
	s.membership.Set("alice#0001", "55", "77")

	s.True(s.checker(s.enabled()).AllowReserved(s.ctx, 1001))
}

func (s *CheckerSuite) TestDeniesWhenDisabled() {
	s.directory.Set(1001, "alice#0001")
	s.membership.Set("alice#0001", "77")

	s.False(s.checker(Config{}).AllowReserved(s.ctx, 1001))
}

func (s *CheckerSuite) TestNoOpinionWhileServerHasRoom() {
	s.server.Count = 5
	s.directory.Set(1001, "alice#0001")
	s.membership.Set("alice#0001", "77")

	s.False(s.checker(s.enabled()).AllowReserved(s.ctx, 1001))
}

func (s *CheckerSuite) TestNoOpinionWithoutMemberLimit() {
	s.server.Limit = 0

	s.False(s.checker(s.enabled()).AllowReserved(s.ctx, 1001))
}

func (s *CheckerSuite) TestDeniesUnlinkedPlayer() {
	s.False(s.checker(s.enabled()).AllowReserved(s.ctx, 1001))
}

func (s *CheckerSuite) TestDeniesNonReservedMember() {
	s.directory.Set(1001, "alice#0001")
	s.membership.Set("alice#0001", "55")

	s.False(s.checker(s.enabled()).AllowReserved(s.ctx, 1001))
}

func (s *CheckerSuite) TestDeniesOnDirectoryFailure() {
	s.directory.Set(1001, "alice#0001")
	s.directory.FailLookup = errors.New("directory down")
	s.membership.Set("alice#0001", "77")

	s.False(s.checker(s.enabled()).AllowReserved(s.ctx, 1001))
}

func (s *CheckerSuite) TestDeniesOnMembershipFailure() {
	s.directory.Set(1001, "alice#0001")
	s.membership.Err = errors.New("gateway timeout")

	s.False(s.checker(s.enabled()).AllowReserved(s.ctx, 1001))
}
