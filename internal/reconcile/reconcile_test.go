package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/testutil"
)

func testTiers() model.TierMap {
	return model.TierMap{Tiers: []model.Tier{
		{Name: "scripter", Level: 1, Groups: []model.GroupID{"11"}},
		{Name: "moderator", Level: 2, Groups: []model.GroupID{"22", "23"}},
		{Name: "spacemaster", Level: 3, Groups: []model.GroupID{"33"}},
		{Name: "admin", Level: 4, Groups: []model.GroupID{"44"}},
	}}
}

// ComputeLevel tests

func TestComputeLevel(t *testing.T) {
	tiers := testTiers()

	tests := []struct {
		name       string
		membership []model.GroupID
		want       model.Level
	}{
		{"no groups", nil, model.LevelNone},
		{"unknown groups", []model.GroupID{"99"}, model.LevelNone},
		{"single lowest tier", []model.GroupID{"11"}, 1},
		{"single highest tier", []model.GroupID{"44"}, 4},
		{"alternate group in tier", []model.GroupID{"23"}, 2},
		{"moderator and admin resolves to admin", []model.GroupID{"22", "44"}, 4},
		{"matching and unknown groups", []model.GroupID{"99", "33"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeLevel(tt.membership, tiers); got != tt.want {
				t.Errorf("ComputeLevel(%v) = %d, want %d", tt.membership, got, tt.want)
			}
		})
	}
}

func TestComputeLevelSkipsDisabledTiers(t *testing.T) {
	tiers := model.TierMap{Tiers: []model.Tier{
		{Name: "scripter", Level: 1, Groups: []model.GroupID{"11"}},
		{Name: "admin", Level: 2, Groups: nil}, // no groups: disabled
	}}

	if got := ComputeLevel([]model.GroupID{"11"}, tiers); got != 1 {
		t.Errorf("ComputeLevel = %d, want 1", got)
	}
}

// Reconciler tests

type ReconcilerSuite struct {
	suite.Suite
	membership  *testutil.FakeMembership
	permissions *testutil.FakePermissions
	reconciler  *Reconciler
	ctx         context.Context
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.membership = testutil.NewFakeMembership()
	s.permissions = testutil.NewFakePermissions()
	s.reconciler = New(s.membership, s.permissions, testTiers(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ReconcilerSuite) TestReconcileAppliesComputedLevel() {
	s.membership.Set("alice#0001", "22")

	err := s.reconciler.Reconcile(s.ctx, 1001, "alice#0001")
	s.Require().NoError(err)

	level, _ := s.permissions.Level(s.ctx, 1001)
	s.Equal(model.Level(2), level)
	s.Equal(1, s.permissions.WriteCount)
}

func (s *ReconcilerSuite) TestReconcileRevokesOnNoMatchingGroup() {
	s.permissions.Set(1001, 4)
	s.membership.Set("alice#0001") // no groups

	err := s.reconciler.Reconcile(s.ctx, 1001, "alice#0001")
	s.Require().NoError(err)

	level, _ := s.permissions.Level(s.ctx, 1001)
	s.Equal(model.LevelNone, level)
}

func (s *ReconcilerSuite) TestReconcileSkipsOnMembershipFailure() {
	s.permissions.Set(1001, 3)
	s.membership.Err = errors.New("gateway timeout")

	err := s.reconciler.Reconcile(s.ctx, 1001, "alice#0001")
	s.Error(err)

	// Transient failure must not demote
	level, _ := s.permissions.Level(s.ctx, 1001)
	s.Equal(model.Level(3), level)
	s.Zero(s.permissions.WriteCount)
}

func (s *ReconcilerSuite) TestApplyLevelIsIdempotent() {
	s.Require().NoError(s.reconciler.ApplyLevel(s.ctx, 1001, 2))
	s.Require().NoError(s.reconciler.ApplyLevel(s.ctx, 1001, 2))

	s.Equal(1, s.permissions.WriteCount)
}

func (s *ReconcilerSuite) TestApplyLevelSkipsWriteOnReadFailure() {
	s.permissions.FailRead = errors.New("host unavailable")

	err := s.reconciler.ApplyLevel(s.ctx, 1001, 2)
	s.Error(err)
	s.Zero(s.permissions.WriteCount)
}

func (s *ReconcilerSuite) TestDemoteForcesLevelNone() {
	s.permissions.Set(1001, 3)

	s.Require().NoError(s.reconciler.Demote(s.ctx, 1001))

	level, _ := s.permissions.Level(s.ctx, 1001)
	s.Equal(model.LevelNone, level)
}

func (s *ReconcilerSuite) TestDemoteOfUnrankedPlayerWritesNothing() {
	s.Require().NoError(s.reconciler.Demote(s.ctx, 1001))
	s.Zero(s.permissions.WriteCount)
}
