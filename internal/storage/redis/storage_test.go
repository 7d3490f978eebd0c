package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/storage/redis"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *redis.Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	var err error
	s.mini, err = miniredis.Run()
	s.Require().NoError(err)

	client := goredis.NewClient(&goredis.Options{Addr: s.mini.Addr()})
	s.storage = redis.NewWithClient(client, redis.Config{URL: "redis://" + s.mini.Addr()})
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	_ = s.storage.Close()
	s.mini.Close()
}

func (s *StorageSuite) record(id model.PlayerID, tag model.IdentityTag) *model.LinkRecord {
	return &model.LinkRecord{
		PlayerID:    id,
		IdentityTag: tag,
		LinkedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *StorageSuite) TestSaveAndGet() {
	rec := s.record(1001, "alice#0001")
	s.Require().NoError(s.storage.SaveLink(s.ctx, rec))

	got, err := s.storage.GetLink(s.ctx, 1001)
	s.Require().NoError(err)
	s.Equal(rec.PlayerID, got.PlayerID)
	s.Equal(rec.IdentityTag, got.IdentityTag)
	s.True(rec.LinkedAt.Equal(got.LinkedAt))
}

func (s *StorageSuite) TestGetMissing() {
	_, err := s.storage.GetLink(s.ctx, 404)
	s.ErrorIs(err, model.ErrLinkNotFound)
}

func (s *StorageSuite) TestGetByTag() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, s.record(1001, "alice#0001")))

	got, err := s.storage.GetLinkByTag(s.ctx, "alice#0001")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1001), got.PlayerID)

	_, err = s.storage.GetLinkByTag(s.ctx, "nobody#0000")
	s.ErrorIs(err, model.ErrLinkNotFound)
}

func (s *StorageSuite) TestRelinkDropsStaleTagIndex() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, s.record(1001, "alice#0001")))
	s.Require().NoError(s.storage.SaveLink(s.ctx, s.record(1001, "alice_new")))

	_, err := s.storage.GetLinkByTag(s.ctx, "alice#0001")
	s.ErrorIs(err, model.ErrLinkNotFound)

	got, err := s.storage.GetLinkByTag(s.ctx, "alice_new")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1001), got.PlayerID)
}

func (s *StorageSuite) TestDelete() {
	s.Require().NoError(s.storage.SaveLink(s.ctx, s.record(1001, "alice#0001")))
	s.Require().NoError(s.storage.DeleteLink(s.ctx, 1001))

	_, err := s.storage.GetLink(s.ctx, 1001)
	s.ErrorIs(err, model.ErrLinkNotFound)
	_, err = s.storage.GetLinkByTag(s.ctx, "alice#0001")
	s.ErrorIs(err, model.ErrLinkNotFound)
}

func (s *StorageSuite) TestDeleteMissingIsNoop() {
	s.NoError(s.storage.DeleteLink(s.ctx, 404))
}
