package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveLink(ctx context.Context, record *model.LinkRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Drop the stale tag index entry if the player relinked under a new tag
	old, err := s.GetLink(ctx, record.PlayerID)
	if err != nil && !errors.Is(err, model.ErrLinkNotFound) {
		return err
	}

	pipe := s.client.Pipeline()
	if old != nil && old.IdentityTag != record.IdentityTag {
		pipe.Del(ctx, tagIndexKey(old.IdentityTag))
	}
	pipe.Set(ctx, linkKey(record.PlayerID), data, 0)
	pipe.Set(ctx, tagIndexKey(record.IdentityTag), strconv.FormatUint(uint64(record.PlayerID), 10), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetLink(ctx context.Context, id model.PlayerID) (*model.LinkRecord, error) {
	data, err := s.client.Get(ctx, linkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLinkNotFound
		}
		return nil, err
	}

	var record model.LinkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) GetLinkByTag(ctx context.Context, tag model.IdentityTag) (*model.LinkRecord, error) {
	raw, err := s.client.Get(ctx, tagIndexKey(tag)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLinkNotFound
		}
		return nil, err
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return s.GetLink(ctx, model.PlayerID(id))
}

func (s *Storage) DeleteLink(ctx context.Context, id model.PlayerID) error {
	record, err := s.GetLink(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrLinkNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, linkKey(id))
	pipe.Del(ctx, tagIndexKey(record.IdentityTag))
	_, err = pipe.Exec(ctx)
	return err
}
