package memory

import (
	"context"
	"sync"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	links    map[model.PlayerID]*model.LinkRecord
	tagIndex map[model.IdentityTag]model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		links:    make(map[model.PlayerID]*model.LinkRecord),
		tagIndex: make(map[model.IdentityTag]model.PlayerID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveLink(ctx context.Context, record *model.LinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.links[record.PlayerID]; ok {
		delete(s.tagIndex, old.IdentityTag)
	}
	s.links[record.PlayerID] = record
	s.tagIndex[record.IdentityTag] = record.PlayerID
	return nil
}

func (s *Storage) GetLink(ctx context.Context, id model.PlayerID) (*model.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.links[id]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	return record, nil
}

func (s *Storage) GetLinkByTag(ctx context.Context, tag model.IdentityTag) (*model.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tagIndex[tag]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	return s.links[id], nil
}

func (s *Storage) DeleteLink(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.links[id]; ok {
		delete(s.tagIndex, record.IdentityTag)
		delete(s.links, id)
	}
	return nil
}
