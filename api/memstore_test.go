package api_test

import (
	"context"
	"sync"
	"time"

	"github.com/vtpl1/ruleserver/db"
	"github.com/vtpl1/ruleserver/models"
	"github.com/vtpl1/ruleserver/rule"
)

// memStore is an in-memory db.ConfigStore with the same save semantics as
// the Mongo implementation: defaults on first save, version bump per save,
// conflict on a stale base version.
type memStore struct {
	mu   sync.Mutex
	recs map[models.ConfigKey]models.ConfigRecord
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[models.ConfigKey]models.ConfigRecord)}
}

func (s *memStore) Load(_ context.Context, key models.ConfigKey) (*models.ConfigRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &rec, nil
}

func (s *memStore) Save(_ context.Context, key models.ConfigKey, patch rule.Patch, baseVersion int64) (*models.ConfigRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()

	existing, ok := s.recs[key]
	if !ok {
		if baseVersion != 0 {
			return nil, db.ErrConflict
		}
		cfg, err := rule.Apply(rule.Defaults(), patch)
		if err != nil {
			return nil, err
		}
		rec := models.ConfigRecord{
			CameraID:  key.CameraID,
			RuleType:  key.RuleType,
			OwnerID:   key.OwnerID,
			Version:   1,
			Config:    cfg,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.recs[key] = rec
		return &rec, nil
	}

	if baseVersion != 0 && baseVersion != existing.Version {
		return nil, db.ErrConflict
	}
	cfg, err := rule.Apply(existing.Config, patch)
	if err != nil {
		return nil, err
	}
	existing.Config = cfg
	existing.Version++
	existing.UpdatedAt = now
	s.recs[key] = existing
	return &existing, nil
}

func (s *memStore) Delete(_ context.Context, key models.ConfigKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[key]; !ok {
		return db.ErrNotFound
	}
	delete(s.recs, key)
	return nil
}
