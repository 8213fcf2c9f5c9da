package db

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vtpl1/ruleserver/models"
	"github.com/vtpl1/ruleserver/rule"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	databaseName   = "vms_rules"
	collectionName = "ruleConfigs"
)

// ConfigStore is the keyed store for rule configuration records.
type ConfigStore interface {
	// Load returns the record for the key, or ErrNotFound.
	Load(ctx context.Context, key models.ConfigKey) (*models.ConfigRecord, error)
	// Save applies the patch over the stored config (or the defaults on
	// first save) and persists the result. baseVersion 0 skips the
	// optimistic check; a non-zero stale baseVersion yields ErrConflict.
	Save(ctx context.Context, key models.ConfigKey, patch rule.Patch, baseVersion int64) (*models.ConfigRecord, error)
	// Delete removes the record for the key, or returns ErrNotFound.
	Delete(ctx context.Context, key models.ConfigKey) error
}

// MongoConfigStore keeps one document per (camera, rule type, owner) key in
// the ruleConfigs collection.
type MongoConfigStore struct {
	client *mongo.Client
}

func NewMongoConfigStore(client *mongo.Client) *MongoConfigStore {
	return &MongoConfigStore{client: client}
}

func (s *MongoConfigStore) collection() *mongo.Collection {
	return s.client.Database(databaseName).Collection(collectionName)
}

// KeyFilter builds the document filter for a config key.
func KeyFilter(key models.ConfigKey) bson.M {
	return bson.M{
		"cameraId": key.CameraID,
		"ruleType": key.RuleType,
		"ownerId":  key.OwnerID,
	}
}

func (s *MongoConfigStore) Load(ctx context.Context, key models.ConfigKey) (*models.ConfigRecord, error) {
	var rec models.ConfigRecord
	err := s.collection().FindOne(ctx, KeyFilter(key)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MongoConfigStore) Save(ctx context.Context, key models.ConfigKey, patch rule.Patch, baseVersion int64) (*models.ConfigRecord, error) {
	logger := log.With().
		Str("cameraId", key.CameraID).
		Str("ruleType", key.RuleType).
		Str("ownerId", key.OwnerID).
		Logger()

	existing, err := s.Load(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	if existing == nil {
		if baseVersion != 0 {
			// The caller edited a record that no longer exists.
			return nil, ErrConflict
		}
		cfg, err := rule.Apply(rule.Defaults(), patch)
		if err != nil {
			return nil, err
		}
		rec := &models.ConfigRecord{
			CameraID:  key.CameraID,
			RuleType:  key.RuleType,
			OwnerID:   key.OwnerID,
			Version:   1,
			Config:    cfg,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.collection().InsertOne(ctx, rec); err != nil {
			logger.Error().Err(err).Msg("Failed to insert configuration")
			return nil, err
		}
		logger.Info().Msg("Configuration created")
		return rec, nil
	}

	if baseVersion != 0 && baseVersion != existing.Version {
		return nil, ErrConflict
	}
	cfg, err := rule.Apply(existing.Config, patch)
	if err != nil {
		return nil, err
	}
	updated := *existing
	updated.Config = cfg
	updated.Version = existing.Version + 1
	updated.UpdatedAt = now

	// The replace is guarded by the version we read, so two racing saves
	// cannot both win; the loser gets ErrConflict instead of a silent
	// last-write-wins overwrite.
	filter := KeyFilter(key)
	filter["version"] = existing.Version
	res, err := s.collection().ReplaceOne(ctx, filter, &updated)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to replace configuration")
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrConflict
	}
	logger.Info().Int64("version", updated.Version).Msg("Configuration saved")
	return &updated, nil
}

func (s *MongoConfigStore) Delete(ctx context.Context, key models.ConfigKey) error {
	res, err := s.collection().DeleteOne(ctx, KeyFilter(key))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
