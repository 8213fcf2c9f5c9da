// Package models contains the persisted rule configuration record and its key.
package models

import (
	"time"

	"github.com/vtpl1/ruleserver/rule"
)

// ConfigKey identifies the single configuration record held per camera, rule
// type and owner.
type ConfigKey struct {
	CameraID string
	RuleType string
	OwnerID  string
}

// ConfigRecord is the stored configuration envelope. Version is an optimistic
// concurrency token: it increases by one on every successful save, and a save
// based on a stale version is rejected instead of silently overwriting.
type ConfigRecord struct {
	CameraID  string      `json:"cameraId" bson:"cameraId"`
	RuleType  string      `json:"ruleType" bson:"ruleType"`
	OwnerID   string      `json:"ownerId" bson:"ownerId"`
	Version   int64       `json:"version" bson:"version"`
	Config    rule.Config `json:"config" bson:"config"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updatedAt"`
}
