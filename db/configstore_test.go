package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vtpl1/ruleserver/db"
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/models"
	"github.com/vtpl1/ruleserver/schedule"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestKeyFilter(t *testing.T) {
	filter := db.KeyFilter(models.ConfigKey{
		CameraID: "cam-1",
		RuleType: "perimeter-security",
		OwnerID:  "user-9",
	})
	assert.Equal(t, bson.M{
		"cameraId": "cam-1",
		"ruleType": "perimeter-security",
		"ownerId":  "user-9",
	}, filter)
}

func TestConfigRecordCursorDecode(t *testing.T) {
	raw := `[{
		"cameraId": "cam-1",
		"ruleType": "perimeter-security",
		"ownerId": "user-9",
		"version": {"$numberLong": "2"},
		"config": {
			"enabled": true,
			"zones": [{
				"id": "z1",
				"points": [
					{"x": {"$numberDouble": "0.0"}, "y": {"$numberDouble": "0.0"}},
					{"x": {"$numberDouble": "1.0"}, "y": {"$numberDouble": "0.0"}},
					{"x": {"$numberDouble": "0.0"}, "y": {"$numberDouble": "1.0"}}
				],
				"type": "include"
			}],
			"schedule": {
				"mon": [{"start": "09:00", "end": "17:00"}]
			},
			"sensitivity": 80,
			"alertChannel": "push"
		}
	}]`

	var docs []interface{}
	err := bson.UnmarshalExtJSON([]byte(raw), true, &docs)
	assert.NoError(t, err)

	cursor, err := mongo.NewCursorFromDocuments(docs, nil, nil)
	assert.NoError(t, err)

	ctx := context.TODO()
	count := 0
	for cursor.Next(ctx) {
		var rec models.ConfigRecord
		assert.NoError(t, cursor.Decode(&rec))
		assert.Equal(t, "cam-1", rec.CameraID)
		assert.Equal(t, int64(2), rec.Version)
		assert.Len(t, rec.Config.Zones, 1)
		assert.Equal(t, geometry.ZoneInclude, rec.Config.Zones[0].Kind)
		assert.True(t, rec.Config.Schedule.IsHourActive(schedule.Monday, 9))
		assert.NoError(t, rec.Config.Validate())
		count++
	}
	assert.NoError(t, cursor.Err())
	assert.Equal(t, 1, count)
}
