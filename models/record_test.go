package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/models"
	"github.com/vtpl1/ruleserver/schedule"
)

// The wire shape is fixed: zones as arrays of {x,y} pairs in [0,1], the
// schedule as day keys to {start,end} "HH:MM" arrays, sensitivity as an
// integer, alertChannel as a string literal.
const recordJSON = `{
  "cameraId": "cam-7",
  "ruleType": "perimeter-security",
  "ownerId": "user-1",
  "version": 3,
  "config": {
    "enabled": true,
    "zones": [
      {
        "id": "z1",
        "points": [{"x": 0, "y": 0}, {"x": 1, "y": 0}, {"x": 0, "y": 1}],
        "type": "include",
        "color": "#10B981"
      }
    ],
    "schedule": {
      "mon": [{"start": "09:00", "end": "17:00"}]
    },
    "sensitivity": 80,
    "alertChannel": "push"
  }
}`

func TestConfigRecordDeserialize(t *testing.T) {
	var rec models.ConfigRecord
	err := json.Unmarshal([]byte(recordJSON), &rec)
	assert.NoError(t, err)

	assert.Equal(t, "cam-7", rec.CameraID)
	assert.Equal(t, "perimeter-security", rec.RuleType)
	assert.Equal(t, int64(3), rec.Version)
	assert.True(t, rec.Config.Enabled)
	assert.Len(t, rec.Config.Zones, 1)
	assert.Equal(t, geometry.ZoneInclude, rec.Config.Zones[0].Kind)
	assert.Equal(t, geometry.Point{X: 1, Y: 0}, rec.Config.Zones[0].Points[1])
	assert.Equal(t, []schedule.TimeRange{{Start: "09:00", End: "17:00"}}, rec.Config.Schedule[schedule.Monday])
	assert.NoError(t, rec.Config.Validate())
}

func TestConfigRecordRoundTripKeepsZoneKindTag(t *testing.T) {
	var rec models.ConfigRecord
	assert.NoError(t, json.Unmarshal([]byte(recordJSON), &rec))

	out, err := json.Marshal(rec.Config.Zones[0])
	assert.NoError(t, err)
	assert.Contains(t, string(out), `"type":"include"`)
}
