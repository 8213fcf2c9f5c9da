package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/rule"
	"github.com/vtpl1/ruleserver/schedule"
)

func triangleZone(id string) geometry.Zone {
	return geometry.Zone{
		ID:   id,
		Kind: geometry.ZoneInclude,
		Points: []geometry.Point{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 0, Y: 1},
		},
	}
}

func TestDefaults(t *testing.T) {
	cfg := rule.Defaults()
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Zones)
	assert.Equal(t, 80, cfg.Sensitivity)
	assert.Equal(t, rule.AlertPush, cfg.AlertChannel)
	assert.Equal(t, schedule.Nightly(), cfg.Schedule)
	assert.NoError(t, cfg.Validate())
}

func TestApplyPartialPatch(t *testing.T) {
	base := rule.Defaults()
	enabled := true
	sensitivity := 55

	merged, err := rule.Apply(base, rule.Patch{Enabled: &enabled, Sensitivity: &sensitivity})
	assert.NoError(t, err)
	assert.True(t, merged.Enabled)
	assert.Equal(t, 55, merged.Sensitivity)
	// Omitted fields retain prior values.
	assert.Equal(t, base.Schedule, merged.Schedule)
	assert.Equal(t, base.Zones, merged.Zones)
	assert.Equal(t, base.AlertChannel, merged.AlertChannel)
}

func TestApplyZonesAndSchedule(t *testing.T) {
	zones := []geometry.Zone{triangleZone("z1")}
	sched := schedule.Weekly{schedule.Monday: []schedule.TimeRange{{Start: "09:00", End: "17:00"}}}
	channel := rule.AlertBoth

	merged, err := rule.Apply(rule.Defaults(), rule.Patch{
		Zones:        &zones,
		Schedule:     &sched,
		AlertChannel: &channel,
	})
	assert.NoError(t, err)
	assert.Equal(t, zones, merged.Zones)
	assert.Equal(t, sched, merged.Schedule)
	assert.Equal(t, rule.AlertBoth, merged.AlertChannel)
}

func TestApplyRejectsSensitivityOutOfRange(t *testing.T) {
	for _, s := range []int{-1, 101} {
		bad := s
		_, err := rule.Apply(rule.Defaults(), rule.Patch{Sensitivity: &bad})
		var verr *rule.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "sensitivity", verr.Field)
	}
}

func TestApplyRejectsMalformedZone(t *testing.T) {
	zones := []geometry.Zone{{ID: "z1", Kind: geometry.ZoneInclude, Points: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}}
	_, err := rule.Apply(rule.Defaults(), rule.Patch{Zones: &zones})
	assert.ErrorIs(t, err, geometry.ErrMalformedZone)
}

func TestApplyRejectsDuplicateZoneIDs(t *testing.T) {
	zones := []geometry.Zone{triangleZone("z1"), triangleZone("z1")}
	_, err := rule.Apply(rule.Defaults(), rule.Patch{Zones: &zones})
	var verr *rule.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "zones", verr.Field)
}

func TestApplyRejectsUnknownAlertChannel(t *testing.T) {
	channel := rule.AlertChannel("carrier-pigeon")
	_, err := rule.Apply(rule.Defaults(), rule.Patch{AlertChannel: &channel})
	var verr *rule.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestApplyRejectsInvertedScheduleRange(t *testing.T) {
	sched := schedule.Weekly{schedule.Monday: []schedule.TimeRange{{Start: "22:00", End: "06:00"}}}
	_, err := rule.Apply(rule.Defaults(), rule.Patch{Schedule: &sched})
	var verr *rule.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "schedule", verr.Field)
}

func TestValidateRejectsOutOfFramePoint(t *testing.T) {
	cfg := rule.Defaults()
	cfg.Zones = []geometry.Zone{{
		ID:   "z1",
		Kind: geometry.ZoneInclude,
		Points: []geometry.Point{
			{X: 0, Y: 0},
			{X: 1.5, Y: 0},
			{X: 0, Y: 1},
		},
	}}
	var verr *rule.ValidationError
	assert.ErrorAs(t, cfg.Validate(), &verr)
}
