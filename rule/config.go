// Package rule defines the perimeter security rule configuration and the
// arming decision over it.
package rule

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/schedule"
)

// AlertChannel selects where rule alerts are delivered.
type AlertChannel string

const (
	AlertPush  AlertChannel = "push"
	AlertEmail AlertChannel = "email"
	AlertBoth  AlertChannel = "both"
)

func (a AlertChannel) valid() bool {
	return a == AlertPush || a == AlertEmail || a == AlertBoth
}

// Config is the full perimeter security rule record: where detection applies
// (zones), when it applies (schedule), and how alerts are tuned and routed.
type Config struct {
	Enabled      bool            `json:"enabled" bson:"enabled"`
	Zones        []geometry.Zone `json:"zones" bson:"zones"`
	Schedule     schedule.Weekly `json:"schedule" bson:"schedule"`
	Sensitivity  int             `json:"sensitivity" bson:"sensitivity"`
	AlertChannel AlertChannel    `json:"alertChannel" bson:"alertChannel"`
}

// Defaults is the configuration a camera starts from before its owner has
// saved anything: disabled, no zones, nightly 22:00-06:00 schedule,
// sensitivity 80, push alerts.
func Defaults() Config {
	return Config{
		Enabled:      false,
		Zones:        []geometry.Zone{},
		Schedule:     schedule.Nightly(),
		Sensitivity:  80,
		AlertChannel: AlertPush,
	}
}

// Patch carries a partial update; nil fields retain the prior value.
type Patch struct {
	Enabled      *bool            `json:"enabled,omitempty" bson:"enabled,omitempty"`
	Zones        *[]geometry.Zone `json:"zones,omitempty" bson:"zones,omitempty"`
	Schedule     *schedule.Weekly `json:"schedule,omitempty" bson:"schedule,omitempty"`
	Sensitivity  *int             `json:"sensitivity,omitempty" bson:"sensitivity,omitempty"`
	AlertChannel *AlertChannel    `json:"alertChannel,omitempty" bson:"alertChannel,omitempty"`
}

// ValidationError reports a config rejected on save. The prior persisted
// state is left untouched by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Apply merges patch over base and validates the result. On error the merged
// config is not returned; callers keep base as-is.
func Apply(base Config, patch Patch) (Config, error) {
	merged := base
	if patch.Enabled != nil {
		merged.Enabled = *patch.Enabled
	}
	if patch.Zones != nil {
		merged.Zones = *patch.Zones
	}
	if patch.Schedule != nil {
		merged.Schedule = *patch.Schedule
	}
	if patch.Sensitivity != nil {
		merged.Sensitivity = *patch.Sensitivity
	}
	if patch.AlertChannel != nil {
		merged.AlertChannel = *patch.AlertChannel
	}
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// Validate enforces the config invariants: sensitivity in [0,100], a known
// alert channel, a well-formed schedule, and zones that are polygons with
// unique ids and in-frame points.
func (c Config) Validate() error {
	if c.Sensitivity < 0 || c.Sensitivity > 100 {
		return &ValidationError{Field: "sensitivity", Reason: fmt.Sprintf("%d is outside 0-100", c.Sensitivity)}
	}
	if !c.AlertChannel.valid() {
		return &ValidationError{Field: "alertChannel", Reason: fmt.Sprintf("unknown channel %q", c.AlertChannel)}
	}
	if err := c.Schedule.Validate(); err != nil {
		return &ValidationError{Field: "schedule", Reason: err.Error()}
	}
	for _, z := range c.Zones {
		if err := z.Validate(); err != nil {
			return fmt.Errorf("zone %s: %w", z.ID, err)
		}
		for _, p := range z.Points {
			if !p.Valid() {
				return &ValidationError{Field: "zones", Reason: fmt.Sprintf("zone %s has point outside [0,1]", z.ID)}
			}
		}
	}
	if dups := lo.FindDuplicatesBy(c.Zones, func(z geometry.Zone) string { return z.ID }); len(dups) > 0 {
		return &ValidationError{Field: "zones", Reason: fmt.Sprintf("duplicate zone id %s", dups[0].ID)}
	}
	return nil
}
