package rule

import (
	"time"

	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/schedule"
)

// Armed decides whether a detection at point p and time at should raise an
// alert under this configuration. It is pure and safe to call concurrently
// against the same config snapshot; treat the config as immutable for the
// whole evaluation.
//
// Order of checks: enabled flag, then schedule, then zones. A config with no
// zones arms anywhere in frame, so a schedule can be exercised before any
// zone has been drawn. Otherwise p must fall inside at least one include
// zone and inside no exclude zone.
func (c Config) Armed(p geometry.Point, at time.Time) (bool, error) {
	if !c.Enabled {
		return false, nil
	}
	if !c.Schedule.IsHourActive(schedule.DayOf(at), at.Hour()) {
		return false, nil
	}
	if len(c.Zones) == 0 {
		return true, nil
	}
	included := false
	for _, z := range c.Zones {
		inside, err := z.Contains(p)
		if err != nil {
			return false, err
		}
		if !inside {
			continue
		}
		if z.Kind == geometry.ZoneExclude {
			return false, nil
		}
		included = true
	}
	return included, nil
}
