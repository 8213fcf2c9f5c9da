// Package geometry holds the normalized frame coordinate types shared by the
// rule engine and the zone editor.
package geometry

import "errors"

// ErrMalformedZone is returned when a zone with fewer than 3 points is used
// for containment or is about to be persisted.
var ErrMalformedZone = errors.New("zone must have at least 3 points")

// Point is a location in camera-frame-relative coordinates, both components
// normalized to [0, 1] so it is invariant to the actual image resolution.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Clamped builds a Point from raw coordinates, saturating at the frame edges.
// Out-of-canvas drags land on the border instead of erroring.
func Clamped(x, y float64) Point {
	return Point{X: clamp01(x), Y: clamp01(y)}
}

// Valid reports whether both coordinates lie in [0, 1].
func (p Point) Valid() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ZoneKind tags a zone as an area of interest or a masked-out area.
type ZoneKind string

const (
	ZoneInclude ZoneKind = "include"
	ZoneExclude ZoneKind = "exclude"
)

// DefaultZoneColor is the display color assigned to freshly committed zones.
const DefaultZoneColor = "#10B981"

// Zone is a user-drawn polygon in normalized frame coordinates. Insertion
// order of Points is the winding order; the polygon need not be convex or
// simple.
type Zone struct {
	ID     string   `json:"id" bson:"id"`
	Points []Point  `json:"points" bson:"points"`
	Kind   ZoneKind `json:"type" bson:"type"`
	Color  string   `json:"color,omitempty" bson:"color,omitempty"`
	Label  string   `json:"label,omitempty" bson:"label,omitempty"`
}

// Validate rejects zones that cannot form a polygon.
func (z Zone) Validate() error {
	if len(z.Points) < 3 {
		return ErrMalformedZone
	}
	return nil
}

// Contains reports whether p falls inside the polygon, by the crossing-number
// rule over the vertex list as given. A self-intersecting polygon yields the
// containment set its crossings imply; it is accepted, not rejected. The
// result does not depend on which vertex the list starts at.
func (z Zone) Contains(p Point) (bool, error) {
	if err := z.Validate(); err != nil {
		return false, err
	}
	inside := false
	n := len(z.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := z.Points[i], z.Points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside, nil
}
