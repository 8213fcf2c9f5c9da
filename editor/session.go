// Package editor implements the interactive polygon zone builder. Each open
// editor tab gets its own Session; there is no process-wide drawing state.
package editor

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vtpl1/ruleserver/geometry"
)

// Session accumulates points into an in-progress polygon and owns the zone
// list being edited. A session is single-threaded: every mutation is driven
// by one UI event at a time and completes before the next.
type Session struct {
	zones      []geometry.Zone
	inProgress []geometry.Point
	drawing    bool
	drag       *dragRef
}

type dragRef struct {
	zoneID string
	vertex int
}

// NewSession starts an editing session over a copy of the given zones.
func NewSession(initial []geometry.Zone) *Session {
	zones := make([]geometry.Zone, len(initial))
	for i, z := range initial {
		zones[i] = z
		zones[i].Points = append([]geometry.Point{}, z.Points...)
	}
	return &Session{zones: zones}
}

// AddPoint starts a new in-progress polygon if none is being drawn, or
// appends to the current one. Committed zones are untouched.
func (s *Session) AddPoint(p geometry.Point) {
	p = geometry.Clamped(p.X, p.Y)
	if !s.drawing {
		s.drawing = true
		s.inProgress = []geometry.Point{p}
		return
	}
	s.inProgress = append(s.inProgress, p)
}

// ClosePolygon commits the in-progress points as a new include zone. With
// fewer than 3 points it is a silent no-op; the UI affordance that triggers
// it is disabled below 3 points, so this is a race, not an error.
func (s *Session) ClosePolygon() []geometry.Zone {
	if len(s.inProgress) < 3 {
		return s.Zones()
	}
	zone := geometry.Zone{
		ID:     uuid.NewString(),
		Points: s.inProgress,
		Kind:   geometry.ZoneInclude,
		Color:  geometry.DefaultZoneColor,
	}
	s.zones = append(s.zones, zone)
	s.inProgress = nil
	s.drawing = false
	return s.Zones()
}

// BeginVertexDrag records the vertex being dragged. Unlike UpdateVertex it
// fails loudly: dragging can only start on a handle the UI rendered, so a
// bad reference is a programming error.
func (s *Session) BeginVertexDrag(zoneID string, vertex int) error {
	for _, z := range s.zones {
		if z.ID != zoneID {
			continue
		}
		if vertex < 0 || vertex >= len(z.Points) {
			return fmt.Errorf("zone %s has no vertex %d", zoneID, vertex)
		}
		s.drag = &dragRef{zoneID: zoneID, vertex: vertex}
		return nil
	}
	return fmt.Errorf("unknown zone %s", zoneID)
}

// UpdateVertex moves one vertex of a committed zone, clamping to the frame.
// Unknown zone ids and stale vertex indexes are silent no-ops; drag events
// may arrive after the zone was deleted concurrently.
func (s *Session) UpdateVertex(zoneID string, vertex int, p geometry.Point) {
	for i, z := range s.zones {
		if z.ID != zoneID {
			continue
		}
		if vertex < 0 || vertex >= len(z.Points) {
			return
		}
		s.zones[i].Points[vertex] = geometry.Clamped(p.X, p.Y)
		return
	}
}

// EndVertexDrag clears the active drag.
func (s *Session) EndVertexDrag() {
	s.drag = nil
}

// RemoveZone drops a committed zone by id; unknown ids are a no-op.
func (s *Session) RemoveZone(zoneID string) {
	for i, z := range s.zones {
		if z.ID == zoneID {
			s.zones = append(s.zones[:i], s.zones[i+1:]...)
			return
		}
	}
}

// CancelPolygon discards the in-progress points without committing.
func (s *Session) CancelPolygon() {
	s.inProgress = nil
	s.drawing = false
}

// Zones returns a copy of the committed zone list.
func (s *Session) Zones() []geometry.Zone {
	out := make([]geometry.Zone, len(s.zones))
	for i, z := range s.zones {
		out[i] = z
		out[i].Points = append([]geometry.Point{}, z.Points...)
	}
	return out
}

// InProgress returns a copy of the uncommitted points.
func (s *Session) InProgress() []geometry.Point {
	return append([]geometry.Point{}, s.inProgress...)
}

// Drawing reports whether an in-progress polygon is open.
func (s *Session) Drawing() bool {
	return s.drawing
}

// ActiveDrag returns the dragged vertex reference, if any.
func (s *Session) ActiveDrag() (zoneID string, vertex int, ok bool) {
	if s.drag == nil {
		return "", 0, false
	}
	return s.drag.zoneID, s.drag.vertex, true
}
