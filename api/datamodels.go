package api

import (
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/models"
	"github.com/vtpl1/ruleserver/rule"
)

// SaveConfigRequest is the POST body for a config save: a partial patch plus
// the optional base version for the optimistic check (0 skips it).
type SaveConfigRequest struct {
	rule.Patch
	Version int64 `json:"version,omitempty"`
}

// ConfigResponse wraps a saved or loaded configuration record.
type ConfigResponse struct {
	Success bool                 `json:"success"`
	Config  *models.ConfigRecord `json:"config"`
}

// ArmedResponse is the arming decision for one point and timestamp.
type ArmedResponse struct {
	CameraID string `json:"cameraId"`
	RuleType string `json:"ruleType"`
	At       string `json:"at"`
	Armed    bool   `json:"armed"`
}

// EditorCommand is one editing action received over the editor websocket.
type EditorCommand struct {
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	ZoneID string  `json:"zoneId,omitempty"`
	Vertex int     `json:"vertex"`
	// Version is the optimistic base for the save action.
	Version int64 `json:"version,omitempty"`
}

// Editor websocket actions.
const (
	ActionAddPoint      = "addPoint"
	ActionClosePolygon  = "closePolygon"
	ActionCancelPolygon = "cancelPolygon"
	ActionBeginDrag     = "beginDrag"
	ActionMoveVertex    = "moveVertex"
	ActionEndDrag       = "endDrag"
	ActionRemoveZone    = "removeZone"
	ActionSave          = "save"
)

// EditorState is streamed back after every editing action.
type EditorState struct {
	SessionID  string           `json:"sessionId"`
	Zones      []geometry.Zone  `json:"zones"`
	InProgress []geometry.Point `json:"inProgress"`
	Drawing    bool             `json:"drawing"`
	// Version is set after a successful save.
	Version int64 `json:"version,omitempty"`
}
