package api

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vtpl1/ruleserver/db"
	"github.com/vtpl1/ruleserver/editor"
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/models"
	"github.com/vtpl1/ruleserver/rule"
)

var errUnknownAction = errors.New("unknown editor action")

func writeErrorResponse(c *websocket.Conn, socketMutex *sync.Mutex, err error) {
	socketMutex.Lock()
	_ = c.WriteJSON(fiber.Map{"error": err.Error()})
	socketMutex.Unlock()
}

func writeState(c *websocket.Conn, socketMutex *sync.Mutex, state EditorState) error {
	socketMutex.Lock()
	err := c.WriteJSON(fiber.Map{"state": state})
	socketMutex.Unlock()
	return err
}

// EditorWSHandler runs one polygon editing session over a websocket. Each
// connection gets its own session seeded from the stored zones, so parallel
// tabs never share drawing state. Commands are applied strictly in arrival
// order; the session never runs two mutations at once.
func (s *Server) EditorWSHandler(ctx context.Context, c *websocket.Conn) {
	var socketMutex sync.Mutex

	key, err := parseConfigKeyFromWS(c)
	if err != nil {
		writeErrorResponse(c, &socketMutex, err)
		return
	}
	logger := log.With().
		Str("cameraId", key.CameraID).
		Str("ruleType", key.RuleType).
		Str("ownerId", key.OwnerID).
		Logger()

	var zones []geometry.Zone
	rec, err := s.store.Load(ctx, key)
	switch {
	case errors.Is(err, db.ErrNotFound):
		// First edit for this key; start from an empty canvas.
	case err != nil:
		logger.Error().Err(err).Msg("Failed to load configuration for editing")
		writeErrorResponse(c, &socketMutex, err)
		return
	default:
		zones = rec.Config.Zones
	}

	sessionID, session := s.sessions.Open(zones)
	defer s.sessions.Close(sessionID)
	logger = logger.With().Str("sessionId", sessionID).Logger()
	logger.Info().Msg("Editor session opened")
	defer logger.Info().Msg("Editor session closed")

	if err = writeState(c, &socketMutex, s.editorState(sessionID, session, 0)); err != nil {
		return
	}

	for {
		var cmd EditorCommand
		if err = c.ReadJSON(&cmd); err != nil {
			logger.Debug().Err(err).Msg("Editor websocket closed")
			return
		}
		version, err := s.applyEditorCommand(ctx, key, session, cmd)
		if err != nil {
			writeErrorResponse(c, &socketMutex, err)
			continue
		}
		if err = writeState(c, &socketMutex, s.editorState(sessionID, session, version)); err != nil {
			return
		}
	}
}

// applyEditorCommand mutates the session per one command. Only save touches
// the store; everything else is in-memory editing.
func (s *Server) applyEditorCommand(ctx context.Context, key models.ConfigKey, session *editor.Session, cmd EditorCommand) (int64, error) {
	switch cmd.Action {
	case ActionAddPoint:
		session.AddPoint(geometry.Clamped(cmd.X, cmd.Y))
	case ActionClosePolygon:
		session.ClosePolygon()
	case ActionCancelPolygon:
		session.CancelPolygon()
	case ActionBeginDrag:
		if err := session.BeginVertexDrag(cmd.ZoneID, cmd.Vertex); err != nil {
			return 0, err
		}
	case ActionMoveVertex:
		session.UpdateVertex(cmd.ZoneID, cmd.Vertex, geometry.Clamped(cmd.X, cmd.Y))
	case ActionEndDrag:
		session.EndVertexDrag()
	case ActionRemoveZone:
		session.RemoveZone(cmd.ZoneID)
	case ActionSave:
		zones := session.Zones()
		rec, err := s.store.Save(ctx, key, rule.Patch{Zones: &zones}, cmd.Version)
		if err != nil {
			return 0, err
		}
		s.cache.Invalidate(key)
		return rec.Version, nil
	default:
		return 0, errUnknownAction
	}
	return 0, nil
}

func (s *Server) editorState(sessionID string, session *editor.Session, version int64) EditorState {
	return EditorState{
		SessionID:  sessionID,
		Zones:      session.Zones(),
		InProgress: session.InProgress(),
		Drawing:    session.Drawing(),
		Version:    version,
	}
}
