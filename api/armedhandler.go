package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vtpl1/ruleserver/db"
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/rule"
)

// ArmedHandler evaluates the arming decision for one detection point. The
// detection pipeline calls this per bounding-box centroid; configs are read
// through the cache so a burst of detections costs one store round trip.
func (s *Server) ArmedHandler(c *fiber.Ctx) error {
	key, err := parseConfigKey(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	x, err := parseCoordinate(c, "x")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	y, err := parseCoordinate(c, "y")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	at := time.Now().UTC()
	if raw := c.Query("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid at: want RFC3339"})
		}
	}

	cfg := rule.Defaults()
	rec, err := s.cache.Get(c.Context(), key)
	switch {
	case errors.Is(err, db.ErrNotFound):
		// No saved config means the rule was never enabled; the defaults
		// are disabled, so the decision below is false.
	case err != nil:
		log.Error().Err(err).Str("cameraId", key.CameraID).Msg("Error loading configuration")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "error loading configuration"})
	default:
		cfg = rec.Config
	}

	armed, err := cfg.Armed(geometry.Point{X: x, Y: y}, at)
	if err != nil {
		log.Error().Err(err).Str("cameraId", key.CameraID).Msg("Error evaluating arming decision")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(ArmedResponse{
		CameraID: key.CameraID,
		RuleType: key.RuleType,
		At:       at.Format(time.RFC3339),
		Armed:    armed,
	})
}
