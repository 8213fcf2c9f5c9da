package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vtpl1/ruleserver/db"
	"github.com/vtpl1/ruleserver/geometry"
	"github.com/vtpl1/ruleserver/rule"
)

// GetConfigHandler returns the stored configuration record for the key.
func (s *Server) GetConfigHandler(c *fiber.Ctx) error {
	key, err := parseConfigKey(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rec, err := s.store.Load(c.Context(), key)
	if errors.Is(err, db.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "configuration not found"})
	}
	if err != nil {
		log.Error().Err(err).Str("cameraId", key.CameraID).Msg("Error loading configuration")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "error loading configuration"})
	}
	return c.JSON(rec)
}

// SaveConfigHandler applies a partial update. A first-time save starts from
// the defaults; validation failures reject the whole save and leave the
// stored record untouched.
func (s *Server) SaveConfigHandler(c *fiber.Ctx) error {
	key, err := parseConfigKey(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req SaveConfigRequest
	if err = c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	logger := log.With().
		Str("cameraId", key.CameraID).
		Str("ruleType", key.RuleType).
		Str("ownerId", key.OwnerID).
		Logger()

	rec, err := s.store.Save(c.Context(), key, req.Patch, req.Version)
	if err != nil {
		var verr *rule.ValidationError
		switch {
		case errors.As(err, &verr), errors.Is(err, geometry.ErrMalformedZone):
			logger.Warn().Err(err).Msg("Configuration rejected")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, db.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "configuration changed, reload and retry"})
		default:
			logger.Error().Err(err).Msg("Error saving configuration")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "error saving configuration"})
		}
	}
	s.cache.Invalidate(key)
	logger.Info().Int64("version", rec.Version).Msg("Configuration saved")
	return c.JSON(ConfigResponse{Success: true, Config: rec})
}

// DeleteConfigHandler removes the record for the key.
func (s *Server) DeleteConfigHandler(c *fiber.Ctx) error {
	key, err := parseConfigKey(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err = s.store.Delete(c.Context(), key)
	if errors.Is(err, db.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "configuration not found"})
	}
	if err != nil {
		log.Error().Err(err).Str("cameraId", key.CameraID).Msg("Error deleting configuration")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "error deleting configuration"})
	}
	s.cache.Invalidate(key)
	return c.JSON(fiber.Map{"success": true})
}
