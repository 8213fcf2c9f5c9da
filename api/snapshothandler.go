package api

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SnapshotHandler relays a camera still for the editor backdrop. The image
// is forwarded byte-for-byte; this service never inspects pixel data.
func (s *Server) SnapshotHandler(c *fiber.Ctx) error {
	src := c.Query("src")
	if src == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing src"})
	}
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "src must be an http(s) URL"})
	}

	resp, err := s.http.R().SetContext(c.Context()).Get(src)
	if err != nil {
		log.Error().Err(err).Str("src", src).Msg("Snapshot fetch failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "snapshot fetch failed"})
	}
	if resp.IsError() {
		log.Warn().Int("status", resp.StatusCode()).Str("src", src).Msg("Snapshot source returned an error")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "snapshot source returned an error"})
	}

	if ct := resp.Header().Get(fiber.HeaderContentType); ct != "" {
		c.Set(fiber.HeaderContentType, ct)
	}
	return c.Send(resp.Body())
}
