package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/vtpl1/ruleserver/models"
)

// OwnerHeader carries the requesting owner's identity. Authentication itself
// happens upstream; this service only scopes records by the id.
const OwnerHeader = "X-Owner-Id"

var errMissingOwner = errors.New("missing " + OwnerHeader + " header")

// parseConfigKey assembles the record key from the route params and the
// owner header.
func parseConfigKey(c *fiber.Ctx) (models.ConfigKey, error) {
	key := models.ConfigKey{
		CameraID: c.Params("cameraId"),
		RuleType: c.Params("ruleType"),
		OwnerID:  c.Get(OwnerHeader),
	}
	if key.OwnerID == "" {
		return models.ConfigKey{}, errMissingOwner
	}
	return key, nil
}

// parseConfigKeyFromWS reads the same key for a websocket connection; the
// owner id is stashed in Locals by the upgrade middleware since headers are
// not reachable after the upgrade.
func parseConfigKeyFromWS(c *websocket.Conn) (models.ConfigKey, error) {
	ownerID, _ := c.Locals("ownerId").(string)
	key := models.ConfigKey{
		CameraID: c.Params("cameraId"),
		RuleType: c.Params("ruleType"),
		OwnerID:  ownerID,
	}
	if key.OwnerID == "" {
		return models.ConfigKey{}, errMissingOwner
	}
	return key, nil
}

// parseCoordinate parses a normalized query coordinate in [0, 1].
func parseCoordinate(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.New("missing " + name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, errors.New("invalid " + name + ": want a number in [0,1]")
	}
	return v, nil
}
