package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/etag"
)

// skipETag limits ETags to pin reads. Streams and the light map, which
// embeds its generation time, are never tagged.
func skipETag(c *fiber.Ctx) bool {
	if c.Method() != fiber.MethodGet || isLongLived(c) {
		return true
	}
	return !strings.HasPrefix(c.Path(), "/pins")
}

// ETagMiddleware tags pin reads with a weak ETag and answers 304 Not
// Modified when the client already has the current representation.
func ETagMiddleware() fiber.Handler {
	return etag.New(etag.Config{
		Next: skipETag,
		Weak: true,
	})
}
