package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pinmap/internal/pkg/lightmap"
)

// LightMapHandler renders a downloadable, self-contained HTML map of all
// pins in time order.
func LightMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pins, err := deps.Pins.ListByTime(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		var buf bytes.Buffer
		if err := lightmap.Render(&buf, pins, deps.now()); err != nil {
			return errInternal(c, err.Error())
		}

		c.Attachment("light-map.html")
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	}
}
