package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"projdocs/internal/store"
)

// ActorHeader names the user a request acts for. Stores stamp it as the editor.
const ActorHeader = "X-Actor"

// Actor copies ActorHeader into the request's user context.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if name := strings.TrimSpace(c.Get(ActorHeader)); name != "" {
			c.SetUserContext(store.WithActor(c.UserContext(), name))
		}
		return c.Next()
	}
}
