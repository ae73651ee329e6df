package middleware

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/keep-notes/internal/auth"
	"github.com/mrshanahan/keep-notes/pkg/notes"
	"github.com/mrshanahan/keep-notes/pkg/store"
)

// LoadNoteFromRoute resolves the route parameter param to a note and stores
// it in c.Locals(localName).
func LoadNoteFromRoute(localName string, param string, s *store.Store) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		idStr := c.Params(param)
		id, err := notes.ParseID(idStr)
		if err != nil {
			c.Status(fiber.StatusBadRequest)
			return c.SendString("invalid request")
		}
		found, ok := s.Get(id)
		if !ok {
			c.Status(fiber.StatusNotFound)
			return c.SendString(fmt.Sprintf("no note with id: %d", id))
		}
		c.Locals(localName, found)
		return c.Next()
	}
}

var bearerTokenPattern *regexp.Regexp = regexp.MustCompile(`^Bearer\s+(.*)$`)

// ValidateAccessToken accepts a bearer token from the Authorization header,
// or failing that from the cookieName cookie.
func ValidateAccessToken(localName string, cookieName string, verifier auth.TokenVerifier) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var tokenStr string
		authHeaderValue := c.Get(fiber.HeaderAuthorization)
		if authHeaderValue == "" {
			tokenStr = c.Cookies(cookieName)
		} else {
			match := bearerTokenPattern.FindStringSubmatch(authHeaderValue)
			if match == nil {
				return c.SendStatus(fiber.StatusUnauthorized)
			}
			tokenStr = match[1]
		}

		token, err := verifier.VerifyToken(c.Context(), tokenStr)
		if err != nil {
			slog.Debug("rejected access token", "path", c.Path(), "err", err)
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals(localName, token)
		return c.Next()
	}
}
