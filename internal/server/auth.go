package server

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mrshanahan/keep-notes/internal/auth"
	"github.com/mrshanahan/keep-notes/internal/utils"
)

// DefaultLoginRedirect is where a completed login lands when came_from is
// absent or points somewhere not allowed.
const DefaultLoginRedirect = "/notes"

// NonceTTL bounds how long a login attempt may take at the provider.
const NonceTTL = 5 * time.Minute

func (s *Server) Login(c *fiber.Ctx) error {
	nonce := uuid.NewString()
	s.nonces.Insert(nonce)

	// came_from arrives base64-encoded so it survives the provider round trip.
	var cameFrom string
	if param := c.Query("came_from"); param != "" {
		if decoded, err := base64.URLEncoding.DecodeString(param); err == nil {
			cameFrom = string(decoded)
		}
	}

	state := &auth.State{CameFrom: cameFrom}
	encoded, err := state.Encode(nonce)
	if err != nil {
		s.logger.Error("failed to encode login state", "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	loginURL := s.auth.LoginConfig.AuthCodeURL(encoded)
	return c.Redirect(loginURL, fiber.StatusSeeOther)
}

func (s *Server) Logout(c *fiber.Ctx) error {
	c.ClearCookie(TokenCookieName)
	return c.SendString("Logout successful")
}

func (s *Server) AuthCallback(c *fiber.Ctx) error {
	state, nonce, err := auth.ParseState(c.Query("state"))
	if err != nil {
		c.Status(fiber.StatusUnauthorized)
		return c.SendString(fmt.Sprintf("state is invalid: %s", err))
	}
	if _, ok := s.nonces.GetAndRemove(nonce); !ok {
		c.Status(fiber.StatusUnauthorized)
		return c.SendString("state is invalid: nonce not found in cache")
	}

	code := c.Query("code")
	tokenResponse, err := s.auth.LoginConfig.Exchange(c.Context(), code)
	if err != nil {
		s.logger.Error("code-token exchange failed", "err", err)
		c.Status(fiber.StatusBadGateway)
		return c.SendString("code-token exchange failed")
	}

	if _, err := s.verifier.VerifyToken(c.Context(), tokenResponse.AccessToken); err != nil {
		s.logger.Info("provider returned an invalid access token", "err", err)
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    tokenResponse.AccessToken,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  tokenResponse.Expiry,
	})

	return c.Redirect(s.redirectTarget(state.CameFrom), fiber.StatusSeeOther)
}

// redirectTarget accepts a same-site path or a URL on one of the allowed
// origins; anything else falls back to DefaultLoginRedirect.
func (s *Server) redirectTarget(cameFrom string) string {
	if cameFrom == "" {
		return DefaultLoginRedirect
	}
	if strings.HasPrefix(cameFrom, "/") && !strings.HasPrefix(cameFrom, "//") && !strings.HasPrefix(cameFrom, "/\\") {
		return cameFrom
	}
	u, err := url.Parse(cameFrom)
	if err == nil && u.Scheme != "" && u.Host != "" && u.User == nil {
		origin := u.Scheme + "://" + u.Host
		if utils.Any(s.allowOrigins, func(o string) bool { return strings.EqualFold(o, origin) }) {
			return cameFrom
		}
	}
	s.logger.Warn("ignoring came_from outside the allowed origins", "cameFrom", cameFrom)
	return DefaultLoginRedirect
}
