// Package server is the HTTP presentation layer. Handlers translate requests
// into store intents and render derived views as JSON.
package server

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/mrshanahan/keep-notes/internal/auth"
	"github.com/mrshanahan/keep-notes/internal/cache"
	"github.com/mrshanahan/keep-notes/internal/middleware"
	"github.com/mrshanahan/keep-notes/pkg/store"
)

var (
	TokenCookieName string = auth.AccessTokenCookieName
	NoteLocalName   string = "note"
	TokenLocalName  string = "token"

	PersistenceWarningHeader string = "X-Persistence-Warning"
)

type Options struct {
	Store        *store.Store
	Logger       *slog.Logger
	AllowOrigins string

	// Auth is nil when authentication is disabled.
	Auth     *auth.Config
	Verifier auth.TokenVerifier
	Nonces   *cache.TimedCache

	// DisableRequestLog turns off the per-request access log.
	DisableRequestLog bool
}

type Server struct {
	store    *store.Store
	logger   *slog.Logger
	auth     *auth.Config
	verifier auth.TokenVerifier
	nonces   *cache.TimedCache

	allowOrigins []string
}

func New(opts Options) *fiber.App {
	s := &Server{
		store:    opts.Store,
		logger:   opts.Logger,
		auth:     opts.Auth,
		verifier: opts.Verifier,
		nonces:   opts.Nonces,
	}
	for _, origin := range strings.Split(opts.AllowOrigins, ",") {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			s.allowOrigins = append(s.allowOrigins, origin)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	authEnabled := s.auth != nil && s.verifier != nil
	if authEnabled && s.nonces == nil {
		s.nonces = cache.NewTimedCache(NonceTTL, 100)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(requestid.New(), recover.New())
	if !opts.DisableRequestLog {
		app.Use(logger.New())
	}
	if opts.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowOrigins,
			ExposeHeaders: PersistenceWarningHeader,
		}))
	}

	protect := func(r fiber.Router) {
		if authEnabled {
			r.Use(middleware.ValidateAccessToken(TokenLocalName, TokenCookieName, s.verifier))
		}
	}
	if !authEnabled {
		s.logger.Warn("skipping registration of token validation middleware", "authEnabled", authEnabled)
	}

	app.Route("/notes", func(notes fiber.Router) {
		protect(notes)
		notes.Get("/", s.GetBoard)
		notes.Post("/", s.CreateNote)
		notes.Get("/tags", s.ListTags)
		notes.Route("/:noteID", func(note fiber.Router) {
			note.Use(middleware.LoadNoteFromRoute(NoteLocalName, "noteID", s.store))
			note.Get("/", s.GetNote)
			note.Post("/", s.UpdateNote)
			note.Delete("/", s.DeleteNote)
			note.Post("/pin", s.TogglePin)
		})
	})
	app.Route("/filter", func(filter fiber.Router) {
		protect(filter)
		filter.Get("/", s.GetFilter)
		filter.Put("/", s.SelectTag)
	})
	app.Route("/palette", func(palette fiber.Router) {
		protect(palette)
		palette.Get("/", s.GetPalette)
	})
	if authEnabled {
		app.Route("/auth", func(a fiber.Router) {
			a.Get("/login", s.Login)
			a.Get("/logout", s.Logout)
			a.Get("/callback", s.AuthCallback)
		})
	} else {
		s.logger.Warn("skipping registration of authentication-related endpoints", "authEnabled", authEnabled)
	}

	return app
}
