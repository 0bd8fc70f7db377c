package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lonlait/blogicum/config"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/services"
	"github.com/rs/zerolog/log"
)

const defaultMaxUploadMB = 5

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(db database.Database, app config.App, sessions *services.SessionManager, media services.MediaStore) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%s", app.Port)

	startupTime := time.Now()

	router, err := newRouter(db,
		withConfig(app),
		withSessions(sessions),
		withMedia(media),
		withRequestLogging(),
	)
	if err != nil {
		return Server{}, err
	}

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  app.ReadTimeout,
		WriteTimeout: app.WriteTimeout,
		IdleTimeout:  app.IdleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	app            config.App
	sessions       *services.SessionManager
	media          services.MediaStore
	now            func() time.Time
	requestLogging bool
}

func withConfig(app config.App) func(*router) {
	return func(r *router) {
		r.app = app
	}
}

func withSessions(sessions *services.SessionManager) func(*router) {
	return func(r *router) {
		r.sessions = sessions
	}
}

func withMedia(media services.MediaStore) func(*router) {
	return func(r *router) {
		r.media = media
	}
}

// withClock replaces time.Now for the visibility checks.
func withClock(now func() time.Time) func(*router) {
	return func(r *router) {
		r.now = now
	}
}

func withRequestLogging() func(*router) {
	return func(r *router) {
		r.requestLogging = true
	}
}

func (r router) maxUpload() int64 {
	return int64(r.app.MaxUploadMB) << 20
}

func newRouter(db database.Database, opts ...func(*router)) (*chi.Mux, error) {
	router := router{now: time.Now}
	for _, opt := range opts {
		opt(&router)
	}
	if router.app.PageSize <= 0 {
		router.app.PageSize = database.DefaultPageSize
	}
	if router.app.MaxUploadMB <= 0 {
		router.app.MaxUploadMB = defaultMaxUploadMB
	}
	if router.sessions == nil {
		return nil, fmt.Errorf("router needs a session manager")
	}

	templates, err := parseTemplates(router.app.MediaURL)
	if err != nil {
		return nil, err
	}

	handlers := initializeHandlers(db, templates, router)
	sessionMiddleware := newSessionMiddleware(router.sessions, db.UserRepo())

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors(NewRenderer(log.Logger, templates)))
	if router.requestLogging {
		chiRouter.Use(ColoredHTTPLoggingMiddleware)
	}
	chiRouter.Use(countRequests)

	if len(router.app.AcceptedOrigins) > 0 {
		chiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   router.app.AcceptedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	setupOperationalRoutes(chiRouter)

	csrfResponder := NewRenderer(log.With().Str("handlerName", "csrf").Logger(), templates)

	chiRouter.Group(func(r chi.Router) {
		bodyLimit := router.maxUpload() + formOverhead
		r.Use(rejectOversizedBody(bodyLimit), middleware.RequestSize(bodyLimit))
		r.Use(sessionMiddleware.authenticate)
		r.Use(csrfProtection(router.sessions.CSRFKey(), router.app, csrfResponder))
		r.NotFound(handlers.pagesHandler.notFound())

		setupPublicRoutes(r, handlers)
		setupAuthorRoutes(r, handlers)
	})

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
