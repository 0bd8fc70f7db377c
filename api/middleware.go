package api

import (
	"net/http"
	"net/url"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/lonlait/blogicum/config"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/errs"
	"github.com/lonlait/blogicum/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	loginURL       = "/auth/login/"
	csrfCookieName = "csrftoken"
	csrfFieldName  = "csrfmiddlewaretoken"

	// formOverhead is the room left for the text fields of a form on top of
	// the largest accepted upload.
	formOverhead = 1 << 20
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blogicum_http_requests_total",
	Help: "HTTP requests by method, route pattern and status code.",
}, []string{"method", "route", "status"})

type sessionMiddleware struct {
	sessions *services.SessionManager
	userRepo *database.UserRepo
	logger   zerolog.Logger
}

func newSessionMiddleware(sessions *services.SessionManager, userRepo *database.UserRepo) sessionMiddleware {
	return sessionMiddleware{
		sessions: sessions,
		userRepo: userRepo,
		logger:   log.With().Str("handlerName", "sessionMiddleware").Logger(),
	}
}

// authenticate resolves the viewer from the session cookie. Requests without a
// valid session, or whose user no longer exists, continue as anonymous.
func (m sessionMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.sessions.UserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.userRepo.FindByID(userID)
		if err != nil {
			m.logger.Debug().Err(err).Uint("userID", userID).Msg("session user not loaded")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithUser(r.Context(), user)))
	})
}

// requireLogin sends anonymous viewers to the login page with a return path.
func requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctxGetUser(r.Context()) == nil {
			http.Redirect(w, r, loginRedirectURL(r), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loginRedirectURL(r *http.Request) string {
	return loginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

// csrfProtection rejects unsafe requests that do not echo the token from the
// csrftoken cookie and answers them with the 403 page. Plain HTTP deployments
// (insecure cookies) skip the strict Referer check gorilla/csrf applies to TLS.
func csrfProtection(key []byte, app config.App, responder Renderer) func(http.Handler) http.Handler {
	protect := csrf.Protect(key,
		csrf.CookieName(csrfCookieName),
		csrf.FieldName(csrfFieldName),
		csrf.Path("/"),
		csrf.Secure(app.SecureCookies),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(originHosts(app.AcceptedOrigins)),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "csrf verification failed"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			responder.WriteError(w, r, errs.NewForbiddenError(reason))
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if app.SecureCookies {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// originHosts turns CORS origins such as https://example.com into the bare
// hosts gorilla/csrf compares against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, origin := range origins {
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Host == "" {
			continue
		}
		hosts = append(hosts, parsed.Host)
	}
	return hosts
}

// rejectOversizedBody answers 413 for bodies announced as larger than limit
// before anything reads them. chi's RequestSize caps the rest.
func rejectOversizedBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				log.Warn().
					Str("path", r.URL.Path).
					Int64("contentLength", r.ContentLength).
					Int64("limit", limit).
					Msg("request body too large")
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// LogInternalServerErrors recovers panics into the 500 page and logs every 500.
func LogInternalServerErrors(responder Renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Interface("panic", err).
						Str("stack", string(debug.Stack())).
						Msg("Recovered from panic")

					if !srw.wroteHeader {
						responder.Render(srw, r, http.StatusInternalServerError, pageServerError, &pageData{Title: "Server error"})
					}
				}
			}()

			next.ServeHTTP(srw, r)

			if srw.status == http.StatusInternalServerError {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("500 error response")
			}
		})
	}
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(srw, r)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = colorLogger.Error()
		case srw.status >= 400:
			logEvent = colorLogger.Warn()
		default:
			logEvent = colorLogger.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}

// countRequests feeds the request counter exposed on /metrics.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(srw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(srw.status)).Inc()
	})
}
