package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/errs"
	"github.com/lonlait/blogicum/models"
	"github.com/rs/zerolog"
)

//go:embed templates
var templateFS embed.FS

const (
	pageIndex         = "index"
	pageDetail        = "detail"
	pageCategory      = "category"
	pageProfile       = "profile"
	pageUser          = "user"
	pagePostForm      = "create"
	pageComment       = "comment"
	pageRegistration  = "registration"
	pageLogin         = "login"
	pageAbout         = "about"
	pageRules         = "rules"
	pageNotFound      = "404"
	pageForbidden     = "403csrf"
	pageServerError   = "500"
	baseTemplate      = "base.html"
	templateDateStamp = "02.01.2006 15:04"
)

var pageNames = []string{
	pageIndex, pageDetail, pageCategory, pageProfile, pageUser, pagePostForm,
	pageComment, pageRegistration, pageLogin, pageAbout, pageRules,
	pageNotFound, pageForbidden, pageServerError,
}

// pageData is the single view model every template receives.
type pageData struct {
	Title       string
	CurrentUser *models.User
	CSRFField   template.HTML

	Page       *database.Pagination[models.Post]
	Post       *models.Post
	Comments   []models.Comment
	Comment    *models.Comment
	Category   *models.Category
	Profile    *models.User
	Categories []models.Category
	Locations  []models.Location

	Form     any
	Errors   FieldErrors
	Deleting bool
	Next     string
}

// templateSet holds every page parsed together with the base layout.
type templateSet map[string]*template.Template

func parseTemplates(mediaURL string) (templateSet, error) {
	funcs := template.FuncMap{
		"canMutate":  models.CanMutate,
		"formatDate": func(t time.Time) string { return t.Format(templateDateStamp) },
		"inputDate":  func(t time.Time) string { return t.Format(postDateLayout) },
		"mediaURL": func(key string) string {
			return strings.TrimRight(mediaURL, "/") + "/" + strings.TrimLeft(key, "/")
		},
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
		"fieldError": func(fe FieldErrors, field string) string { return fe.Get(field) },
	}

	set := templateSet{}
	for _, name := range pageNames {
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFS(templateFS,
			"templates/"+baseTemplate,
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		set[name] = tmpl
	}
	return set, nil
}

type Renderer struct {
	logger    zerolog.Logger
	templates templateSet
}

func NewRenderer(logger zerolog.Logger, templates templateSet) Renderer {
	return Renderer{logger, templates}
}

// Render executes page into a buffer first so a template failure still produces a
// clean 500 instead of a half written body.
func (r Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data *pageData) {
	if data == nil {
		data = &pageData{}
	}
	data.CurrentUser = ctxGetUser(req.Context())
	data.CSRFField = csrf.TemplateField(req)

	tmpl, ok := r.templates[page]
	if !ok {
		r.logger.Error().Str("page", page).Msg("unknown template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseTemplate, data); err != nil {
		r.logger.Error().Err(err).Str("page", page).Msg("error rendering template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteError renders the error page matching the status carried by err.
// Anything that is not an expected ApiErr is logged and rendered as a 500.
func (r Renderer) WriteError(w http.ResponseWriter, req *http.Request, err error) {
	switch status := errs.StatusOf(err); status {
	case http.StatusNotFound:
		r.NotFound(w, req)
	case http.StatusForbidden:
		r.logger.Warn().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("request forbidden")
		r.Render(w, req, status, pageForbidden, &pageData{Title: "Forbidden"})
	case http.StatusBadRequest:
		r.logger.Warn().Err(err).Str("path", req.URL.Path).Msg("bad request")
		http.Error(w, http.StatusText(status), status)
	default:
		event := r.logger.Error().Str("method", req.Method).Str("path", req.URL.Path)
		var apiErr *errs.ApiErr
		if errors.As(err, &apiErr) {
			event = event.Str("cause", apiErr.GetFullError())
		}
		event.Err(err).Msg("request failed")
		r.Render(w, req, http.StatusInternalServerError, pageServerError, &pageData{Title: "Server error"})
	}
}

func (r Renderer) NotFound(w http.ResponseWriter, req *http.Request) {
	r.Render(w, req, http.StatusNotFound, pageNotFound, &pageData{Title: "Page not found"})
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
