package api

import (
	"errors"
	"net/http"

	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/errs"
	"github.com/lonlait/blogicum/models"
	"github.com/lonlait/blogicum/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const invalidLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type authHandler struct {
	responder Renderer
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	sessions  *services.SessionManager
}

func newAuthHandler(db database.Database, templates templateSet, sessions *services.SessionManager) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewRenderer(logger, templates),
		logger:    logger,
		userRepo:  db.UserRepo(),
		sessions:  sessions,
	}
}

func (h authHandler) showRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusOK, pageRegistration, &pageData{
			Title: "Registration",
			Form:  registrationForm{},
		})
	}
}

func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.responder.WriteError(w, r, errs.NewBadRequestError("unreadable form"))
			return
		}

		form := registrationFormFromRequest(r)
		fieldErrors := validateForm(form)

		if fieldErrors.Get("username") == "" {
			taken, err := h.userRepo.UsernameTaken(form.Username, 0)
			if err != nil {
				h.responder.WriteError(w, r, wrapDatabaseError("check", "username", err))
				return
			}
			if taken {
				fieldErrors.Add("username", "A user with that username already exists.")
			}
		}

		if fieldErrors.Any() {
			form.Password1, form.Password2 = "", ""
			h.responder.Render(w, r, http.StatusOK, pageRegistration, &pageData{
				Title:  "Registration",
				Form:   form,
				Errors: fieldErrors,
			})
			return
		}

		hash, err := services.HashPassword(form.Password1)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		user := models.User{Username: form.Username, Email: form.Email, PasswordHash: hash}
		if err := h.userRepo.Add(&user); err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("create", "user", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Str("username", user.Username).Msg("user registered")
		redirect(w, r, loginURL)
	}
}

func (h authHandler) showLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusOK, pageLogin, &pageData{
			Title: "Login",
			Form:  loginForm{},
			Next:  safeNext(r.URL.Query().Get("next")),
		})
	}
}

func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.responder.WriteError(w, r, errs.NewBadRequestError("unreadable form"))
			return
		}

		next := safeNext(r.PostFormValue("next"))
		if next == "" {
			next = safeNext(r.URL.Query().Get("next"))
		}

		form := loginFormFromRequest(r)
		fieldErrors := validateForm(form)

		var user *models.User
		if !fieldErrors.Any() {
			var err error
			user, err = h.authenticate(form)
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				fieldErrors.Add(formErrorKey, invalidLoginMessage)
			case err != nil:
				h.responder.WriteError(w, r, err)
				return
			}
		}

		if fieldErrors.Any() {
			form.Password = ""
			h.responder.Render(w, r, http.StatusOK, pageLogin, &pageData{
				Title:  "Login",
				Form:   form,
				Errors: fieldErrors,
				Next:   next,
			})
			return
		}

		if err := h.sessions.Login(w, user.ID); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		if next == "" {
			next = "/"
		}
		redirect(w, r, next)
	}
}

func (h authHandler) authenticate(form loginForm) (*models.User, error) {
	user, err := h.userRepo.FindByUsername(form.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrInvalidCredentials
	}
	if err != nil {
		return nil, wrapDatabaseError("find", "user", err)
	}

	if err := services.CheckPassword(user.PasswordHash, form.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.Logout(w)
		redirect(w, r, loginURL)
	}
}
