package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type profileHandler struct {
	responder Renderer
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	postRepo  *database.PostRepo
	pageSize  int
	now       func() time.Time
}

func newProfileHandler(db database.Database, templates templateSet, pageSize int, now func() time.Time) profileHandler {
	logger := log.With().Str("handlerName", "profileHandler").Logger()

	return profileHandler{
		responder: NewRenderer(logger, templates),
		logger:    logger,
		userRepo:  db.UserRepo(),
		postRepo:  db.PostRepo(),
		pageSize:  pageSize,
		now:       now,
	}
}

func (h profileHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.userRepo.FindByUsername(chi.URLParam(r, "username"))
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("find", "user", err))
			return
		}

		page, err := h.postRepo.ListForProfile(*profile, ctxGetUser(r.Context()), requestPage(r, h.pageSize), h.now())
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("list", "posts", err))
			return
		}

		h.responder.Render(w, r, http.StatusOK, pageProfile, &pageData{
			Title:   profile.FullName(),
			Profile: profile,
			Page:    page,
		})
	}
}

// showEditProfile always edits the signed in user; there is no way to name another one.
func (h profileHandler) showEditProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())

		h.responder.Render(w, r, http.StatusOK, pageUser, &pageData{
			Title: "Edit profile",
			Form:  profileFormFromUser(*user),
		})
	}
}

func (h profileHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.responder.WriteError(w, r, errs.NewBadRequestError("unreadable form"))
			return
		}

		user := *ctxGetUser(r.Context())
		form := profileFormFromRequest(r)
		fieldErrors := validateForm(form)

		if fieldErrors.Get("username") == "" {
			taken, err := h.userRepo.UsernameTaken(form.Username, user.ID)
			if err != nil {
				h.responder.WriteError(w, r, wrapDatabaseError("check", "username", err))
				return
			}
			if taken {
				fieldErrors.Add("username", "A user with that username already exists.")
			}
		}

		if fieldErrors.Any() {
			h.responder.Render(w, r, http.StatusOK, pageUser, &pageData{
				Title:  "Edit profile",
				Form:   form,
				Errors: fieldErrors,
			})
			return
		}

		user.Username = form.Username
		user.Email = form.Email
		user.FirstName = form.FirstName
		user.LastName = form.LastName

		if err := h.userRepo.UpdateProfile(&user); err != nil {
			if errs.IsUniqueConstraintViolation(wrapDatabaseError("update", "user", err)) {
				fieldErrors.Add("username", "A user with that username already exists.")
				h.responder.Render(w, r, http.StatusOK, pageUser, &pageData{
					Title:  "Edit profile",
					Form:   form,
					Errors: fieldErrors,
				})
				return
			}
			h.responder.WriteError(w, r, wrapDatabaseError("update", "user", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Msg("profile updated")
		redirect(w, r, profileURL(user.Username))
	}
}
