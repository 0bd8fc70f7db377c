package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/errs"
	"github.com/lonlait/blogicum/models"
	"github.com/lonlait/blogicum/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type postHandler struct {
	responder    Renderer
	logger       zerolog.Logger
	postRepo     *database.PostRepo
	commentRepo  *database.CommentRepo
	categoryRepo *database.CategoryRepo
	locationRepo *database.LocationRepo
	media        services.MediaStore
	pageSize     int
	maxUpload    int64
	now          func() time.Time
}

func newPostHandler(db database.Database, templates templateSet, media services.MediaStore, pageSize int, maxUpload int64, now func() time.Time) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder:    NewRenderer(logger, templates),
		logger:       logger,
		postRepo:     db.PostRepo(),
		commentRepo:  db.CommentRepo(),
		categoryRepo: db.CategoryRepo(),
		locationRepo: db.LocationRepo(),
		media:        media,
		pageSize:     pageSize,
		maxUpload:    maxUpload,
		now:          now,
	}
}

// urlParamID reads a numeric path parameter. Anything unparsable is a missing entity.
func urlParamID(r *http.Request, name, entity string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, errs.NewNotFound(entity)
	}
	return uint(id), nil
}

func requestPage(r *http.Request, limit int) database.Paginate {
	return database.Paginate{
		Page:  database.ParsePage(r.URL.Query().Get("page")),
		Limit: limit,
	}
}

func (h postHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.postRepo.ListPublished(requestPage(r, h.pageSize), h.now())
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("list", "posts", err))
			return
		}

		h.responder.Render(w, r, http.StatusOK, pageIndex, &pageData{Title: "Blogicum", Page: page})
	}
}

func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamID(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		post, err := h.postRepo.FindForViewer(id, ctxGetUser(r.Context()), h.now())
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("find", "post", err))
			return
		}

		comments, err := h.commentRepo.ForPost(post.ID)
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("list", "comments", err))
			return
		}

		h.responder.Render(w, r, http.StatusOK, pageDetail, &pageData{
			Title:    post.Title,
			Post:     post,
			Comments: comments,
			Form:     commentForm{},
		})
	}
}

func (h postHandler) showCreateForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderForm(w, r, http.StatusOK, nil, newPostForm(h.now()), nil)
	}
}

func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())
		post := models.Post{AuthorID: user.ID}

		submission, err := h.bindPost(r, &post)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		if submission.errors.Any() {
			h.renderForm(w, r, http.StatusOK, nil, submission.form, submission.errors)
			return
		}

		if err := h.postRepo.Add(&post); err != nil {
			h.discardImage(r.Context(), submission.savedImage)
			h.responder.WriteError(w, r, wrapDatabaseError("create", "post", err))
			return
		}

		h.logger.Info().Uint("postID", post.ID).Uint("authorID", user.ID).Msg("post created")
		redirect(w, r, profileURL(user.Username))
	}
}

// findOwnPost loads the post and checks that the viewer wrote it. It returns nil
// after it has already answered the request.
func (h postHandler) findOwnPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := urlParamID(r, "postID", "post")
	if err != nil {
		h.responder.WriteError(w, r, err)
		return nil
	}

	post, err := h.postRepo.FindByID(id)
	if err != nil {
		h.responder.WriteError(w, r, wrapDatabaseError("find", "post", err))
		return nil
	}

	if !models.CanMutate(ctxGetUser(r.Context()), post) {
		redirect(w, r, postURL(post.ID))
		return nil
	}

	return post
}

func (h postHandler) showEditForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := h.findOwnPost(w, r)
		if post == nil {
			return
		}

		h.renderForm(w, r, http.StatusOK, post, postFormFromPost(*post), nil)
	}
}

func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := h.findOwnPost(w, r)
		if post == nil {
			return
		}

		submission, err := h.bindPost(r, post)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		if submission.errors.Any() {
			h.renderForm(w, r, http.StatusOK, post, submission.form, submission.errors)
			return
		}

		if err := h.postRepo.Update(post); err != nil {
			h.discardImage(r.Context(), submission.savedImage)
			h.responder.WriteError(w, r, wrapDatabaseError("update", "post", err))
			return
		}

		if submission.replacedImage != "" {
			h.discardImage(r.Context(), submission.replacedImage)
		}

		redirect(w, r, postURL(post.ID))
	}
}

func (h postHandler) confirmDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := h.findOwnPost(w, r)
		if post == nil {
			return
		}

		h.responder.Render(w, r, http.StatusOK, pagePostForm, &pageData{
			Title:    "Delete post",
			Post:     post,
			Form:     postFormFromPost(*post),
			Deleting: true,
		})
	}
}

func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := h.findOwnPost(w, r)
		if post == nil {
			return
		}

		if err := h.postRepo.Delete(post.ID); err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("delete", "post", err))
			return
		}

		h.discardImage(r.Context(), post.Image)
		h.logger.Info().Uint("postID", post.ID).Msg("post deleted")
		redirect(w, r, "/")
	}
}

func (h postHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, post *models.Post, form postForm, fieldErrors FieldErrors) {
	categories, err := h.categoryRepo.FindAll()
	if err != nil {
		h.responder.WriteError(w, r, wrapDatabaseError("list", "categories", err))
		return
	}

	locations, err := h.locationRepo.FindAll()
	if err != nil {
		h.responder.WriteError(w, r, wrapDatabaseError("list", "locations", err))
		return
	}

	title := "New post"
	if post != nil {
		title = "Edit post"
	}

	h.responder.Render(w, r, status, pagePostForm, &pageData{
		Title:      title,
		Post:       post,
		Categories: categories,
		Locations:  locations,
		Form:       form,
		Errors:     fieldErrors,
	})
}

type postSubmission struct {
	form          postForm
	errors        FieldErrors
	savedImage    string
	replacedImage string
}

// bindPost validates the submitted form and copies it onto post. Nothing is
// copied when the form has errors. A new upload is saved before returning and the
// key it replaces is reported so the caller can drop it after the row is written,
// or drop the new key if the write fails.
func (h postHandler) bindPost(r *http.Request, post *models.Post) (postSubmission, error) {
	if err := parseForm(r, h.maxUpload); err != nil {
		return postSubmission{}, errs.NewBadRequestError("unreadable form")
	}

	form := postFormFromRequest(r)
	fieldErrors := validateForm(form)

	var pubDate time.Time
	if fieldErrors.Get("pub_date") == "" {
		var ok bool
		if pubDate, ok = parsePubDate(form.PubDate); !ok {
			fieldErrors.Add("pub_date", "Enter a valid date/time.")
		}
	}

	var categoryID uint
	if fieldErrors.Get("category") == "" {
		id, err := h.resolveChoice(form.Category, func(id uint) error {
			_, err := h.categoryRepo.FindByID(id)
			return err
		})
		if err != nil {
			return postSubmission{}, wrapDatabaseError("find", "category", err)
		}
		if id == nil {
			fieldErrors.Add("category", "Select a valid choice.")
		} else {
			categoryID = *id
		}
	}

	var locationID *uint
	if form.Location != "" {
		id, err := h.resolveChoice(form.Location, func(id uint) error {
			_, err := h.locationRepo.FindByID(id)
			return err
		})
		if err != nil {
			return postSubmission{}, wrapDatabaseError("find", "location", err)
		}
		if id == nil {
			fieldErrors.Add("location", "Select a valid choice.")
		}
		locationID = id
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		file = nil
	case err != nil:
		return postSubmission{}, errs.NewBadRequestError("unreadable image upload")
	default:
		defer file.Close()
		checkUpload(header, h.maxUpload, fieldErrors)
	}

	submission := postSubmission{form: form, errors: fieldErrors}
	if fieldErrors.Any() {
		return submission, nil
	}

	post.Title = form.Title
	post.Text = form.Text
	post.PubDate = pubDate
	post.IsPublished = form.IsPublished
	post.CategoryID = &categoryID
	post.LocationID = locationID

	switch {
	case file != nil:
		key, err := h.media.Save(r.Context(), header.Filename, file)
		if err != nil {
			return postSubmission{}, err
		}
		submission.savedImage = key
		submission.replacedImage = post.Image
		post.Image = key
	case form.ClearImage && post.Image != "":
		submission.replacedImage = post.Image
		post.Image = ""
	}

	return submission, nil
}

// resolveChoice returns nil when raw does not name an existing row.
func (h postHandler) resolveChoice(raw string, find func(id uint) error) (*uint, error) {
	id, ok := parseChoice(raw)
	if !ok {
		return nil, nil
	}

	if err := find(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &id, nil
}

func checkUpload(header *multipart.FileHeader, maxUpload int64, fieldErrors FieldErrors) {
	if header.Size > maxUpload {
		fieldErrors.Add("image", "The uploaded file is too large.")
		return
	}
	if _, _, err := services.NewImageKey("", header.Filename); err != nil {
		fieldErrors.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
}

func (h postHandler) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.media.Delete(ctx, key); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("could not delete image")
	}
}
