package api

import (
	"net/http"

	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/errs"
	"github.com/lonlait/blogicum/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commentHandler struct {
	responder   Renderer
	logger      zerolog.Logger
	postRepo    *database.PostRepo
	commentRepo *database.CommentRepo
}

func newCommentHandler(db database.Database, templates templateSet) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:   NewRenderer(logger, templates),
		logger:      logger,
		postRepo:    db.PostRepo(),
		commentRepo: db.CommentRepo(),
	}
}

// addComment attaches a comment to any existing post, looked up by id alone.
func (h commentHandler) addComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := urlParamID(r, "postID", "post")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("find", "post", err))
			return
		}

		if err := r.ParseForm(); err != nil {
			h.responder.WriteError(w, r, errs.NewBadRequestError("unreadable form"))
			return
		}

		form := commentFormFromRequest(r)
		if fieldErrors := validateForm(form); fieldErrors.Any() {
			h.responder.Render(w, r, http.StatusOK, pageComment, &pageData{
				Title:  "Comment",
				Post:   post,
				Form:   form,
				Errors: fieldErrors,
			})
			return
		}

		user := ctxGetUser(r.Context())
		comment := models.Comment{Text: form.Text, PostID: post.ID, AuthorID: user.ID}
		if err := h.commentRepo.Add(&comment); err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("create", "comment", err))
			return
		}

		redirect(w, r, postURL(post.ID))
	}
}

// findOwnComment loads the comment of the post in the URL and checks that the
// viewer wrote it. It returns nil after it has already answered the request.
func (h commentHandler) findOwnComment(w http.ResponseWriter, r *http.Request) *models.Comment {
	postID, err := urlParamID(r, "postID", "post")
	if err != nil {
		h.responder.WriteError(w, r, err)
		return nil
	}

	commentID, err := urlParamID(r, "commentID", "comment")
	if err != nil {
		h.responder.WriteError(w, r, err)
		return nil
	}

	comment, err := h.commentRepo.FindInPost(commentID, postID)
	if err != nil {
		h.responder.WriteError(w, r, wrapDatabaseError("find", "comment", err))
		return nil
	}

	if !models.CanMutate(ctxGetUser(r.Context()), comment) {
		redirect(w, r, postURL(postID))
		return nil
	}

	return comment
}

func (h commentHandler) showEditComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment := h.findOwnComment(w, r)
		if comment == nil {
			return
		}

		h.responder.Render(w, r, http.StatusOK, pageComment, &pageData{
			Title:   "Edit comment",
			Comment: comment,
			Form:    commentForm{Text: comment.Text},
		})
	}
}

func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment := h.findOwnComment(w, r)
		if comment == nil {
			return
		}

		if err := r.ParseForm(); err != nil {
			h.responder.WriteError(w, r, errs.NewBadRequestError("unreadable form"))
			return
		}

		form := commentFormFromRequest(r)
		if fieldErrors := validateForm(form); fieldErrors.Any() {
			h.responder.Render(w, r, http.StatusOK, pageComment, &pageData{
				Title:   "Edit comment",
				Comment: comment,
				Form:    form,
				Errors:  fieldErrors,
			})
			return
		}

		comment.Text = form.Text
		if err := h.commentRepo.UpdateText(comment); err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("update", "comment", err))
			return
		}

		redirect(w, r, postURL(comment.PostID))
	}
}

func (h commentHandler) confirmDeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment := h.findOwnComment(w, r)
		if comment == nil {
			return
		}

		h.responder.Render(w, r, http.StatusOK, pageComment, &pageData{
			Title:    "Delete comment",
			Comment:  comment,
			Deleting: true,
		})
	}
}

func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment := h.findOwnComment(w, r)
		if comment == nil {
			return
		}

		if err := h.commentRepo.Delete(comment.ID); err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("delete", "comment", err))
			return
		}

		h.logger.Info().Uint("commentID", comment.ID).Uint("postID", comment.PostID).Msg("comment deleted")
		redirect(w, r, postURL(comment.PostID))
	}
}
