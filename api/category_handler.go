package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lonlait/blogicum/database"
	"github.com/rs/zerolog/log"
)

type categoryHandler struct {
	responder    Renderer
	categoryRepo *database.CategoryRepo
	postRepo     *database.PostRepo
	pageSize     int
	now          func() time.Time
}

func newCategoryHandler(db database.Database, templates templateSet, pageSize int, now func() time.Time) categoryHandler {
	logger := log.With().Str("handlerName", "categoryHandler").Logger()

	return categoryHandler{
		responder:    NewRenderer(logger, templates),
		categoryRepo: db.CategoryRepo(),
		postRepo:     db.PostRepo(),
		pageSize:     pageSize,
		now:          now,
	}
}

// getCategoryPosts lists the visible posts of a published category. Unpublished
// and unknown slugs are both 404.
func (h categoryHandler) getCategoryPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := h.categoryRepo.FindPublishedBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("find", "category", err))
			return
		}

		page, err := h.postRepo.ListByCategory(*category, requestPage(r, h.pageSize), h.now())
		if err != nil {
			h.responder.WriteError(w, r, wrapDatabaseError("list", "posts", err))
			return
		}

		h.responder.Render(w, r, http.StatusOK, pageCategory, &pageData{
			Title:    category.Title,
			Category: category,
			Page:     page,
		})
	}
}
