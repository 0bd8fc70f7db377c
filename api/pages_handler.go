package api

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

type pagesHandler struct {
	responder Renderer
}

func newPagesHandler(templates templateSet) pagesHandler {
	logger := log.With().Str("handlerName", "pagesHandler").Logger()
	return pagesHandler{responder: NewRenderer(logger, templates)}
}

func (h pagesHandler) static(page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, http.StatusOK, page, &pageData{Title: title})
	}
}

func (h pagesHandler) notFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.NotFound(w, r)
	}
}
