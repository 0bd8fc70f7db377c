package api

import (
	"github.com/lonlait/blogicum/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, templates templateSet, router router) *routeHandlers {
	return &routeHandlers{
		postHandler:     newPostHandler(db, templates, router.media, router.app.PageSize, router.maxUpload(), router.now),
		commentHandler:  newCommentHandler(db, templates),
		categoryHandler: newCategoryHandler(db, templates, router.app.PageSize, router.now),
		profileHandler:  newProfileHandler(db, templates, router.app.PageSize, router.now),
		authHandler:     newAuthHandler(db, templates, router.sessions),
		pagesHandler:    newPagesHandler(templates),
	}
}
