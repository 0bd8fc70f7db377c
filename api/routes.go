package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupPublicRoutes registers the pages anonymous visitors can reach.
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/", handlers.postHandler.listPosts())
	r.Get("/posts/{postID:[0-9]+}/", handlers.postHandler.getPost())
	r.Get("/category/{slug}/", handlers.categoryHandler.getCategoryPosts())
	r.Get("/profile/{username}/", handlers.profileHandler.getProfile())

	r.Get("/pages/about/", handlers.pagesHandler.static(pageAbout, "About"))
	r.Get("/pages/rules/", handlers.pagesHandler.static(pageRules, "Rules"))

	r.Get("/auth/registration/", handlers.authHandler.showRegistration())
	r.Post("/auth/registration/", handlers.authHandler.register())
	r.Get("/auth/login/", handlers.authHandler.showLogin())
	r.Post("/auth/login/", handlers.authHandler.login())
	r.Get("/auth/logout/", handlers.authHandler.logout())
	r.Post("/auth/logout/", handlers.authHandler.logout())
}

// setupAuthorRoutes registers every mutation. Anonymous visitors are sent to the
// login page before any handler runs.
func setupAuthorRoutes(r chi.Router, handlers *routeHandlers) {
	r.Group(func(r chi.Router) {
		r.Use(requireLogin)

		r.Get("/posts/create/", handlers.postHandler.showCreateForm())
		r.Post("/posts/create/", handlers.postHandler.createPost())
		r.Get("/posts/{postID:[0-9]+}/edit/", handlers.postHandler.showEditForm())
		r.Post("/posts/{postID:[0-9]+}/edit/", handlers.postHandler.updatePost())
		r.Get("/posts/{postID:[0-9]+}/delete/", handlers.postHandler.confirmDelete())
		r.Post("/posts/{postID:[0-9]+}/delete/", handlers.postHandler.deletePost())

		r.Post("/posts/{postID:[0-9]+}/comment/", handlers.commentHandler.addComment())
		r.Get("/posts/{postID:[0-9]+}/edit_comment/{commentID:[0-9]+}/", handlers.commentHandler.showEditComment())
		r.Post("/posts/{postID:[0-9]+}/edit_comment/{commentID:[0-9]+}/", handlers.commentHandler.updateComment())
		r.Get("/posts/{postID:[0-9]+}/delete_comment/{commentID:[0-9]+}/", handlers.commentHandler.confirmDeleteComment())
		r.Post("/posts/{postID:[0-9]+}/delete_comment/{commentID:[0-9]+}/", handlers.commentHandler.deleteComment())

		r.Get("/edit_profile/", handlers.profileHandler.showEditProfile())
		r.Post("/edit_profile/", handlers.profileHandler.updateProfile())
	})
}

func setupOperationalRoutes(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())
}
