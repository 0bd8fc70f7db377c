package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	postHandler     postHandler
	commentHandler  commentHandler
	categoryHandler categoryHandler
	profileHandler  profileHandler
	authHandler     authHandler
	pagesHandler    pagesHandler
}
