package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Event        *EventHandler
	Post         *PostHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
}

// NewRouter wires all routes. Auth endpoints and the category listing are
// public; everything else sits behind the access-token middleware.
func NewRouter(h Handlers, auth *AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogging)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes.
	api.HandleFunc("/auth/signup", h.Auth.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/categories", h.Admin.ListCategories).Methods(http.MethodGet)

	// Authenticated routes.
	authed := api.NewRoute().Subrouter()
	authed.Use(auth.Require)

	authed.HandleFunc("/dashboard", h.Event.Dashboard).Methods(http.MethodGet)

	// Literal event routes before the {eventId} patterns.
	authed.HandleFunc("/events/export", h.Event.Export).Methods(http.MethodGet)
	authed.HandleFunc("/events", h.Event.List).Methods(http.MethodGet)
	authed.HandleFunc("/events", h.Event.Create).Methods(http.MethodPost)
	authed.HandleFunc("/events/{eventId:[0-9]+}", h.Event.Get).Methods(http.MethodGet)
	authed.HandleFunc("/events/{eventId:[0-9]+}", h.Event.Update).Methods(http.MethodPut)
	authed.HandleFunc("/events/{eventId:[0-9]+}", h.Event.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/events/{eventId:[0-9]+}/review", h.Event.Review).Methods(http.MethodPost)
	authed.HandleFunc("/events/{eventId:[0-9]+}/close", h.Event.Close).Methods(http.MethodPost)

	authed.HandleFunc("/events/{eventId:[0-9]+}/register", h.Event.Register).Methods(http.MethodPost)
	authed.HandleFunc("/events/{eventId:[0-9]+}/register", h.Event.CancelRegistration).Methods(http.MethodDelete)
	authed.HandleFunc("/events/{eventId:[0-9]+}/registrations", h.Event.ListRegistrations).Methods(http.MethodGet)
	authed.HandleFunc("/registrations/me", h.Event.MyRegistrations).Methods(http.MethodGet)
	authed.HandleFunc("/registrations/{registrationId:[0-9]+}/review", h.Event.ReviewRegistration).Methods(http.MethodPost)

	authed.HandleFunc("/events/{eventId:[0-9]+}/posts", h.Post.Create).Methods(http.MethodPost)
	authed.HandleFunc("/events/{eventId:[0-9]+}/posts", h.Post.ListByEvent).Methods(http.MethodGet)
	authed.HandleFunc("/posts/{postId:[0-9]+}/comments", h.Post.AddComment).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{postId:[0-9]+}/comments", h.Post.ListComments).Methods(http.MethodGet)
	authed.HandleFunc("/posts/{postId:[0-9]+}/like", h.Post.ToggleLike).Methods(http.MethodPost)

	authed.HandleFunc("/notifications", h.Notification.List).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/unread", h.Notification.CountUnread).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{notificationId:[0-9]+}/read", h.Notification.MarkAsRead).Methods(http.MethodPost)

	authed.HandleFunc("/admin/users", h.Admin.ListUsers).Methods(http.MethodGet)
	authed.HandleFunc("/admin/users/lock", h.Admin.SetUserLock).Methods(http.MethodPost)
	authed.HandleFunc("/admin/users/role", h.Admin.ChangeUserRole).Methods(http.MethodPost)
	authed.HandleFunc("/admin/users/export", h.Admin.ExportUsers).Methods(http.MethodGet)
	authed.HandleFunc("/admin/categories", h.Admin.CreateCategory).Methods(http.MethodPost)

	return r
}
