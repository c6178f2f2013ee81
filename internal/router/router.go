package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/helpmesh/helpmesh/internal/chat"
	"github.com/helpmesh/helpmesh/internal/config"
	"github.com/helpmesh/helpmesh/internal/handlers"
	"github.com/helpmesh/helpmesh/internal/middleware"
	"github.com/helpmesh/helpmesh/internal/observability"
)

// Deps is everything the router wires together.
type Deps struct {
	Auth      *handlers.AuthHandler
	Chat      *handlers.ChatHandler
	Volunteer *handlers.VolunteerHandler
	Help      *handlers.HelpHandler
	WS        *chat.Handler
	Ready     func(w http.ResponseWriter, r *http.Request)
}

// New assembles the HTTP surface: public auth endpoints, the JWT-gated API,
// and the websocket endpoint which carries its own handshake auth.
func New(cfg *config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery())
	r.Use(observability.MetricsMiddleware(cfg.ServiceName))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateLimitWin))

	r.Get("/health/live", observability.HealthLiveHandler)
	if d.Ready != nil {
		r.Get("/health/ready", d.Ready)
	}

	r.Post("/api/auth/signup", d.Auth.Signup)
	r.Post("/api/auth/login", d.Auth.Login)
	r.Post("/api/auth/google-login", d.Auth.GoogleLogin)
	r.Put("/api/auth/password", d.Auth.UpdatePassword)

	// Token travels in the upgrade request, not the Authorization header,
	// so the websocket endpoint sits outside the JWT group.
	r.Get("/ws", d.WS.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWT(cfg.JWTSecret))

		r.Get("/api/users", d.Auth.ListUsers)
		r.Get("/api/users/by-role", d.Auth.ListByRole)
		r.Put("/api/users/location", d.Auth.UpdateLocation)

		r.Route("/api/chat", func(r chi.Router) {
			r.Get("/conversations", d.Chat.ListConversations)
			r.Get("/conversations/{otherUserId}", d.Chat.GetConversation)
			r.Delete("/conversations/{otherUserId}", d.Chat.DeleteConversation)
			r.Get("/unread-count", d.Chat.UnreadCount)
			r.Put("/read/{senderId}", d.Chat.MarkRead)
			r.Post("/messages", d.Chat.SendMessage)
			r.Delete("/messages/{messageId}", d.Chat.DeleteMessage)
			r.Get("/volunteers", d.Chat.ListVolunteers)
			r.Get("/volunteers/{volunteerId}", d.Chat.GetVolunteerProfile)
		})

		r.Route("/api/volunteer", func(r chi.Router) {
			r.Post("/apply", d.Volunteer.Apply)
			r.Get("/my-applications", d.Volunteer.MyApplications)
		})

		r.Route("/api/admin/applications", func(r chi.Router) {
			r.Get("/", d.Volunteer.List)
			r.Get("/{applicationId}", d.Volunteer.Get)
			r.Put("/{applicationId}/approve", d.Volunteer.Approve)
			r.Put("/{applicationId}/reject", d.Volunteer.Reject)
		})

		r.Route("/api/helps", func(r chi.Router) {
			r.Get("/", d.Help.List)
			r.Post("/", d.Help.Add)
			r.Put("/{id}", d.Help.Update)
			r.Patch("/{id}", d.Help.Patch)
		})
	})

	return r
}
