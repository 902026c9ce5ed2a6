package handlers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users       UserStore
	Chats       ChatStore
	Files       FileStore
	AuthLimiter RateLimiter

	// Roots for static file serving; empty values disable the mount.
	UploadsDir    string
	UserImagesDir string
	PublicDir     string
}

// RegisterRoutes wires HTTP handlers into the provided chi router.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Limiter: deps.AuthLimiter}
	friends := FriendHandler{Users: deps.Users}
	chats := ChatHandler{Chats: deps.Chats}
	messages := MessageHandler{Chats: deps.Chats}
	uploads := UploadHandler{Files: deps.Files, Chats: deps.Chats, Users: deps.Users}

	r.Get("/healthz", health.Handle)

	r.Post("/signup", auth.SignUp)
	r.Post("/login", auth.Login)
	r.Post("/change-password", auth.ChangePassword)

	r.Post("/friend-request", friends.Request)
	r.Get("/friends", friends.List)

	r.Post("/message", messages.Post)
	r.Get("/messages", messages.List)

	r.Post("/new-chat", chats.Create)
	r.Post("/create-friend-chat", chats.CreateFriendChat)
	r.Delete("/delete-chat", chats.Delete)
	r.Get("/user-chats", chats.ListForUser)

	r.Post("/upload", uploads.File)
	r.Post("/update-profile-image", uploads.ProfileImage)

	mountStatic(r, "/uploads", deps.UploadsDir)
	mountStatic(r, "/user-images", deps.UserImagesDir)

	if deps.PublicDir != "" {
		if _, err := os.Stat(deps.PublicDir); err == nil {
			r.Handle("/*", http.FileServer(http.Dir(deps.PublicDir)))
		}
	}
}

func mountStatic(r chi.Router, prefix, dir string) {
	if dir == "" {
		return
	}
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Handle(prefix+"/*", fs)
}
