// Package middleware implements the login and ownership gates in front of
// every mutating route. Ownership is decided by identity-id equality against
// the resource's owner snapshot, never by username, so checks stay stable
// across username changes. Admins pass every ownership gate.
package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campsite/internal/auth"
	"campsite/internal/models"
	"campsite/internal/web"
)

// UserGetter resolves identities for the session loader and the user gate.
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// CampgroundGetter resolves campgrounds for the ownership gate.
type CampgroundGetter interface {
	GetCampground(ctx context.Context, id string) (*models.Campground, error)
}

// CommentGetter resolves comments for the ownership gate.
type CommentGetter interface {
	GetComment(ctx context.Context, id string) (*models.Comment, error)
}

// Flasher queues a user-visible message for the next render.
type Flasher interface {
	Flash(w http.ResponseWriter, r *http.Request, kind, msg string)
}

// CurrentUser resolves the session cookie to a user and attaches it to the
// request context. Anonymous and broken sessions pass through with no user.
func CurrentUser(sessions *auth.SessionStore, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(web.WithUser(r.Context(), user)))
		})
	}
}

// RequireLogin rejects anonymous requests with a flash and a login redirect.
func RequireLogin(fl Flasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if web.UserFrom(r.Context()) == nil {
				fl.Flash(w, r, "error", "You need to be logged in to do that")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CampgroundOwnership permits the owner or an admin to proceed and attaches
// the resolved campground to the context. Exactly one lookup happens here;
// downstream handlers reuse it.
func CampgroundOwnership(store CampgroundGetter, fl Flasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := web.UserFrom(r.Context())
			if user == nil {
				fl.Flash(w, r, "error", "You need to be logged in to do that")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			id := chi.URLParam(r, "id")
			cg, err := store.GetCampground(r.Context(), id)
			if err != nil {
				fl.Flash(w, r, "error", "Campground not found")
				web.RedirectBack(w, r, "/campgrounds")
				return
			}
			if cg.Owner.ID != user.ID && !user.IsAdmin {
				fl.Flash(w, r, "error", "You don't have permission to do that")
				http.Redirect(w, r, "/campgrounds/"+id, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(web.WithCampground(r.Context(), cg)))
		})
	}
}

// CommentOwnership is the comment counterpart of CampgroundOwnership.
func CommentOwnership(store CommentGetter, fl Flasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := web.UserFrom(r.Context())
			if user == nil {
				fl.Flash(w, r, "error", "You need to be logged in to do that")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			c, err := store.GetComment(r.Context(), chi.URLParam(r, "comment_id"))
			if err != nil {
				fl.Flash(w, r, "error", "Comment not found")
				web.RedirectBack(w, r, "/campgrounds")
				return
			}
			if c.Owner.ID != user.ID && !user.IsAdmin {
				fl.Flash(w, r, "error", "You don't have permission to do that")
				http.Redirect(w, r, "/campgrounds/"+chi.URLParam(r, "id"), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(web.WithComment(r.Context(), c)))
		})
	}
}

// UserOwnership lets only the profile's user or an admin edit a profile.
func UserOwnership(users UserGetter, fl Flasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := web.UserFrom(r.Context())
			if user == nil {
				fl.Flash(w, r, "error", "You need to be logged in to do that")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			target, err := users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				fl.Flash(w, r, "error", "User not found")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			if target.ID != user.ID && !user.IsAdmin {
				fl.Flash(w, r, "error", "Only the user can edit their profile page")
				web.RedirectBack(w, r, "/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
