// Package comments implements the comment routes nested under a campground.
package comments

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"campsite/internal/logging"
	"campsite/internal/models"
	"campsite/internal/web"
)

// Store is the persistence the comment routes need.
type Store interface {
	GetCampground(ctx context.Context, id string) (*models.Campground, error)
	InsertComment(ctx context.Context, c *models.Comment) (string, error)
	PushComment(ctx context.Context, campgroundID string, commentID primitive.ObjectID) error
	UpdateComment(ctx context.Context, id, text string) error
	DeleteComment(ctx context.Context, id string) error
}

// Handler holds the comment HTTP handlers.
type Handler struct {
	store Store
	view  *web.Renderer
	log   logging.Logger
}

func NewHandler(store Store, view *web.Renderer, log logging.Logger) *Handler {
	return &Handler{store: store, view: view, log: log}
}

// NewForm shows the comment form for the parent campground.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	cg, err := h.store.GetCampground(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.view.Flash(w, r, "error", "Campground not found")
		web.RedirectBack(w, r, "/campgrounds")
		return
	}
	h.view.Render(w, r, "comments_new", cg)
}

// Create stores the comment with the acting identity as owner snapshot and
// pushes the reference onto the parent campground.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := web.UserFrom(r.Context())
	campgroundID := chi.URLParam(r, "id")

	cg, err := h.store.GetCampground(r.Context(), campgroundID)
	if err != nil {
		h.log.Warn(r.Context(), "comment create: campground lookup", "err", err)
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		h.view.Flash(w, r, "error", "Comment cannot be empty")
		http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusSeeOther)
		return
	}

	comment := &models.Comment{
		Text:  text,
		Owner: models.Owner{ID: user.ID, Username: user.Username},
	}
	if _, err := h.store.InsertComment(r.Context(), comment); err != nil {
		h.log.Error(r.Context(), "insert comment", "err", err)
		h.view.Flash(w, r, "error", "Something went wrong")
		http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusSeeOther)
		return
	}
	if err := h.store.PushComment(r.Context(), cg.ID.Hex(), comment.ID); err != nil {
		h.log.Error(r.Context(), "push comment ref", "err", err)
		h.view.Flash(w, r, "error", "Something went wrong")
		http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusSeeOther)
		return
	}

	h.view.Flash(w, r, "success", "Successfully added comment")
	http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusSeeOther)
}

// EditForm shows the edit form for the comment the ownership gate resolved.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	cg, err := h.store.GetCampground(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.view.Flash(w, r, "error", "No campground found")
		web.RedirectBack(w, r, "/campgrounds")
		return
	}
	h.view.Render(w, r, "comments_edit", map[string]any{
		"Campground": cg,
		"Comment":    web.CommentFrom(r.Context()),
	})
}

// Update rewrites the comment body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	campgroundID := chi.URLParam(r, "id")
	comment := web.CommentFrom(r.Context())

	if err := h.store.UpdateComment(r.Context(), comment.ID.Hex(), r.FormValue("text")); err != nil {
		h.log.Error(r.Context(), "update comment", "err", err)
		web.RedirectBack(w, r, "/campgrounds/"+campgroundID)
		return
	}
	http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusSeeOther)
}

// Destroy removes the comment document. The parent campground's reference
// list is intentionally left alone.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	campgroundID := chi.URLParam(r, "id")
	comment := web.CommentFrom(r.Context())

	if err := h.store.DeleteComment(r.Context(), comment.ID.Hex()); err != nil {
		h.log.Error(r.Context(), "delete comment", "err", err)
		web.RedirectBack(w, r, "/campgrounds/"+campgroundID)
		return
	}
	h.view.Flash(w, r, "success", "Comment deleted")
	http.Redirect(w, r, "/campgrounds/"+campgroundID, http.StatusSeeOther)
}
