// Package users implements profile pages: show, edit and the avatar-swap
// update flow, which follows the same compensating shape as campground
// updates.
package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"campsite/internal/campgrounds"
	"campsite/internal/logging"
	"campsite/internal/models"
	"campsite/internal/store"
	"campsite/internal/web"
)

const maxUploadBytes = 10 << 20

// UserStore is the identity persistence the profile pages need.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, email, bio, avatarURL, avatarKey string) error
}

// ListingStore lists a profile's campgrounds.
type ListingStore interface {
	CampgroundsByOwner(ctx context.Context, ownerID string) ([]models.Campground, error)
}

// ProfileUpdater sequences the avatar replacement: destroy the old hosted
// image, upload the new one, then persist. Any image-step failure aborts
// with the stored record untouched.
type ProfileUpdater struct {
	users  UserStore
	images campgrounds.ImageStore
}

func NewProfileUpdater(users UserStore, images campgrounds.ImageStore) *ProfileUpdater {
	return &ProfileUpdater{users: users, images: images}
}

func (u *ProfileUpdater) Update(ctx context.Context, user *models.User, form models.ProfileForm, avatar *campgrounds.Upload) campgrounds.Result {
	avatarURL, avatarKey := user.AvatarURL, user.AvatarKey
	stage := campgrounds.StageStarted
	if avatar != nil {
		if user.AvatarKey != "" {
			if err := u.images.Destroy(ctx, user.AvatarKey); err != nil {
				return campgrounds.Result{Stage: stage, Err: err}
			}
		}
		key, url, err := u.images.Upload(ctx, avatar.Filename, avatar.Reader, avatar.Size, avatar.ContentType)
		if err != nil {
			return campgrounds.Result{Stage: stage, Err: err}
		}
		avatarKey, avatarURL = key, url
		stage = campgrounds.StageImageMutated
	}

	if err := u.users.UpdateProfile(ctx, user.ID, form.Email, form.Bio, avatarURL, avatarKey); err != nil {
		return campgrounds.Result{Stage: stage, Err: err}
	}
	user.Email = form.Email
	user.Bio = form.Bio
	user.AvatarURL = avatarURL
	user.AvatarKey = avatarKey
	return campgrounds.Result{Stage: campgrounds.StageDone}
}

// Handler holds the profile HTTP handlers.
type Handler struct {
	users    UserStore
	listings ListingStore
	updater  *ProfileUpdater
	view     *web.Renderer
	validate *validator.Validate
	log      logging.Logger
}

func NewHandler(users UserStore, listings ListingStore, updater *ProfileUpdater, view *web.Renderer, log logging.Logger) *Handler {
	return &Handler{
		users:    users,
		listings: listings,
		updater:  updater,
		view:     view,
		validate: validator.New(),
		log:      log,
	}
}

// Show renders a profile page with that user's campgrounds.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.view.Flash(w, r, "error", "Something went wrong.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	listings, err := h.listings.CampgroundsByOwner(r.Context(), user.ID)
	if err != nil {
		h.view.Flash(w, r, "error", "Something went wrong.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.view.Render(w, r, "users_show", map[string]any{
		"User":        user,
		"Campgrounds": listings,
	})
}

// EditForm shows the profile edit form.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.view.Flash(w, r, "error", "No user found")
		web.RedirectBack(w, r, "/")
		return
	}
	h.view.Render(w, r, "users_edit", user)
}

// Update applies email/bio changes and the optional avatar replacement.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	target, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.view.Flash(w, r, "error", "No user found")
		web.RedirectBack(w, r, "/")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.view.Flash(w, r, "error", "Invalid form submission")
		web.RedirectBack(w, r, "/users/"+target.ID)
		return
	}
	form := models.ProfileForm{
		Email: r.FormValue("email"),
		Bio:   r.FormValue("bio"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.view.Flash(w, r, "error", "Please provide a valid email address")
		web.RedirectBack(w, r, "/users/"+target.ID)
		return
	}

	var avatar *campgrounds.Upload
	if file, header, err := r.FormFile("avatar"); err == nil {
		if !store.AllowedImageExt(header.Filename) {
			file.Close()
			h.view.Flash(w, r, "error", "Only image files are allowed!")
			web.RedirectBack(w, r, "/users/"+target.ID)
			return
		}
		avatar = &campgrounds.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		}
	}

	res := h.updater.Update(r.Context(), target, form, avatar)
	if res.Aborted() {
		h.log.Warn(r.Context(), "profile update aborted", "user", target.ID,
			"stage", res.Stage, "err", res.Err)
		h.view.Flash(w, r, "error", "Profile unable to be updated")
		web.RedirectBack(w, r, "/users/"+target.ID)
		return
	}
	h.view.Flash(w, r, "success", "Profile updated!")
	http.Redirect(w, r, "/users/"+target.ID, http.StatusSeeOther)
}
