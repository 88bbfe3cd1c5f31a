package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"campsite/internal/logging"
	"campsite/internal/models"
	"campsite/internal/store"
)

// Flasher queues a user-visible message; Renderer shows a page. Both are
// satisfied by the web renderer and declared here to avoid an import cycle.
type Flasher interface {
	Flash(w http.ResponseWriter, r *http.Request, kind, msg string)
}

type Renderer interface {
	Flasher
	Render(w http.ResponseWriter, r *http.Request, page string, data any)
}

// Handler holds the auth HTTP handlers.
type Handler struct {
	svc      *Service
	sessions *SessionStore
	view     Renderer
	validate *validator.Validate
	log      logging.Logger

	// SetCookie lets the web package own the cookie shape.
	SetCookie func(w http.ResponseWriter, sid string)
}

func NewHandler(svc *Service, sessions *SessionStore, view Renderer, log logging.Logger,
	setCookie func(http.ResponseWriter, string)) *Handler {
	return &Handler{
		svc:       svc,
		sessions:  sessions,
		view:      view,
		validate:  validator.New(),
		log:       log,
		SetCookie: setCookie,
	}
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "register", nil)
}

// Register creates the account and logs the new user straight in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form := models.RegisterForm{
		Username:  r.FormValue("username"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
		AdminCode: r.FormValue("adminCode"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.view.Flash(w, r, "error", "Please provide a username, a valid email and a password of at least 8 characters")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	user, err := h.svc.Register(r.Context(), form)
	if err != nil {
		h.log.Warn(r.Context(), "register failed", "username", form.Username, "err", err)
		h.view.Flash(w, r, "error", "A user with that username or email already exists")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	h.startSession(w, r, user.ID, "Welcome to YelpCamp, "+user.Username)
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "login", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			h.log.Error(r.Context(), "login", "err", err)
		}
		h.view.Flash(w, r, "error", "Invalid username or password")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.startSession(w, r, user.ID, "You've logged in!")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.log.Warn(r.Context(), "delete session", "err", err)
		}
	}
	// Swap in a fresh anonymous session so the goodbye flash survives.
	h.startSession(w, r, "", "Logged you out!")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

func (h *Handler) ForgotForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "forgot", nil)
}

// Forgot issues a reset token and emails the link.
func (h *Handler) Forgot(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	user, err := h.svc.StartReset(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.view.Flash(w, r, "error", "No account with that email address exists.")
		} else {
			h.log.Error(r.Context(), "start reset", "err", err)
			h.view.Flash(w, r, "error", "Something went wrong... Please try again later!")
		}
		http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		return
	}
	h.view.Flash(w, r, "success", "An email has been sent to "+user.Email+" with further instructions.")
	http.Redirect(w, r, "/forgot", http.StatusSeeOther)
}

// ResetForm validates the token before showing the new-password form.
func (h *Handler) ResetForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := h.svc.LookupResetToken(r.Context(), token); err != nil {
		h.view.Flash(w, r, "error", "Password reset token is invalid or has expired.")
		http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		return
	}
	h.view.Render(w, r, "reset", token)
}

// Reset completes the password change.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	user, err := h.svc.CompleteReset(r.Context(), token, r.FormValue("password"), r.FormValue("confirm"))
	switch {
	case errors.Is(err, ErrTokenInvalid):
		h.view.Flash(w, r, "error", "Password reset token is invalid or has expired.")
		http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		return
	case errors.Is(err, ErrPasswordMismatch):
		h.view.Flash(w, r, "error", "Passwords do not match")
		http.Redirect(w, r, "/reset/"+token, http.StatusSeeOther)
		return
	case err != nil:
		// The password may already be changed; only the confirmation mail
		// failed. Report and continue to login.
		h.log.Error(r.Context(), "complete reset", "err", err)
		if user == nil {
			h.view.Flash(w, r, "error", "Something went wrong... Please try again later!")
			http.Redirect(w, r, "/forgot", http.StatusSeeOther)
			return
		}
	}

	h.startSession(w, r, user.ID, "Success! Your password has been changed.")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

// startSession replaces the session cookie and queues the flash on the new
// session, since the request still carries the old cookie.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID, flash string) {
	sid, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "create session", "err", err)
		return
	}
	h.SetCookie(w, sid)
	if flash != "" {
		if err := h.sessions.AddFlash(r.Context(), sid, Flash{Kind: "success", Message: flash}); err != nil {
			h.log.Warn(r.Context(), "queue flash", "err", err)
		}
	}
}
