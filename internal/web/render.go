package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"campsite/internal/auth"
	"campsite/internal/logging"
	"campsite/internal/models"
)

//go:embed templates
var templatesFS embed.FS

// ViewData is the payload every template receives.
type ViewData struct {
	CurrentUser *models.User
	Errors      []string
	Successes   []string
	Data        any
}

// Renderer executes page templates inside the shared layout and drains
// queued flash messages into each render.
type Renderer struct {
	pages    map[string]*template.Template
	sessions *auth.SessionStore
	log      logging.Logger
}

func NewRenderer(sessions *auth.SessionStore, log logging.Logger) (*Renderer, error) {
	names, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return &Renderer{pages: pages, sessions: sessions, log: log}, nil
}

// Render writes the named page. Flashes queued on the session are drained
// into the view exactly once.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, page string, data any) {
	t, ok := rd.pages[page]
	if !ok {
		rd.log.Error(r.Context(), "unknown template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	vd := ViewData{CurrentUser: UserFrom(r.Context()), Data: data}
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		flashes, err := rd.sessions.PopFlashes(r.Context(), cookie.Value)
		if err != nil {
			rd.log.Warn(r.Context(), "drain flashes", "err", err)
		}
		for _, f := range flashes {
			if f.Kind == "success" {
				vd.Successes = append(vd.Successes, f.Message)
			} else {
				vd.Errors = append(vd.Errors, f.Message)
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", vd); err != nil {
		rd.log.Error(r.Context(), "render template", "page", page, "err", err)
	}
}

// Flash queues a one-shot message for the next render. Anonymous visitors
// get a session created on the spot so the message survives the redirect.
func (rd *Renderer) Flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sid := ""
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		sid = cookie.Value
	}
	if sid == "" {
		var err error
		sid, err = rd.sessions.Create(r.Context(), "")
		if err != nil {
			rd.log.Warn(r.Context(), "create flash session", "err", err)
			return
		}
		SetSessionCookie(w, sid)
	}
	if err := rd.sessions.AddFlash(r.Context(), sid, auth.Flash{Kind: kind, Message: msg}); err != nil {
		rd.log.Warn(r.Context(), "queue flash", "err", err)
	}
}

// RedirectBack sends the browser to the referring page, or to fallback when
// no referrer is present.
func RedirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := r.Referer()
	if target == "" {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SetSessionCookie writes the session cookie the way the auth handlers do.
func SetSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.SessionTTL.Seconds()),
	})
}
