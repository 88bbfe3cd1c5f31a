// Package contact implements the captcha-gated contact form.
package contact

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"campsite/internal/logging"
	"campsite/internal/models"
	"campsite/internal/web"
)

// Verifier validates a human-verification token remotely.
type Verifier interface {
	Verify(ctx context.Context, response, remoteIP string) (bool, error)
}

// MailSender sends transactional mail.
type MailSender interface {
	Send(ctx context.Context, to, replyTo, subject, text string) error
}

// Handler holds the contact-form HTTP handlers.
type Handler struct {
	captcha  Verifier
	mailer   MailSender
	to       string
	view     *web.Renderer
	validate *validator.Validate
	log      logging.Logger
}

func NewHandler(captcha Verifier, mailer MailSender, to string, view *web.Renderer, log logging.Logger) *Handler {
	return &Handler{
		captcha:  captcha,
		mailer:   mailer,
		to:       to,
		view:     view,
		validate: validator.New(),
		log:      log,
	}
}

// Form shows the contact page.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "contact", nil)
}

// Send verifies the captcha and forwards the submission by mail. The form
// fields go into the message verbatim.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	captchaResp := r.FormValue("g-recaptcha-response")
	if captchaResp == "" {
		h.view.Flash(w, r, "error", "Please select captcha")
		web.RedirectBack(w, r, "/contact")
		return
	}
	ok, err := h.captcha.Verify(r.Context(), captchaResp, r.RemoteAddr)
	if err != nil {
		h.log.Error(r.Context(), "captcha verify", "err", err)
		h.view.Flash(w, r, "error", "An error occurred with the captcha.")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}
	if !ok {
		h.view.Flash(w, r, "error", "Captcha Failed")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	form := models.ContactForm{
		Name:    r.FormValue("name"),
		Phone:   r.FormValue("phone"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("message"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.view.Flash(w, r, "error", "Please fill in your name, a valid email and a message")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	subject := "Contact request from: " + form.Name
	body := fmt.Sprintf("You have received an email from...\nName: %s\nPhone: %s\nEmail: %s\nMessage: %s\n",
		form.Name, form.Phone, form.Email, form.Message)
	if err := h.mailer.Send(r.Context(), h.to, form.Email, subject, body); err != nil {
		h.log.Error(r.Context(), "send contact mail", "err", err)
		h.view.Flash(w, r, "error", "Something went wrong... Please try again later!")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	h.view.Flash(w, r, "success", "Your email has been sent, we will respond within 24 hours.")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}
