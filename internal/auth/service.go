package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campsite/internal/models"
	"campsite/internal/store"
)

var (
	// ErrInvalidCredentials signals a wrong username or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrTokenInvalid signals an unknown or expired password-reset token.
	ErrTokenInvalid = errors.New("auth: reset token is invalid or has expired")
	// ErrPasswordMismatch signals that the two submitted passwords differ.
	ErrPasswordMismatch = errors.New("auth: passwords do not match")
)

// resetTokenTTL bounds how long a password-reset link stays valid.
const resetTokenTTL = time.Hour

// UserStore is the identity persistence needed by the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string, isAdmin bool) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, hashedPw string) error
}

// MailSender sends transactional mail.
type MailSender interface {
	Send(ctx context.Context, to, replyTo, subject, text string) error
}

// Service handles registration, login and password resets.
type Service struct {
	users     UserStore
	mailer    MailSender
	adminCode string
	baseURL   string
}

func NewService(users UserStore, mailer MailSender, adminCode, baseURL string) *Service {
	return &Service{users: users, mailer: mailer, adminCode: adminCode, baseURL: baseURL}
}

// Register creates a new user. The optional admin code elevates the account
// when it matches the server-side secret.
func (s *Service) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	isAdmin := s.adminCode != "" && form.AdminCode == s.adminCode
	return s.users.CreateUser(ctx, form.Username, form.Email, string(hashed), isAdmin)
}

// Login verifies the credentials and returns the user.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// StartReset issues a time-boxed reset token for the account with the given
// email and mails the reset link.
func (s *Service) StartReset(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("auth: generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.users.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return nil, err
	}

	body := "You are receiving this because you (or someone else) has requested the reset of the password for your account.\n\n" +
		"Please click on the following link, or paste this into your browser to complete the process.\n\n" +
		s.baseURL + "/reset/" + token + "\n\n" +
		"If you did not request this, please ignore this email and your password will remain unchanged."
	if err := s.mailer.Send(ctx, user.Email, "", "Password Reset", body); err != nil {
		return nil, fmt.Errorf("auth: send reset mail: %w", err)
	}
	return user, nil
}

// LookupResetToken resolves a pending, unexpired token to its user.
func (s *Service) LookupResetToken(ctx context.Context, token string) (*models.User, error) {
	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.ResetExpires.After(time.Now()) {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

// CompleteReset validates the token and the matching passwords, stores the
// new hash (clearing the token) and sends a confirmation mail.
func (s *Service) CompleteReset(ctx context.Context, token, password, confirm string) (*models.User, error) {
	user, err := s.LookupResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return nil, err
	}

	body := "Hello,\n\nThis is a confirmation that the password for your account " +
		user.Email + " has just been changed.\n"
	if err := s.mailer.Send(ctx, user.Email, "", "Your password has been changed", body); err != nil {
		return user, fmt.Errorf("auth: send confirmation mail: %w", err)
	}
	return user, nil
}
