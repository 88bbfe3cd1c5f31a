package auth

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campsite/internal/models"
	"campsite/internal/store"
)

type fakeUserStore struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
	nextID     int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:       map[string]*models.User{},
		byUsername: map[string]*models.User{},
		byEmail:    map[string]*models.User{},
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, email, hashedPw string, isAdmin bool) (*models.User, error) {
	f.nextID++
	u := &models.User{
		ID:           "user-" + strconv.Itoa(f.nextID),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPw,
		IsAdmin:      isAdmin,
	}
	f.byID[u.ID] = u
	f.byUsername[username] = u
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.byID {
		if u.ResetToken != "" && u.ResetToken == token {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	u := f.byID[id]
	u.ResetToken = token
	u.ResetExpires = expires
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id, hashedPw string) error {
	u := f.byID[id]
	u.PasswordHash = hashedPw
	u.ResetToken = ""
	u.ResetExpires = time.Time{}
	return nil
}

type sentMail struct {
	to, replyTo, subject, text string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, replyTo, subject, text string) error {
	f.sent = append(f.sent, sentMail{to, replyTo, subject, text})
	return nil
}

func newTestService() (*Service, *fakeUserStore, *fakeMailer) {
	users := newFakeUserStore()
	mailer := &fakeMailer{}
	return NewService(users, mailer, "secret-admin-code", "http://localhost:8080"), users, mailer
}

func register(t *testing.T, svc *Service, username, adminCode string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), models.RegisterForm{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "supersafe123",
		AdminCode: adminCode,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAdminCode(t *testing.T) {
	svc, _, _ := newTestService()

	alice := register(t, svc, "alice", "")
	assert.False(t, alice.IsAdmin, "no admin code means a regular account")

	bob := register(t, svc, "bob", "wrong-code")
	assert.False(t, bob.IsAdmin)

	carol := register(t, svc, "carol", "secret-admin-code")
	assert.True(t, carol.IsAdmin)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc, "alice", "")

	u, err := svc.Login(context.Background(), "alice", "supersafe123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "supersafe123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStartReset(t *testing.T) {
	svc, users, mailer := newTestService()
	alice := register(t, svc, "alice", "")

	_, err := svc.StartReset(context.Background(), "alice@example.com")
	require.NoError(t, err)

	stored := users.byID[alice.ID]
	require.NotEmpty(t, stored.ResetToken)
	assert.Len(t, stored.ResetToken, 40, "20 random bytes hex-encoded")
	assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ResetExpires, time.Minute)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.True(t, strings.Contains(mailer.sent[0].text, "/reset/"+stored.ResetToken))
}

func TestStartResetUnknownEmail(t *testing.T) {
	svc, _, mailer := newTestService()

	_, err := svc.StartReset(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Empty(t, mailer.sent)
}

func TestCompleteReset(t *testing.T) {
	svc, users, mailer := newTestService()
	alice := register(t, svc, "alice", "")
	_, err := svc.StartReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	token := users.byID[alice.ID].ResetToken

	u, err := svc.CompleteReset(context.Background(), token, "newpassword1", "newpassword1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	stored := users.byID[alice.ID]
	assert.Empty(t, stored.ResetToken, "token cleared after use")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpassword1")))

	// Reset link mail plus confirmation mail.
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "Your password has been changed", mailer.sent[1].subject)
}

func TestCompleteResetMismatchedPasswords(t *testing.T) {
	svc, users, _ := newTestService()
	alice := register(t, svc, "alice", "")
	_, err := svc.StartReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	token := users.byID[alice.ID].ResetToken

	_, err = svc.CompleteReset(context.Background(), token, "one", "two")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.NotEmpty(t, users.byID[alice.ID].ResetToken, "token survives a mismatch")
}

func TestCompleteResetExpiredToken(t *testing.T) {
	svc, users, _ := newTestService()
	alice := register(t, svc, "alice", "")
	_, err := svc.StartReset(context.Background(), "alice@example.com")
	require.NoError(t, err)

	stored := users.byID[alice.ID]
	stored.ResetExpires = time.Now().Add(-time.Minute)
	oldHash := stored.PasswordHash

	_, err = svc.CompleteReset(context.Background(), stored.ResetToken, "newpassword1", "newpassword1")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Equal(t, oldHash, stored.PasswordHash, "expired token must not change the password")
}

func TestCompleteResetUnknownToken(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CompleteReset(context.Background(), "deadbeef", "newpassword1", "newpassword1")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
