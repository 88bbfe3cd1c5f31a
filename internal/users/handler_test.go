package users

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campsite/internal/campgrounds"
	"campsite/internal/models"
)

type fakeUserStore struct {
	updateErr error
	updated   *struct{ id, email, bio, avatarURL, avatarKey string }
}

func (f *fakeUserStore) GetUserByID(_ context.Context, _ string) (*models.User, error) {
	return nil, errors.New("not used")
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id, email, bio, avatarURL, avatarKey string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = &struct{ id, email, bio, avatarURL, avatarKey string }{id, email, bio, avatarURL, avatarKey}
	return nil
}

type fakeImages struct {
	uploadErr  error
	destroyErr error
	destroyed  []string
	nextKey    string
	nextURL    string
}

func (f *fakeImages) Upload(_ context.Context, _ string, _ io.Reader, _ int64, _ string) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	return f.nextKey, f.nextURL, nil
}

func (f *fakeImages) Destroy(_ context.Context, key string) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, key)
	return nil
}

func testUser() *models.User {
	return &models.User{
		ID:        "u1",
		Username:  "alice",
		Email:     "alice@example.com",
		Bio:       "old bio",
		AvatarURL: "http://img/old-avatar.png",
		AvatarKey: "old-avatar.png",
	}
}

var testForm = models.ProfileForm{Email: "new@example.com", Bio: "new bio"}

func avatarUpload() *campgrounds.Upload {
	return &campgrounds.Upload{
		Filename: "face.png", ContentType: "image/png",
		Size: 4, Reader: strings.NewReader("data"),
	}
}

func TestProfileUpdateWithAvatar(t *testing.T) {
	users := &fakeUserStore{}
	images := &fakeImages{nextKey: "new-avatar.png", nextURL: "http://img/new-avatar.png"}
	u := NewProfileUpdater(users, images)

	user := testUser()
	res := u.Update(context.Background(), user, testForm, avatarUpload())

	require.False(t, res.Aborted())
	assert.Equal(t, []string{"old-avatar.png"}, images.destroyed)
	require.NotNil(t, users.updated)
	assert.Equal(t, "new@example.com", users.updated.email)
	assert.Equal(t, "new-avatar.png", users.updated.avatarKey)
	assert.Equal(t, "new-avatar.png", user.AvatarKey)
}

func TestProfileUpdateWithoutAvatar(t *testing.T) {
	users := &fakeUserStore{}
	images := &fakeImages{}
	u := NewProfileUpdater(users, images)

	user := testUser()
	res := u.Update(context.Background(), user, testForm, nil)

	require.False(t, res.Aborted())
	assert.Empty(t, images.destroyed)
	require.NotNil(t, users.updated)
	assert.Equal(t, "old-avatar.png", users.updated.avatarKey, "avatar fields carried over")
	assert.Equal(t, "new bio", user.Bio)
}

func TestProfileUpdateUploadFailureLeavesRecordUntouched(t *testing.T) {
	users := &fakeUserStore{}
	images := &fakeImages{uploadErr: errors.New("upload refused")}
	u := NewProfileUpdater(users, images)

	user := testUser()
	res := u.Update(context.Background(), user, testForm, avatarUpload())

	require.True(t, res.Aborted())
	assert.Equal(t, []string{"old-avatar.png"}, images.destroyed, "destroy already happened")
	assert.Nil(t, users.updated, "nothing persisted")
	assert.Equal(t, "old-avatar.png", user.AvatarKey, "old reference retained")
	assert.Equal(t, "old bio", user.Bio, "no field changes applied")
}

func TestProfileUpdateFirstAvatarSkipsDestroy(t *testing.T) {
	users := &fakeUserStore{}
	images := &fakeImages{nextKey: "first.png", nextURL: "http://img/first.png"}
	u := NewProfileUpdater(users, images)

	user := testUser()
	user.AvatarKey = ""
	user.AvatarURL = ""
	res := u.Update(context.Background(), user, testForm, avatarUpload())

	require.False(t, res.Aborted())
	assert.Empty(t, images.destroyed, "nothing to destroy yet")
	assert.Equal(t, "first.png", user.AvatarKey)
}
