package campgrounds

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"campsite/internal/geocode"
	"campsite/internal/models"
)

type fakeGeocoder struct {
	res *geocode.Result
	err error
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) (*geocode.Result, error) {
	return g.res, g.err
}

type fakeImages struct {
	uploadErr  error
	destroyErr error
	destroyed  []string
	uploaded   []string
	nextKey    string
	nextURL    string
}

func (f *fakeImages) Upload(_ context.Context, filename string, _ io.Reader, _ int64, _ string) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, filename)
	return f.nextKey, f.nextURL, nil
}

func (f *fakeImages) Destroy(_ context.Context, key string) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, key)
	return nil
}

type fakeStore struct {
	insertErr error
	saveErr   error
	deleteErr error
	inserted  *models.Campground
	saved     *models.Campground
	deleted   []string
}

func (f *fakeStore) InsertCampground(_ context.Context, cg *models.Campground) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	cg.ID = primitive.NewObjectID()
	f.inserted = cg
	return cg.ID.Hex(), nil
}

func (f *fakeStore) SaveCampground(_ context.Context, cg *models.Campground) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	saved := *cg
	f.saved = &saved
	return nil
}

func (f *fakeStore) DeleteCampground(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

var testForm = models.CampgroundForm{
	Name:        "Granite Falls",
	Description: "Quiet site by the river",
	Price:       "12.50",
	Location:    "1600 Amphitheatre Parkway",
}

var testLoc = &geocode.Result{Lat: 37.42, Lng: -122.08, FormattedAddress: "1600 Amphitheatre Pkwy, Mountain View, CA"}

func testUpload() Upload {
	return Upload{Filename: "site.jpg", ContentType: "image/jpeg", Size: 4, Reader: strings.NewReader("data")}
}

func TestCreate(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{nextKey: "k1.jpg", nextURL: "http://img/k1.jpg"}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	owner := models.Owner{ID: "u1", Username: "alice"}
	cg, res := o.Create(context.Background(), testForm, testUpload(), owner)

	require.False(t, res.Aborted())
	assert.Equal(t, StageDone, res.Stage)
	require.NotNil(t, st.inserted)
	assert.Equal(t, "Granite Falls", cg.Name)
	assert.Equal(t, testLoc.FormattedAddress, cg.Location)
	assert.Equal(t, testLoc.Lat, cg.Lat)
	assert.Equal(t, "k1.jpg", cg.ImageKey)
	assert.Equal(t, owner, cg.Owner)
}

func TestCreateGeocodeFailure(t *testing.T) {
	geo := &fakeGeocoder{err: &geocode.StatusError{Status: "ZERO_RESULTS", Message: "Invalid address, try typing a new address"}}
	images := &fakeImages{}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	_, res := o.Create(context.Background(), testForm, testUpload(), models.Owner{ID: "u1"})

	require.True(t, res.Aborted())
	assert.Equal(t, StageStarted, res.Stage)
	assert.Empty(t, images.uploaded, "no upload before a successful geocode")
	assert.Nil(t, st.inserted)
}

func TestCreateUploadFailure(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{uploadErr: errors.New("image host down")}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	_, res := o.Create(context.Background(), testForm, testUpload(), models.Owner{ID: "u1"})

	require.True(t, res.Aborted())
	assert.Equal(t, StageGeocoded, res.Stage)
	assert.Nil(t, st.inserted, "nothing persisted; no compensation needed")
}

func TestCreatePersistFailureOrphansImage(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{nextKey: "k1.jpg", nextURL: "http://img/k1.jpg"}
	st := &fakeStore{insertErr: errors.New("write concern failed")}
	o := NewOrchestrator(geo, images, st)

	_, res := o.Create(context.Background(), testForm, testUpload(), models.Owner{ID: "u1"})

	require.True(t, res.Aborted())
	assert.Equal(t, StageImageMutated, res.Stage)
	assert.Len(t, images.uploaded, 1)
	assert.Empty(t, images.destroyed, "the uploaded image stays orphaned")
}

func existingCampground() *models.Campground {
	return &models.Campground{
		ID:          primitive.NewObjectID(),
		Name:        "Old Name",
		Description: "Old description",
		Price:       "5",
		Location:    "Old Town",
		Lat:         1, Lng: 2,
		ImageURL: "http://img/old.jpg",
		ImageKey: "old.jpg",
		Owner:    models.Owner{ID: "u1", Username: "alice"},
	}
}

func TestUpdateWithImageSwap(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{nextKey: "new.jpg", nextURL: "http://img/new.jpg"}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	cg := existingCampground()
	up := testUpload()
	res := o.Update(context.Background(), cg, testForm, &up)

	require.False(t, res.Aborted())
	assert.Equal(t, []string{"old.jpg"}, images.destroyed, "old image destroyed before upload")
	require.NotNil(t, st.saved)
	assert.Equal(t, "new.jpg", st.saved.ImageKey)
	assert.Equal(t, "Granite Falls", st.saved.Name)
	assert.Equal(t, "new.jpg", cg.ImageKey, "in-memory record updated after save")
}

func TestUpdateUploadFailureLeavesRecordUntouched(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{uploadErr: errors.New("upload refused")}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	cg := existingCampground()
	up := testUpload()
	res := o.Update(context.Background(), cg, testForm, &up)

	require.True(t, res.Aborted())
	assert.Equal(t, StageGeocoded, res.Stage)
	assert.Equal(t, []string{"old.jpg"}, images.destroyed, "destroy already happened")
	assert.Nil(t, st.saved, "record never re-saved")
	// Old reference retained even though the remote image is gone.
	assert.Equal(t, "old.jpg", cg.ImageKey)
	assert.Equal(t, "Old Name", cg.Name, "no other field changes persisted")
}

func TestUpdateDestroyFailureAborts(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{destroyErr: errors.New("not found remotely")}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	cg := existingCampground()
	up := testUpload()
	res := o.Update(context.Background(), cg, testForm, &up)

	require.True(t, res.Aborted())
	assert.Empty(t, images.uploaded)
	assert.Nil(t, st.saved)
}

func TestUpdateWithoutNewImage(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	cg := existingCampground()
	res := o.Update(context.Background(), cg, testForm, nil)

	require.False(t, res.Aborted())
	assert.Empty(t, images.destroyed)
	assert.Empty(t, images.uploaded)
	require.NotNil(t, st.saved)
	assert.Equal(t, "old.jpg", st.saved.ImageKey, "image fields carried over")
	assert.Equal(t, testLoc.FormattedAddress, st.saved.Location)
}

func TestDestroy(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	cg := existingCampground()
	res := o.Destroy(context.Background(), cg)

	require.False(t, res.Aborted())
	assert.Equal(t, []string{"old.jpg"}, images.destroyed)
	assert.Equal(t, []string{cg.ID.Hex()}, st.deleted)
}

func TestDestroyImageFailureKeepsRecord(t *testing.T) {
	geo := &fakeGeocoder{res: testLoc}
	images := &fakeImages{destroyErr: errors.New("host down")}
	st := &fakeStore{}
	o := NewOrchestrator(geo, images, st)

	res := o.Destroy(context.Background(), existingCampground())

	require.True(t, res.Aborted())
	assert.Empty(t, st.deleted, "no partial removal")
}
