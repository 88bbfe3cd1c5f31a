// Package campgrounds implements the listing routes and the multi-step
// create/update/destroy flows that chain the geocoder, the image store and
// the document store.
package campgrounds

import (
	"context"
	"io"

	"campsite/internal/geocode"
	"campsite/internal/models"
)

// Stage names the last step an orchestrated operation completed. Every abort
// is terminal for the request; the user resubmits.
type Stage string

const (
	StageStarted      Stage = "started"
	StageGeocoded     Stage = "geocoded"
	StageImageMutated Stage = "image_mutated"
	StagePersisted    Stage = "persisted"
	StageDone         Stage = "done"
)

// Result records how far an operation got and why it stopped.
type Result struct {
	Stage Stage
	Err   error
}

// Aborted reports whether the operation stopped before completion.
func (r Result) Aborted() bool { return r.Err != nil }

// Upload is a submitted image file, validated for extension before any
// network call happens.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Geocoder resolves a free-text location.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocode.Result, error)
}

// ImageStore hosts listing images remotely.
type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (key, url string, err error)
	Destroy(ctx context.Context, key string) error
}

// Store is the campground persistence the orchestrator needs.
type Store interface {
	InsertCampground(ctx context.Context, cg *models.Campground) (string, error)
	SaveCampground(ctx context.Context, cg *models.Campground) error
	DeleteCampground(ctx context.Context, id string) error
}

// Orchestrator sequences geocode, image mutation and persistence so a later
// failure never leaves half-written stored state.
type Orchestrator struct {
	geo    Geocoder
	images ImageStore
	store  Store
}

func NewOrchestrator(geo Geocoder, images ImageStore, store Store) *Orchestrator {
	return &Orchestrator{geo: geo, images: images, store: store}
}

// Create geocodes, uploads, then persists a new campground with the acting
// identity as owner snapshot. Nothing is persisted before the final step, so
// early aborts need no compensation. An insert failure after a successful
// upload leaves the remote image orphaned.
func (o *Orchestrator) Create(ctx context.Context, form models.CampgroundForm, img Upload, owner models.Owner) (*models.Campground, Result) {
	loc, err := o.geo.Geocode(ctx, form.Location)
	if err != nil {
		return nil, Result{Stage: StageStarted, Err: err}
	}

	key, url, err := o.images.Upload(ctx, img.Filename, img.Reader, img.Size, img.ContentType)
	if err != nil {
		return nil, Result{Stage: StageGeocoded, Err: err}
	}

	cg := &models.Campground{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Location:    loc.FormattedAddress,
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		ImageURL:    url,
		ImageKey:    key,
		Owner:       owner,
	}
	if _, err := o.store.InsertCampground(ctx, cg); err != nil {
		return nil, Result{Stage: StageImageMutated, Err: err}
	}
	return cg, Result{Stage: StageDone}
}

// Update re-geocodes the location and, when a new file was submitted,
// destroys the old hosted image before uploading the replacement. Any
// image-step failure aborts the whole update with the stored record
// untouched: the old image reference survives even if the remote image was
// already destroyed. Field changes are applied and saved only after every
// external step succeeded.
func (o *Orchestrator) Update(ctx context.Context, cg *models.Campground, form models.CampgroundForm, img *Upload) Result {
	loc, err := o.geo.Geocode(ctx, form.Location)
	if err != nil {
		return Result{Stage: StageStarted, Err: err}
	}

	updated := *cg
	stage := StageGeocoded
	if img != nil {
		if err := o.images.Destroy(ctx, cg.ImageKey); err != nil {
			return Result{Stage: stage, Err: err}
		}
		key, url, err := o.images.Upload(ctx, img.Filename, img.Reader, img.Size, img.ContentType)
		if err != nil {
			return Result{Stage: stage, Err: err}
		}
		updated.ImageKey = key
		updated.ImageURL = url
		stage = StageImageMutated
	}

	updated.Name = form.Name
	updated.Description = form.Description
	updated.Price = form.Price
	updated.Location = loc.FormattedAddress
	updated.Lat = loc.Lat
	updated.Lng = loc.Lng

	if err := o.store.SaveCampground(ctx, &updated); err != nil {
		return Result{Stage: stage, Err: err}
	}
	*cg = updated
	return Result{Stage: StageDone}
}

// Destroy releases the hosted image first, then removes the record. A
// failure at either step leaves whatever remains in place.
func (o *Orchestrator) Destroy(ctx context.Context, cg *models.Campground) Result {
	if err := o.images.Destroy(ctx, cg.ImageKey); err != nil {
		return Result{Stage: StageStarted, Err: err}
	}
	if err := o.store.DeleteCampground(ctx, cg.ID.Hex()); err != nil {
		return Result{Stage: StageImageMutated, Err: err}
	}
	return Result{Stage: StageDone}
}
