package campgrounds

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"campsite/internal/geocode"
	"campsite/internal/logging"
	"campsite/internal/models"
	"campsite/internal/store"
	"campsite/internal/web"
)

const maxUploadBytes = 10 << 20

// ReadStore is the query side of campground persistence used by the pages.
type ReadStore interface {
	AllCampgrounds(ctx context.Context) ([]models.Campground, error)
	SearchCampgrounds(ctx context.Context, query string) ([]models.Campground, error)
	GetCampground(ctx context.Context, id string) (*models.Campground, error)
	GetComments(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
}

// Handler holds the campground HTTP handlers.
type Handler struct {
	reads    ReadStore
	orch     *Orchestrator
	view     *web.Renderer
	validate *validator.Validate
	log      logging.Logger
}

func NewHandler(reads ReadStore, orch *Orchestrator, view *web.Renderer, log logging.Logger) *Handler {
	return &Handler{
		reads:    reads,
		orch:     orch,
		view:     view,
		validate: validator.New(),
		log:      log,
	}
}

// Index lists all campgrounds, or the literal-substring search results when
// ?search= is present.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")
	var (
		list []models.Campground
		err  error
	)
	if query != "" {
		list, err = h.reads.SearchCampgrounds(r.Context(), query)
	} else {
		list, err = h.reads.AllCampgrounds(r.Context())
	}
	if err != nil {
		h.log.Error(r.Context(), "list campgrounds", "err", err)
		h.view.Flash(w, r, "error", "Something went wrong.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if query != "" && len(list) == 0 {
		h.view.Flash(w, r, "error", "Sorry, no campgrounds match your query. Please try again.")
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}
	h.view.Render(w, r, "campgrounds_index", map[string]any{
		"Campgrounds": list,
		"Search":      query,
	})
}

// NewForm shows the create form.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "campgrounds_new", nil)
}

// Create runs the geocode -> upload -> persist sequence.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := web.UserFrom(r.Context())

	form, upload, ok := h.parseForm(w, r, true)
	if !ok {
		return
	}

	cg, res := h.orch.Create(r.Context(), form, *upload, models.Owner{ID: user.ID, Username: user.Username})
	if res.Aborted() {
		h.log.Warn(r.Context(), "create campground aborted", "stage", res.Stage, "err", res.Err)
		h.view.Flash(w, r, "error", geocode.UserMessage(res.Err))
		web.RedirectBack(w, r, "/campgrounds/new")
		return
	}
	http.Redirect(w, r, "/campgrounds/"+cg.ID.Hex(), http.StatusSeeOther)
}

// Show renders one campground with its resolved comments.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	cg, err := h.reads.GetCampground(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.view.Flash(w, r, "error", "Campground not found")
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}
	comments, err := h.reads.GetComments(r.Context(), cg.CommentIDs)
	if err != nil {
		h.log.Error(r.Context(), "load comments", "campground", cg.ID.Hex(), "err", err)
	}
	h.view.Render(w, r, "campgrounds_show", map[string]any{
		"Campground": cg,
		"Comments":   comments,
	})
}

// EditForm shows the edit form for the campground the ownership gate
// already resolved.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "campgrounds_edit", web.CampgroundFrom(r.Context()))
}

// Update runs the compensating geocode -> image-swap -> persist sequence.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	cg := web.CampgroundFrom(r.Context())

	form, upload, ok := h.parseForm(w, r, false)
	if !ok {
		return
	}

	res := h.orch.Update(r.Context(), cg, form, upload)
	if res.Aborted() {
		h.log.Warn(r.Context(), "update campground aborted", "campground", cg.ID.Hex(),
			"stage", res.Stage, "err", res.Err)
		h.view.Flash(w, r, "error", geocode.UserMessage(res.Err))
		web.RedirectBack(w, r, "/campgrounds/"+cg.ID.Hex())
		return
	}
	h.view.Flash(w, r, "success", "Successfully Updated!")
	http.Redirect(w, r, "/campgrounds/"+cg.ID.Hex(), http.StatusSeeOther)
}

// Destroy releases the hosted image and removes the record.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	cg := web.CampgroundFrom(r.Context())

	res := h.orch.Destroy(r.Context(), cg)
	if res.Aborted() {
		h.log.Warn(r.Context(), "destroy campground aborted", "campground", cg.ID.Hex(),
			"stage", res.Stage, "err", res.Err)
		h.view.Flash(w, r, "error", res.Err.Error())
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}
	h.view.Flash(w, r, "success", "Campground successfully deleted!")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

// parseForm reads the multipart campground form. The image is required on
// create and optional on update; a bad extension is rejected before any
// remote call.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request, imageRequired bool) (models.CampgroundForm, *Upload, bool) {
	var form models.CampgroundForm
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.view.Flash(w, r, "error", "Invalid form submission")
		web.RedirectBack(w, r, "/campgrounds")
		return form, nil, false
	}
	form = models.CampgroundForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Location:    r.FormValue("location"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.view.Flash(w, r, "error", "Please fill in all required fields")
		web.RedirectBack(w, r, "/campgrounds")
		return form, nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if imageRequired {
			h.view.Flash(w, r, "error", "Please attach an image")
			web.RedirectBack(w, r, "/campgrounds")
			return form, nil, false
		}
		return form, nil, true
	}
	if !store.AllowedImageExt(header.Filename) {
		file.Close()
		h.view.Flash(w, r, "error", "Only image files are allowed!")
		web.RedirectBack(w, r, "/campgrounds")
		return form, nil, false
	}
	return form, &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, true
}
