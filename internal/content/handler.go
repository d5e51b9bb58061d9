package content

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/legendmotors/skywell-leads/internal/http/respond"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

const maxDocumentBytes = 1 << 20

// Handler exposes CRUD routes for one document type.
type Handler[T any, P Document[T]] struct {
	name   string
	store  Store[T]
	sorts  []string
	logger *logging.Logger
	now    func() time.Time
}

// NewBlogHandler serves blog routes.
func NewBlogHandler(store Store[Blog], logger *logging.Logger) *Handler[Blog, *Blog] {
	return newHandler[Blog]("blog", store, BlogSorts, logger)
}

// NewOfferHandler serves offer routes.
func NewOfferHandler(store Store[Offer], logger *logging.Logger) *Handler[Offer, *Offer] {
	return newHandler[Offer]("offer", store, OfferSorts, logger)
}

func newHandler[T any, P Document[T]](name string, store Store[T], sorts []string, logger *logging.Logger) *Handler[T, P] {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler[T, P]{
		name:   name,
		store:  store,
		sorts:  sorts,
		logger: logger.With("resource", name),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List serves a paginated listing. Public listings hide drafts and expired
// documents.
func (h *Handler[T, P]) List(public bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := respond.ParsePage(r, h.sorts...)
		items, total, err := h.store.List(r.Context(), Query{
			Search:    page.Search,
			SortBy:    page.SortBy,
			Ascending: !page.Descending(),
			Limit:     page.PageSize,
			Offset:    page.Offset(),
			Public:    public,
			Now:       h.now(),
		})
		if err != nil {
			h.logger.Error("failed to list documents", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to list "+h.name+"s")
			return
		}
		respond.JSON(w, http.StatusOK, respond.NewList(items, total, page))
	}
}

// Get serves one document. Public lookups 404 on hidden documents.
func (h *Handler[T, P]) Get(public bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := h.load(w, r)
		if !ok {
			return
		}
		if public && !P(doc).visible(Query{Public: true, Now: h.now()}) {
			respond.Error(w, http.StatusNotFound, h.name+" not found")
			return
		}
		respond.JSON(w, http.StatusOK, doc)
	}
}

// Create handles POST.
func (h *Handler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.decode(w, r)
	if !ok {
		return
	}
	P(doc).meta().ID = ""
	if err := h.store.Create(r.Context(), doc); err != nil {
		h.logger.Error("failed to create document", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create "+h.name)
		return
	}
	respond.JSON(w, http.StatusCreated, doc)
}

// Update handles PUT: the body replaces the stored document.
func (h *Handler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}
	doc, ok := h.decode(w, r)
	if !ok {
		return
	}
	m := P(doc).meta()
	m.ID = P(existing).meta().ID
	m.CreatedAt = P(existing).meta().CreatedAt

	if err := h.store.Update(r.Context(), doc); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, h.name+" not found")
			return
		}
		h.logger.Error("failed to update document", "error", err, "id", m.ID)
		respond.Error(w, http.StatusInternalServerError, "failed to update "+h.name)
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// Delete handles DELETE.
func (h *Handler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, h.name+" not found")
			return
		}
		h.logger.Error("failed to delete document", "error", err, "id", id)
		respond.Error(w, http.StatusInternalServerError, "failed to delete "+h.name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler[T, P]) load(w http.ResponseWriter, r *http.Request) (*T, bool) {
	id := chi.URLParam(r, "id")
	doc, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, h.name+" not found")
			return nil, false
		}
		h.logger.Error("failed to get document", "error", err, "id", id)
		respond.Error(w, http.StatusInternalServerError, "failed to get "+h.name)
		return nil, false
	}
	return doc, true
}

func (h *Handler[T, P]) decode(w http.ResponseWriter, r *http.Request) (*T, bool) {
	var doc T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&doc); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if err := P(&doc).normalize(h.now()); err != nil {
		var invalid *InvalidError
		if errors.As(err, &invalid) {
			respond.Error(w, http.StatusBadRequest, invalid.Reason)
			return nil, false
		}
		respond.Error(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &doc, true
}
