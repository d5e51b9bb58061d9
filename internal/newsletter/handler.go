package newsletter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/legendmotors/skywell-leads/internal/http/respond"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

// SubscribeRequest is the public sign-up body.
type SubscribeRequest struct {
	Email     string   `json:"email"`
	Source    string   `json:"source"`
	Interests []string `json:"interests"`
}

type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Subscribe handles POST /api/newsletter.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	interests := make([]string, 0, len(req.Interests))
	for _, in := range req.Interests {
		if in = strings.TrimSpace(in); in != "" {
			interests = append(interests, in)
		}
	}

	sub := &Subscriber{Email: email, Source: strings.TrimSpace(req.Source), Interests: interests}
	if err := h.store.Subscribe(r.Context(), sub); err != nil {
		if errors.Is(err, ErrDuplicate) {
			respond.Error(w, http.StatusConflict, "Email is already subscribed")
			return
		}
		h.logger.Error("failed to store subscriber", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	respond.JSON(w, http.StatusCreated, sub)
}

// List handles the admin GET /api/newsletter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := respond.ParsePage(r, SortColumns...)
	subs, total, err := h.store.List(r.Context(), ListFilter{
		Search:    page.Search,
		SortBy:    page.SortBy,
		Ascending: !page.Descending(),
		Limit:     page.PageSize,
		Offset:    page.Offset(),
	})
	if err != nil {
		h.logger.Error("failed to list subscribers", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}
	respond.JSON(w, http.StatusOK, respond.NewList(subs, total, page))
}

// Delete handles the admin DELETE /api/newsletter/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "subscriber not found")
			return
		}
		h.logger.Error("failed to delete subscriber", "error", err, "id", id)
		respond.Error(w, http.StatusInternalServerError, "failed to delete subscriber")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
