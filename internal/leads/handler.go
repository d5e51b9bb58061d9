package leads

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/legendmotors/skywell-leads/internal/http/respond"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Submitter runs a submission through the pipeline.
type Submitter interface {
	Submit(ctx context.Context, kind Kind, payload Payload) (*Result, error)
}

// SubmitResponse is the success body of the submit routes.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
}

// FailureResponse is the 500 body of the submit routes.
type FailureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Handler handles HTTP requests for leads
type Handler struct {
	pipeline Submitter
	store    Store
	logger   *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(pipeline Submitter, store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
	}
}

// Submit handles POST /api/submit-* for one form kind.
func (h *Handler) Submit(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := DecodePayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.logger.Warn("failed to decode submission", "kind", kind, "error", err)
			respond.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		RespondSubmit(w, r, h.pipeline, kind, payload, h.logger)
	}
}

// RespondSubmit submits payload and renders the submit-route response.
func RespondSubmit(w http.ResponseWriter, r *http.Request, pipeline Submitter, kind Kind, payload Payload, logger *logging.Logger) {
	result, err := pipeline.Submit(r.Context(), kind, payload)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			respond.Error(w, http.StatusBadRequest, vErr.Error())
			return
		}
		respond.JSON(w, http.StatusInternalServerError, FailureResponse{
			Message: "Failed to submit lead",
			Error:   err.Error(),
		})
		return
	}
	if result.LocalErr != nil && logger != nil {
		logger.Warn("lead forwarded without local copy", "kind", kind)
	}
	respond.JSON(w, http.StatusOK, SubmitResponse{Success: true, Data: result.GatewayBody})
}

// ListLeads handles the admin lead listings. An empty kind lists every kind
// unless ?kind= narrows it.
func (h *Handler) ListLeads(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filterKind := kind
		if filterKind == "" {
			if raw := r.URL.Query().Get("kind"); raw != "" {
				parsed, ok := ParseKind(raw)
				if !ok {
					respond.Error(w, http.StatusBadRequest, "unknown kind")
					return
				}
				filterKind = parsed
			}
		}

		page := respond.ParsePage(r, SortColumns...)
		leads, total, err := h.store.List(r.Context(), ListFilter{
			Kind:      filterKind,
			Search:    page.Search,
			SortBy:    page.SortBy,
			Ascending: !page.Descending(),
			Limit:     page.PageSize,
			Offset:    page.Offset(),
		})
		if err != nil {
			h.logger.Error("failed to list leads", "error", err, "kind", filterKind)
			respond.Error(w, http.StatusInternalServerError, "failed to list leads")
			return
		}
		respond.JSON(w, http.StatusOK, respond.NewList(leads, total, page))
	}
}

// GetLead handles GET /api/admin/leads/{id}.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lead, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			respond.Error(w, http.StatusNotFound, ErrLeadNotFound.Error())
			return
		}
		h.logger.Error("failed to get lead", "error", err, "id", id)
		respond.Error(w, http.StatusInternalServerError, "failed to get lead")
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/admin/leads/{id}.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			respond.Error(w, http.StatusNotFound, ErrLeadNotFound.Error())
			return
		}
		h.logger.Error("failed to delete lead", "error", err, "id", id)
		respond.Error(w, http.StatusInternalServerError, "failed to delete lead")
		return
	}
	h.logger.Info("lead deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
