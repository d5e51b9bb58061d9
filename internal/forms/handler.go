package forms

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legendmotors/skywell-leads/internal/http/respond"
	"github.com/legendmotors/skywell-leads/internal/leads"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

const maxFormBytes = 64 << 10

// ErrorResponse is returned when a form fails validation.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Handler serves POST /api/forms/{kind}.
type Handler struct {
	pipeline leads.Submitter
	dealer   Dealer
	logger   *logging.Logger
}

func NewHandler(pipeline leads.Submitter, dealer Dealer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{pipeline: pipeline, dealer: dealer, logger: logger}
}

// Submit validates a raw form, maps it to the CRM payload and runs the lead
// pipeline. JSON and urlencoded bodies are both accepted.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	kind, ok := leads.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "unknown form")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	form, err := decodeForm(r)
	if err != nil {
		h.logger.Warn("failed to decode form", "kind", kind, "error", err)
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := form.Validate(kind); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			respond.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid form", Fields: vErr.Fields})
			return
		}
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := form.ToPayload(h.dealer)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	leads.RespondSubmit(w, r, h.pipeline, kind, payload, h.logger)
}

func decodeForm(r *http.Request) (*Form, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		v := r.PostForm
		return &Form{
			Name:         v.Get("name"),
			Email:        v.Get("email"),
			CountryCode:  v.Get("country_code"),
			Phone:        v.Get("phone"),
			Date:         v.Get("date"),
			Time:         v.Get("time"),
			Model:        v.Get("model"),
			Location:     v.Get("location"),
			Message:      v.Get("message"),
			CampaignName: v.Get("campaign_name"),
			UTM: UTM{
				Source:   v.Get("utm_source"),
				Medium:   v.Get("utm_medium"),
				Campaign: v.Get("utm_campaign"),
				Content:  v.Get("utm_content"),
			},
		}, nil
	}

	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		return nil, err
	}
	return &form, nil
}
