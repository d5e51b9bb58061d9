package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legendmotors/skywell-leads/internal/leads"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

type recordingSubmitter struct {
	kind    leads.Kind
	payload leads.Payload
	err     error
}

func (s *recordingSubmitter) Submit(_ context.Context, kind leads.Kind, payload leads.Payload) (*leads.Result, error) {
	s.kind = kind
	s.payload = payload
	if s.err != nil {
		return nil, s.err
	}
	return &leads.Result{GatewayBody: "OK"}, nil
}

var testDealer = Dealer{
	CompanyCode:        "Skywell",
	CompanyID:          "7",
	DealershipID:       "12",
	LeadSourceID:       "Website",
	DefaultCountryCode: "971",
	DefaultModel:       "General Enquiry",
}

type countingGateway struct {
	calls   int
	headers leads.Headers
}

func (g *countingGateway) Forward(_ context.Context, headers leads.Headers) (string, error) {
	g.calls++
	g.headers = headers
	return "OK", nil
}

func serve(h *Handler, kind string, req *http.Request) *httptest.ResponseRecorder {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("kind", kind)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func TestHandlerSubmitJSON(t *testing.T) {
	sub := &recordingSubmitter{}
	h := NewHandler(sub, testDealer, logging.Discard())

	raw, _ := json.Marshal(map[string]any{
		"name":  "Jane",
		"phone": "501234567",
		"model": "ET5",
		"date":  "2025-04-01",
		"time":  "11:00 AM",
	})
	w := serve(h, "test-drive", httptest.NewRequest(http.MethodPost, "/api/forms/test-drive", bytes.NewReader(raw)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"data":"OK"}`, w.Body.String())
	assert.Equal(t, leads.KindTestDrive, sub.kind)
	assert.Equal(t, "+971501234567", sub.payload[leads.FieldMobileNumber])
	assert.Equal(t, "11:00:00", sub.payload[leads.FieldTime])
}

func TestHandlerSubmitURLEncoded(t *testing.T) {
	sub := &recordingSubmitter{}
	h := NewHandler(sub, testDealer, logging.Discard())

	body := url.Values{
		"name":       {"Omar"},
		"email":      {"omar@example.ae"},
		"phone":      {"+971 55 000 1111"},
		"message":    {"Hello"},
		"utm_source": {"facebook"},
	}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/api/forms/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(h, "contact", req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, leads.KindContact, sub.kind)
	assert.Equal(t, "Hello | utm_source=facebook", sub.payload[leads.FieldAdditionalInformation])
}

func TestHandlerValidationFailure(t *testing.T) {
	sub := &recordingSubmitter{}
	h := NewHandler(sub, testDealer, logging.Discard())

	w := serve(h, "quote", httptest.NewRequest(http.MethodPost, "/api/forms/quote", strings.NewReader(`{"name":"Jane"}`)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid form", resp.Error)
	assert.Contains(t, resp.Fields, "phone")
	assert.Contains(t, resp.Fields, "model")
	assert.Empty(t, sub.kind)
}

func TestHandlerUnknownKindAndBadBody(t *testing.T) {
	h := NewHandler(&recordingSubmitter{}, testDealer, logging.Discard())

	w := serve(h, "brochure", httptest.NewRequest(http.MethodPost, "/api/forms/brochure", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(h, "quote", httptest.NewRequest(http.MethodPost, "/api/forms/quote", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestHandlerGatewayFailure(t *testing.T) {
	sub := &recordingSubmitter{err: &leads.GatewayError{StatusCode: 502, Body: "down"}}
	h := NewHandler(sub, testDealer, logging.Discard())

	raw := `{"name":"Jane","phone":"501234567","model":"ET5"}`
	w := serve(h, "quote", httptest.NewRequest(http.MethodPost, "/api/forms/quote", strings.NewReader(raw)))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to submit lead")
}

func TestHandlerContactWithoutModelReachesCRM(t *testing.T) {
	gw := &countingGateway{}
	pipeline := leads.NewPipeline(leads.NewInMemoryStore(), gw, logging.Discard())
	h := NewHandler(pipeline, testDealer, logging.Discard())

	form := url.Values{
		"name":    {"Omar"},
		"email":   {"omar@example.ae"},
		"phone":   {"501234567"},
		"message": {"Call me back"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/forms/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(h, "contact", req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, "General Enquiry", gw.headers[leads.FieldCarModal])
	assert.Equal(t, "+971501234567", gw.headers[leads.FieldMobileNumber])
}
