package newsletter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legendmotors/skywell-leads/internal/http/respond"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

func subscribe(h *Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.Subscribe(w, httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(body)))
	return w
}

func TestSubscribeNormalizesAndRejectsDuplicates(t *testing.T) {
	h := NewHandler(NewMemoryStore(), logging.Discard())

	w := subscribe(h, `{"email":"  Jane@Example.COM ","interests":["ET5"," "]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub Subscriber
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
	assert.Equal(t, "jane@example.com", sub.Email)
	assert.Equal(t, []string{"ET5"}, sub.Interests)
	assert.NotEmpty(t, sub.ID)

	w = subscribe(h, `{"email":"jane@example.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubscribeValidation(t *testing.T) {
	h := NewHandler(NewMemoryStore(), logging.Discard())

	assert.Equal(t, http.StatusBadRequest, subscribe(h, `{"email":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, subscribe(h, `{"email":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, subscribe(h, `[`).Code)
}

func TestListAndDelete(t *testing.T) {
	store := NewMemoryStore()
	h := NewHandler(store, logging.Discard())
	for _, e := range []string{"b@x.ae", "a@x.ae", "c@y.ae"} {
		require.Equal(t, http.StatusCreated, subscribe(h, `{"email":"`+e+`"}`).Code)
	}

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/newsletter?search=x.ae&sort_by=email&sort_order=asc", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list respond.List[Subscriber]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "a@x.ae", list.Items[0].Email)
	assert.Equal(t, "b@x.ae", list.Items[1].Email)

	id := list.Items[0].ID
	del := func() int {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req := httptest.NewRequest(http.MethodDelete, "/api/newsletter/"+id, nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		w := httptest.NewRecorder()
		h.Delete(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, del())
	assert.Equal(t, http.StatusNotFound, del())

	// the address can sign up again once removed
	assert.Equal(t, http.StatusCreated, subscribe(h, `{"email":"a@x.ae"}`).Code)
}
