package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"Drivecalc/internal/auth"
	"Drivecalc/internal/session"
)

func newAPI(store session.Store) http.Handler {
	r := mux.NewRouter()
	session.NewHandler(session.NewRegistry(store, time.Minute)).Routes(r.PathPrefix("/api/sessions").Subrouter())
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type viewBody struct {
	Code      string  `json:"code"`
	StageName string  `json:"stage_name"`
	Progress  string  `json:"progress"`
	Complete  bool    `json:"complete"`
	Power     float64 `json:"P"`
	Materials []struct {
		ID string `json:"id"`
	} `json:"materials"`
}

func readView(t *testing.T, rec *httptest.ResponseRecorder) viewBody {
	t.Helper()
	var v viewBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHandlerWalkthrough(t *testing.T) {
	rq := require.New(t)
	api := newAPI(newMemStore())

	rec := call(t, api, http.MethodPost, "/api/sessions", "")
	rq.Equal(http.StatusCreated, rec.Code)
	code := readView(t, rec).Code
	rq.NotEmpty(code)
	base := "/api/sessions/" + code

	for _, body := range []string{`{"field":"P","value":5}`, `{"field":"n","value":60}`, `{"field":"L","value":5}`} {
		rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/inputs", body).Code)
	}
	for range 5 {
		rq.Equal(http.StatusOK, call(t, api, http.MethodPost, base+"/advance", "").Code)
	}

	rec = call(t, api, http.MethodGet, base, "")
	v := readView(t, rec)
	rq.Equal("BevelDesign", v.StageName)
	rq.Equal("6/8", v.Progress)
	rq.Equal(5.0, v.Power)
	rq.Len(v.Materials, 2)

	rec = call(t, api, http.MethodPost, base+"/advance", "")
	rq.Equal(http.StatusUnprocessableEntity, rec.Code)
	rq.Contains(rec.Body.String(), "error")

	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/materials", `{"stage":"BevelDesign","slot":"driver","material":"40XH"}`).Code)
	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/materials", `{"stage":"BevelDesign","slot":"driven","material":"50X"}`).Code)
	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/hardness", `{"slot":"driver","value":280}`).Code)
	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/hardness", `{"slot":"driven","value":250}`).Code)
	rq.Equal(http.StatusOK, call(t, api, http.MethodPost, base+"/advance", "").Code)

	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/materials", `{"stage":"SpurDesign","slot":"driver","material":"40XH"}`).Code)
	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/materials", `{"stage":"SpurDesign","slot":"driven","material":"40XH"}`).Code)
	rq.Equal(http.StatusOK, call(t, api, http.MethodPost, base+"/advance", "").Code)

	rec = call(t, api, http.MethodPost, base+"/advance", "")
	rq.Equal(http.StatusOK, rec.Code)
	v = readView(t, rec)
	rq.True(v.Complete)
	rq.Equal("8/8", v.Progress)

	rec = call(t, api, http.MethodGet, base+"/results", "")
	rq.Equal(http.StatusOK, rec.Code)
	var results []session.ResultEntry
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &results))
	rq.Equal("chain_z2", results[len(results)-1].Name)

	rec = call(t, api, http.MethodPost, base+"/retreat", "")
	rq.Equal("SpurDesign", readView(t, rec).StageName)
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	api := newAPI(nil)
	base := "/api/sessions/abc"

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "malformed json", method: http.MethodPut, path: base + "/inputs", body: `{`, status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPut, path: base + "/inputs", body: `{"field":"Q","value":1}`, status: http.StatusBadRequest},
		{name: "missing value", method: http.MethodPut, path: base + "/tuning", body: `{"name":"K_be"}`, status: http.StatusBadRequest},
		{name: "negative input", method: http.MethodPut, path: base + "/inputs", body: `{"field":"P","value":-1}`, status: http.StatusUnprocessableEntity},
		{name: "row out of bounds", method: http.MethodPut, path: base + "/rows/efficiency/0", body: `{"value":0.5}`, status: http.StatusUnprocessableEntity},
		{name: "row missing", method: http.MethodPut, path: base + "/rows/ratio/9", body: `{"value":4}`, status: http.StatusUnprocessableEntity},
		{name: "row ok", method: http.MethodPut, path: base + "/rows/ratio/1", body: `{"value":4}`, status: http.StatusOK},
		{name: "K_be too large", method: http.MethodPut, path: base + "/tuning", body: `{"name":"K_be","value":1.5}`, status: http.StatusUnprocessableEntity},
		{name: "hardness before material", method: http.MethodPut, path: base + "/hardness", body: `{"slot":"driver","value":250}`, status: http.StatusUnprocessableEntity},
		{name: "wrong stage", method: http.MethodPut, path: base + "/materials", body: `{"stage":"Inputs","slot":"driver","material":"40XH"}`, status: http.StatusBadRequest},
		{name: "unknown material", method: http.MethodPut, path: base + "/materials", body: `{"stage":"SpurDesign","slot":"driver","material":"45"}`, status: http.StatusUnprocessableEntity},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.status, call(t, api, tc.method, tc.path, tc.body).Code)
		})
	}
}

func TestHandlerScopesCodesByOwner(t *testing.T) {
	rq := require.New(t)
	store := newMemStore()
	api := newAPI(store)

	put := func(owner string) {
		req := httptest.NewRequest(http.MethodPut, "/api/sessions/shared/inputs", strings.NewReader(`{"field":"P","value":7}`))
		req = req.WithContext(auth.WithOwner(context.Background(), owner))
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, req)
		rq.Equal(http.StatusOK, rec.Code)
		rq.Equal("shared", readView(t, rec).Code)
	}
	put("alice")
	put("bob")

	_, ok := store.data["alice/shared"]
	rq.True(ok)
	_, ok = store.data["bob/shared"]
	rq.True(ok)
	_, ok = store.data["shared"]
	rq.False(ok)
}

func TestHandlerSolverFailureIsServerError(t *testing.T) {
	rq := require.New(t)
	api := newAPI(nil)
	base := "/api/sessions/abc"

	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/inputs", `{"field":"P","value":5}`).Code)
	for range 3 {
		rq.Equal(http.StatusOK, call(t, api, http.MethodPost, base+"/advance", "").Code)
	}
	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/tuning", `{"name":"c_K","value":1e-12}`).Code)
	rq.Equal(http.StatusOK, call(t, api, http.MethodPut, base+"/tuning", `{"name":"psi_bd_max","value":1e-12}`).Code)

	rec := call(t, api, http.MethodPost, base+"/advance", "")
	rq.Equal(http.StatusInternalServerError, rec.Code)
	rq.Contains(rec.Body.String(), "calculation aborted")

	rec = call(t, api, http.MethodGet, base, "")
	rq.Equal("TuningParams", readView(t, rec).StageName)
}
