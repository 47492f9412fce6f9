package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/kgrank/kgrank/internal/server/middleware"
	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/ranking"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

const testDump = `<http://x/Neil_Armstrong> <http://x/label> "Neil Armstrong astronaut moon landing"@en .
<http://x/Neil_Armstrong> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://x/Astronaut> .
<http://x/Buzz_Aldrin> <http://x/label> "Buzz Aldrin astronaut moon walker"@en .
<http://x/Buzz_Aldrin> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://x/Astronaut> .
<http://x/Merlin> <http://x/label> "Merlin the court wizard"@en .
<http://x/Merlin> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://x/Wizard> .
`

func newTestContext(t *testing.T, app *middleware.App, method, path, body string) (*middleware.AppContext, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return &middleware.AppContext{Context: c, App: app, RequestID: "test"}, rec
}

func newTestApp() *middleware.App {
	store := graph.NewMemoryStore()
	return &middleware.App{
		Store:  store,
		Ranker: ranking.NewRanker(store, ranking.DefaultConfig()),
	}
}

func TestLoadTriplesHandler(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	body, _ := json.Marshal(map[string]string{"content": testDump})
	cc, rec := newTestContext(t, app, http.MethodPost, "/api/load", string(body))

	if err := LoadTriplesHandler(cc); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Added    int `json:"added"`
		Triples  int `json:"triples"`
		Entities int `json:"entities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Added != 6 || resp.Triples != 6 || resp.Entities != 3 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestLoadTriplesHandlerRejectsAmbiguousSource(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	body := `{"content": "x", "path": "/tmp/y"}`
	cc, rec := newTestContext(t, app, http.MethodPost, "/api/load", body)

	if err := LoadTriplesHandler(cc); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRankHandler(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	loadBody, _ := json.Marshal(map[string]string{"content": testDump})
	cc, rec := newTestContext(t, app, http.MethodPost, "/api/load", string(loadBody))
	if err := LoadTriplesHandler(cc); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("load failed: %v (%d)", err, rec.Code)
	}

	rankBody := `{
		"topic": "astronaut moon",
		"examples": ["http://x/Neil_Armstrong"],
		"candidates": ["http://x/Merlin", "http://x/Buzz_Aldrin"]
	}`
	cc, rec = newTestContext(t, app, http.MethodPost, "/api/rank", rankBody)
	if err := RankHandler(cc); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Rankings ranking.Rankings `json:"rankings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Rankings.Text == nil || resp.Rankings.Examples == nil || resp.Rankings.Combined == nil {
		t.Fatalf("expected all three rankings: %s", rec.Body.String())
	}
	if top := resp.Rankings.Combined.Scores[0].Entity; top != "http://x/Buzz_Aldrin" {
		t.Fatalf("top entity = %s, want Aldrin", top)
	}
}

func TestRankHandlerEmptyQuery(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	body := `{"candidates": ["http://x/Merlin"]}`
	cc, rec := newTestContext(t, app, http.MethodPost, "/api/rank", body)

	if err := RankHandler(cc); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestGetStatusHandler(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	cc, rec := newTestContext(t, app, http.MethodGet, "/api/status", "")

	if err := GetStatusHandler(cc); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Triples       int  `json:"triples"`
		Persistence   bool `json:"persistence"`
		ObjectStorage bool `json:"object_storage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Triples != 0 || resp.Persistence || resp.ObjectStorage {
		t.Fatalf("response = %+v", resp)
	}
}

func TestGetDumpsHandlerWithoutStorage(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	cc, rec := newTestContext(t, app, http.MethodGet, "/api/dumps", "")

	if err := GetDumpsHandler(cc); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
