package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/storefront-map/internal/app"
	"github.com/mohammed-shakir/storefront-map/internal/core/config"
	"github.com/mohammed-shakir/storefront-map/internal/core/model"
	"github.com/mohammed-shakir/storefront-map/internal/datasource"
	"github.com/mohammed-shakir/storefront-map/internal/session"
)

type staticData struct {
	ds  datasource.Dataset
	err error
}

func (s staticData) Get(context.Context) (datasource.Dataset, error) { return s.ds, s.err }

func testServer(t *testing.T, data app.DatasetProvider) *httptest.Server {
	t.Helper()
	reg, err := session.NewRegistry(session.Options{
		Max:    8,
		Data:   data,
		View:   config.ViewCfg{CenterLat: 40.754, CenterLng: -73.98, Zoom: 12},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	r := chi.NewRouter()
	Mount(r, slog.New(slog.NewTextHandler(io.Discard, nil)), reg)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func fixture() datasource.Dataset {
	return datasource.Dataset{
		Properties: []model.PropertyRecord{
			{Address: "1 MAIN ST", Latitude: "40.75", Longitude: "-73.98", PrimaryActivity: "RETAIL", ConstructionReported: "YES"},
			{Address: "2 MAIN ST", Latitude: "40.76", Longitude: "-73.97", PrimaryActivity: "OFFICE"},
		},
		Activities: []string{"OFFICE", "RETAIL"},
	}
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d want 201", resp.StatusCode)
	}
	var out struct {
		ID     string     `json:"id"`
		Status app.Status `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID == "" || out.Status.Result.Rendered != 2 {
		t.Fatalf("create response=%+v", out)
	}
	return out.ID
}

func TestCreateSession_ThenClickFilters(t *testing.T) {
	srv := testServer(t, staticData{ds: fixture()})
	id := createSession(t, srv)

	// btn-1 is OFFICE, the first activity.
	resp, err := http.Post(srv.URL+"/api/sessions/"+id+"/buttons/btn-1/click", "", nil)
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var st app.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Result.Rendered != 1 || len(st.Filters.Activities) != 1 || st.Filters.Activities[0] != "OFFICE" {
		t.Fatalf("status=%+v", st)
	}
}

func TestButtons_ReturnsActiveClassAfterClick(t *testing.T) {
	srv := testServer(t, staticData{ds: fixture()})
	id := createSession(t, srv)

	resp, err := http.Post(srv.URL+"/api/sessions/"+id+"/buttons/btn-2/click", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/sessions/" + id + "/buttons")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var b app.Buttons
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Count(string(b.Activity), "active") != 1 || !strings.Contains(string(b.Activity), "RETAIL") {
		t.Fatalf("activity buttons=%s", b.Activity)
	}
}

func TestMarkers_GeoJSONAndETag(t *testing.T) {
	srv := testServer(t, staticData{ds: fixture()})
	id := createSession(t, srv)
	url := srv.URL + "/api/sessions/" + id + "/markers?zoom=18&bbox=-74.0,40.7,-73.9,40.8"

	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Fatalf("content-type=%q", ct)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("fc type=%q features=%d", fc.Type, len(fc.Features))
	}

	etag := resp.Header.Get("ETag")
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("status=%d want 304", resp2.StatusCode)
	}

	// A click rebuilds the layer, so the old tag no longer matches.
	resp3, _ := http.Post(srv.URL+"/api/sessions/"+id+"/buttons/btn-1/click", "", nil)
	_ = resp3.Body.Close()
	resp4, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp4.Body.Close()
	if resp4.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want 200 after click", resp4.StatusCode)
	}
}

func TestErrors_MapToStatusCodes(t *testing.T) {
	srv := testServer(t, staticData{ds: fixture()})
	id := createSession(t, srv)

	cases := []struct {
		name, method, path string
		want               int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/3f0c2d6e-0000-4000-8000-000000000000/buttons", http.StatusNotFound},
		{"malformed session", http.MethodGet, "/api/sessions/nope", http.StatusNotFound},
		{"unknown button", http.MethodPost, "/api/sessions/" + id + "/buttons/btn-99/click", http.StatusNotFound},
		{"missing zoom", http.MethodGet, "/api/sessions/" + id + "/markers", http.StatusBadRequest},
		{"bad bbox", http.MethodGet, "/api/sessions/" + id + "/markers?zoom=3&bbox=1,2,3", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(tc.method, srv.URL+tc.path, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			_ = resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("status=%d want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestCreateSession_LoadFailure(t *testing.T) {
	srv := testServer(t, staticData{err: errors.New("boom")})
	resp, err := http.Post(srv.URL+"/api/sessions", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", resp.StatusCode)
	}
}

func TestParseBBOX_Valid(t *testing.T) {
	bb, err := parseBBOX("11.0,55.0,12.0,56.0,EPSG:4326")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := model.BBox{X1: 11, Y1: 55, X2: 12, Y2: 56, SRID: "EPSG:4326"}
	if bb != want {
		t.Fatalf("got %+v want %+v", bb, want)
	}

	bb, err = parseBBOX("-74.05, 40.68, -73.90, 40.82")
	if err != nil || bb.SRID != "EPSG:4326" {
		t.Fatalf("four values must default the SRID: %+v %v", bb, err)
	}
}

func TestParseBBOX_Invalid(t *testing.T) {
	for _, in := range []string{
		"11,55,12,56,EPSG:3857",
		"12,55,11,56",
		"11,95,12,96",
		"a,55,12,56",
	} {
		if _, err := parseBBOX(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParseMarkersQuery_Zoom(t *testing.T) {
	for _, q := range []string{"zoom=-1", "zoom=23", "zoom=abc"} {
		r := httptest.NewRequest(http.MethodGet, "/m?"+q, nil)
		if _, _, err := ParseMarkersQuery(r); err == nil {
			t.Fatalf("expected error for %s", q)
		}
	}
	r := httptest.NewRequest(http.MethodGet, "/m?zoom=12", nil)
	z, bb, err := ParseMarkersQuery(r)
	if err != nil || z != 12 || bb != nil {
		t.Fatalf("z=%d bb=%v err=%v", z, bb, err)
	}
}

func TestParseMarkersQuery_UnwrappedLongitudes(t *testing.T) {
	cases := []struct {
		name string
		bbox string
		want model.BBox
	}{
		{"whole world at zoom 1", "-319.921875,-79.3,172.265625,84.9", model.BBox{X1: -180, Y1: -79.3, X2: 180, Y2: 84.9}},
		{"panned one world east", "286,40.7,286.5,40.8", model.BBox{X1: -74, Y1: 40.7, X2: -73.5, Y2: 40.8}},
		{"panned one world west", "-434,40.7,-433.5,40.8", model.BBox{X1: -74, Y1: 40.7, X2: -73.5, Y2: 40.8}},
		{"crossing the antimeridian", "170,-10,190,10", model.BBox{X1: -180, Y1: -10, X2: 180, Y2: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/m?zoom=1&bbox="+tc.bbox, nil)
			_, bb, err := ParseMarkersQuery(r)
			if err != nil {
				t.Fatalf("ParseMarkersQuery: %v", err)
			}
			tc.want.SRID = "EPSG:4326"
			if *bb != tc.want {
				t.Fatalf("got %+v want %+v", *bb, tc.want)
			}
		})
	}

	for _, in := range []string{"NaN,1,2,3", "1,2,Inf,3"} {
		if _, err := parseBBOX(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestMarkers_UnwrappedBBoxFromZoomedOutPage(t *testing.T) {
	srv := testServer(t, staticData{ds: fixture()})
	id := createSession(t, srv)

	for _, bbox := range []string{"-319.921875,-79.3,172.265625,84.9", "286,40.7,286.1,40.8"} {
		resp, err := http.Get(srv.URL + "/api/sessions/" + id + "/markers?zoom=18&bbox=" + bbox)
		if err != nil {
			t.Fatal(err)
		}
		var fc struct {
			Features []json.RawMessage `json:"features"`
		}
		derr := json.NewDecoder(resp.Body).Decode(&fc)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK || derr != nil {
			t.Fatalf("bbox %s: status=%d decode=%v", bbox, resp.StatusCode, derr)
		}
		if len(fc.Features) != 2 {
			t.Fatalf("bbox %s: features=%d want 2", bbox, len(fc.Features))
		}
	}
}
