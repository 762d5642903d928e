package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/export"
	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
	"github.com/matzehuels/pedigree/pkg/store/memory"
)

type fakeRaster struct{}

func (fakeRaster) CaptureRaster(context.Context, *presentation.Node, render.RasterOptions) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

// gatedRaster holds captures of one identifier until release is closed.
type gatedRaster struct {
	identifier string
	started    chan struct{}
	release    chan struct{}
}

func (g *gatedRaster) CaptureRaster(_ context.Context, view *presentation.Node, _ render.RasterOptions) ([]byte, error) {
	if view.Content.Identifier == g.identifier {
		g.started <- struct{}{}
		<-g.release
	}
	return []byte("\x89PNG fake"), nil
}

type fakeSVG struct{}

func (fakeSVG) SVG(_ context.Context, view *presentation.Node) ([]byte, error) {
	return []byte("<svg>" + view.Content.Identifier + "</svg>"), nil
}

type fixture struct {
	srv    *httptest.Server
	typeID string
}

var fixtureNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRaster(t, fakeRaster{})
}

func newFixtureWithRaster(t *testing.T, raster export.RasterCapturer) *fixture {
	t.Helper()
	t.Cleanup(observability.Reset)

	registry := animal.NewRegistry(memory.New())
	promReg := prometheus.NewRegistry()
	NewMetrics(promReg).Install()

	s := New(Options{
		Registry: registry,
		Resolver: pedigree.NewResolver(registry, pedigree.Options{}),
		Exporter: export.New(export.Options{
			Capabilities: export.Capabilities{Raster: raster},
			Scope:        export.PerRoot,
		}),
		SVG:      fakeSVG{},
		Gatherer: promReg,
		Now:      func() time.Time { return fixtureNow },
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	f := &fixture{srv: srv}
	var typ animal.Type
	f.do(t, http.MethodPost, "/api/v1/types", map[string]string{"name": "Cattle"}, http.StatusCreated, &typ)
	f.typeID = typ.ID
	return f
}

// do sends a JSON request and decodes the response into out when non-nil.
func (f *fixture) do(t *testing.T, method, path string, body any, wantStatus int, out any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s: %s", method, path, data)
	if out != nil {
		require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
	}
	return resp
}

func (f *fixture) createAnimal(t *testing.T, ident, gender, mother, father string) *animal.Record {
	t.Helper()
	var rec animal.Record
	f.do(t, http.MethodPost, "/api/v1/animals", map[string]any{
		"identifier": ident, "name": "Animal " + ident, "gender": gender,
		"type_id": f.typeID, "mother_id": mother, "father_id": father,
	}, http.StatusCreated, &rec)
	return &rec
}

func TestHealthAndVersion(t *testing.T) {
	f := newFixture(t)

	var health map[string]string
	f.do(t, http.MethodGet, "/healthz", nil, http.StatusOK, &health)
	assert.Equal(t, "ok", health["status"])

	var version map[string]string
	f.do(t, http.MethodGet, "/version", nil, http.StatusOK, &version)
	assert.Contains(t, version, "version")
	assert.Contains(t, version, "commit")
}

func TestTypes(t *testing.T) {
	f := newFixture(t)

	var body errorBody
	f.do(t, http.MethodPost, "/api/v1/types", map[string]string{"name": "Cattle"}, http.StatusConflict, &body)
	assert.Equal(t, "CONFLICT", string(body.Code))

	var types []animal.Type
	f.do(t, http.MethodGet, "/api/v1/types", nil, http.StatusOK, &types)
	require.Len(t, types, 1)
	assert.Equal(t, "Cattle", types[0].Name)

	var typ animal.Type
	f.do(t, http.MethodGet, "/api/v1/types/"+f.typeID, nil, http.StatusOK, &typ)
	assert.Equal(t, f.typeID, typ.ID)
	f.do(t, http.MethodGet, "/api/v1/types/missing", nil, http.StatusNotFound, nil)
}

func TestAnimalCRUD(t *testing.T) {
	f := newFixture(t)
	dam := f.createAnimal(t, "D-1", "female", "", "")
	sire := f.createAnimal(t, "S-1", "male", "", "")
	calf := f.createAnimal(t, "C-1", "female", dam.ID, sire.ID)

	assert.Equal(t, "Cattle", calf.TypeName)
	assert.True(t, calf.Active)

	var got animal.Record
	f.do(t, http.MethodGet, "/api/v1/animals/"+calf.ID, nil, http.StatusOK, &got)
	assert.Equal(t, dam.ID, got.MotherID)

	var list []animal.Record
	f.do(t, http.MethodGet, "/api/v1/animals?search=s-1", nil, http.StatusOK, &list)
	require.Len(t, list, 1)
	assert.Equal(t, sire.ID, list[0].ID)

	f.do(t, http.MethodGet, "/api/v1/animals?active=maybe", nil, http.StatusBadRequest, nil)

	var updated animal.Record
	f.do(t, http.MethodPut, "/api/v1/animals/"+calf.ID, map[string]any{
		"identifier": "C-1", "name": "Bessie", "gender": "female", "type_id": f.typeID,
		"mother_id": dam.ID, "father_id": sire.ID, "date_of_birth": "2020-03-15",
	}, http.StatusOK, &updated)
	assert.Equal(t, "Bessie", updated.Name)
	require.NotNil(t, updated.BirthDate)
	assert.Equal(t, 2020, updated.BirthDate.Year)

	var body errorBody
	f.do(t, http.MethodDelete, "/api/v1/animals/"+dam.ID, nil, http.StatusConflict, &body)
	assert.Equal(t, "CONFLICT", string(body.Code))

	f.do(t, http.MethodDelete, "/api/v1/animals/"+calf.ID, nil, http.StatusNoContent, nil)
	f.do(t, http.MethodGet, "/api/v1/animals/"+calf.ID, nil, http.StatusNotFound, nil)
}

func TestUpdateAnimalKeepsAbsentFields(t *testing.T) {
	f := newFixture(t)
	dam := f.createAnimal(t, "M-1", "female", "", "")
	sire := f.createAnimal(t, "S-1", "male", "", "")
	calf := f.createAnimal(t, "C-1", "female", dam.ID, sire.ID)

	var got animal.Record
	f.do(t, http.MethodPut, "/api/v1/animals/"+calf.ID, map[string]any{
		"identifier": "C-1", "type_id": f.typeID, "name": "Renamed",
	}, http.StatusOK, &got)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, dam.ID, got.MotherID)
	assert.Equal(t, sire.ID, got.FatherID)
	assert.Equal(t, animal.Female, got.Gender)
	assert.True(t, got.Active)

	got = animal.Record{}
	f.do(t, http.MethodPut, "/api/v1/animals/"+calf.ID, map[string]any{"is_active": false}, http.StatusOK, &got)
	assert.False(t, got.Active)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "C-1", got.Identifier)
	assert.Equal(t, dam.ID, got.MotherID)

	got = animal.Record{}
	f.do(t, http.MethodPut, "/api/v1/animals/"+calf.ID, map[string]any{"father_id": ""}, http.StatusOK, &got)
	assert.Empty(t, got.FatherID)
	assert.Equal(t, dam.ID, got.MotherID)

	got = animal.Record{}
	f.do(t, http.MethodGet, "/api/v1/animals/"+calf.ID, nil, http.StatusOK, &got)
	assert.False(t, got.Active)
	assert.Empty(t, got.FatherID)

	f.do(t, http.MethodPut, "/api/v1/animals/"+calf.ID, map[string]any{"gender": "other"}, http.StatusBadRequest, nil)
	f.do(t, http.MethodPut, "/api/v1/animals/"+calf.ID, map[string]any{"mother_id": "ghost"}, http.StatusBadRequest, nil)
	f.do(t, http.MethodPut, "/api/v1/animals/missing", map[string]any{"name": "x"}, http.StatusNotFound, nil)
}

func TestAnimalAge(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		ident string
		born  string
		age   float64
		adult bool
	}{
		{"A-1", "2020-03-15", 5, true},
		{"A-2", "2023-06-02", 1, false},
		{"A-3", "2023-06-01", 2, true},
		{"A-4", "2026-01-01", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			var got map[string]any
			f.do(t, http.MethodPost, "/api/v1/animals", map[string]any{
				"identifier": tt.ident, "type_id": f.typeID, "date_of_birth": tt.born,
			}, http.StatusCreated, &got)
			assert.Equal(t, tt.age, got["age"])
			assert.Equal(t, tt.adult, got["is_adult"])

			f.do(t, http.MethodGet, "/api/v1/animals/"+got["id"].(string), nil, http.StatusOK, &got)
			assert.Equal(t, tt.age, got["age"])
		})
	}

	var unborn map[string]any
	f.do(t, http.MethodPost, "/api/v1/animals", map[string]any{"identifier": "N-1", "type_id": f.typeID}, http.StatusCreated, &unborn)
	assert.Equal(t, float64(0), unborn["age"])
	assert.Equal(t, false, unborn["is_adult"])
}

func TestCreateAnimalValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"bad gender", map[string]any{"identifier": "X", "gender": "other", "type_id": f.typeID}, http.StatusBadRequest},
		{"unknown type", map[string]any{"identifier": "X", "gender": "male", "type_id": "nope"}, http.StatusBadRequest},
		{"missing parent", map[string]any{"identifier": "X", "gender": "male", "type_id": f.typeID, "mother_id": "ghost"}, http.StatusBadRequest},
		{"unknown field", map[string]any{"identifier": "X", "colour": "red"}, http.StatusBadRequest},
		{"bad date", map[string]any{"identifier": "X", "type_id": f.typeID, "date_of_birth": "2020-02-30"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.do(t, http.MethodPost, "/api/v1/animals", tt.body, tt.want, nil)
		})
	}
}

func TestOffspring(t *testing.T) {
	f := newFixture(t)
	dam := f.createAnimal(t, "D-1", "female", "", "")
	f.createAnimal(t, "C-2", "male", dam.ID, "")
	f.createAnimal(t, "C-1", "female", dam.ID, "")

	var kids []map[string]any
	f.do(t, http.MethodGet, "/api/v1/animals/"+dam.ID+"/offspring", nil, http.StatusOK, &kids)
	require.Len(t, kids, 2)
	assert.Equal(t, "C-1", kids[0]["identifier"])
	assert.Equal(t, "mother", kids[0]["relationship"])

	f.do(t, http.MethodGet, "/api/v1/animals/missing/offspring", nil, http.StatusNotFound, nil)
}

func TestPedigree(t *testing.T) {
	f := newFixture(t)
	granddam := f.createAnimal(t, "G-1", "female", "", "")
	dam := f.createAnimal(t, "D-1", "female", granddam.ID, "")
	sire := f.createAnimal(t, "S-1", "male", "", "")
	calf := f.createAnimal(t, "C-1", "female", dam.ID, sire.ID)

	var tree pedigree.Node
	f.do(t, http.MethodGet, "/api/v1/animals/"+calf.ID+"/pedigree", nil, http.StatusOK, &tree)
	require.NotNil(t, tree.Mother)
	require.NotNil(t, tree.Father)
	require.NotNil(t, tree.Mother.Mother)
	assert.Equal(t, "G-1", tree.Mother.Mother.Identifier)
	assert.Equal(t, 2, tree.Mother.Mother.Depth)

	f.do(t, http.MethodGet, "/api/v1/animals/"+calf.ID+"/pedigree?generations=1", nil, http.StatusOK, &tree)
	require.NotNil(t, tree.Mother)
	assert.Nil(t, tree.Mother.Mother)

	f.do(t, http.MethodGet, "/api/v1/animals/"+calf.ID+"/pedigree?generations=abc", nil, http.StatusBadRequest, nil)
	f.do(t, http.MethodGet, "/api/v1/animals/missing/pedigree", nil, http.StatusNotFound, nil)

	resp, err := f.srv.Client().Get(f.srv.URL + "/api/v1/animals/" + calf.ID + "/pedigree.svg")
	require.NoError(t, err)
	defer resp.Body.Close()
	svg, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "<svg>C-1</svg>", string(svg))
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	calf := f.createAnimal(t, "C 1", "female", "", "")
	base := "/api/v1/animals/" + calf.ID + "/pedigree/export"

	t.Run("json", func(t *testing.T) {
		resp, err := f.srv.Client().Get(f.srv.URL + base + "?format=json")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		cd := resp.Header.Get("Content-Disposition")
		assert.True(t, strings.HasPrefix(cd, "attachment; filename=pedigree_Animal_C_1_"), cd)
		assert.True(t, strings.HasSuffix(cd, ".json"), cd)
		assert.NotEmpty(t, resp.Header.Get("X-Export-ID"))

		var tree pedigree.Node
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tree))
		assert.Equal(t, "C 1", tree.Identifier)
	})

	t.Run("png", func(t *testing.T) {
		resp, err := f.srv.Client().Get(f.srv.URL + base + "?format=image")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	})

	t.Run("pdf unavailable", func(t *testing.T) {
		var body errorBody
		f.do(t, http.MethodGet, base+"?format=pdf", nil, http.StatusNotImplemented, &body)
		assert.Equal(t, "CAPABILITY_UNAVAILABLE", string(body.Code))
	})

	t.Run("bad format", func(t *testing.T) {
		var body errorBody
		f.do(t, http.MethodGet, base+"?format=gif", nil, http.StatusBadRequest, &body)
		assert.Equal(t, "INVALID_FORMAT", string(body.Code))
	})
}

func TestExportsOfDifferentAnimalsOverlap(t *testing.T) {
	raster := &gatedRaster{identifier: "A1", started: make(chan struct{}, 1), release: make(chan struct{})}
	f := newFixtureWithRaster(t, raster)
	a := f.createAnimal(t, "A1", "female", "", "")
	b := f.createAnimal(t, "B1", "male", "", "")
	exportPath := func(id string) string { return "/api/v1/animals/" + id + "/pedigree/export?format=png" }

	done := make(chan int, 1)
	go func() {
		resp, err := f.srv.Client().Get(f.srv.URL + exportPath(a.ID))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-raster.started

	f.do(t, http.MethodGet, exportPath(b.ID), nil, http.StatusOK, nil)

	var body errorBody
	f.do(t, http.MethodGet, exportPath(a.ID), nil, http.StatusConflict, &body)
	assert.Equal(t, "BUSY", string(body.Code))

	close(raster.release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/v1/animals/missing", nil, http.StatusNotFound, nil)
	f.do(t, http.MethodGet, "/api/v1/animals/missing/pedigree", nil, http.StatusNotFound, nil)

	resp, err := f.srv.Client().Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `pedigree_http_requests_total{method="GET",route="/api/v1/animals/{id}`)
	assert.Contains(t, string(body), `status="404"`)
	assert.Contains(t, string(body), `method="POST",route="/api/v1/types`)
	assert.Contains(t, string(body), `pedigree_resolves_total{code="NOT_FOUND"} 1`)
}
