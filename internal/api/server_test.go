package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/pipeline"
)

func square(x, y float64) *geom.MultiPolygon {
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{x, y}, {x + 0.1, y}, {x + 0.1, y + 0.1}, {x, y + 0.1}, {x, y},
	}}})
}

func testDataset(t *testing.T) *model.Dataset {
	t.Helper()
	ix, err := model.NewCategoryIndex([]model.CategoryColumn{
		{MainCategory: "Religieuze gebouwen", SubCategory: "Kerk", Column: "kerk"},
		{MainCategory: "Molens", SubCategory: "Windmolen", Column: "molen"},
	})
	require.NoError(t, err)
	return &model.Dataset{
		Regions: []model.Region{
			{Code: "GM0363", Name: "Amsterdam", Population: 900000, Counts: map[string]float64{"kerk": 40, "molen": 10},
				Centroid: geom.Coord{4.9, 52.37}, Geometry: square(4.9, 52.37)},
			{Code: "GM0344", Name: "Utrecht", Population: 400000, Counts: map[string]float64{"kerk": 20, "molen": 0},
				Centroid: geom.Coord{5.12, 52.09}, Geometry: square(5.12, 52.09)},
			{Code: "GM0228", Name: "Ede", Population: 120000, Counts: map[string]float64{"kerk": 10, "molen": 30},
				Centroid: geom.Coord{5.66, 52.04}, Geometry: square(5.66, 52.04)},
		},
		Monuments: []model.Monument{
			{Number: "1", URL: "https://example.org/1", Municipality: "Ede", MainCategory: "Molens", SubCategory: "Windmolen", Lon: 5.66, Lat: 52.04},
			{Number: "2", URL: "https://example.org/2", Municipality: "Ede", MainCategory: "Religieuze gebouwen", SubCategory: "Kerk", Lon: 5.67, Lat: 52.05},
		},
		Categories: ix,
		Source:     "test",
	}
}

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts)
	s.SetDataset(testDataset(t))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	s := New(Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"dataset_loaded":false`)

	s.SetDataset(testDataset(t))
	_, body = get(t, ts.URL+"/health")
	assert.Contains(t, string(body), `"dataset_loaded":true`)
	assert.Contains(t, string(body), `"regions":3`)
}

func TestNoDatasetIs503(t *testing.T) {
	s := New(Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	for _, path := range []string{"/api/options", "/api/map", "/api/legend", "/api/ranking"} {
		resp, _ := get(t, ts.URL+path)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestOptions(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/api/options?main=Molens")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var opts pipeline.OptionSet
	require.NoError(t, json.Unmarshal(body, &opts))
	assert.Equal(t, []string{"all", "Molens", "Religieuze gebouwen"}, opts.MainCategories)
	assert.Equal(t, []string{"all", "Windmolen"}, opts.SubCategories)
	assert.Equal(t, []string{"Amsterdam", "Ede", "Utrecht"}, opts.Municipalities)
}

func TestMap_Density(t *testing.T) {
	_, ts := newTestServer(t, Options{CacheEntries: 10, CacheTTL: time.Minute})

	resp, body := get(t, ts.URL+"/api/map?mode=density&main=alles&measure=absolute&method=equal-interval")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))

	var got struct {
		Selection pipeline.Selection `json:"selection"`
		View      pipeline.View      `json:"view"`
		Layer     struct {
			Type     string `json:"type"`
			Features []struct {
				Properties map[string]any `json:"properties"`
			} `json:"features"`
		} `json:"layer"`
		Legend     []map[string]string `json:"legend"`
		LegendHTML string              `json:"legend_html"`
		Ranking    []pipeline.RankRow  `json:"ranking"`
		Count      int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "FeatureCollection", got.Layer.Type)
	assert.Len(t, got.Layer.Features, 3)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, pipeline.ZoomNational, got.View.Zoom)
	assert.Len(t, got.Legend, 5)
	assert.Contains(t, got.LegendHTML, "maplegend")
	require.Len(t, got.Ranking, 3)
	assert.Equal(t, "Amsterdam", got.Ranking[0].Name)
	assert.Equal(t, "black", got.Layer.Features[0].Properties["color"])

	resp, _ = get(t, ts.URL+"/api/map?mode=density&main=alles&measure=absolute&method=equal-interval")
	assert.Equal(t, "hit", resp.Header.Get("X-Cache"))
}

func TestMap_PerCapitaWithZeroPopulation(t *testing.T) {
	s := New(Options{})
	ds := testDataset(t)
	ds.Regions[1].Population = 0 // Utrecht
	s.SetDataset(ds)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	resp, body := get(t, ts.URL+"/api/map?mode=density&measure=per-capita")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got MapResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Layer.Features, 3)
	assert.Equal(t, "#F0F0F0", got.Layer.Features[1].Properties["fillColor"])
	assert.Len(t, got.Ranking, 2)

	resp, _ = get(t, ts.URL+"/api/ranking?measure=per-capita")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, ts.URL+"/api/legend?measure=per-capita")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMap_Locations(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/api/map?mode=locations&municipality=Ede&main=Molens")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Count int           `json:"count"`
		View  pipeline.View `json:"view"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, pipeline.ZoomMunicipality, got.View.Zoom)
	assert.Contains(t, string(body), "Klik voor informatie")
}

func TestMap_Errors(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	tests := []struct {
		query  string
		status int
	}{
		{"mode=satellite", http.StatusBadRequest},
		{"method=jenks", http.StatusBadRequest},
		{"measure=ratio", http.StatusBadRequest},
		{"mode=locations", http.StatusBadRequest},
		{"main=Kastelen", http.StatusNotFound},
		{"mode=locations&municipality=Atlantis", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/map?"+tt.query)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestLegend(t *testing.T) {
	_, ts := newTestServer(t, Options{LegendTitle: "Monumenten"})

	resp, body := get(t, ts.URL+"/api/legend?measure=per-capita")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "Monumenten per 100.000 inwoners")
	assert.Contains(t, string(body), "no monuments")
}

func TestRanking(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/api/ranking?main=Molens")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got RankingResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Ede", got.Rows[0].Name)
	assert.Equal(t, 30.0, got.Rows[0].Value)
	require.NotNil(t, got.Rows[0].Share)
	assert.InDelta(t, 0.75, *got.Rows[0].Share, 1e-9)
}

func TestSetDatasetInvalidatesCache(t *testing.T) {
	s, ts := newTestServer(t, Options{CacheEntries: 10, CacheTTL: time.Minute})

	get(t, ts.URL+"/api/ranking")
	resp, _ := get(t, ts.URL+"/api/ranking")
	assert.Equal(t, "hit", resp.Header.Get("X-Cache"))

	ds := testDataset(t)
	ds.Regions = ds.Regions[:1]
	s.SetDataset(ds)

	resp, body := get(t, ts.URL+"/api/ranking")
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
	var got RankingResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got.Rows, 1)
}

func TestRateLimit(t *testing.T) {
	_, ts := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 2})

	for i := 0; i < 2; i++ {
		resp, _ := get(t, ts.URL+"/api/options")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := get(t, ts.URL+"/api/options")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Health is not rate limited.
	resp, _ = get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, Options{CORSOrigins: []string{"https://kaart.example.nl"}})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/options", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://kaart.example.nl")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "https://kaart.example.nl", resp.Header.Get("Access-Control-Allow-Origin"))
}
