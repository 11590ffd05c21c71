package api

import (
	"encoding/json"
	"net/http"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/pipeline"
	"github.com/sells-group/monument-map/internal/render"
	"github.com/sells-group/monument-map/internal/scale"
)

const (
	contentJSON = "application/json"
	contentHTML = "text/html; charset=utf-8"
)

// MapResponse is the body of GET /api/map.
type MapResponse struct {
	Selection  pipeline.Selection         `json:"selection"`
	View       pipeline.View              `json:"view"`
	Tiles      render.TileLayer           `json:"tiles"`
	Layer      *geojson.FeatureCollection `json:"layer"`
	Legend     []scale.LegendEntry        `json:"legend,omitempty"`
	LegendHTML string                     `json:"legend_html,omitempty"`
	Ranking    []pipeline.RankRow         `json:"ranking,omitempty"`
	Count      int                        `json:"count"`
	NoData     bool                       `json:"no_data"`
}

// RankingResponse is the body of GET /api/ranking.
type RankingResponse struct {
	Selection pipeline.Selection `json:"selection"`
	Rows      []pipeline.RankRow `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok", "dataset_loaded": false}
	if ds := s.Dataset(); ds != nil {
		body["dataset_loaded"] = true
		body["source"] = ds.Source
		body["regions"] = len(ds.Regions)
		body["monuments"] = len(ds.Monuments)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}
	sel, err := parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveCached(w, "options", sel.Key(), contentJSON, func() ([]byte, error) {
		return json.Marshal(pipeline.Options(ds, sel))
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}
	sel, err := parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serveCached(w, "map", sel.Key(), contentJSON, func() ([]byte, error) {
		var resp *MapResponse
		var err error
		if sel.Mode == pipeline.ModeLocations {
			resp, err = s.locationsMap(ds, sel)
		} else {
			resp, err = s.densityMap(ds, sel)
		}
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	})
}

func (s *Server) densityMap(ds *model.Dataset, sel pipeline.Selection) (*MapResponse, error) {
	res, err := pipeline.Density(ds, sel, s.opts.Palette)
	if err != nil {
		return nil, err
	}
	layer, err := render.Choropleth(ds.Regions, res, s.opts.Palette)
	if err != nil {
		return nil, err
	}
	legendHTML, err := render.LegendHTML(s.legendTitle(res.Selection), res.Legend)
	if err != nil {
		return nil, err
	}
	return &MapResponse{
		Selection:  res.Selection,
		View:       res.View,
		Tiles:      s.opts.Tiles,
		Layer:      layer,
		Legend:     res.Legend,
		LegendHTML: legendHTML,
		Ranking:    res.Ranking,
		Count:      len(layer.Features),
		NoData:     res.NoData,
	}, nil
}

func (s *Server) locationsMap(ds *model.Dataset, sel pipeline.Selection) (*MapResponse, error) {
	res, err := pipeline.Locations(ds, sel)
	if err != nil {
		return nil, err
	}
	layer, err := render.Markers(res.Monuments)
	if err != nil {
		return nil, err
	}
	return &MapResponse{
		Selection: res.Selection,
		View:      res.View,
		Tiles:     s.opts.Tiles,
		Layer:     layer,
		Count:     len(res.Monuments),
		NoData:    len(res.Monuments) == 0,
	}, nil
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}
	sel, err := parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sel.Mode = pipeline.ModeDensity
	sel.Municipality = ""
	s.serveCached(w, "legend", sel.Key(), contentHTML, func() ([]byte, error) {
		res, err := pipeline.Density(ds, sel, s.opts.Palette)
		if err != nil {
			return nil, err
		}
		html, err := render.LegendHTML(s.legendTitle(res.Selection), res.Legend)
		return []byte(html), err
	})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}
	sel, err := parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sel.Mode = pipeline.ModeDensity
	sel.Municipality = ""
	s.serveCached(w, "ranking", sel.Key(), contentJSON, func() ([]byte, error) {
		res, err := pipeline.Density(ds, sel, s.opts.Palette)
		if err != nil {
			return nil, err
		}
		return json.Marshal(RankingResponse{Selection: res.Selection, Rows: res.Ranking})
	})
}

func (s *Server) legendTitle(sel pipeline.Selection) string {
	if sel.Measure == pipeline.MeasurePerCapita {
		return s.opts.LegendTitle + " per 100.000 inwoners"
	}
	return s.opts.LegendTitle
}

func (s *Server) requireDataset(w http.ResponseWriter) (*model.Dataset, bool) {
	ds := s.Dataset()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "no dataset loaded")
		return nil, false
	}
	return ds, true
}

// serveCached writes the cached response for key, building and caching it
// on a miss. Errors are not cached.
func (s *Server) serveCached(w http.ResponseWriter, endpoint, key, contentType string, build func() ([]byte, error)) {
	ck := s.cacheKey(endpoint, key)
	if data, ct, ok := s.cache.Get(ck); ok {
		w.Header().Set("Content-Type", ct)
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(data)
		return
	}

	data, err := build()
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Error("api: request failed", zap.String("endpoint", endpoint), zap.Error(err))
		}
		writeError(w, status, err.Error())
		return
	}

	s.cache.Put(ck, contentType, data)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(data)
}

func statusFor(err error) int {
	switch {
	case eris.Is(err, pipeline.ErrInvalidSelection):
		return http.StatusBadRequest
	case eris.Is(err, model.ErrUnknownCategory), eris.Is(err, pipeline.ErrUnknownMunicipality):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
