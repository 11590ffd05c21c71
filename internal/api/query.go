package api

import (
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/monument-map/internal/pipeline"
	"github.com/sells-group/monument-map/internal/scale"
)

// parseSelection reads a Selection from the query string:
// mode, main, sub, municipality, measure and method.
func parseSelection(r *http.Request) (pipeline.Selection, error) {
	q := r.URL.Query()

	mode, err := pipeline.ParseMapMode(q.Get("mode"))
	if err != nil {
		return pipeline.Selection{}, err
	}
	measure, err := pipeline.ParseMeasure(q.Get("measure"))
	if err != nil {
		return pipeline.Selection{}, err
	}
	method := scale.MethodQuantile
	if m := q.Get("method"); m != "" {
		method, err = scale.ParseMethod(m)
		if err != nil {
			return pipeline.Selection{}, eris.Wrap(pipeline.ErrInvalidSelection, err.Error())
		}
	}

	sel := pipeline.Selection{
		Mode:         mode,
		MainCategory: q.Get("main"),
		SubCategory:  q.Get("sub"),
		Municipality: q.Get("municipality"),
		Measure:      measure,
		Method:       method,
	}.Normalize()
	if err := sel.Validate(); err != nil {
		return pipeline.Selection{}, err
	}
	return sel, nil
}
