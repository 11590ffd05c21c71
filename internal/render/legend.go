package render

import (
	"html/template"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/monument-map/internal/scale"
)

// DefaultLegendTitle heads the density legend.
const DefaultLegendTitle = "Aantal monumenten (o.b.v. berekening)"

var legendTmpl = template.Must(template.New("legend").Parse(`<div id="maplegend" class="maplegend">
<div class="legend-title">{{.Title}}</div>
<div class="legend-scale">
<ul class="legend-labels">
{{- range .Entries}}
<li><span style="background:{{.Color}};opacity:1;"></span>{{.Label}}</li>
{{- end}}
</ul>
</div>
</div>
`))

// LegendHTML renders the legend fragment placed over the density map.
func LegendHTML(title string, entries []scale.LegendEntry) (string, error) {
	if title == "" {
		title = DefaultLegendTitle
	}
	var b strings.Builder
	err := legendTmpl.Execute(&b, struct {
		Title   string
		Entries []scale.LegendEntry
	}{title, entries})
	if err != nil {
		return "", eris.Wrap(err, "render: legend")
	}
	return b.String(), nil
}
