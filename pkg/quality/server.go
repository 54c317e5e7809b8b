package quality

import (
	"html/template"
	"io"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers hold state, so each call gets its own.
func titleCase(s string) string { return cases.Title(language.English).String(s) }

func dashboardTitle(r Report) string {
	if r.Scenario != "" {
		return titleCase(r.Scenario + " data quality dashboard")
	}
	return titleCase("data quality dashboard")
}

var page = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"title": titleCase,
	"bar": func(m Metric) float64 {
		if m.Unit != "%" {
			return 100
		}
		return math.Max(0, math.Min(100, m.Value))
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.gauge { display: inline-block; width: 30%; margin: 0 1% 1.5em 0; vertical-align: top; }
.track { background: lightgray; height: 1.2em; }
.fill { height: 1.2em; }
.ok { background: green; }
.warn { background: red; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Report.Source}} &middot; {{.Report.Rows}} rows</p>
{{range .Report.Metrics}}
<div class="gauge" id="{{.Name}}-gauge">
<h2>{{title .Name}}</h2>
<div class="track"><div class="fill {{if .Warning}}warn{{else}}ok{{end}}" style="width: {{bar .}}%"></div></div>
<p>{{.Status}} (objective {{.Comparator}} {{printf "%.2f" .Threshold}}){{if .Estimated}} estimated{{end}}</p>
</div>
{{end}}
</body>
</html>
`))

// WriteHTML renders the dashboard page.
func (r Report) WriteHTML(w io.Writer) error {
	return page.Execute(w, struct {
		Title  string
		Report Report
	}{dashboardTitle(r), r})
}

// NewRouter serves the dashboard page, the report as JSON and the
// registry's metrics.
func NewRouter(r Report, reg *prometheus.Registry) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := r.WriteHTML(w); err != nil {
			log.WithError(err).Error("render dashboard")
		}
	})
	mux.Get("/api/metrics", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, r)
	})
	mux.Get("/api/warnings", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{"warnings": r.Warnings()})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}
