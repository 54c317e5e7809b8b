package profile

import (
	"html/template"
	"io"
	"strconv"
)

var reportPage = template.Must(template.New("profile").Funcs(template.FuncMap{
	"g": func(v *float64) string { return strconv.FormatFloat(*v, 'g', 6, 64) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
td, th { border: 1px solid lightgray; padding: 0.2em 0.6em; text-align: left; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>Overview</h2>
<table>
<tr><th>Rows</th><td id="rows">{{.Profile.Rows}}</td></tr>
<tr><th>Columns</th><td>{{len .Profile.Columns}}</td></tr>
<tr><th>Duplicate rows</th><td id="duplicates">{{.Profile.Duplicates}}</td></tr>
</table>
{{range .Profile.Columns}}
<h2 id="col-{{.Name}}">{{.Name}} <small>{{.Kind}}</small></h2>
<table>
{{with .Num}}<tr><th>Count</th><td>{{.Count}}</td></tr>
<tr><th>Missing</th><td>{{.Nulls}}</td></tr>
{{with .Min}}<tr><th>Min</th><td>{{g .}}</td></tr>{{end}}
{{with .Max}}<tr><th>Max</th><td>{{g .}}</td></tr>{{end}}
{{with .Mean}}<tr><th>Mean</th><td>{{g .}}</td></tr>{{end}}{{end}}
{{with .Bool}}<tr><th>Count</th><td>{{.Count}}</td></tr>
<tr><th>Missing</th><td>{{.Nulls}}</td></tr>
<tr><th>True</th><td>{{.True}}</td></tr>
<tr><th>False</th><td>{{.False}}</td></tr>{{end}}
{{with .Str}}<tr><th>Count</th><td>{{.Count}}</td></tr>
<tr><th>Missing</th><td>{{.Nulls}}</td></tr>
<tr><th>Distinct</th><td>{{.Distinct}}</td></tr>
{{range .Top}}<tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{end}}{{end}}
</table>
{{end}}
</body>
</html>
`))

// ReportHTML writes a standalone HTML page. An empty title uses
// DefaultTitle.
func (c *Collector) ReportHTML(w io.Writer, title string) error {
	if title == "" {
		title = DefaultTitle
	}
	return reportPage.Execute(w, struct {
		Title   string
		Profile JSONProfile
	}{title, c.ReportJSON()})
}
