package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"predmaint/maintenance"
	"predmaint/observation"
)

//go:embed web
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/page.html"))

func staticHandler() http.Handler {
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}

type controlView struct {
	observation.Control
	Value   string
	Checked bool
}

type pageData struct {
	Title    string
	Controls []controlView
	maintenance.Result
}

func newPageData(result maintenance.Result) pageData {
	current := make(map[string]float64)
	for _, f := range result.Observation.Fields() {
		current[f.Name] = f.Value
	}

	views := make([]controlView, 0, len(observation.Controls()))
	for _, c := range observation.Controls() {
		v := current[c.Name]
		view := controlView{Control: c}
		switch {
		case c.Kind == observation.Toggle:
			view.Checked = v == 1
			view.Value = "1"
		case c.Name == observation.TypeL || c.Name == observation.TypeM:
			view.Value = strconv.FormatBool(v == 1)
		default:
			view.Value = strconv.FormatFloat(v, 'f', -1, 64)
		}
		views = append(views, view)
	}
	return pageData{
		Title:    "Predictive Maintenance Web App",
		Controls: views,
		Result:   result,
	}
}
