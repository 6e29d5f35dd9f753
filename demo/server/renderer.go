package server

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"timeline.znkr.io/demo/highlight"
	"timeline.znkr.io/demo/model"
	"timeline.znkr.io/demo/source"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Timeline</title>
<style>
body { font-family: sans-serif; margin: 2em; }
ol { list-style: none; padding: 0; display: flex; flex-wrap: wrap; gap: 0.5em; }
button.item { padding: 0.5em 1em; border: 1px solid #888888; border-radius: 0.3em; background: #f4f4f4; text-align: left; }
pre { background: #f8f8f8; padding: 1em; }
.hl-ins { color: #22863a; }
.hl-del { color: #b31d28; }
.hl-upd { color: #b08800; font-weight: bold; }
.hl-mov { color: #6f42c1; }
</style>
</head>
<body data-seq="{{.Seq}}">
{{range .Sections}}
<section>
<h2>{{.Title}}</h2>
<ol>
{{range .Items}}
<li>
<form method="post" action="/tap">
<input type="hidden" name="section" value="{{.Section}}">
<input type="hidden" name="index" value="{{.Index}}">
<button class="item" type="submit"><strong>{{.Title}}</strong><br>{{.Detail}}</button>
</form>
</li>
{{end}}
</ol>
{{if .CanAdd}}
<form method="post" action="/audio">
<input name="name" placeholder="Name">
<button type="submit">Add audio</button>
</form>
{{end}}
</section>
{{end}}
<section>
<h2>Last changes</h2>
{{if .Script}}<pre>{{range .Script}}{{.Content}}
{{end}}</pre>{{else}}<p>No changes.</p>{{end}}
</section>
<script>
new EventSource("/events").onmessage = function (e) {
  if (e.data !== document.body.dataset.seq) {
    location.reload();
  }
};
</script>
</body>
</html>
`

type page struct {
	Seq      int
	Sections []sectionView
	Script   []highlight.Line
}

type sectionView struct {
	Title  string
	CanAdd bool
	Items  []itemView
}

type itemView struct {
	Section model.Section
	Index   int
	Title   string
	Detail  string
}

type renderer struct {
	tmpl     *template.Template
	minifier *minify.M
}

func newRenderer() *renderer {
	minifier := minify.New()
	minifier.AddFunc("text/css", css.Minify)
	minifier.AddFunc("text/html", html.Minify)
	minifier.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)

	return &renderer{
		tmpl:     template.Must(template.New("page").Parse(pageTemplate)),
		minifier: minifier,
	}
}

func (r *renderer) render(snap source.Snapshot) ([]byte, error) {
	script, err := highlight.Script(snap.Changes)
	if err != nil {
		return nil, fmt.Errorf("highlighting changes: %v", err)
	}

	p := page{Seq: snap.Seq, Script: script}
	for _, sec := range snap.Sections {
		name := sec.Section.String()
		sv := sectionView{
			Title:  strings.ToUpper(name[:1]) + name[1:],
			CanAdd: sec.Section == model.Audios,
		}
		for i, el := range sec.Elements {
			title, detail := describe(el)
			sv.Items = append(sv.Items, itemView{sec.Section, i, title, detail})
		}
		p.Sections = append(p.Sections, sv)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("executing template: %v", err)
	}
	b, err := r.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minifying page: %v", err)
	}
	return b, nil
}

func describe(el model.Element) (title, detail string) {
	switch el := el.(type) {
	case model.Video:
		if el.HasSound {
			return el.Name, "with sound"
		}
		return el.Name, "silent"
	case model.Audio:
		return el.Name, fmt.Sprintf("%s, volume %.0f%%", el.Artist, el.Volume*100)
	case model.Effect:
		return el.Name, el.IconName
	default:
		panic(fmt.Sprintf("unknown element %T", el))
	}
}
