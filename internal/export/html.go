package export

import (
	"html/template"
	"io"

	"github.com/notedrop/notedrop-server/internal/model"
)

// htmlTemplate mirrors the PDF section order and is styled for print; the
// embedded script triggers the browser print dialog on load.
var htmlTemplate = template.Must(template.New("plan").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1e1e1e; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  h1 { font-size: 1.6rem; margin-bottom: 0.3rem; }
  .summary { color: #3c3c3c; }
  .estimate { background: #eef2fa; color: #324878; padding: 0.6rem 0.9rem; border-radius: 6px; font-weight: bold; margin: 1rem 0; }
  h2 { font-size: 1.1rem; border-bottom: 1px solid #ddd; padding-bottom: 0.2rem; margin-top: 1.4rem; }
  .step { margin-bottom: 0.8rem; }
  .step .t { font-weight: bold; }
  .step .d { color: #505050; margin-left: 1.2rem; }
  ul { padding-left: 0; list-style: none; }
  li { margin-bottom: 0.3rem; }
  .res li::before { content: "\2713\00a0"; color: #288246; font-weight: bold; }
  .con li::before { content: "!\00a0"; color: #be821e; font-weight: bold; }
  footer { margin-top: 2rem; color: #828282; font-size: 0.8rem; text-align: center; }
  @media print { body { margin: 0 auto; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Plan.Summary}}<p class="summary">{{.Plan.Summary}}</p>{{end}}
{{if .Plan.TimeEstimate}}<div class="estimate">Estimated time: {{.Plan.TimeEstimate}}</div>{{end}}
{{if .Plan.Steps}}<h2>Steps</h2>
{{range $i, $s := .Plan.Steps}}<div class="step"><div class="t">{{inc $i}}. {{$s.Title}}</div><div class="d">{{$s.Description}}</div></div>
{{end}}{{end}}
{{if .Plan.Resources}}<h2>Resources</h2>
<ul class="res">{{range .Plan.Resources}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Plan.Considerations}}<h2>Considerations</h2>
<ul class="con">{{range .Plan.Considerations}}<li>{{.}}</li>{{end}}</ul>{{end}}
<footer>notedrop plan</footer>
<script>window.addEventListener("load", function () { window.print(); });</script>
</body>
</html>
`))

// RenderHTML writes the print-styled HTML version of the plan document.
func RenderHTML(w io.Writer, title string, plan *model.Plan) error {
	return htmlTemplate.Execute(w, struct {
		Title string
		Plan  *model.Plan
	}{Title: title, Plan: plan})
}
