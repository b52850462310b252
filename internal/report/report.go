package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"IntelDigest/internal/domain"
	"IntelDigest/internal/ports"
)

// HTMLRenderer renders the digest as a self-contained HTML email plus a
// plain-text fallback body. Sections follow the fixed category order; the
// two market categories collapse into one section.
type HTMLRenderer struct {
	tmpl *template.Template
	now  func() time.Time
}

var _ ports.Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the embedded template once.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl, now: time.Now}, nil
}

type section struct {
	Title  string
	Items  []domain.Item
	Status string
}

type digestData struct {
	Date     string
	Overview string
	Sections []section
}

// sectionOrder merges indices and movers into one market block at the end.
var sectionOrder = []struct {
	title      string
	categories []domain.Category
}{
	{"", []domain.Category{domain.CategoryFigures}},
	{"", []domain.Category{domain.CategoryEnergy}},
	{"", []domain.Category{domain.CategoryCommodities}},
	{"", []domain.Category{domain.CategoryAI}},
	{"", []domain.Category{domain.CategorySpace}},
	{"", []domain.Category{domain.CategoryFed}},
	{"US Markets", []domain.Category{domain.CategoryIndices, domain.CategoryMovers}},
}

// Render produces both bodies from one traversal of the result.
func (r *HTMLRenderer) Render(res domain.RunResult, overview string) (string, string, error) {
	data := digestData{
		Date:     r.now().UTC().Format("Monday, January 2, 2006"),
		Overview: strings.TrimSpace(overview),
	}

	for _, def := range sectionOrder {
		sec := section{Title: def.title}
		if sec.Title == "" {
			sec.Title = def.categories[0].Title()
		}
		var degraded []string
		for _, cat := range def.categories {
			sec.Items = append(sec.Items, res.Items[cat]...)
			if status, ok := res.Statuses[cat]; ok && status.Status != domain.StatusOK && status.Reason != "" {
				degraded = append(degraded, status.Reason)
			}
		}
		if len(sec.Items) == 0 && len(degraded) > 0 {
			sec.Status = strings.Join(degraded, "; ")
		}
		data.Sections = append(data.Sections, sec)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), renderText(data), nil
}

// renderText is the plain-text alternative part for clients without HTML.
func renderText(data digestData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily Intelligence Digest - %s\n", data.Date)
	if data.Overview != "" {
		fmt.Fprintf(&b, "\n%s\n", data.Overview)
	}
	for _, sec := range data.Sections {
		fmt.Fprintf(&b, "\n== %s ==\n", sec.Title)
		if len(sec.Items) == 0 {
			if sec.Status != "" {
				fmt.Fprintf(&b, "(unavailable: %s)\n", sec.Status)
			} else {
				fmt.Fprint(&b, "(no items today)\n")
			}
			continue
		}
		for _, item := range sec.Items {
			fmt.Fprintf(&b, "* %s", item.Title)
			if item.Source != "" {
				fmt.Fprintf(&b, " [%s]", item.Source)
			}
			fmt.Fprint(&b, "\n")
			if item.Body != "" && item.Body != item.Title {
				fmt.Fprintf(&b, "  %s\n", item.Body)
			}
			if item.Link != "" {
				fmt.Fprintf(&b, "  %s\n", item.Link)
			}
		}
	}
	fmt.Fprint(&b, "\n--\nGenerated automatically from public feeds and market data.\n")
	return b.String()
}

const digestTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,Helvetica,sans-serif;color:#1a1a1a;max-width:720px;margin:0 auto;padding:16px;">
<h1 style="font-size:22px;border-bottom:2px solid #2c3e50;padding-bottom:8px;">Daily Intelligence Digest</h1>
<p style="color:#7f8c8d;margin-top:0;">{{.Date}}</p>
{{- if .Overview}}
<div style="background:#f4f6f7;border-left:4px solid #2c3e50;padding:10px 14px;margin:12px 0;">
<p style="margin:0;">{{.Overview}}</p>
</div>
{{- end}}
{{- range .Sections}}
<h2 style="font-size:17px;color:#2c3e50;margin-bottom:6px;">{{.Title}}</h2>
{{- if .Items}}
<ul style="padding-left:20px;margin-top:4px;">
{{- range .Items}}
<li style="margin-bottom:8px;">
{{- if .Link}}<a href="{{.Link}}" style="color:#2980b9;text-decoration:none;">{{.Title}}</a>{{else}}{{.Title}}{{end}}
{{- if .Source}} <span style="color:#95a5a6;font-size:12px;">[{{.Source}}]</span>{{end}}
{{- if and .Body (ne .Body .Title)}}<br><span style="font-size:13px;color:#555;">{{.Body}}</span>{{end}}
</li>
{{- end}}
</ul>
{{- else if .Status}}
<p style="color:#95a5a6;font-size:13px;margin-top:4px;">Unavailable: {{.Status}}</p>
{{- else}}
<p style="color:#95a5a6;font-size:13px;margin-top:4px;">No items today.</p>
{{- end}}
{{- end}}
<p style="color:#bdc3c7;font-size:11px;border-top:1px solid #ecf0f1;margin-top:20px;padding-top:8px;">
Generated automatically from public feeds and market data. Links go to the original sources.
</p>
</body>
</html>
`
