package application

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/ericfisherdev/reviewmarks/internal/domain/model"
)

// IssueRenderer turns a record into the body text of a tracker issue.
// The template language behind it is an implementation detail of the
// renderer.
type IssueRenderer interface {
	Render(record model.Record) (string, error)
}

// defaultIssueTemplate is the built-in issue body. Trackers render it
// as Markdown.
const defaultIssueTemplate = `{{.Comment}}

---

- File: ` + "`{{.File}}`" + ` ({{.Lines}})
{{- if .Commit}}
- Commit: {{.Commit}}
{{- end}}
{{- if .URL}}
- Link: {{.URL}}
{{- end}}
{{- if .Priority.Label}}
- Priority: {{.Priority.Label}}
{{- end}}
{{- if .Category}}
- Category: {{.Category}}
{{- end}}
{{- if .Additional}}
- Additional: {{.Additional}}
{{- end}}
{{- if .Author}}
- Author: {{.Author}}
{{- end}}
`

// TemplateRenderer renders issue bodies through text/template. The
// template is parsed eagerly so a broken custom template aborts an
// export before any remote call.
type TemplateRenderer struct {
	tmpl *template.Template
}

var _ IssueRenderer = (*TemplateRenderer)(nil)

// NewTemplateRenderer parses an issue body template. Empty text selects
// the built-in template.
func NewTemplateRenderer(text string) (*TemplateRenderer, error) {
	if text == "" {
		text = defaultIssueTemplate
	}
	tmpl, err := template.New("issue").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing issue template: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// NewTemplateRendererFromFile loads and parses the template at path.
// Empty path selects the built-in template.
func NewTemplateRendererFromFile(path string) (*TemplateRenderer, error) {
	if path == "" {
		return NewTemplateRenderer("")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading issue template: %w", err)
	}
	return NewTemplateRenderer(string(data))
}

// Render produces the issue body for a record.
func (r *TemplateRenderer) Render(record model.Record) (string, error) {
	var b strings.Builder
	if err := r.tmpl.Execute(&b, record); err != nil {
		return "", fmt.Errorf("rendering issue body: %w", err)
	}
	return b.String(), nil
}

// titleFor derives a record/issue title: the first line of the body,
// truncated to 100 characters.
func titleFor(body string) string {
	title, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) > 100 {
		return string(runes[:100])
	}
	return title
}
