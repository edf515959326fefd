// Package render produces the HTML report from one run's facts.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sap8899/reportly/internal/core"
)

//go:embed report.gohtml
var templateFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("report.gohtml").Funcs(template.FuncMap{
		"nl2br": nl2br,
		"join":  strings.Join,
	}).ParseFS(templateFS, "report.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type reportData struct {
	Facts       *core.ReportFacts
	SyncData    string
	GeneratedAt string
}

func (r *Renderer) Render(w io.Writer, facts *core.ReportFacts) error {
	data := reportData{
		Facts:       facts,
		SyncData:    syncData(facts.Profile),
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func (r *Renderer) RenderFile(path string, facts *core.ReportFacts) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file '%s': %w", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	return r.Render(f, facts)
}

func syncData(profile *core.SubjectProfile) string {
	if profile == nil {
		return ""
	}
	if !profile.OnPremisesSyncEnabled {
		return "User is not synced."
	}
	return fmt.Sprintf("SID: %s, UserPrincipalName: %s",
		profile.OnPremisesSecurityIdentifier, profile.OnPremisesUserPrincipalName)
}

// nl2br escapes s and then turns newlines into line breaks, so the
// multi-line Information summaries render readably.
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
