package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"datadash/internal/dashboard"
	"datadash/internal/profiling"
	"datadash/ui/templates/fragments"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// maxOptionRows caps the visible height of the value picker
const maxOptionRows = 12

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"stat": profiling.FormatStat,
		"optionRows": func(n int) int {
			if n < 2 {
				return 2
			}
			if n > maxOptionRows {
				return maxOptionRows
			}
			return n
		},
		"noNumericWarning": func() string { return dashboard.NoNumericWarning },
	}
}

// parseTemplates parses every page fragment from the embedded templates
// directory, naming each by its path
func parseTemplates(files fs.FS) (*template.Template, error) {
	templatesFS, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	tmpl := template.New("").Funcs(templateFuncs())
	for _, name := range fragments.GetAllTemplatePaths() {
		content, err := fs.ReadFile(templatesFS, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse %s template %s: %w", fragments.GetTemplateCategory(name), name, err)
		}
	}
	return tmpl, nil
}

// renderMarkdown converts an embedded Markdown document to HTML
func renderMarkdown(files fs.FS, name string) (template.HTML, error) {
	source, err := fs.ReadFile(files, name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return template.HTML(markdown.Render(p.Parse(source), renderer)), nil
}

// renderTemplate executes a template into a buffer first so a failing
// template never leaves a half-written page
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.log.Error("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.log.Warn("Error writing template response: %v", err)
	}
}
