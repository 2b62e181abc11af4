// Package fragments names the page fragments rendered inside index.html
package fragments

import "strings"

// Template names, relative to ui/templates
const (
	// Layout
	Page    = "index.html"
	Sidebar = "fragments/layout/sidebar.html"
	Banner  = "fragments/layout/banner.html"

	// Data
	RawTable = "fragments/data/raw_table.html"
	Summary  = "fragments/data/summary.html"

	// Dashboard
	Metrics = "fragments/dashboard/metrics.html"
	Chart   = "fragments/dashboard/chart.html"
)

// GetAllTemplatePaths returns every template in parse order; the page comes
// last so that the fragments it references are already defined
func GetAllTemplatePaths() []string {
	return []string{
		Sidebar,
		Banner,
		RawTable,
		Summary,
		Metrics,
		Chart,
		Page,
	}
}

// GetTemplateCategory returns the directory group of a template path
func GetTemplateCategory(templatePath string) string {
	switch {
	case strings.HasPrefix(templatePath, "fragments/layout/"):
		return "layout"
	case strings.HasPrefix(templatePath, "fragments/data/"):
		return "data"
	case strings.HasPrefix(templatePath, "fragments/dashboard/"):
		return "dashboard"
	case templatePath == Page:
		return "page"
	default:
		return "unknown"
	}
}
