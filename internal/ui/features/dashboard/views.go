package dashboard

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/launchpad/internal/ui/components"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = components.MustParse(templateFS, "templates/*.html")

// DashboardView is the full dashboard page.
func DashboardView(page components.PageData, data Data) templ.Component {
	return views.Page(page, "dashboard", data)
}

// LiveCounts is the patchable status summary.
func LiveCounts(data Data) templ.Component {
	return views.Fragment("dashboard-live", data)
}
