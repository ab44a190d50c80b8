package connections

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/launchpad/internal/ui/components"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = components.MustParse(templateFS, "templates/*.html")

// ConnectionsView is the full connections page.
func ConnectionsView(page components.PageData, data PageData) templ.Component {
	return views.Page(page, "connections", data)
}

// ConnectionsTable is the patchable connection table.
func ConnectionsTable(data PageData) templ.Component {
	return views.Fragment("connections-table", data)
}
