package components

import (
	"html/template"
	"strings"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// DatastarScript is the datastar client bundle the layout loads.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// NavItem is one entry of the side menu.
type NavItem struct {
	Label       string
	Href        string
	Description string
}

// Menu is the side menu shown to signed-in users.
var Menu = []NavItem{
	{Label: "Dashboard", Href: "/dashboard", Description: "Overview and KPIs"},
	{Label: "Pipeline", Href: "/pipeline", Description: "Track deal stages and progress"},
	{Label: "Connections", Href: "/connections", Description: "Integrations and data sources"},
	{Label: "Settings", Href: "/settings", Description: "Workspace preferences and controls"},
}

// PageData is what the application shell needs to wrap a view.
type PageData struct {
	Title string
	// Path is the request path, used to highlight the active menu entry.
	Path string
	// User is nil on public pages viewed while signed out.
	User *core.User
	// UpdatesURL, when set, opens a datastar stream that patches the view.
	UpdatesURL string

	Body template.HTML
}

// Nav returns the menu with the active entry marked.
func (p PageData) Nav() []NavEntry {
	entries := make([]NavEntry, 0, len(Menu))
	for _, item := range Menu {
		entries = append(entries, NavEntry{
			NavItem: item,
			Active:  strings.HasPrefix(p.Path, item.Href),
		})
	}
	return entries
}

// NavEntry is a NavItem as rendered for one request.
type NavEntry struct {
	NavItem
	Active bool
}
