package settings

import (
	"embed"
	"net/http"

	"github.com/leapstack-labs/launchpad/internal/ui/components"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = components.MustParse(templateFS, "templates/*.html")

// Settings are the workspace preferences shown on the page. They come
// from configuration and cannot be changed from the browser.
type Settings struct {
	WorkspaceName    string
	DeploymentAlerts bool
	DailySummary     bool
	StateDriver      string
	SchedulerEnabled bool
}

// Handlers provides HTTP handlers for the settings feature.
type Handlers struct {
	settings Settings
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(settings Settings) *Handlers {
	return &Handlers{settings: settings}
}

// SettingsPage renders the settings.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	page := common.Shell(r, "Settings", "")
	common.Render(w, r, http.StatusOK, views.Page(page, "settings", h.settings))
}
