package dashboard

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
	"github.com/leapstack-labs/launchpad/internal/ui/session"
)

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	container *registry.Container
	notifier  *notifier.Notifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(container *registry.Container, notify *notifier.Notifier) *Handlers {
	return &Handlers{container: container, notifier: notify}
}

// DashboardPage renders the dashboard with current counts.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFrom(r.Context())
	data := BuildData(user.Name, h.container.ListConnections(), h.container.ListPipelines())

	common.Render(w, r, http.StatusOK, DashboardView(common.Shell(r, "Dashboard", "/dashboard/updates"), data))
}

// DashboardUpdates is the long-lived SSE endpoint for the dashboard. It
// patches the live counts whenever connections or pipelines change.
func (h *Handlers) DashboardUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe(notifier.TopicConnections, notifier.TopicPipelines)
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			data := BuildData("", h.container.ListConnections(), h.container.ListPipelines())
			if err := sse.PatchElementTempl(LiveCounts(data)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}
