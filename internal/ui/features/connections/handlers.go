package connections

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the connections feature.
type Handlers struct {
	container *registry.Container
	notifier  *notifier.Notifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(container *registry.Container, notify *notifier.Notifier) *Handlers {
	return &Handlers{container: container, notifier: notify}
}

// ConnectionsPage renders the connection list. ?edit=<id> opens the
// edit form for that connection.
func (h *Handlers) ConnectionsPage(w http.ResponseWriter, r *http.Request) {
	data := h.pageData()
	if id := r.URL.Query().Get("edit"); id != "" {
		if c, ok := h.container.GetConnection(id); ok {
			form := EditForm(c)
			data.Editing = &form
		}
	}
	h.render(w, r, http.StatusOK, data)
}

// CreateConnection adds a connection from the add form.
func (h *Handlers) CreateConnection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, in := parseForm(r, "", defaultPort)
	if form.Error != "" {
		data := h.pageData()
		data.Add = form
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	h.container.AddConnection(r.Context(), in)
	common.SeeOther(w, r, "/connections")
}

// UpdateConnection saves the edit form. A blank password keeps the
// stored one.
func (h *Handlers) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, ok := h.container.GetConnection(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, in := parseForm(r, id, existing.Port)
	if form.Error != "" {
		form.HasPassword = existing.Password != ""
		data := h.pageData()
		data.Editing = &form
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	if in.Password == "" {
		in.Password = existing.Password
	}

	h.container.EditConnection(r.Context(), id, in)
	common.SeeOther(w, r, "/connections")
}

// DeleteConnection removes a connection. Pipelines that use it are kept.
func (h *Handlers) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	h.container.RemoveConnection(r.Context(), chi.URLParam(r, "id"))
	common.SeeOther(w, r, "/connections")
}

// TestConnection starts a simulated test. The result reaches the page
// through ConnectionsUpdates.
func (h *Handlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	h.container.TestConnection(context.WithoutCancel(r.Context()), chi.URLParam(r, "id"))
	common.SeeOther(w, r, "/connections")
}

// ConnectionsUpdates is the long-lived SSE endpoint for the connections
// page. It patches the table whenever the registry changes.
func (h *Handlers) ConnectionsUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe(notifier.TopicConnections)
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(ConnectionsTable(h.pageData())); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) pageData() PageData {
	return PageData{
		Rows: NewRows(h.container.ListConnections()),
		Add:  EmptyForm(),
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	page := common.Shell(r, "Connections", "/connections/updates")
	common.Render(w, r, status, ConnectionsView(page, data))
}
