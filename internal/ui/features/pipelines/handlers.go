package pipelines

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the pipelines feature.
type Handlers struct {
	container *registry.Container
	notifier  *notifier.Notifier
	drafts    *drafts
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(container *registry.Container, notify *notifier.Notifier) *Handlers {
	return &Handlers{container: container, notifier: notify, drafts: newDrafts(), now: time.Now}
}

// PipelinesPage renders the pipeline list.
func (h *Handlers) PipelinesPage(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, h.listData())
}

// PipelineDetailPage renders one pipeline with its edit form.
func (h *Handlers) PipelineDetailPage(w http.ResponseWriter, r *http.Request) {
	data, ok := h.detailData(chi.URLParam(r, "id"))
	if !ok {
		common.Render(w, r, http.StatusNotFound, NotFoundView(common.Shell(r, "Pipeline", "")))
		return
	}
	h.renderDetail(w, r, http.StatusOK, data)
}

// CreatePipeline adds a pipeline from the add form.
func (h *Handlers) CreatePipeline(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, in := parseForm(r, "", h.container.GetConnection)
	if form.Error != "" {
		data := h.listData()
		data.Add = form.withOptions(h.container.ListConnections())
		h.renderList(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	p := h.container.AddPipeline(r.Context(), in)
	common.SeeOther(w, r, "/pipeline/"+p.ID)
}

// UpdatePipeline saves the edit form.
func (h *Handlers) UpdatePipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, ok := h.detailData(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, in := parseForm(r, id, h.container.GetConnection)
	if form.Error != "" {
		data.Form = form.withOptions(h.container.ListConnections())
		h.renderDetail(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	h.container.EditPipeline(r.Context(), id, in)
	common.SeeOther(w, r, "/pipeline/"+id)
}

// DeletePipeline removes a pipeline.
func (h *Handlers) DeletePipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.container.RemovePipeline(r.Context(), id)
	h.drafts.forget(id)
	common.SeeOther(w, r, "/pipeline")
}

// SelectTable picks the builder's source table.
func (h *Handlers) SelectTable(w http.ResponseWriter, r *http.Request) {
	h.editDraft(w, r, func(d *Draft, tables []Table) error {
		return d.selectTable(tables, common.Field(r, "table"))
	})
}

// SelectColumns replaces the picked columns of one table.
func (h *Handlers) SelectColumns(w http.ResponseWriter, r *http.Request) {
	h.editDraft(w, r, func(d *Draft, tables []Table) error {
		return d.selectColumns(tables, common.Field(r, "table"), r.PostForm["columns"])
	})
}

// AddField appends an empty optional string field.
func (h *Handlers) AddField(w http.ResponseWriter, r *http.Request) {
	h.editDraft(w, r, func(d *Draft, _ []Table) error {
		d.addField(h.drafts.newID())
		return nil
	})
}

// UpdateField saves the name, type and required flag of a field.
func (h *Handlers) UpdateField(w http.ResponseWriter, r *http.Request) {
	h.editDraft(w, r, func(d *Draft, _ []Table) error {
		required := r.PostFormValue("required") != ""
		return d.updateField(chi.URLParam(r, "field"), r.PostFormValue("name"), common.Field(r, "type"), required)
	})
}

// RemoveField drops a field from the builder.
func (h *Handlers) RemoveField(w http.ResponseWriter, r *http.Request) {
	h.editDraft(w, r, func(d *Draft, _ []Table) error {
		return d.removeField(chi.URLParam(r, "field"))
	})
}

// editDraft applies fn to the draft of the pipeline named in the path and
// returns to its page. A rejected change re-renders the page with the
// message and leaves the draft as it was.
func (h *Handlers) editDraft(w http.ResponseWriter, r *http.Request, fn func(d *Draft, tables []Table) error) {
	id := chi.URLParam(r, "id")
	p, ok := h.container.GetPipeline(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var tables []Table
	if c, ok := h.container.GetConnection(p.ConnectionID); ok {
		tables = Catalog(c)
	}

	err := h.drafts.update(id, func(d *Draft) error { return fn(d, tables) })
	switch {
	case errors.Is(err, errNoField):
		http.NotFound(w, r)
	case err != nil:
		data, _ := h.detailData(id)
		data.Builder.Error = err.Error()
		h.renderDetail(w, r, http.StatusUnprocessableEntity, data)
	default:
		common.SeeOther(w, r, "/pipeline/"+id)
	}
}

// RunPipeline starts a simulated run and returns to the page named by
// the "next" field. The result arrives through PipelineUpdates.
func (h *Handlers) RunPipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.container.RunPipeline(context.WithoutCancel(r.Context()), id)
	common.SeeOther(w, r, common.LocalPath(r.PostFormValue("next"), "/pipeline", "/pipeline"))
}

// PipelineUpdates is the long-lived SSE endpoint for the pipeline pages.
// With ?id=<id> it patches that pipeline's detail panel, otherwise the
// list. Connection changes are followed too since they decide which
// pipelines are flagged as dangling.
func (h *Handlers) PipelineUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	id := r.URL.Query().Get("id")

	updates := h.notifier.Subscribe(notifier.TopicPipelines, notifier.TopicConnections)
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.sendUpdate(sse, id); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) sendUpdate(sse *datastar.ServerSentEventGenerator, id string) error {
	if id == "" {
		return sse.PatchElementTempl(PipelinesLive(h.listData()))
	}
	data, ok := h.detailData(id)
	if !ok {
		return sse.PatchElementTempl(DetailGone())
	}
	return sse.PatchElementTempl(DetailLive(data))
}

func (h *Handlers) listData() ListData {
	return NewListData(h.container.ListPipelines(), h.container.ListConnections())
}

func (h *Handlers) detailData(id string) (DetailData, bool) {
	p, ok := h.container.GetPipeline(id)
	if !ok {
		return DetailData{}, false
	}
	return NewDetailData(p, h.container.ListConnections(), h.drafts.get(id), h.now()), true
}

func (h *Handlers) renderList(w http.ResponseWriter, r *http.Request, status int, data ListData) {
	page := common.Shell(r, "Pipeline Control", "/pipeline/updates")
	common.Render(w, r, status, ListView(page, data))
}

func (h *Handlers) renderDetail(w http.ResponseWriter, r *http.Request, status int, data DetailData) {
	page := common.Shell(r, data.Name, "/pipeline/updates?id="+data.ID)
	common.Render(w, r, status, DetailView(page, data))
}
