package pipelines

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/leapstack-labs/launchpad/internal/scheduler"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Messages shown when a form cannot be saved.
const (
	MsgRequired   = "Pipeline name, connection and owner are required."
	MsgConnection = "Choose an existing connection."
)

// DefaultSchedule prefills the add form.
const DefaultSchedule = "0 * * * *"

// Row is one pipeline as listed.
type Row struct {
	core.Pipeline
	// Dangling is set when the pipeline's connection no longer exists.
	Dangling bool
}

// Running reports whether a run is in flight.
func (r Row) Running() bool {
	return r.Status == core.PipelineRunning
}

// Counts summarises the pipeline list.
type Counts struct {
	Running   int
	Succeeded int
	Total     int
}

// ConnectionOption is one entry of the connection select.
type ConnectionOption struct {
	ID       string
	Name     string
	Selected bool
}

// FormData is the state of an add or edit form.
type FormData struct {
	// ID is empty for the add form.
	ID           string
	Name         string
	ConnectionID string
	Schedule     string
	Owner        string
	Description  string
	Error        string

	Connections []ConnectionOption
}

// Action is where the form posts to.
func (f FormData) Action() string {
	if f.ID == "" {
		return "/pipeline"
	}
	return "/pipeline/" + f.ID
}

// HasSelection reports whether one of the listed connections is chosen.
// It is false when the pipeline's connection has been removed.
func (f FormData) HasSelection() bool {
	for _, c := range f.Connections {
		if c.Selected {
			return true
		}
	}
	return false
}

// withOptions fills the connection select, marking the form's choice.
func (f FormData) withOptions(conns []core.Connection) FormData {
	f.Connections = make([]ConnectionOption, 0, len(conns))
	for _, c := range conns {
		f.Connections = append(f.Connections, ConnectionOption{
			ID:       c.ID,
			Name:     c.Name,
			Selected: c.ID == f.ConnectionID,
		})
	}
	return f
}

// EmptyForm is the add form, preselecting the first connection.
func EmptyForm(conns []core.Connection) FormData {
	f := FormData{Schedule: DefaultSchedule}
	if len(conns) > 0 {
		f.ConnectionID = conns[0].ID
	}
	return f.withOptions(conns)
}

// EditForm is the edit form for an existing pipeline.
func EditForm(p core.Pipeline, conns []core.Connection) FormData {
	return FormData{
		ID:           p.ID,
		Name:         p.Name,
		ConnectionID: p.ConnectionID,
		Schedule:     p.Schedule,
		Owner:        p.Owner,
		Description:  p.Description,
	}.withOptions(conns)
}

// ListData is the view model of the pipeline list.
type ListData struct {
	Rows   []Row
	Counts Counts
	Add    FormData
}

// DetailData is the view model of a pipeline's page.
type DetailData struct {
	Row
	// Engine is empty when the connection no longer exists.
	Engine core.Engine
	// NextRun is nil when the schedule is not a standard cron expression.
	NextRun *time.Time
	Tables  []Table
	Builder BuilderData
	Form    FormData
}

// ColumnOption is one entry of the column picker.
type ColumnOption struct {
	Name     string
	Selected bool
}

// BuilderData is the view model of a pipeline's builder draft.
type BuilderData struct {
	PipelineID string
	Tables     []Table
	// Table is the source table in use, empty when the connection has
	// no tables.
	Table      string
	Columns    []ColumnOption
	Fields     []Field
	FieldTypes []string
	Error      string
}

// SelectedColumns are the picked columns of the source table.
func (b BuilderData) SelectedColumns() []string {
	var cols []string
	for _, c := range b.Columns {
		if c.Selected {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// SelectedSummary lists the picked columns for display.
func (b BuilderData) SelectedSummary() string {
	cols := b.SelectedColumns()
	if len(cols) == 0 {
		return "none"
	}
	return strings.Join(cols, ", ")
}

// NewBuilderData resolves a draft against the tables of the pipeline's
// connection. A source table the catalog no longer has falls back to the
// first table.
func NewBuilderData(pipelineID string, tables []Table, d Draft) BuilderData {
	b := BuilderData{
		PipelineID: pipelineID,
		Tables:     tables,
		Fields:     d.Fields,
		FieldTypes: FieldTypes,
	}
	table, ok := findTable(tables, d.Table)
	if !ok && len(tables) > 0 {
		table, ok = tables[0], true
	}
	if !ok {
		return b
	}
	b.Table = table.Name
	picked := d.Columns[table.Name]
	for _, c := range table.Columns {
		b.Columns = append(b.Columns, ColumnOption{Name: c, Selected: slices.Contains(picked, c)})
	}
	return b
}

func newRows(pipelines []core.Pipeline, conns []core.Connection) []Row {
	known := make(map[string]struct{}, len(conns))
	for _, c := range conns {
		known[c.ID] = struct{}{}
	}
	rows := make([]Row, 0, len(pipelines))
	for _, p := range pipelines {
		_, ok := known[p.ConnectionID]
		rows = append(rows, Row{Pipeline: p, Dangling: !ok})
	}
	return rows
}

// NewListData builds the list view model.
func NewListData(pipelines []core.Pipeline, conns []core.Connection) ListData {
	data := ListData{
		Rows: newRows(pipelines, conns),
		Add:  EmptyForm(conns),
	}
	for _, p := range pipelines {
		switch p.Status {
		case core.PipelineRunning:
			data.Counts.Running++
		case core.PipelineSucceeded:
			data.Counts.Succeeded++
		case core.PipelineIdle, core.PipelineFailed:
		}
	}
	data.Counts.Total = len(pipelines)
	return data
}

// NewDetailData builds the detail view model as of now.
func NewDetailData(p core.Pipeline, conns []core.Connection, draft Draft, now time.Time) DetailData {
	data := DetailData{
		Row:  newRows([]core.Pipeline{p}, conns)[0],
		Form: EditForm(p, conns),
	}
	for _, c := range conns {
		if c.ID == p.ConnectionID {
			data.Engine = c.Engine
			data.Tables = Catalog(c)
			break
		}
	}
	data.Builder = NewBuilderData(p.ID, data.Tables, draft)
	if next, ok := scheduler.NextRun(p.Schedule, now); ok {
		data.NextRun = &next
	}
	return data
}

// parseForm reads a posted pipeline form and resolves the connection name.
// form.Error is set when the input cannot be saved.
func parseForm(r *http.Request, id string, resolve func(string) (core.Connection, bool)) (FormData, core.PipelineInput) {
	form := FormData{
		ID:           id,
		Name:         common.Field(r, "name"),
		ConnectionID: common.Field(r, "connectionId"),
		Schedule:     common.Field(r, "schedule"),
		Owner:        common.Field(r, "owner"),
		Description:  common.Field(r, "description"),
	}
	in := core.PipelineInput{
		Name:         form.Name,
		ConnectionID: form.ConnectionID,
		Schedule:     form.Schedule,
		Owner:        form.Owner,
		Description:  form.Description,
	}

	if form.Name == "" || form.ConnectionID == "" || form.Owner == "" {
		form.Error = MsgRequired
		return form, in
	}
	conn, ok := resolve(form.ConnectionID)
	if !ok {
		form.Error = MsgConnection
		return form, in
	}
	in.ConnectionName = conn.Name
	return form, in
}
