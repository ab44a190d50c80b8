package pipelines

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/launchpad/internal/ui/features"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	fixture.SignIn()
	h := NewHandlers(fixture.Container, fixture.Notifier)
	h.now = func() time.Time { return features.FixedNow }
	h.drafts.newID = sequentialIDs()
	return h, fixture
}

// sequentialIDs returns field-1, field-2 and so on.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("field-%d", n)
	}
}

func validForm() url.Values {
	return url.Values{
		"name":         {"Hourly Refunds"},
		"connectionId": {"orders"},
		"schedule":     {"15 * * * *"},
		"owner":        {"Payments"},
		"description":  {"Copy refunds into the lake."},
	}
}

func withID(fixture *features.TestFixture, r *http.Request, id string) *http.Request {
	return features.RequestWithPathParam(fixture.Authed(r), "id", id)
}

// streamFor runs PipelineUpdates for target while act runs, and returns
// what was streamed.
func streamFor(t *testing.T, h *Handlers, target string, act func()) string {
	t.Helper()
	req := features.RequestWithTimeout(t, httptest.NewRequest(http.MethodGet, target, nil), 300*time.Millisecond)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.PipelineUpdates(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	act()
	<-done

	return rec.Body.String()
}

// =============================================================================
// View Model Tests
// =============================================================================

func TestNewListData(t *testing.T) {
	data := NewListData(
		[]core.Pipeline{
			{ID: "a", ConnectionID: "c1", Status: core.PipelineRunning},
			{ID: "b", ConnectionID: "gone", Status: core.PipelineSucceeded},
			{ID: "c", ConnectionID: "c1", Status: core.PipelineFailed},
		},
		[]core.Connection{{ID: "c1", Name: "One"}, {ID: "c2", Name: "Two"}},
	)

	assert.Equal(t, Counts{Running: 1, Succeeded: 1, Total: 3}, data.Counts)
	require.Len(t, data.Rows, 3)
	assert.False(t, data.Rows[0].Dangling)
	assert.True(t, data.Rows[1].Dangling)

	assert.Equal(t, DefaultSchedule, data.Add.Schedule)
	assert.Equal(t, "c1", data.Add.ConnectionID, "first connection is preselected")
	require.Len(t, data.Add.Connections, 2)
	assert.True(t, data.Add.Connections[0].Selected)
}

func TestEmptyForm_NoConnections(t *testing.T) {
	f := EmptyForm(nil)
	assert.Empty(t, f.ConnectionID)
	assert.Empty(t, f.Connections)
	assert.Equal(t, "/pipeline", f.Action())
}

func TestEditForm_HasSelection(t *testing.T) {
	conns := []core.Connection{{ID: "c1", Name: "One"}}

	assert.True(t, EditForm(core.Pipeline{ID: "p", ConnectionID: "c1"}, conns).HasSelection())
	assert.False(t, EditForm(core.Pipeline{ID: "p", ConnectionID: "gone"}, conns).HasSelection())
}

func TestCatalog(t *testing.T) {
	tests := []struct {
		name       string
		conn       core.Connection
		wantTables []string
	}{
		{
			name:       "seeded connection",
			conn:       core.Connection{ID: "finance", Engine: core.EngineOracle},
			wantTables: []string{"ledger_entries", "reconciliation_runs", "settlement_batches"},
		},
		{
			name:       "engine fallback",
			conn:       core.Connection{ID: "new", Engine: core.EngineMySQL},
			wantTables: []string{"customers", "invoices"},
		},
		{
			name:       "unknown engine",
			conn:       core.Connection{ID: "new", Engine: "MongoDB"},
			wantTables: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := []string{}
			for _, table := range Catalog(tt.conn) {
				names = append(names, table.Name)
				assert.NotEmpty(t, table.Columns)
			}
			assert.Equal(t, tt.wantTables, names)
		})
	}
}

func TestNewDetailData_NextRun(t *testing.T) {
	conns := []core.Connection{{ID: "finance", Name: "Finance Warehouse", Engine: core.EngineOracle}}

	data := NewDetailData(core.Pipeline{ID: "p", ConnectionID: "finance", Schedule: "0 2 * * *"}, conns, Draft{}, features.FixedNow)
	require.NotNil(t, data.NextRun)
	assert.True(t, data.NextRun.Equal(time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)), "got %s", data.NextRun)
	assert.Equal(t, core.EngineOracle, data.Engine)
	assert.False(t, data.Dangling)
	assert.Equal(t, "/pipeline/p", data.Form.Action())

	data = NewDetailData(core.Pipeline{ID: "p", ConnectionID: "gone", Schedule: "whenever"}, conns, Draft{}, features.FixedNow)
	assert.Nil(t, data.NextRun)
	assert.True(t, data.Dangling)
	assert.Empty(t, data.Tables)
	assert.Empty(t, data.Builder.Table)
}

// =============================================================================
// Page Tests
// =============================================================================

func TestPipelinesPage(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.PipelinesPage(rec, fixture.Authed(httptest.NewRequest(http.MethodGet, "/pipeline", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Pipeline Control - Launchpad</title>",
		`data-init="@get('/pipeline/updates')"`,
		"Running: 0",
		"Succeeded: 1",
		"Total: 2",
		"Add pipeline",
		`href="/pipeline/daily-orders-sync"`,
	} {
		assert.Contains(t, body, want)
	}
	assert.Equal(t, []string{"row-daily-orders-sync", "row-finance-reconcile"}, features.ElementIDs(t, body, "row-"))

	row, ok := features.TextByID(t, body, "row-daily-orders-sync")
	require.True(t, ok)
	assert.Contains(t, row, "Orders Core")
	assert.Contains(t, row, "0 */6 * * *")
	assert.Contains(t, row, "Idle")
	assert.Contains(t, row, "Never")
	assert.NotContains(t, row, "Connection missing")
}

func TestPipelinesPage_FlagsDanglingConnection(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	require.True(t, fixture.Container.RemoveConnection(context.Background(), "orders"))
	rec := httptest.NewRecorder()

	h.PipelinesPage(rec, fixture.Authed(httptest.NewRequest(http.MethodGet, "/pipeline", nil)))

	row, ok := features.TextByID(t, rec.Body.String(), "row-daily-orders-sync")
	require.True(t, ok)
	assert.Contains(t, row, "Orders Core", "stale name is kept")
	assert.Contains(t, row, "Connection missing")
}

func TestPipelineDetailPage(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.PipelineDetailPage(rec, withID(fixture, httptest.NewRequest(http.MethodGet, "/pipeline/finance-reconcile", nil), "finance-reconcile"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Finance Reconciliation - Launchpad</title>",
		"Pipeline Workspace: Finance Reconciliation",
		`data-init="@get('/pipeline/updates?id=finance-reconcile')"`,
		"ledger_entries",
		"reconciliation_runs",
		"Next run:",
		"Start pipeline",
		`action="/pipeline/finance-reconcile"`,
	} {
		assert.Contains(t, body, want)
	}
	assert.Contains(t, features.InputValues(t, body, "owner"), "Finance Ops")
	assert.Contains(t, features.InputValues(t, body, "next"), "/pipeline/finance-reconcile")
	assert.NotContains(t, body, "no longer exists")
}

func TestPipelineDetailPage_Dangling(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	require.True(t, fixture.Container.RemoveConnection(context.Background(), "finance"))
	rec := httptest.NewRecorder()

	h.PipelineDetailPage(rec, withID(fixture, httptest.NewRequest(http.MethodGet, "/pipeline/finance-reconcile", nil), "finance-reconcile"))

	assert.Equal(t, http.StatusOK, rec.Code)
	warning, ok := features.TextByID(t, rec.Body.String(), "pipeline-dangling")
	require.True(t, ok)
	assert.Contains(t, warning, "Finance Warehouse no longer exists")
	assert.NotContains(t, rec.Body.String(), `id="pipeline-source"`)
	assert.Contains(t, rec.Body.String(), "source_table", "input fields stay editable")
	assert.Contains(t, rec.Body.String(), "Choose a connection", "the select asks for a new connection")
}

func TestPipelineDetailPage_NotFound(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.PipelineDetailPage(rec, withID(fixture, httptest.NewRequest(http.MethodGet, "/pipeline/nope", nil), "nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pipeline not found.")
}

// =============================================================================
// Mutation Tests
// =============================================================================

func TestCreatePipeline(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.CreatePipeline(rec, fixture.Authed(features.PostForm("/pipeline", validForm())))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	all := fixture.Container.ListPipelines()
	require.Len(t, all, 3)
	created := all[2]
	assert.Equal(t, "/pipeline/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, "Hourly Refunds", created.Name)
	assert.Equal(t, "Orders Core", created.ConnectionName, "name is resolved from the connection")
	assert.Equal(t, core.PipelineIdle, created.Status)
	assert.Nil(t, created.LastRunAt)
}

func TestCreatePipeline_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(url.Values)
		wantMsg string
	}{
		{name: "missing name", mutate: func(v url.Values) { v.Set("name", "") }, wantMsg: MsgRequired},
		{name: "missing owner", mutate: func(v url.Values) { v.Set("owner", " ") }, wantMsg: MsgRequired},
		{name: "missing connection", mutate: func(v url.Values) { v.Del("connectionId") }, wantMsg: MsgRequired},
		{name: "unknown connection", mutate: func(v url.Values) { v.Set("connectionId", "nope") }, wantMsg: MsgConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			form := validForm()
			tt.mutate(form)
			rec := httptest.NewRecorder()

			h.CreatePipeline(rec, fixture.Authed(features.PostForm("/pipeline", form)))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
			assert.Contains(t, rec.Body.String(), `id="pipeline-add" open`)
			assert.Len(t, fixture.Container.ListPipelines(), 2)
		})
	}
}

func TestUpdatePipeline(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	form := validForm()
	form.Set("connectionId", "analytics")
	rec := httptest.NewRecorder()

	h.UpdatePipeline(rec, withID(fixture, features.PostForm("/pipeline/finance-reconcile", form), "finance-reconcile"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pipeline/finance-reconcile", rec.Header().Get("Location"))

	got, ok := fixture.Container.GetPipeline("finance-reconcile")
	require.True(t, ok)
	assert.Equal(t, "Hourly Refunds", got.Name)
	assert.Equal(t, "analytics", got.ConnectionID)
	assert.Equal(t, "Primary Analytics", got.ConnectionName)
	assert.Equal(t, "15 * * * *", got.Schedule)
	assert.Equal(t, core.PipelineSucceeded, got.Status, "edit keeps status")
	assert.NotNil(t, got.LastRunAt, "edit keeps lastRunAt")
}

func TestUpdatePipeline_Invalid(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	form := validForm()
	form.Set("connectionId", "nope")
	rec := httptest.NewRecorder()

	h.UpdatePipeline(rec, withID(fixture, features.PostForm("/pipeline/finance-reconcile", form), "finance-reconcile"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgConnection)
	assert.Contains(t, features.InputValues(t, rec.Body.String(), "name"), "Hourly Refunds", "input is kept")

	got, _ := fixture.Container.GetPipeline("finance-reconcile")
	assert.Equal(t, "Finance Reconciliation", got.Name)
}

func TestUpdatePipeline_RelinksDanglingConnection(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	require.True(t, fixture.Container.RemoveConnection(context.Background(), "finance"))

	form := validForm()
	form.Set("connectionId", "finance")
	rec := httptest.NewRecorder()
	h.UpdatePipeline(rec, withID(fixture, features.PostForm("/pipeline/finance-reconcile", form), "finance-reconcile"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgConnection)

	form.Set("connectionId", "orders")
	rec = httptest.NewRecorder()
	h.UpdatePipeline(rec, withID(fixture, features.PostForm("/pipeline/finance-reconcile", form), "finance-reconcile"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	got, _ := fixture.Container.GetPipeline("finance-reconcile")
	assert.Equal(t, "orders", got.ConnectionID)
	assert.Equal(t, "Orders Core", got.ConnectionName)
}

func TestUpdatePipeline_NotFound(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.UpdatePipeline(rec, withID(fixture, features.PostForm("/pipeline/nope", validForm()), "nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePipeline(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.DeletePipeline(rec, withID(fixture, features.PostForm("/pipeline/daily-orders-sync/delete", nil), "daily-orders-sync"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pipeline", rec.Header().Get("Location"))
	_, ok := fixture.Container.GetPipeline("daily-orders-sync")
	assert.False(t, ok)
}

func TestRunPipeline(t *testing.T) {
	tests := []struct {
		name         string
		next         string
		wantLocation string
	}{
		{name: "back to detail", next: "/pipeline/daily-orders-sync", wantLocation: "/pipeline/daily-orders-sync"},
		{name: "back to list", next: "/pipeline", wantLocation: "/pipeline"},
		{name: "off-site next is ignored", next: "https://example.com/pipeline", wantLocation: "/pipeline"},
		{name: "no next", wantLocation: "/pipeline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			rec := httptest.NewRecorder()

			form := url.Values{}
			if tt.next != "" {
				form.Set("next", tt.next)
			}
			h.RunPipeline(rec, withID(fixture, features.PostForm("/pipeline/daily-orders-sync/run", form), "daily-orders-sync"))

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))

			got := fixture.WaitForPipeline("daily-orders-sync")
			assert.Equal(t, core.PipelineSucceeded, got.Status)
			require.NotNil(t, got.LastRunAt)
			assert.True(t, got.LastRunAt.Equal(features.FixedNow))
		})
	}
}

// =============================================================================
// PipelineUpdates Tests
// =============================================================================

func TestPipelineUpdates_List(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	body := streamFor(t, h, "/pipeline/updates", func() {
		fixture.Container.RemovePipeline(context.Background(), "finance-reconcile")
	})

	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1)
	assert.Contains(t, body, `id="pipelines-live"`)
	assert.Contains(t, body, "Total: 1")
	assert.NotContains(t, body, "Finance Reconciliation")
}

func TestPipelineUpdates_FollowsConnections(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	body := streamFor(t, h, "/pipeline/updates", func() {
		fixture.Container.RemoveConnection(context.Background(), "orders")
	})

	assert.Contains(t, body, "Connection missing")
}

func TestPipelineUpdates_Detail(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	body := streamFor(t, h, "/pipeline/updates?id=daily-orders-sync", func() {
		task := fixture.Container.RunPipeline(context.Background(), "daily-orders-sync")
		_, err := task.Wait(context.Background())
		require.NoError(t, err)
	})

	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1)
	assert.Contains(t, body, `id="pipeline-live"`)
	assert.Contains(t, body, "Succeeded")
	assert.NotContains(t, body, "pipelines-live")
}

func TestPipelineUpdates_DetailRemoved(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	body := streamFor(t, h, "/pipeline/updates?id=daily-orders-sync", func() {
		fixture.Container.RemovePipeline(context.Background(), "daily-orders-sync")
	})

	assert.Contains(t, body, "This pipeline was removed.")
}

// =============================================================================
// Builder Tests
// =============================================================================

func detailBody(t *testing.T, h *Handlers, fixture *features.TestFixture, id string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.PipelineDetailPage(rec, withID(fixture, httptest.NewRequest(http.MethodGet, "/pipeline/"+id, nil), id))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func builderPost(fixture *features.TestFixture, target string, form url.Values, params ...string) *http.Request {
	req := fixture.Authed(features.PostForm(target, form))
	for i := 0; i+1 < len(params); i += 2 {
		req = features.RequestWithPathParam(req, params[i], params[i+1])
	}
	return req
}

func TestPipelineDetailPage_BuilderDefaults(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	body := detailBody(t, h, fixture, "finance-reconcile")

	assert.Contains(t, body, `<option value="ledger_entries" selected>`, "first table is the default source")
	assert.Contains(t, body, `value="posted_at"`)
	selected, ok := features.TextByID(t, body, "pipeline-selected-columns")
	require.True(t, ok)
	assert.Contains(t, selected, "Selected columns: none")
	assert.Subset(t, features.InputValues(t, body, "name"), []string{"source_table", "batch_size"})
	assert.Contains(t, body, `id="field-field-1"`)
	assert.Contains(t, body, `value="yes" checked`, "source_table is required")
}

func TestSelectTable(t *testing.T) {
	tests := []struct {
		name       string
		table      string
		wantStatus int
		wantTable  string
	}{
		{name: "switch table", table: "settlement_batches", wantStatus: http.StatusSeeOther, wantTable: "settlement_batches"},
		{name: "table of another connection", table: "orders", wantStatus: http.StatusUnprocessableEntity, wantTable: "ledger_entries"},
		{name: "no table", wantStatus: http.StatusUnprocessableEntity, wantTable: "ledger_entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			rec := httptest.NewRecorder()

			h.SelectTable(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/table", url.Values{"table": {tt.table}}, "id", "finance-reconcile"))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/pipeline/finance-reconcile", rec.Header().Get("Location"))
			} else {
				assert.Contains(t, rec.Body.String(), MsgUnknownTable)
			}

			body := detailBody(t, h, fixture, "finance-reconcile")
			assert.Contains(t, body, fmt.Sprintf(`<option value="%s" selected>`, tt.wantTable))
		})
	}
}

func TestSelectTable_ShowsColumnsOfNewTable(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.SelectTable(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/table", url.Values{"table": {"settlement_batches"}}, "id", "finance-reconcile"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := detailBody(t, h, fixture, "finance-reconcile")
	assert.Contains(t, body, `value="batch_key"`)
	assert.NotContains(t, body, `value="ledger_code"`)
}

func TestSelectColumns(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	form := url.Values{"table": {"ledger_entries"}, "columns": {"debit", "bogus", "id"}}
	h.SelectColumns(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/columns", form, "id", "finance-reconcile"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := detailBody(t, h, fixture, "finance-reconcile")
	selected, ok := features.TextByID(t, body, "pipeline-selected-columns")
	require.True(t, ok)
	assert.Contains(t, selected, "Selected columns: id, debit", "unknown columns are dropped, table order is kept")
	assert.Contains(t, body, `value="debit" checked`)
	assert.NotContains(t, body, `value="credit" checked`)

	// Columns are kept per table.
	rec = httptest.NewRecorder()
	h.SelectTable(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/table", url.Values{"table": {"reconciliation_runs"}}, "id", "finance-reconcile"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	selected, _ = features.TextByID(t, detailBody(t, h, fixture, "finance-reconcile"), "pipeline-selected-columns")
	assert.Contains(t, selected, "Selected columns: none")

	rec = httptest.NewRecorder()
	h.SelectTable(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/table", url.Values{"table": {"ledger_entries"}}, "id", "finance-reconcile"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	selected, _ = features.TextByID(t, detailBody(t, h, fixture, "finance-reconcile"), "pipeline-selected-columns")
	assert.Contains(t, selected, "Selected columns: id, debit")
}

func TestSelectColumns_UnknownTable(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	form := url.Values{"table": {"payroll"}, "columns": {"id"}}
	h.SelectColumns(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/columns", form, "id", "finance-reconcile"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgUnknownTable)
}

func TestAddField(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.AddField(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/fields", nil, "id", "finance-reconcile"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pipeline/finance-reconcile", rec.Header().Get("Location"))
	d := h.drafts.get("finance-reconcile")
	require.Len(t, d.Fields, 3)
	assert.Equal(t, Field{ID: "field-3", Type: "string"}, d.Fields[2])
	assert.Contains(t, detailBody(t, h, fixture, "finance-reconcile"), `id="field-field-3"`)
}

func TestUpdateField(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		form       url.Values
		wantStatus int
		want       Field
	}{
		{
			name:       "rename and require",
			field:      "field-2",
			form:       url.Values{"name": {"  max_rows "}, "type": {"json"}, "required": {"yes"}},
			wantStatus: http.StatusSeeOther,
			want:       Field{ID: "field-2", Name: "max_rows", Type: "json", Required: true},
		},
		{
			name:       "unchecked box clears required",
			field:      "field-1",
			form:       url.Values{"name": {"source_table"}, "type": {"string"}},
			wantStatus: http.StatusSeeOther,
			want:       Field{ID: "field-1", Name: "source_table", Type: "string"},
		},
		{
			name:       "unknown type",
			field:      "field-2",
			form:       url.Values{"name": {"batch_size"}, "type": {"float"}},
			wantStatus: http.StatusUnprocessableEntity,
			want:       Field{ID: "field-2", Name: "batch_size", Type: "number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			rec := httptest.NewRecorder()

			h.UpdateField(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/fields/"+tt.field, tt.form,
				"id", "finance-reconcile", "field", tt.field))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnprocessableEntity {
				assert.Contains(t, rec.Body.String(), MsgFieldType)
			}
			d := h.drafts.get("finance-reconcile")
			i := slices.IndexFunc(d.Fields, func(f Field) bool { return f.ID == tt.field })
			require.GreaterOrEqual(t, i, 0)
			assert.Equal(t, tt.want, d.Fields[i])
		})
	}
}

func TestRemoveField(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.RemoveField(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/fields/field-1/delete", nil,
		"id", "finance-reconcile", "field", "field-1"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	d := h.drafts.get("finance-reconcile")
	require.Len(t, d.Fields, 1)
	assert.Equal(t, "batch_size", d.Fields[0].Name)
	assert.NotContains(t, detailBody(t, h, fixture, "finance-reconcile"), `id="field-field-1"`)

	rec = httptest.NewRecorder()
	h.RemoveField(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/fields/field-1/delete", nil,
		"id", "finance-reconcile", "field", "field-1"))
	assert.Equal(t, http.StatusNotFound, rec.Code, "a field is removed once")
}

func TestBuilder_UnknownPipeline(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()

	h.AddField(rec, builderPost(fixture, "/pipeline/nope/builder/fields", nil, "id", "nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	h.drafts.mu.Lock()
	defer h.drafts.mu.Unlock()
	assert.NotContains(t, h.drafts.items, "nope")
}

func TestDeletePipeline_ForgetsDraft(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	rec := httptest.NewRecorder()
	h.AddField(rec, builderPost(fixture, "/pipeline/finance-reconcile/builder/fields", nil, "id", "finance-reconcile"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	h.DeletePipeline(rec, withID(fixture, features.PostForm("/pipeline/finance-reconcile/delete", nil), "finance-reconcile"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	h.drafts.mu.Lock()
	defer h.drafts.mu.Unlock()
	assert.NotContains(t, h.drafts.items, "finance-reconcile")
}
