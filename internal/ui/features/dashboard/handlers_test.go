package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/launchpad/internal/notifier"
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
	return NewHandlers(fixture.Container, fixture.Notifier), fixture
}

func countFor(counts []StatusCount, status any) int {
	for _, c := range counts {
		if c.Status == status {
			return c.Count
		}
	}
	return -1
}

// =============================================================================
// BuildData Tests
// =============================================================================

func TestBuildData(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	data := BuildData("ada",
		[]core.Connection{
			{ID: "a", Status: core.ConnectionConnected},
			{ID: "b", Status: core.ConnectionTesting},
			{ID: "c", Status: core.ConnectionTesting},
		},
		[]core.Pipeline{
			{ID: "p1", Name: "early", Status: core.PipelineSucceeded, LastRunAt: &earlier},
			{ID: "p2", Name: "late", Status: core.PipelineFailed, LastRunAt: &later},
			{ID: "p3", Name: "never", Status: core.PipelineRunning},
		},
	)

	assert.Equal(t, "ada", data.UserName)
	assert.Len(t, data.Metrics, 4)

	assert.Equal(t, 1, countFor(data.Connections, core.ConnectionConnected))
	assert.Equal(t, 2, countFor(data.Connections, core.ConnectionTesting))
	assert.Equal(t, 0, countFor(data.Connections, core.ConnectionDisconnected))

	assert.Equal(t, 0, countFor(data.Pipelines, core.PipelineIdle))
	assert.Equal(t, 1, countFor(data.Pipelines, core.PipelineRunning))
	assert.Equal(t, 1, countFor(data.Pipelines, core.PipelineSucceeded))
	assert.Equal(t, 1, countFor(data.Pipelines, core.PipelineFailed))

	require.NotNil(t, data.LatestRun)
	assert.Equal(t, "late", data.LatestRun.Name)
}

func TestBuildData_NoRuns(t *testing.T) {
	data := BuildData("", nil, []core.Pipeline{{ID: "p", Status: core.PipelineIdle}})
	assert.Nil(t, data.LatestRun)
}

// =============================================================================
// DashboardPage Tests
// =============================================================================

func TestDashboardPage(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := fixture.Authed(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	rec := httptest.NewRecorder()

	h.DashboardPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Dashboard - Launchpad</title>",
		"Welcome, ada",
		"Conversion rate", "8.2%",
		"Activated users", "1,240",
		"Weekly MRR", "$48,300",
		"NPS", "61",
		`data-init="@get('/dashboard/updates')"`,
		`id="dashboard-live"`,
		`href="/pipeline/finance-reconcile"`,
	} {
		assert.Contains(t, body, want)
	}
}

// =============================================================================
// DashboardUpdates Tests
// =============================================================================

func TestDashboardUpdates_SendsUpdateOnBroadcast(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := features.RequestWithTimeout(t, httptest.NewRequest(http.MethodGet, "/dashboard/updates", nil), 300*time.Millisecond)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.DashboardUpdates(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	fixture.Notifier.Broadcast(notifier.TopicPipelines)

	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1)
	assert.Contains(t, body, "dashboard-live")
	assert.NotContains(t, body, "Conversion rate", "only the live counts are patched")
}

func TestDashboardUpdates_IgnoresSessionTopic(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := features.RequestWithTimeout(t, httptest.NewRequest(http.MethodGet, "/dashboard/updates", nil), 150*time.Millisecond)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.DashboardUpdates(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	fixture.Notifier.Broadcast(notifier.TopicSession)

	<-done

	assert.Zero(t, strings.Count(rec.Body.String(), "event:"))
}

func TestDashboardUpdates_NoInitialState(t *testing.T) {
	h, _ := setupTestHandlers(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/updates", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	h.DashboardUpdates(rec, req)

	assert.Zero(t, strings.Count(rec.Body.String(), "event:"))
}
