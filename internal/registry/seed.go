package registry

import (
	"time"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// DefaultState returns the records a new workspace starts with.
func DefaultState(now time.Time) core.AppState {
	lastRun := now.Add(-42 * time.Minute).UTC()

	return core.AppState{
		Connections: []core.Connection{
			{
				ID:       "analytics",
				Name:     "Primary Analytics",
				Engine:   core.EnginePostgreSQL,
				Host:     "analytics-prod.internal",
				Port:     5432,
				Database: "analytics",
				Status:   core.ConnectionConnected,
				Notes:    "Used for BI dashboards",
			},
			{
				ID:       "orders",
				Name:     "Orders Core",
				Engine:   core.EngineMySQL,
				Host:     "orders.internal",
				Port:     3306,
				Database: "orders",
				Status:   core.ConnectionDisconnected,
				Notes:    "OLTP write traffic",
			},
			{
				ID:       "erp",
				Name:     "Legacy ERP",
				Engine:   core.EngineSQLServer,
				Host:     "erp.corp.local",
				Port:     1433,
				Database: "erp_main",
				Status:   core.ConnectionDisconnected,
				Notes:    "Needs credential rotation",
			},
			{
				ID:       "finance",
				Name:     "Finance Warehouse",
				Engine:   core.EngineOracle,
				Host:     "finance-db.internal",
				Port:     1521,
				Database: "fin_dw",
				Status:   core.ConnectionConnected,
				Notes:    "Nightly reconciliation jobs",
			},
		},
		Pipelines: []core.Pipeline{
			{
				ID:             "daily-orders-sync",
				Name:           "Daily Orders Sync",
				ConnectionID:   "orders",
				ConnectionName: "Orders Core",
				Schedule:       "0 */6 * * *",
				Owner:          "Data Platform",
				Description:    "Ingest order changes every 6 hours into warehouse.",
				Status:         core.PipelineIdle,
			},
			{
				ID:             "finance-reconcile",
				Name:           "Finance Reconciliation",
				ConnectionID:   "finance",
				ConnectionName: "Finance Warehouse",
				Schedule:       "0 2 * * *",
				Owner:          "Finance Ops",
				Description:    "Reconcile finance-ledger snapshots nightly.",
				Status:         core.PipelineSucceeded,
				LastRunAt:      &lastRun,
			},
		},
	}
}
