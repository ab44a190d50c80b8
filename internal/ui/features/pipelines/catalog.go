package pipelines

import (
	"slices"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Table is a source table a pipeline can read from.
type Table struct {
	Name    string
	Columns []string
}

// catalogByConnection lists the tables of the seeded connections.
var catalogByConnection = map[string][]Table{
	"analytics": {
		{"analytics_users", []string{"id", "email", "full_name", "created_at", "is_active"}},
		{"analytics_events", []string{"id", "event_name", "payload", "occurred_at"}},
		{"analytics_sessions", []string{"id", "user_id", "device", "started_at", "ended_at"}},
	},
	"orders": {
		{"orders", []string{"id", "user_id", "total_amount", "status", "created_at"}},
		{"order_items", []string{"id", "order_id", "product_id", "quantity", "unit_price"}},
		{"refunds", []string{"id", "order_id", "amount", "reason", "created_at"}},
	},
	"erp": {
		{"employees", []string{"id", "department_id", "name", "email", "hired_at"}},
		{"payroll", []string{"id", "employee_id", "gross_pay", "net_pay", "period_end"}},
	},
	"finance": {
		{"ledger_entries", []string{"id", "ledger_code", "debit", "credit", "posted_at"}},
		{"reconciliation_runs", []string{"id", "run_key", "status", "started_at", "finished_at"}},
		{"settlement_batches", []string{"id", "batch_key", "amount", "currency", "settled_at"}},
	},
}

// catalogByEngine is used for connections without their own entry.
var catalogByEngine = map[core.Engine][]Table{
	core.EnginePostgreSQL: {
		{"users", []string{"id", "email", "full_name", "created_at", "is_active"}},
		{"events", []string{"id", "event_name", "payload", "occurred_at"}},
	},
	core.EngineMySQL: {
		{"customers", []string{"id", "name", "segment", "country", "created_at"}},
		{"invoices", []string{"id", "customer_id", "amount", "currency", "issued_at"}},
	},
	core.EngineMariaDB:     {{"accounts", []string{"id", "account_name", "owner", "status", "updated_at"}}},
	core.EngineSQLServer:   {{"employees", []string{"id", "department_id", "name", "email", "hired_at"}}},
	core.EngineOracle:      {{"ledger_entries", []string{"id", "ledger_code", "debit", "credit", "posted_at"}}},
	core.EngineSQLite:      {{"app_logs", []string{"id", "level", "message", "created_at"}}},
	core.EngineCockroachDB: {{"tenants", []string{"id", "tenant_name", "region", "plan", "created_at"}}},
}

// Catalog returns the tables of a connection in catalog order. The first
// table is the builder's default source.
func Catalog(c core.Connection) []Table {
	tables, ok := catalogByConnection[c.ID]
	if !ok {
		tables = catalogByEngine[c.Engine]
	}
	return slices.Clone(tables)
}

// findTable looks a table up by name.
func findTable(tables []Table, name string) (Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
