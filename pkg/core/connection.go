package core

// =============================================================================
// Engine
// =============================================================================

// Engine identifies the database product behind a connection record.
type Engine string

// Supported engines.
const (
	EnginePostgreSQL  Engine = "PostgreSQL"
	EngineMySQL       Engine = "MySQL"
	EngineMariaDB     Engine = "MariaDB"
	EngineSQLServer   Engine = "SQL Server"
	EngineOracle      Engine = "Oracle"
	EngineSQLite      Engine = "SQLite"
	EngineCockroachDB Engine = "CockroachDB"
)

// Engines returns every supported engine in display order.
func Engines() []Engine {
	return []Engine{
		EnginePostgreSQL,
		EngineMySQL,
		EngineMariaDB,
		EngineSQLServer,
		EngineOracle,
		EngineSQLite,
		EngineCockroachDB,
	}
}

// Valid reports whether e is one of the supported engines.
func (e Engine) Valid() bool {
	for _, known := range Engines() {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEngine converts a display name to an Engine.
func ParseEngine(s string) (Engine, bool) {
	e := Engine(s)
	return e, e.Valid()
}

// DefaultPort returns the conventional listener port for the engine.
// SQLite is file based and has none.
func (e Engine) DefaultPort() (int, bool) {
	switch e {
	case EnginePostgreSQL:
		return 5432, true
	case EngineMySQL, EngineMariaDB:
		return 3306, true
	case EngineSQLServer:
		return 1433, true
	case EngineOracle:
		return 1521, true
	case EngineCockroachDB:
		return 26257, true
	case EngineSQLite:
		return 0, false
	default:
		return 0, false
	}
}

// =============================================================================
// Connection
// =============================================================================

// ConnectionStatus is the lifecycle state of a connection record.
type ConnectionStatus string

// Connection status constants.
const (
	ConnectionDisconnected ConnectionStatus = "Disconnected"
	ConnectionTesting      ConnectionStatus = "Testing"
	ConnectionConnected    ConnectionStatus = "Connected"
)

// Valid reports whether s is a known connection status.
func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionDisconnected, ConnectionTesting, ConnectionConnected:
		return true
	default:
		return false
	}
}

// Connection is a database connection record.
//
// Username and Password are stored on the record as given. This is a
// deliberate simplification of a workspace tool that never dials the target.
type Connection struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Engine    Engine           `json:"engine"`
	Host      string           `json:"host"`
	Port      int              `json:"port"`
	Database  string           `json:"database"`
	Username  string           `json:"username"`
	Password  string           `json:"password"`
	Notes     string           `json:"notes"`
	Status    ConnectionStatus `json:"status"`
	LastError *string          `json:"lastError"`
}

// ConnectionInput holds the mutable fields of a connection.
type ConnectionInput struct {
	Name     string
	Engine   Engine
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Notes    string
}

// Clone returns a deep copy of c.
func (c Connection) Clone() Connection {
	if c.LastError != nil {
		msg := *c.LastError
		c.LastError = &msg
	}
	return c
}

// Apply overwrites the mutable fields of c with in.
func (c *Connection) Apply(in ConnectionInput) {
	c.Name = in.Name
	c.Engine = in.Engine
	c.Host = in.Host
	c.Port = in.Port
	c.Database = in.Database
	c.Username = in.Username
	c.Password = in.Password
	c.Notes = in.Notes
}

// Input returns the mutable fields of c.
func (c Connection) Input() ConnectionInput {
	return ConnectionInput{
		Name:     c.Name,
		Engine:   c.Engine,
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.Username,
		Password: c.Password,
		Notes:    c.Notes,
	}
}

// ErrorMessage returns the last test failure, or "" when there is none.
func (c Connection) ErrorMessage() string {
	if c.LastError == nil {
		return ""
	}
	return *c.LastError
}
