package connections

import (
	"net/http"
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Messages shown when a form cannot be saved.
const (
	MsgRequired = "Connection name and host are required."
	MsgEngine   = "Choose a supported database type."
)

// defaultPort is used when a new connection's port field is not a number.
const defaultPort = 5432

// Row is one connection as listed. It never carries the password.
type Row struct {
	ID        string
	Name      string
	Engine    core.Engine
	Host      string
	Port      int
	Database  string
	Username  string
	Notes     string
	Status    core.ConnectionStatus
	LastError string
}

// Testing reports whether a test is in flight.
func (r Row) Testing() bool {
	return r.Status == core.ConnectionTesting
}

// FormData is the state of an add or edit form.
type FormData struct {
	// ID is empty for the add form.
	ID          string
	Name        string
	Engine      core.Engine
	Host        string
	Port        string
	Database    string
	Username    string
	Notes       string
	HasPassword bool
	Error       string
}

// Action is where the form posts to.
func (f FormData) Action() string {
	if f.ID == "" {
		return "/connections"
	}
	return "/connections/" + f.ID
}

// EngineOption is one entry of the database type select.
type EngineOption struct {
	Engine   core.Engine
	Selected bool
}

// EngineOptions lists the supported engines with the form's selected.
func (f FormData) EngineOptions() []EngineOption {
	engines := core.Engines()
	opts := make([]EngineOption, 0, len(engines))
	for _, e := range engines {
		opts = append(opts, EngineOption{Engine: e, Selected: e == f.Engine})
	}
	return opts
}

// EmptyForm is the add form before any input.
func EmptyForm() FormData {
	return FormData{Engine: core.EnginePostgreSQL, Port: strconv.Itoa(defaultPort)}
}

// EditForm is the edit form for an existing connection.
func EditForm(c core.Connection) FormData {
	return FormData{
		ID:          c.ID,
		Name:        c.Name,
		Engine:      c.Engine,
		Host:        c.Host,
		Port:        strconv.Itoa(c.Port),
		Database:    c.Database,
		Username:    c.Username,
		Notes:       c.Notes,
		HasPassword: c.Password != "",
	}
}

// PageData is the view model of the connections page.
type PageData struct {
	Rows []Row
	Add  FormData
	// Editing is the edit form, nil when no connection is selected.
	Editing *FormData
}

// NewRows converts connections to rows sorted by name.
func NewRows(conns []core.Connection) []Row {
	rows := make([]Row, 0, len(conns))
	for _, c := range conns {
		rows = append(rows, Row{
			ID:        c.ID,
			Name:      c.Name,
			Engine:    c.Engine,
			Host:      c.Host,
			Port:      c.Port,
			Database:  c.Database,
			Username:  c.Username,
			Notes:     c.Notes,
			Status:    c.Status,
			LastError: c.ErrorMessage(),
		})
	}

	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(rows, func(i, j int) bool {
		return col.CompareString(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}

// parseForm reads a posted connection form. form.Error is set when the
// input cannot be saved.
func parseForm(r *http.Request, id string, fallbackPort int) (FormData, core.ConnectionInput) {
	form := FormData{
		ID:       id,
		Name:     common.Field(r, "name"),
		Engine:   core.Engine(common.Field(r, "engine")),
		Host:     common.Field(r, "host"),
		Port:     common.Field(r, "port"),
		Database: common.Field(r, "database"),
		Username: common.Field(r, "username"),
		Notes:    common.Field(r, "notes"),
	}
	in := core.ConnectionInput{
		Name:     form.Name,
		Engine:   form.Engine,
		Host:     form.Host,
		Port:     common.Port(form.Port, fallbackPort),
		Database: form.Database,
		Username: form.Username,
		Password: r.PostFormValue("password"),
		Notes:    form.Notes,
	}

	switch {
	case form.Name == "" || form.Host == "":
		form.Error = MsgRequired
	case !form.Engine.Valid():
		form.Error = MsgEngine
	}
	return form, in
}
