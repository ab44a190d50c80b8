package pipelines

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Messages shown when a builder change is rejected.
const (
	MsgUnknownTable = "Choose a table of the connected DB profile."
	MsgFieldType    = "Choose one of the listed field types."
)

var (
	errUnknownTable = errors.New(MsgUnknownTable)
	errFieldType    = errors.New(MsgFieldType)
	errNoField      = errors.New("field not found")
)

// FieldTypes are the types an input field can take.
var FieldTypes = []string{"string", "number", "boolean", "date", "json"}

// Field is one input field of the pipeline builder.
type Field struct {
	ID       string
	Name     string
	Type     string
	Required bool
}

// Draft is the unsaved builder state of one pipeline. It lives as long
// as the process and is never written to the state file.
type Draft struct {
	// Table is the picked source table. Empty means the first table of
	// the catalog.
	Table string
	// Columns holds the picked columns per table.
	Columns map[string][]string
	Fields  []Field
}

func (d Draft) clone() Draft {
	out := Draft{
		Table:   d.Table,
		Columns: make(map[string][]string, len(d.Columns)),
		Fields:  slices.Clone(d.Fields),
	}
	for table, cols := range d.Columns {
		out.Columns[table] = slices.Clone(cols)
	}
	return out
}

// selectTable makes name the source table.
func (d *Draft) selectTable(tables []Table, name string) error {
	if _, ok := findTable(tables, name); !ok {
		return errUnknownTable
	}
	d.Table = name
	return nil
}

// selectColumns replaces the picked columns of a table. Names the table
// does not have are dropped and the rest keep the table's column order.
func (d *Draft) selectColumns(tables []Table, name string, picked []string) error {
	table, ok := findTable(tables, name)
	if !ok {
		return errUnknownTable
	}
	cols := make([]string, 0, len(picked))
	for _, c := range table.Columns {
		if slices.Contains(picked, c) {
			cols = append(cols, c)
		}
	}
	if d.Columns == nil {
		d.Columns = map[string][]string{}
	}
	d.Columns[name] = cols
	return nil
}

func (d *Draft) addField(id string) {
	d.Fields = append(d.Fields, Field{ID: id, Type: "string"})
}

func (d *Draft) updateField(id, name, typ string, required bool) error {
	i := slices.IndexFunc(d.Fields, func(f Field) bool { return f.ID == id })
	if i < 0 {
		return errNoField
	}
	if !slices.Contains(FieldTypes, typ) {
		return errFieldType
	}
	d.Fields[i] = Field{ID: id, Name: strings.TrimSpace(name), Type: typ, Required: required}
	return nil
}

func (d *Draft) removeField(id string) error {
	i := slices.IndexFunc(d.Fields, func(f Field) bool { return f.ID == id })
	if i < 0 {
		return errNoField
	}
	d.Fields = slices.Delete(d.Fields, i, i+1)
	return nil
}

// drafts holds the builder drafts by pipeline id.
type drafts struct {
	mu    sync.Mutex
	items map[string]*Draft
	newID func() string
}

func newDrafts() *drafts {
	return &drafts{items: map[string]*Draft{}, newID: uuid.NewString}
}

// lookup returns the draft of a pipeline, seeding it on first use.
// The caller holds mu.
func (s *drafts) lookup(id string) *Draft {
	d, ok := s.items[id]
	if !ok {
		d = &Draft{
			Columns: map[string][]string{},
			Fields: []Field{
				{ID: s.newID(), Name: "source_table", Type: "string", Required: true},
				{ID: s.newID(), Name: "batch_size", Type: "number"},
			},
		}
		s.items[id] = d
	}
	return d
}

// get returns a copy of the draft of a pipeline.
func (s *drafts) get(id string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id).clone()
}

// update applies fn to the draft of a pipeline. A failed fn leaves the
// draft unchanged.
func (s *drafts) update(id string, fn func(d *Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.lookup(id).clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.items[id] = &next
	return nil
}

// forget drops the draft of a removed pipeline.
func (s *drafts) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}
