package pg

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/koskimas/fondant/internal/schema"
)

type Table struct {
	Name          *TableName
	Columns       []*Column
	ColumnsByName map[string]*Column
}

type TableName struct {
	Name   string
	Schema string
}

func NewTable(name ...TableName) *Table {
	t := &Table{
		Columns:       make([]*Column, 0),
		ColumnsByName: make(map[string]*Column),
	}

	if len(name) > 0 {
		t.Name = &name[0]
	}

	return t
}

// FromFields builds the table that stores a dataset with the columns
// `fields`.
func FromFields(name TableName, fields *schema.Fields) (*Table, error) {
	table := NewTable(name)

	for _, f := range fields.List() {
		d, err := FromType(f.Type)
		if err != nil {
			return nil, fmt.Errorf(`column "%s": %w`, f.Name, err)
		}

		table.AddColumn(&Column{Name: f.Name, Type: d})
	}

	return table, nil
}

func (t *Table) AddColumn(col *Column) {
	t.ColumnsByName[col.Name] = col
	t.Columns = append(t.Columns, col)
}

// CreateStatement returns the `create table` statement of a named table.
func (t *Table) CreateStatement() string {
	var s stringBuilder

	s.WriteString("create table ")
	if t.Name != nil {
		s.WriteString(t.Name.Identifier())
		s.WriteString(" ")
	}

	s.WriteString("(")
	s.WriteNewLine()
	s.Indent()

	for i, c := range t.Columns {
		c.writeSQL(&s)

		if i != len(t.Columns)-1 {
			s.WriteString(",")
		}

		s.WriteNewLine()
	}

	s.DeIndent()
	s.WriteString(");")
	return s.String()
}

func (t *Table) writeString(s *stringBuilder, omitName bool) {
	if t.Name != nil && !omitName {
		t.Name.string(s)
		s.WriteString(" ")
	}

	s.WriteString("(")
	s.WriteNewLine()
	s.Indent()

	for i, c := range t.Columns {
		c.writeString(s)

		if i != len(t.Columns)-1 {
			s.WriteString(",")
		}

		s.WriteNewLine()
	}

	s.DeIndent()
	s.WriteString(")")
}

func (t *Table) String() string {
	var s stringBuilder
	t.writeString(&s, false)
	return s.String()
}

func NewTableName(name string, schema ...string) TableName {
	var t TableName

	t.Name = name
	if len(schema) > 0 {
		t.Schema = schema[0]
	}

	return t
}

func (n *TableName) HasSchema() bool {
	return len(n.Schema) != 0
}

// Identifier returns the quoted name.
func (n *TableName) Identifier() string {
	if n.HasSchema() {
		return pgx.Identifier{n.Schema, n.Name}.Sanitize()
	}

	return pgx.Identifier{n.Name}.Sanitize()
}

func (n *TableName) string(s *stringBuilder) {
	if n.HasSchema() {
		s.WriteString(n.Schema)
		_ = s.WriteByte('.')
	}

	s.WriteString(n.Name)
}

func (n *TableName) String() string {
	var s stringBuilder
	n.string(&s)
	return s.String()
}
