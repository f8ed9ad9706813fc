package pg

import (
	"github.com/jackc/pgx/v5"
)

// Column represents a table column or a field of a jsonb record.
type Column struct {
	Name string
	Type DataType
}

// writeSQL writes the column definition with a quoted column name.
func (c *Column) writeSQL(s *stringBuilder) {
	s.WriteString(pgx.Identifier{c.Name}.Sanitize())
	s.WriteString(" ")
	c.Type.writeSQL(s)
}

func (c *Column) writeString(s *stringBuilder) {
	s.WriteString(c.Name)
	s.WriteString(" ")
	c.Type.writeString(s)
}

func (c *Column) String() string {
	var s stringBuilder
	c.writeString(&s)
	return s.String()
}
