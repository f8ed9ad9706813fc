package pg

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/koskimas/fondant/internal/schema"
)

// Export returns the `create table` statement of the table that stores a
// dataset with the columns `fields`. The statement is parsed back and
// compared to the table before it's returned.
func Export(name TableName, fields *schema.Fields) (string, error) {
	table, err := FromFields(name, fields)
	if err != nil {
		return "", fmt.Errorf(`failed to build table "%s": %w`, name.String(), err)
	}

	types := pgtype.NewMap()
	for _, c := range table.Columns {
		if _, err := c.Type.OID(types); err != nil {
			return "", fmt.Errorf(`column "%s": %w`, c.Name, err)
		}
	}

	sql := table.CreateStatement()
	if err := verify(sql, table); err != nil {
		return "", fmt.Errorf(`invalid statement for table "%s": %w`, name.String(), err)
	}

	return sql + "\n", nil
}

func verify(sql string, table *Table) error {
	db, err := Parse(sql)
	if err != nil {
		return err
	}

	parsed := db.Table(*table.Name)
	if parsed == nil {
		return fmt.Errorf(`table "%s" wasn't created`, table.Name)
	}

	if len(parsed.Columns) != len(table.Columns) {
		return fmt.Errorf("expected %d columns, got %d", len(table.Columns), len(parsed.Columns))
	}

	for i, c := range table.Columns {
		p := parsed.Columns[i]

		if p.Name != c.Name || !p.Type.SameStorage(c.Type) {
			return fmt.Errorf(`expected column %s, got %s`, c.String(), p.String())
		}
	}

	return nil
}
