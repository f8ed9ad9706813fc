package pg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/koskimas/fondant/internal/ptr"
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// Parse returns the tables created by the `create table` statements of
// `sql`. Any other statement is an error.
func Parse(sql string) (*DB, error) {
	ast, err := parseSql(sql)
	if err != nil {
		return nil, fmt.Errorf(`failed to parse: %w`, err)
	}

	db := NewDB()

	for _, s := range ast.GetStmts() {
		var err error

		switch node := s.GetStmt().GetNode().(type) {
		case *pg_query.Node_CreateStmt:
			err = readCreateStatement(db, node.CreateStmt)
		default:
			err = fmt.Errorf("unexpected %s statement", statementKind(node))
		}

		if err != nil {
			return nil, fmt.Errorf(`line %d: %w`, resolveLine(sql, int(s.GetStmtLocation())), err)
		}
	}

	return db, nil
}

func readCreateStatement(db *DB, stmt *pg_query.CreateStmt) error {
	rel := stmt.GetRelation()
	if rel == nil || rel.GetRelname() == "" {
		return errors.New("create table without a table name")
	}

	name := NewTableName(rel.GetRelname(), rel.GetSchemaname())
	if db.Table(name) != nil {
		return fmt.Errorf(`table "%s" is created twice`, name.String())
	}

	table := NewTable(name)

	for _, elt := range stmt.GetTableElts() {
		def := elt.GetColumnDef()
		if def == nil {
			return fmt.Errorf(`table "%s": only column definitions are supported`, name.String())
		}

		col, err := readColumn(def)
		if err != nil {
			return fmt.Errorf(`table "%s": %w`, name.String(), err)
		}

		if _, ok := table.ColumnsByName[col.Name]; ok {
			return fmt.Errorf(`table "%s": duplicate column "%s"`, name.String(), col.Name)
		}

		table.AddColumn(col)
	}

	db.AddTable(table)
	return nil
}

func readColumn(def *pg_query.ColumnDef) (*Column, error) {
	typeName := def.GetTypeName()
	if typeName == nil {
		return nil, fmt.Errorf(`column "%s" has no type`, def.GetColname())
	}

	t, err := readTypeName(typeName)
	if err != nil {
		return nil, fmt.Errorf(`column "%s": %w`, def.GetColname(), err)
	}

	for _, c := range def.GetConstraints() {
		switch c.GetConstraint().GetContype() {
		case pg_query.ConstrType_CONSTR_NOTNULL, pg_query.ConstrType_CONSTR_PRIMARY:
			t.NotNull = true
		}
	}

	return &Column{Name: def.GetColname(), Type: t}, nil
}

func readTypeName(typeName *pg_query.TypeName) (DataType, error) {
	var t DataType

	switch names := typeName.GetNames(); len(names) {
	case 1:
		t.Name = getString(names[0])
	case 2:
		// SQL standard names like `double precision` come back as pg_catalog
		// types.
		if s := strings.ToLower(getString(names[0])); s != "pg_catalog" {
			t.Schema = ptr.V(s)
		}

		t.Name = getString(names[1])
	default:
		return t, fmt.Errorf("unexpected type name with %d parts", len(names))
	}

	t.Name = normalizeName(strings.ToLower(t.Name))
	t.Array = len(typeName.GetArrayBounds()) > 0

	return t, nil
}

func statementKind(node any) string {
	kind := fmt.Sprintf("%T", node)
	kind = strings.TrimPrefix(kind, "*pg_query.Node_")
	return strings.ToLower(strings.TrimSuffix(kind, "Stmt"))
}
