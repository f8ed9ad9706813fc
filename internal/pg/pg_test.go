package pg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/koskimas/fondant/internal/schema"
	assert "github.com/stretchr/testify/require"
)

func datasetFields() *schema.Fields {
	return schema.MustFields(
		schema.NewField("images", schema.MustOf("binary")),
		schema.NewField("captions", schema.MustOf("string")),
		schema.NewField("embeddings", schema.List(schema.MustOf("float32"))),
		schema.NewField("box", schema.Struct(schema.MustFields(
			schema.NewField("x", schema.MustOf("int32")),
			schema.NewField("y", schema.MustOf("int32")),
		))),
		schema.NewField("Created At", schema.MustOf("timestamp")),
	)
}

func TestFromType(t *testing.T) {
	tests := []struct {
		typ      schema.Type
		expected string
	}{
		{schema.MustOf("bool"), "bool"},
		{schema.MustOf("int8"), "int2"},
		{schema.MustOf("uint32"), "int8"},
		{schema.MustOf("uint64"), "numeric"},
		{schema.MustOf("float64"), "float8"},
		{schema.MustOf("duration"), "interval"},
		{schema.MustOf("large_string"), "text"},
		{schema.MustOf("large_binary"), "bytea"},
		{schema.List(schema.MustOf("int64")), "int8[]"},
		{schema.List(schema.List(schema.MustOf("int64"))), "jsonb"},
		{schema.List(schema.Struct(schema.MustFields(schema.NewField("a", schema.MustOf("int8"))))), "jsonb [](\n  a int2\n)"},
	}

	for _, test := range tests {
		d, err := FromType(test.typ)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, d.String(), test.typ.String())
	}
}

func TestOID(t *testing.T) {
	types := pgtype.NewMap()

	for _, k := range schema.ScalarKinds {
		d, err := FromType(schema.MustOf(string(k)))
		assert.NoError(t, err)

		_, err = d.OID(types)
		assert.NoError(t, err, k)

		d.Array = true
		_, err = d.OID(types)
		assert.NoError(t, err, k)
	}

	d := DataType{Name: "int4"}
	oid, err := d.OID(types)
	assert.NoError(t, err)
	assert.Equal(t, uint32(pgtype.Int4OID), oid)

	d = DataType{Name: "no_such_type"}
	_, err = d.OID(types)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	sql, err := Export(NewTableName("dataset", "fondant"), datasetFields())
	assert.NoError(t, err)

	expected, err := os.ReadFile(filepath.Join("testdata", "dataset.sql"))
	assert.NoError(t, err)
	assert.Equal(t, string(expected), sql)

	db, err := Parse(sql)
	assert.NoError(t, err)

	table := db.Table(NewTableName("dataset", "fondant"))
	assert.NotNil(t, table)
	assert.Equal(t, "bytea", table.ColumnsByName["images"].Type.Name)
	assert.True(t, table.ColumnsByName["embeddings"].Type.Array)
	assert.Equal(t, DataTypeJsonb, table.ColumnsByName["box"].Type.Name)
	assert.NotNil(t, table.ColumnsByName["Created At"])
}

func TestParse(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "dataset.sql"))
	assert.NoError(t, err)

	db, err := Parse(string(data) + `
		create table fondant.scores (
			id bigint primary key,
			score double precision not null,
			tags text[],
			location public.geometry
		);
	`)
	assert.NoError(t, err)
	assert.Len(t, db.Tables, 2)

	table := db.Table(NewTableName("scores", "fondant"))
	assert.NotNil(t, table)

	types := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		types[i] = c.Type.String()
	}

	assert.Equal(t, []string{"int8 not null", "float8 not null", "text[]", "public.geometry"}, types)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"create table a (x int, x text);", `duplicate column "x"`},
		{"create table a (x int);\ncreate table a (y int);", `table "a" is created twice`},
		{"create table a (x int);\n\nalter table a add column y int;", "unexpected altertable statement"},
		{"create table b (like a);", "only column definitions are supported"},
	}

	for _, test := range tests {
		_, err := Parse(test.sql)
		assert.ErrorContains(t, err, test.expected, test.sql)
		assert.ErrorContains(t, err, "line ", test.sql)
	}

	_, err := Parse("create table")
	assert.ErrorContains(t, err, "failed to parse")
}
