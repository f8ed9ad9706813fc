package pg

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/koskimas/fondant/internal/ptr"
	"github.com/koskimas/fondant/internal/schema"
)

const (
	DataTypeJsonb = "jsonb"
	DataTypeText  = "text"
)

// dataTypeNames maps scalar kinds to the internal names of postgres types.
var dataTypeNames = map[schema.Kind]string{
	schema.KindNull:        DataTypeText,
	schema.KindBool:        "bool",
	schema.KindInt8:        "int2",
	schema.KindInt16:       "int2",
	schema.KindInt32:       "int4",
	schema.KindInt64:       "int8",
	schema.KindUint8:       "int2",
	schema.KindUint16:      "int4",
	schema.KindUint32:      "int8",
	schema.KindUint64:      "numeric",
	schema.KindFloat16:     "float4",
	schema.KindFloat32:     "float4",
	schema.KindFloat64:     "float8",
	schema.KindDecimal128:  "numeric",
	schema.KindDecimal256:  "numeric",
	schema.KindTime32:      "time",
	schema.KindTime64:      "time",
	schema.KindTimestamp:   "timestamp",
	schema.KindDate32:      "date",
	schema.KindDate64:      "date",
	schema.KindDuration:    "interval",
	schema.KindString:      DataTypeText,
	schema.KindLargeString: DataTypeText,
	schema.KindBinary:      "bytea",
	schema.KindLargeBinary: "bytea",
}

// typeAliases maps the names the parser produces for SQL standard type
// names to the internal names.
var typeAliases = map[string]string{
	"boolean":          "bool",
	"smallint":         "int2",
	"integer":          "int4",
	"int":              "int4",
	"bigint":           "int8",
	"real":             "float4",
	"double precision": "float8",
	"decimal":          "numeric",
	"varchar":          DataTypeText,
}

// DataType represents a postgres data type. Nested struct types are stored
// as jsonb with the struct's fields in the `Record` property.
type DataType struct {
	Name    string
	Schema  *string
	NotNull bool

	// Array is true if the type is a postgres array. For example `int4[]`
	// would produce a DataType `{ Name: "int4", Array: true }`.
	Array bool

	// Record holds the fields of a jsonb column that stores a struct.
	Record *Table

	// RecordArray is true if the jsonb column stores a list of structs.
	RecordArray bool
}

// FromType returns the postgres type that stores values of `t`. Lists of
// scalars become arrays. Structs and nested lists are stored as jsonb.
func FromType(t schema.Type) (DataType, error) {
	switch t.Kind() {
	case schema.KindList:
		items := t.Items()

		if items.IsStruct() {
			record, err := recordFromFields(items.Fields())
			if err != nil {
				return DataType{}, err
			}

			return DataType{Name: DataTypeJsonb, Record: record, RecordArray: true}, nil
		}

		if items.IsList() {
			return DataType{Name: DataTypeJsonb}, nil
		}

		d, err := FromType(items)
		if err != nil {
			return DataType{}, err
		}

		d.Array = true
		return d, nil
	case schema.KindStruct:
		record, err := recordFromFields(t.Fields())
		if err != nil {
			return DataType{}, err
		}

		return DataType{Name: DataTypeJsonb, Record: record}, nil
	}

	name, ok := dataTypeNames[t.Kind()]
	if !ok {
		return DataType{}, fmt.Errorf(`no postgres type for "%s"`, t)
	}

	return DataType{Name: name}, nil
}

func recordFromFields(fields *schema.Fields) (*Table, error) {
	record := NewTable()

	for _, f := range fields.List() {
		d, err := FromType(f.Type)
		if err != nil {
			return nil, fmt.Errorf(`field "%s": %w`, f.Name, err)
		}

		record.AddColumn(&Column{Name: f.Name, Type: d})
	}

	return record, nil
}

// normalizeName returns the internal name of a type name.
func normalizeName(name string) string {
	if alias, ok := typeAliases[name]; ok {
		return alias
	}

	return name
}

func (d *DataType) Jsonb() bool {
	return d.Name == DataTypeJsonb
}

// OID returns the postgres object id of the type using the type registry
// `m`. Arrays have their own OIDs.
func (d *DataType) OID(m *pgtype.Map) (uint32, error) {
	name := d.Name
	if d.Array {
		name = "_" + name
	}

	t, ok := m.TypeForName(name)
	if !ok {
		return 0, fmt.Errorf(`unknown postgres type "%s"`, name)
	}

	return t.OID, nil
}

// SameStorage reports whether both types store values the same way.
// Records are not compared.
func (d *DataType) SameStorage(o DataType) bool {
	return d.Name == o.Name && d.Array == o.Array && ptr.Deref(d.Schema) == ptr.Deref(o.Schema)
}

// writeSQL writes the type as it appears in a column definition.
func (d *DataType) writeSQL(s *stringBuilder) {
	if d.Schema != nil {
		s.WriteString(*d.Schema)
		_ = s.WriteByte('.')
	}

	s.WriteString(d.Name)

	if d.Array {
		s.WriteString("[]")
	}

	if d.NotNull {
		s.WriteString(" not null")
	}
}

func (d *DataType) writeString(s *stringBuilder) {
	d.writeSQL(s)

	if d.Record != nil {
		s.WriteString(" ")
		if d.RecordArray {
			s.WriteString("[]")
		}
		d.Record.writeString(s, true)
	}
}

func (d *DataType) String() string {
	var s stringBuilder
	d.writeString(&s)
	return s.String()
}
