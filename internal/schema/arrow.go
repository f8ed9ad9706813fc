package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// arrowTypes maps scalar kinds to the Arrow types used by the dataset storage.
// The mapping is a bijection so that ToArrow and FromArrow are inverses.
var arrowTypes = map[Kind]arrow.DataType{
	KindNull:        arrow.Null,
	KindBool:        arrow.FixedWidthTypes.Boolean,
	KindInt8:        arrow.PrimitiveTypes.Int8,
	KindInt16:       arrow.PrimitiveTypes.Int16,
	KindInt32:       arrow.PrimitiveTypes.Int32,
	KindInt64:       arrow.PrimitiveTypes.Int64,
	KindUint8:       arrow.PrimitiveTypes.Uint8,
	KindUint16:      arrow.PrimitiveTypes.Uint16,
	KindUint32:      arrow.PrimitiveTypes.Uint32,
	KindUint64:      arrow.PrimitiveTypes.Uint64,
	KindFloat16:     arrow.FixedWidthTypes.Float16,
	KindFloat32:     arrow.PrimitiveTypes.Float32,
	KindFloat64:     arrow.PrimitiveTypes.Float64,
	KindDecimal128:  &arrow.Decimal128Type{Precision: 38, Scale: 0},
	KindDecimal256:  &arrow.Decimal256Type{Precision: 76, Scale: 0},
	KindTime32:      &arrow.Time32Type{Unit: arrow.Second},
	KindTime64:      &arrow.Time64Type{Unit: arrow.Microsecond},
	KindTimestamp:   &arrow.TimestampType{Unit: arrow.Microsecond},
	KindDate32:      arrow.FixedWidthTypes.Date32,
	KindDate64:      arrow.FixedWidthTypes.Date64,
	KindDuration:    &arrow.DurationType{Unit: arrow.Microsecond},
	KindString:      arrow.BinaryTypes.String,
	KindLargeString: arrow.BinaryTypes.LargeString,
	KindBinary:      arrow.BinaryTypes.Binary,
	KindLargeBinary: arrow.BinaryTypes.LargeBinary,
}

// ToArrow returns the Arrow data type of `t`.
func (t Type) ToArrow() arrow.DataType {
	switch t.kind {
	case KindList:
		return arrow.ListOf(t.items.ToArrow())
	case KindStruct:
		return arrow.StructOf(t.fields.arrowFields()...)
	}

	return arrowTypes[t.kind]
}

// FromArrow converts an Arrow data type back into a Type. It accepts exactly
// the types ToArrow produces.
func FromArrow(dt arrow.DataType) (Type, error) {
	return fromArrow(dt, nil)
}

func fromArrow(dt arrow.DataType, path []string) (Type, error) {
	if dt == nil {
		return Type{}, typeErrorf(nil, path, "missing arrow type")
	}

	switch dt.ID() {
	case arrow.LIST:
		items, err := fromArrow(dt.(*arrow.ListType).Elem(), childPath(path, keyItems))
		if err != nil {
			return Type{}, err
		}

		return List(items), nil
	case arrow.STRUCT:
		fields, err := fieldsFromArrow(dt.(*arrow.StructType).Fields(), childPath(path, keyFields))
		if err != nil {
			return Type{}, err
		}

		return Type{kind: KindStruct, fields: fields}, nil
	}

	for _, k := range ScalarKinds {
		if arrow.TypeEqual(dt, arrowTypes[k]) {
			return Type{kind: k}, nil
		}
	}

	return Type{}, typeErrorf(nil, path, `unsupported arrow type "%s"`, dt)
}

// ToArrowSchema returns the Arrow schema of a dataset with these fields.
func (f *Fields) ToArrowSchema() *arrow.Schema {
	return arrow.NewSchema(f.arrowFields(), nil)
}

// FieldsFromArrowSchema reads the fields of a dataset schema.
func FieldsFromArrowSchema(s *arrow.Schema) (*Fields, error) {
	return fieldsFromArrow(s.Fields(), nil)
}

func (f *Fields) arrowFields() []arrow.Field {
	out := make([]arrow.Field, 0, f.Len())

	for _, field := range f.List() {
		out = append(out, arrow.Field{
			Name:     field.Name,
			Type:     field.Type.ToArrow(),
			Nullable: true,
		})
	}

	return out
}

func fieldsFromArrow(arrowFields []arrow.Field, path []string) (*Fields, error) {
	fields, _ := NewFields()

	for _, af := range arrowFields {
		fieldPath := childPath(path, af.Name)

		t, err := fromArrow(af.Type, fieldPath)
		if err != nil {
			return nil, err
		}

		if err := fields.Add(&Field{Name: af.Name, Type: t}); err != nil {
			return nil, typeErrorf(nil, fieldPath, "%s", err)
		}
	}

	return fields, nil
}
