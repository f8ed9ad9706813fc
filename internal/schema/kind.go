package schema

// Kind is the tag of a Type. Scalar kinds are used verbatim as type tags in
// component documents.
type Kind string

const (
	KindNull        Kind = "null"
	KindBool        Kind = "bool"
	KindInt8        Kind = "int8"
	KindInt16       Kind = "int16"
	KindInt32       Kind = "int32"
	KindInt64       Kind = "int64"
	KindUint8       Kind = "uint8"
	KindUint16      Kind = "uint16"
	KindUint32      Kind = "uint32"
	KindUint64      Kind = "uint64"
	KindFloat16     Kind = "float16"
	KindFloat32     Kind = "float32"
	KindFloat64     Kind = "float64"
	KindDecimal128  Kind = "decimal128"
	KindDecimal256  Kind = "decimal256"
	KindTime32      Kind = "time32"
	KindTime64      Kind = "time64"
	KindTimestamp   Kind = "timestamp"
	KindDate32      Kind = "date32"
	KindDate64      Kind = "date64"
	KindDuration    Kind = "duration"
	KindString      Kind = "string"
	KindLargeString Kind = "large_string"
	KindBinary      Kind = "binary"
	KindLargeBinary Kind = "large_binary"

	KindList   Kind = "list"
	KindStruct Kind = "struct"
)

// ScalarKinds lists every scalar kind in a stable order.
var ScalarKinds = []Kind{
	KindNull,
	KindBool,
	KindInt8,
	KindInt16,
	KindInt32,
	KindInt64,
	KindUint8,
	KindUint16,
	KindUint32,
	KindUint64,
	KindFloat16,
	KindFloat32,
	KindFloat64,
	KindDecimal128,
	KindDecimal256,
	KindTime32,
	KindTime64,
	KindTimestamp,
	KindDate32,
	KindDate64,
	KindDuration,
	KindString,
	KindLargeString,
	KindBinary,
	KindLargeBinary,
}

var scalarKinds = func() map[Kind]bool {
	m := make(map[Kind]bool, len(ScalarKinds))
	for _, k := range ScalarKinds {
		m[k] = true
	}
	return m
}()

// kindAliases are accepted when parsing and normalized to their canonical kind.
var kindAliases = map[string]Kind{
	"utf8":       KindString,
	"large_utf8": KindLargeString,
	"boolean":    KindBool,
	"array":      KindList,
}

func parseKind(tag string) (Kind, bool) {
	if k, ok := kindAliases[tag]; ok {
		return k, true
	}

	k := Kind(tag)
	if scalarKinds[k] || k == KindList || k == KindStruct {
		return k, true
	}

	return "", false
}

// Scalar is true for every kind except list and struct.
func (k Kind) Scalar() bool {
	return scalarKinds[k]
}
