package value

// IntoValue coerces a host-native Go value into the Value universe,
// so callers can hand the table core ordinary Go values and the core
// only ever sees canonical-universe Values.
//
// Supported host types: nil, bool, the signed/unsigned integer kinds,
// float32/float64, string, and Value itself (passed through). Handle
// covers every reference kind (Table/Function/Thread/UserData); pass
// a Value built with Table/Function/Thread/UserData directly for
// those.
func IntoValue(x any) Value {
	switch v := x.(type) {
	case nil:
		return Nil
	case Value:
		return v
	case bool:
		return Boolean(v)
	case int:
		return Integer(int64(v))
	case int8:
		return Integer(int64(v))
	case int16:
		return Integer(int64(v))
	case int32:
		return Integer(int64(v))
	case int64:
		return Integer(v)
	case uint:
		return Integer(int64(v))
	case uint8:
		return Integer(int64(v))
	case uint16:
		return Integer(int64(v))
	case uint32:
		return Integer(int64(v))
	case uint64:
		return Integer(int64(v))
	case float32:
		return Number(float64(v))
	case float64:
		return Number(v)
	case string:
		return String(v)
	default:
		panic("value: unsupported host type in IntoValue")
	}
}
