package param

import "fmt"

// ParameterType tags the value variant carried by a Parameter.
type ParameterType int

const (
	// ParameterNotSet is the sentinel type for names with no stored value.
	ParameterNotSet ParameterType = iota
	// ParameterBool tags boolean values.
	ParameterBool
	// ParameterInteger tags 64-bit integer values.
	ParameterInteger
	// ParameterDouble tags 64-bit floating point values.
	ParameterDouble
	// ParameterString tags string values.
	ParameterString
	// ParameterBytes tags raw byte sequence values.
	ParameterBytes
)

// String returns the string representation of the parameter type.
func (t ParameterType) String() string {
	switch t {
	case ParameterNotSet:
		return "not_set"
	case ParameterBool:
		return "bool"
	case ParameterInteger:
		return "integer"
	case ParameterDouble:
		return "double"
	case ParameterString:
		return "string"
	case ParameterBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Parameter is a named, typed value in a node-local configuration namespace.
// Names are dot-namespaced ("motors.left.gain") and globally unique within
// one store; last writer wins on overlapping batch sets.
type Parameter struct {
	Name  string
	Value any
}

// NewParameter builds a parameter, normalizing the value into the canonical
// variant domain (int widths to int64, float32 to float64). Unsupported value
// kinds are stored as given and report ParameterNotSet from Type; use
// Validate to reject them eagerly.
func NewParameter(name string, value any) Parameter {
	return Parameter{Name: name, Value: normalize(value)}
}

func normalize(value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}

// Type derives the variant tag from the stored value.
func (p Parameter) Type() ParameterType {
	switch p.Value.(type) {
	case bool:
		return ParameterBool
	case int64:
		return ParameterInteger
	case float64:
		return ParameterDouble
	case string:
		return ParameterString
	case []byte:
		return ParameterBytes
	default:
		return ParameterNotSet
	}
}

// Validate reports whether the parameter value is within the supported
// variant domain.
func (p Parameter) Validate() error {
	if p.Value != nil && p.Type() == ParameterNotSet {
		return fmt.Errorf("parameter %q: unsupported value type %T", p.Name, p.Value)
	}
	return nil
}

// BoolValue returns the boolean value and whether the parameter holds one.
func (p Parameter) BoolValue() (bool, bool) {
	v, ok := p.Value.(bool)
	return v, ok
}

// IntValue returns the integer value and whether the parameter holds one.
func (p Parameter) IntValue() (int64, bool) {
	v, ok := p.Value.(int64)
	return v, ok
}

// DoubleValue returns the float value and whether the parameter holds one.
func (p Parameter) DoubleValue() (float64, bool) {
	v, ok := p.Value.(float64)
	return v, ok
}

// StringValue returns the string value and whether the parameter holds one.
func (p Parameter) StringValue() (string, bool) {
	v, ok := p.Value.(string)
	return v, ok
}

// BytesValue returns the byte value and whether the parameter holds one.
func (p Parameter) BytesValue() ([]byte, bool) {
	v, ok := p.Value.([]byte)
	return v, ok
}

// SetResult reports the outcome of applying one parameter (or one atomic
// batch). Constraint validation is an explicit extension point; in the
// current design every set reports success and Reason stays empty.
type SetResult struct {
	Successful bool
	Reason     string
}

// Descriptor describes a stored parameter: its name and type tag. No
// range/constraint metadata exists in this design.
type Descriptor struct {
	Name string
	Type ParameterType
}

// ListResult is one per-match record of a hierarchical listing: the matching
// parameter name plus the name's own prefix (the substring before its last
// dot). Callers aggregate records further if needed.
type ListResult struct {
	ParameterNames    []string
	ParameterPrefixes []string
}
