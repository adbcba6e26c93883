package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PropertyKind names the variant held by a PropertyValue.
type PropertyKind string

const (
	StringProperty PropertyKind = "string"
	IntProperty    PropertyKind = "int"
	FloatProperty  PropertyKind = "double"
	BoolProperty   PropertyKind = "bool"
	ListProperty   PropertyKind = "list"
)

// PropertyValue is a tagged union over the value kinds a node or edge
// property may hold. Only the field matching Kind is meaningful.
type PropertyValue struct {
	Kind  PropertyKind `json:"kind" mapstructure:"kind"`
	Str   string       `json:"str,omitempty" mapstructure:"str"`
	Int   int64        `json:"int,omitempty" mapstructure:"int"`
	Float float64      `json:"float,omitempty" mapstructure:"float"`
	Bool  bool         `json:"bool,omitempty" mapstructure:"bool"`
	List  []string     `json:"list,omitempty" mapstructure:"list"`
}

func StringValue(s string) PropertyValue { return PropertyValue{Kind: StringProperty, Str: s} }

func IntValue(i int64) PropertyValue { return PropertyValue{Kind: IntProperty, Int: i} }

func FloatValue(f float64) PropertyValue { return PropertyValue{Kind: FloatProperty, Float: f} }

func BoolValue(b bool) PropertyValue { return PropertyValue{Kind: BoolProperty, Bool: b} }

func ListValue(items ...string) PropertyValue {
	return PropertyValue{Kind: ListProperty, List: slices.Clone(items)}
}

// String renders the value the way exports and diagnostics print it.
// Lists render as ["a", "b"].
func (v PropertyValue) String() string {
	switch v.Kind {
	case IntProperty:
		return strconv.FormatInt(v.Int, 10)
	case FloatProperty:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case BoolProperty:
		return strconv.FormatBool(v.Bool)
	case ListProperty:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(item))
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return v.Str
	}
}

// Equal reports whether both values hold the same variant and payload.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.kind() != other.kind() {
		return false
	}
	switch v.kind() {
	case IntProperty:
		return v.Int == other.Int
	case FloatProperty:
		return v.Float == other.Float
	case BoolProperty:
		return v.Bool == other.Bool
	case ListProperty:
		return slices.Equal(v.List, other.List)
	default:
		return v.Str == other.Str
	}
}

// Interface returns the payload as a plain Go value.
func (v PropertyValue) Interface() any {
	switch v.kind() {
	case IntProperty:
		return v.Int
	case FloatProperty:
		return v.Float
	case BoolProperty:
		return v.Bool
	case ListProperty:
		return slices.Clone(v.List)
	default:
		return v.Str
	}
}

// kind treats the zero value as an empty string.
func (v PropertyValue) kind() PropertyKind {
	if v.Kind == "" {
		return StringProperty
	}
	return v.Kind
}

// PropertyFromAny converts a decoded JSON or YAML scalar into a PropertyValue.
// A float64 always stays a float; a json.Number becomes an int only when its
// literal is integral. Unsupported values are rendered as strings.
func PropertyFromAny(value any) PropertyValue {
	switch t := value.(type) {
	case PropertyValue:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := t.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(t.String())
	case []string:
		return ListValue(t...)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, PropertyFromAny(item).String())
		}
		return PropertyValue{Kind: ListProperty, List: items}
	case nil:
		return StringValue("")
	default:
		return StringValue(fmt.Sprint(t))
	}
}

// Properties is the property map carried by nodes and edges.
type Properties map[string]PropertyValue

// Clone returns a deep copy.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		if v.Kind == ListProperty {
			v.List = slices.Clone(v.List)
		}
		out[k] = v
	}
	return out
}
