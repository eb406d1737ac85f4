// value.go — the Jam runtime value model.
//
// Jam is dynamically typed: every runtime quantity is a Value, a tagged
// variant over number, string, boolean, list and function. The tag determines
// which shape Value.Data holds (see ValueTag). All operators pattern-match on
// the tag and fail with a TypeError on unsupported combinations; nothing
// falls back to host-language dynamic dispatch.
package jam

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	TagNumber   ValueTag = iota // float64
	TagString                   // string
	TagBoolean                  // bool
	TagList                     // []Value
	TagFunction                 // *FunctionDef
)

func (t ValueTag) String() string {
	switch t {
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagBoolean:
		return "boolean"
	case TagList:
		return "list"
	case TagFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is the universal runtime carrier used by both backends.
//
// Invariants:
//   - When Tag==TagNumber, Data is float64. Jam has a single numeric type;
//     whole numbers render without a decimal point.
//   - When Tag==TagList, Data is []Value. Lists are ordered, mutable and may
//     hold mixed tags.
//   - When Tag==TagFunction, Data is *FunctionDef.
type Value struct {
	Tag  ValueTag
	Data any
}

// Primitive constructors for convenience.
func NumberVal(f float64) Value        { return Value{Tag: TagNumber, Data: f} }
func StringVal(s string) Value         { return Value{Tag: TagString, Data: s} }
func BooleanVal(b bool) Value          { return Value{Tag: TagBoolean, Data: b} }
func ListVal(xs []Value) Value         { return Value{Tag: TagList, Data: xs} }
func FunctionVal(f *FunctionDef) Value { return Value{Tag: TagFunction, Data: f} }

// Render returns the user-facing text form appended to the output buffer by
// print/say. Whole numbers render integral ("5", not "5.000000"); lists render
// as "[a, b, c]" using each element's Render.
func (v Value) Render() string {
	switch v.Tag {
	case TagNumber:
		return formatNumber(v.Data.(float64))
	case TagString:
		return v.Data.(string)
	case TagBoolean:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case TagList:
		xs := v.Data.([]Value)
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = x.Render()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TagFunction:
		return "<function " + v.Data.(*FunctionDef).Name + ">"
	default:
		return "<unknown>"
	}
}

// String renders a debug representation; strings are quoted so test failures
// distinguish StringVal("5") from NumberVal(5).
func (v Value) String() string {
	if v.Tag == TagString {
		return fmt.Sprintf("%q", v.Data.(string))
	}
	return v.Render()
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// deepEqual compares two Values structurally. Values of different tags are
// never equal (== across tags answers false rather than failing; ordering
// comparisons are stricter, see evalCompare).
func deepEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagNumber:
		return a.Data.(float64) == b.Data.(float64)
	case TagString:
		return a.Data.(string) == b.Data.(string)
	case TagBoolean:
		return a.Data.(bool) == b.Data.(bool)
	case TagList:
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		if len(ax) != len(bx) {
			return false
		}
		for i := range ax {
			if !deepEqual(ax[i], bx[i]) {
				return false
			}
		}
		return true
	case TagFunction:
		return a.Data.(*FunctionDef) == b.Data.(*FunctionDef)
	default:
		return false
	}
}

// FunctionDef is a named user function: ordered parameter names plus a body of
// statements. Definitions are immutable once registered and a name is defined
// at most once per run.
type FunctionDef struct {
	Name   string
	Params []string
	Body   []*Statement
	Line   int
}
