package jam

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestRender(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NumberVal(5), "5"},
		{NumberVal(2.5), "2.5"},
		{NumberVal(-3), "-3"},
		{NumberVal(0), "0"},
		{StringVal("hi"), "hi"},
		{BooleanVal(true), "true"},
		{BooleanVal(false), "false"},
		{ListVal(nil), "[]"},
		{ListVal([]Value{NumberVal(1), StringVal("a"), BooleanVal(true)}), "[1, a, true]"},
		{ListVal([]Value{ListVal([]Value{NumberVal(1), NumberVal(2)})}), "[[1, 2]]"},
	}
	for _, c := range cases {
		be.Equal(t, c.v.Render(), c.want)
	}
}

func TestStringQuotesStrings(t *testing.T) {
	be.Equal(t, StringVal("5").String(), `"5"`)
	be.Equal(t, NumberVal(5).String(), "5")
}

func TestTagNames(t *testing.T) {
	be.Equal(t, TagNumber.String(), "number")
	be.Equal(t, TagString.String(), "string")
	be.Equal(t, TagBoolean.String(), "boolean")
	be.Equal(t, TagList.String(), "list")
	be.Equal(t, TagFunction.String(), "function")
}

func TestDeepEqual(t *testing.T) {
	be.True(t, deepEqual(NumberVal(1), NumberVal(1)))
	be.True(t, !deepEqual(NumberVal(1), StringVal("1")))
	be.True(t, deepEqual(
		ListVal([]Value{NumberVal(1), ListVal([]Value{StringVal("a")})}),
		ListVal([]Value{NumberVal(1), ListVal([]Value{StringVal("a")})}),
	))
	be.True(t, !deepEqual(
		ListVal([]Value{NumberVal(1)}),
		ListVal([]Value{NumberVal(1), NumberVal(2)}),
	))
}

func TestFormatNumber(t *testing.T) {
	be.Equal(t, formatNumber(1000000), "1000000")
	be.Equal(t, formatNumber(0.1), "0.1")
	be.Equal(t, formatNumber(-2.75), "-2.75")
}
