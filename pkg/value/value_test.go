package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/pkg/value"
)

func TestTruthy(t *testing.T) {
	require.False(t, value.Truthy(value.Nil))
	require.False(t, value.Truthy(value.Bool(false)))
	require.True(t, value.Truthy(value.Bool(true)))
	require.True(t, value.Truthy(value.Number(0)))
	require.True(t, value.Truthy(value.NewObj(&value.ObjString{Chars: ""})))
}

func TestEqualAcrossTypesIsFalse(t *testing.T) {
	in := value.NewInterner()
	s := value.NewObj(in.Intern("x"))
	cases := []value.Value{value.Nil, value.Bool(true), value.Number(0), s}
	for i := range cases {
		for j := range cases {
			if i == j {
				continue
			}
			require.Falsef(t, value.Equal(cases[i], cases[j]), "case %d vs %d", i, j)
		}
	}
}

func TestEqualStringsByContentViaInterning(t *testing.T) {
	in := value.NewInterner()
	a := value.NewObj(in.Intern("hello"))
	b := value.NewObj(in.Intern("hello"))
	require.True(t, value.Equal(a, b))
	require.Same(t, a.AsObj(), b.AsObj())
}

func TestNumberDisplay(t *testing.T) {
	require.Equal(t, "3", value.Number(3).String())
	require.Equal(t, "1.5", value.Number(1.5).String())
	require.Equal(t, "0", value.Number(0).String())
	require.Equal(t, "-2", value.Number(-2).String())
}

func TestNilAndBoolDisplay(t *testing.T) {
	require.Equal(t, "nil", value.Nil.String())
	require.Equal(t, "true", value.Bool(true).String())
	require.Equal(t, "false", value.Bool(false).String())
}

func TestInternerReusesContent(t *testing.T) {
	in := value.NewInterner()
	a := in.Intern("abc")
	b := in.Intern("abc")
	require.Same(t, a, b)
	require.Equal(t, 1, in.Len())
}
