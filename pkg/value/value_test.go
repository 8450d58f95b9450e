package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.False(t, NilValue.Truthy())
	require.False(t, Bool_(false).Truthy())
	require.True(t, Bool_(true).Truthy())
	require.True(t, Number_(0).Truthy())
	require.True(t, Number_(-1).Truthy())
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(NilValue, NilValue))
	require.True(t, Equal(Number_(1), Number_(1)))
	require.False(t, Equal(Number_(1), Number_(2)))
	require.False(t, Equal(Number_(1), Bool_(true)))
	require.True(t, Equal(Bool_(true), Bool_(true)))
	require.False(t, Equal(Obj_(Ref(0)), Obj_(Ref(1))))
	require.True(t, Equal(Obj_(Ref(3)), Obj_(Ref(3))))
}

func TestNumberFormatting(t *testing.T) {
	require.Equal(t, "3", Number_(3).String())
	require.Equal(t, "3.5", Number_(3.5).String())
	require.Equal(t, "-2", Number_(-2).String())
}

func TestStringPanicsOnObj(t *testing.T) {
	require.Panics(t, func() {
		_ = Obj_(Ref(0)).String()
	})
}
