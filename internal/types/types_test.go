package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimitivesInterned(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.IsInteger(r.IntegerTy()))
	require.True(t, r.IsFloat(r.FloatTy()))
	require.True(t, r.IsVoid(r.VoidTy()))
	require.True(t, r.IsError(r.ErrorTy()))
}

func TestArrayDedup(t *testing.T) {
	r := NewRegistry()
	a1 := r.CreateArray(3, r.IntegerTy())
	a2 := r.CreateArray(3, r.IntegerTy())
	require.Equal(t, a1, a2, "identical arrays should share an id")

	a3 := r.CreateArray(4, r.IntegerTy())
	require.NotEqual(t, a1, a3, "arrays of different size must not share an id")
}

func TestFunctionDedup(t *testing.T) {
	r := NewRegistry()
	f1 := r.CreateFunction([]ID{r.IntegerTy(), r.FloatTy()}, r.BooleanTy())
	f2 := r.CreateFunction([]ID{r.IntegerTy(), r.FloatTy()}, r.BooleanTy())
	require.Equal(t, f1, f2, "identical function signatures should share an id")

	require.Equal(t, 2, r.ParamCount(f1))
	require.Equal(t, r.FloatTy(), r.ParamType(f1, 1))
	require.Equal(t, r.BooleanTy(), r.ReturnType(f1))
}

func TestSizeOf(t *testing.T) {
	r := NewRegistry()
	arr := r.CreateArray(5, r.IntegerTy())
	require.Equal(t, 5, r.SizeOf(arr))
	require.Equal(t, 1, r.SizeOf(r.IntegerTy()))
}

func TestCopyable(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Copyable(r.IntegerTy(), r.IntegerTy()))
	require.True(t, r.Copyable(r.FloatTy(), r.IntegerTy()), "integer should be copyable to float")
	require.False(t, r.Copyable(r.IntegerTy(), r.FloatTy()), "float should not be copyable to integer")
	require.True(t, r.Copyable(r.IntegerTy(), r.ErrorTy()), "error should be vacuously copyable")

	a1 := r.CreateArray(3, r.IntegerTy())
	a2 := r.CreateArray(3, r.IntegerTy())
	require.True(t, r.Copyable(a1, a2), "identical arrays should be copyable")

	a3 := r.CreateArray(4, r.IntegerTy())
	require.False(t, r.Copyable(a1, a3), "arrays of different size should not be copyable")
}

func TestComparable(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Comparable(r.IntegerTy(), r.FloatTy(), "=="))
	require.True(t, r.Comparable(r.IntegerTy(), r.FloatTy(), "<"))
	require.False(t, r.Comparable(r.BooleanTy(), r.BooleanTy(), "<"), "booleans should not be comparable with <")
	require.True(t, r.Comparable(r.BooleanTy(), r.BooleanTy(), "=="))

	arr := r.CreateArray(2, r.IntegerTy())
	require.False(t, r.Comparable(arr, arr, "=="), "arrays should never be comparable")
}
