package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/value"
)

func TestPutGet(t *testing.T) {
	tbl := New()
	k := value.ObjValue(value.NewString("x"))
	tbl.Put(k, value.NumberValue(1))
	v, ok := tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, float64(1), v.AsNumber())
}

func TestOverwrite(t *testing.T) {
	tbl := New()
	k := value.ObjValue(value.NewString("x"))
	tbl.Put(k, value.NumberValue(1))
	isNew := tbl.Put(k, value.NumberValue(2))
	require.False(t, isNew, "expected overwrite to report not-new")
	v, _ := tbl.Get(k)
	require.Equal(t, float64(2), v.AsNumber())
	require.Equal(t, 1, tbl.Len())
}

func TestRemoveTombstoneDoesNotBreakProbe(t *testing.T) {
	tbl := New()
	a := value.ObjValue(value.NewString("a"))
	b := value.ObjValue(value.NewString("b"))
	tbl.Put(a, value.NumberValue(1))
	tbl.Put(b, value.NumberValue(2))
	tbl.Remove(a)
	v, ok := tbl.Get(b)
	require.True(t, ok, "expected b to survive removal of a")
	require.Equal(t, float64(2), v.AsNumber())
	_, ok = tbl.Get(a)
	require.False(t, ok, "expected a to be gone")
}

func TestGrowPreservesEntries(t *testing.T) {
	tbl := New()
	for i := 0; i < 100; i++ {
		tbl.Put(value.NumberValue(float64(i)), value.NumberValue(float64(i*i)))
	}
	for i := 0; i < 100; i++ {
		v, ok := tbl.Get(value.NumberValue(float64(i)))
		require.True(t, ok)
		require.Equal(t, float64(i*i), v.AsNumber())
	}
	require.Equal(t, 100, tbl.Len())
}

func TestFindString(t *testing.T) {
	tbl := New()
	s := value.NewString("hello")
	tbl.Put(value.ObjValue(s), value.BoolValue(true))
	found := tbl.FindString("hello", s.Hash())
	require.Same(t, s, found, "expected FindString to return the interned object")
	require.Nil(t, tbl.FindString("nope", 0))
}

func TestPutAll(t *testing.T) {
	a := New()
	b := New()
	a.Put(value.ObjValue(value.NewString("x")), value.NumberValue(1))
	b.Put(value.ObjValue(value.NewString("y")), value.NumberValue(2))
	a.PutAll(b)
	// different String object, not interned here — table keys by
	// identity/value.Equal, so a fresh "y" object is expected to miss.
	_, ok := a.Get(value.ObjValue(value.NewString("y")))
	require.False(t, ok)
	v, ok := a.Get(b.Keys()[0])
	require.True(t, ok, "expected copied entry reachable via original key object")
	require.Equal(t, float64(2), v.AsNumber())
}

func TestRemoveWhiteDropsUnmarked(t *testing.T) {
	tbl := New()
	keep := value.NewString("keep")
	drop := value.NewString("drop")
	tbl.Put(value.ObjValue(keep), value.NilValue())
	tbl.Put(value.ObjValue(drop), value.NilValue())
	tbl.RemoveWhite(func(o value.Object) bool { return o == keep })
	_, ok := tbl.Get(value.ObjValue(keep))
	require.True(t, ok, "expected marked string to survive")
	_, ok = tbl.Get(value.ObjValue(drop))
	require.False(t, ok, "expected unmarked string to be removed")
}
