package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

func TestUUIDv4ReturnsDistinctStrings(t *testing.T) {
	m := vm.New()
	ns := m.NewNamespace("uuid")
	registerUUID(m, ns)

	v4, ok := ns.GetField("v4")
	require.True(t, ok)
	native, ok := v4.AsObj().(*value.Native)
	require.True(t, ok)

	a, err := native.Fn(nil)
	require.NoError(t, err)
	b, err := native.Fn(nil)
	require.NoError(t, err)

	as, ok := asString(a)
	require.True(t, ok)
	bs, ok := asString(b)
	require.True(t, ok)
	require.Len(t, as, 36)
	require.NotEqual(t, as, bs)
}
