package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

func nativeField(t *testing.T, ns *value.Module, name string) value.NativeFunc {
	t.Helper()
	v, ok := ns.GetField(name)
	require.True(t, ok, "missing field %q", name)
	n, ok := v.AsObj().(*value.Native)
	require.True(t, ok, "field %q is not a Native", name)
	return n.Fn
}

func newText(t *testing.T) (m *vm.VM, regex, bytesNS, fmtNS *value.Module) {
	t.Helper()
	m = vm.New()
	regex = m.NewNamespace("regex")
	bytesNS = m.NewNamespace("bytes")
	fmtNS = m.NewNamespace("fmt")
	registerText(m, regex, bytesNS, fmtNS)
	return
}

func str(m *vm.VM, s string) value.Value {
	return value.ObjValue(m.NewString(s))
}

func TestRegexMatch(t *testing.T) {
	m, regex, _, _ := newText(t)
	match := nativeField(t, regex, "match")

	v, err := match([]value.Value{str(m, `^\d+$`), str(m, "12345")})
	require.NoError(t, err)
	require.True(t, v.IsBool())
	require.True(t, v.AsBool())

	v, err = match([]value.Value{str(m, `^\d+$`), str(m, "12a45")})
	require.NoError(t, err)
	require.False(t, v.AsBool())
}

func TestRegexFindAndReplace(t *testing.T) {
	m, regex, _, _ := newText(t)
	find := nativeField(t, regex, "find")
	replace := nativeField(t, regex, "replace")

	v, err := find([]value.Value{str(m, `\d+`), str(m, "order-482-x")})
	require.NoError(t, err)
	got, ok := asString(v)
	require.True(t, ok)
	require.Equal(t, "482", got)

	v, err = replace([]value.Value{str(m, `\s+`), str(m, "a   b  c"), str(m, " ")})
	require.NoError(t, err)
	got, ok = asString(v)
	require.True(t, ok)
	require.Equal(t, "a b c", got)
}

func TestBytesHexRoundTrip(t *testing.T) {
	m, _, bytesNS, _ := newText(t)
	toHex := nativeField(t, bytesNS, "toHex")
	fromHex := nativeField(t, bytesNS, "fromHex")

	encoded, err := toHex([]value.Value{str(m, "hello")})
	require.NoError(t, err)
	got, ok := asString(encoded)
	require.True(t, ok)
	require.Equal(t, "68656c6c6f", got)

	decoded, err := fromHex([]value.Value{encoded})
	require.NoError(t, err)
	got, ok = asString(decoded)
	require.True(t, ok)
	require.Equal(t, "hello", got)
}

func TestBytesBase64RoundTrip(t *testing.T) {
	m, _, bytesNS, _ := newText(t)
	toB64 := nativeField(t, bytesNS, "toBase64")
	fromB64 := nativeField(t, bytesNS, "fromBase64")

	encoded, err := toB64([]value.Value{str(m, "hello")})
	require.NoError(t, err)
	got, ok := asString(encoded)
	require.True(t, ok)
	require.Equal(t, "aGVsbG8=", got)

	decoded, err := fromB64([]value.Value{encoded})
	require.NoError(t, err)
	got, ok = asString(decoded)
	require.True(t, ok)
	require.Equal(t, "hello", got)
}

func TestFmtBytesAndOrdinal(t *testing.T) {
	m, _, _, fmtNS := newText(t)
	bytesFmt := nativeField(t, fmtNS, "bytes")
	ordinal := nativeField(t, fmtNS, "ordinal")

	v, err := bytesFmt([]value.Value{value.NumberValue(1024)})
	require.NoError(t, err)
	got, ok := asString(v)
	require.True(t, ok)
	require.NotEmpty(t, got)

	v, err = ordinal([]value.Value{value.NumberValue(3)})
	require.NoError(t, err)
	got, ok = asString(v)
	require.True(t, ok)
	require.Equal(t, "3rd", got)

	_ = m
}
