package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

// cloud.dynamoConnect needs live AWS credentials and a reachable
// endpoint, so only the pure Ember<->Go item-conversion helpers are
// exercised here, the same boundary the teacher's own dynamodb plugin
// leaves untested (it has no _test.go file at all).
func TestEmberMapToGoRoundTrip(t *testing.T) {
	m := vm.New()
	item := m.NewMap()
	item.Put(value.ObjValue(m.NewString("name")), value.ObjValue(m.NewString("widget")))
	item.Put(value.ObjValue(m.NewString("qty")), value.NumberValue(3))
	item.Put(value.ObjValue(m.NewString("active")), value.BoolValue(true))
	item.Put(value.ObjValue(m.NewString("note")), value.NilValue())

	goItem := emberMapToGo(item)
	require.Equal(t, "widget", goItem["name"])
	require.Equal(t, float64(3), goItem["qty"])
	require.Equal(t, true, goItem["active"])
	require.Nil(t, goItem["note"])

	back := goMapToEmber(m, goItem)
	name, ok := back.Get(value.ObjValue(m.NewString("name")))
	require.True(t, ok)
	got, ok := asString(name)
	require.True(t, ok)
	require.Equal(t, "widget", got)
}

func TestGoValueToEmberNestedList(t *testing.T) {
	m := vm.New()
	v := goValueToEmber(m, []interface{}{"a", float64(2), nil})
	list, ok := v.AsObj().(*value.List)
	require.True(t, ok)
	require.Len(t, list.Elements, 3)
	s, ok := asString(list.Elements[0])
	require.True(t, ok)
	require.Equal(t, "a", s)
	require.Equal(t, float64(2), list.Elements[1].AsNumber())
	require.True(t, list.Elements[2].IsNil())
}
