package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

func openTestDB(t *testing.T) (*vm.VM, *value.Instance) {
	t.Helper()
	m := vm.New()
	ns := m.NewNamespace("db")
	registerDB(m, ns)

	openField, ok := ns.GetField("open")
	require.True(t, ok)
	open := openField.AsObj().(*value.Native)

	result, err := open.Fn([]value.Value{value.ObjValue(m.NewString(":memory:"))})
	require.NoError(t, err)
	inst, ok := result.AsObj().(*value.Instance)
	require.True(t, ok)
	openFlag, _ := inst.GetField("open")
	require.True(t, openFlag.AsBool())
	return m, inst
}

func instField(t *testing.T, inst *value.Instance, name string) value.NativeFunc {
	t.Helper()
	v, ok := inst.GetField(name)
	require.True(t, ok, "missing field %q", name)
	n, ok := v.AsObj().(*value.Native)
	require.True(t, ok)
	return n.Fn
}

func asMap(t *testing.T, v value.Value) *value.Map {
	t.Helper()
	m, ok := v.AsObj().(*value.Map)
	require.True(t, ok)
	return m
}

func TestDBExecCreatesTableAndInserts(t *testing.T) {
	m, inst := openTestDB(t)
	exec := instField(t, inst, "exec")

	create, createErr := exec([]value.Value{value.ObjValue(m.NewString(
		"create table items (id integer primary key, name text)"))})
	require.NoError(t, createErr)
	createMap := asMap(t, create)
	ok, _ := createMap.Get(value.ObjValue(m.NewString("ok")))
	require.True(t, ok.AsBool())

	insert, insertErr := exec([]value.Value{
		value.ObjValue(m.NewString("insert into items (name) values (?)")),
		value.ObjValue(m.NewString("widget")),
	})
	require.NoError(t, insertErr)
	insertMap := asMap(t, insert)
	ok, _ = insertMap.Get(value.ObjValue(m.NewString("ok")))
	require.True(t, ok.AsBool())
	affected, _ := insertMap.Get(value.ObjValue(m.NewString("rows_affected")))
	require.Equal(t, float64(1), affected.AsNumber())
}

func TestDBQueryReturnsListOfMaps(t *testing.T) {
	m, inst := openTestDB(t)
	exec := instField(t, inst, "exec")
	query := instField(t, inst, "query")

	_, err := exec([]value.Value{value.ObjValue(m.NewString(
		"create table items (id integer primary key, name text)"))})
	require.NoError(t, err)
	_, err = exec([]value.Value{
		value.ObjValue(m.NewString("insert into items (name) values (?)")),
		value.ObjValue(m.NewString("widget")),
	})
	require.NoError(t, err)

	res, err := query([]value.Value{value.ObjValue(m.NewString("select id, name from items"))})
	require.NoError(t, err)
	resMap := asMap(t, res)

	ok, _ := resMap.Get(value.ObjValue(m.NewString("ok")))
	require.True(t, ok.AsBool())

	rowsVal, _ := resMap.Get(value.ObjValue(m.NewString("rows")))
	rows, ok2 := rowsVal.AsObj().(*value.List)
	require.True(t, ok2)
	require.Len(t, rows.Elements, 1)

	row := asMap(t, rows.Elements[0])
	name, _ := row.Get(value.ObjValue(m.NewString("name")))
	got, ok3 := asString(name)
	require.True(t, ok3)
	require.Equal(t, "widget", got)
}

func TestDBCloseMarksClosed(t *testing.T) {
	m, inst := openTestDB(t)
	closeFn := instField(t, inst, "close")
	exec := instField(t, inst, "exec")

	_, err := closeFn(nil)
	require.NoError(t, err)
	openFlag, _ := inst.GetField("open")
	require.False(t, openFlag.AsBool())

	res, err := exec([]value.Value{value.ObjValue(m.NewString("select 1"))})
	require.NoError(t, err)
	resMap := asMap(t, res)
	ok, _ := resMap.Get(value.ObjValue(m.NewString("ok")))
	require.False(t, ok.AsBool())
}
