package stdlib

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

// registerDB installs the "db" namespace: db.open(path) returns a
// handle Instance whose exec/query/close fields are Natives closing
// directly over the opened *sql.DB (spec.md component 10, SPEC_FULL.md
// §3). Grounded on the teacher's sqlite_open/sqlite_exec/sqlite_query
// natives, but the per-handle closure takes the place of the teacher's
// process-wide DbHandles table: Ember method dispatch on an Instance
// field never passes the receiver to a Native (spec.md §4.7.4's
// INVOKE shortcut only fixes up slot0 for Closures), so each handle's
// *sql.DB has to live in the closure rather than be looked up by id.
func registerDB(m *vm.VM, ns *value.Module) {
	dbClass := m.NewClass("DbHandle")

	ns.SetField("open", value.ObjValue(m.NewNative("open", 1, func(args []value.Value) (value.Value, error) {
		path, ok := asString(args[0])
		if !ok {
			return value.Value{}, fmt.Errorf("db.open expects a string path")
		}
		db, err := sql.Open("sqlite", path)
		open := err == nil
		if open {
			if err = db.Ping(); err != nil {
				open = false
			}
		}
		inst := m.NewInstance(dbClass)
		inst.SetField("path", value.ObjValue(m.NewString(path)))
		inst.SetField("open", value.BoolValue(open))
		inst.SetField("exec", value.ObjValue(m.NewNative("exec", -1, func(args []value.Value) (value.Value, error) {
			if !open {
				return execResult(m, false, "database is closed", 0, 0), nil
			}
			query, qargs, err := sqlArgs(args)
			if err != nil {
				return value.Value{}, err
			}
			result, err := db.Exec(query, qargs...)
			if err != nil {
				return execResult(m, false, err.Error(), 0, 0), nil
			}
			affected, _ := result.RowsAffected()
			lastID, _ := result.LastInsertId()
			return execResult(m, true, "", affected, lastID), nil
		})))
		inst.SetField("query", value.ObjValue(m.NewNative("query", -1, func(args []value.Value) (value.Value, error) {
			if !open {
				return queryResult(m, false, "database is closed", nil, nil), nil
			}
			query, qargs, err := sqlArgs(args)
			if err != nil {
				return value.Value{}, err
			}
			rows, err := db.Query(query, qargs...)
			if err != nil {
				return queryResult(m, false, err.Error(), nil, nil), nil
			}
			defer rows.Close()

			cols, _ := rows.Columns()
			var rowMaps []value.Value
			for rows.Next() {
				dest := make([]interface{}, len(cols))
				ptrs := make([]interface{}, len(cols))
				for i := range dest {
					ptrs[i] = &dest[i]
				}
				if err := rows.Scan(ptrs...); err != nil {
					return queryResult(m, false, err.Error(), nil, nil), nil
				}
				row := m.NewMap()
				for i, col := range cols {
					row.Put(value.ObjValue(m.NewString(col)), goToEmber(m, dest[i]))
				}
				rowMaps = append(rowMaps, value.ObjValue(row))
			}
			colVals := make([]value.Value, len(cols))
			for i, c := range cols {
				colVals[i] = value.ObjValue(m.NewString(c))
			}
			return queryResult(m, true, "", colVals, rowMaps), nil
		})))
		inst.SetField("close", value.ObjValue(m.NewNative("close", 0, func(args []value.Value) (value.Value, error) {
			if open {
				db.Close()
				open = false
				inst.SetField("open", value.BoolValue(false))
			}
			return value.NilValue(), nil
		})))
		return value.ObjValue(inst), nil
	})))
}

func execResult(m *vm.VM, ok bool, errMsg string, affected, lastID int64) value.Value {
	res := m.NewMap()
	res.Put(value.ObjValue(m.NewString("ok")), value.BoolValue(ok))
	res.Put(value.ObjValue(m.NewString("error")), value.ObjValue(m.NewString(errMsg)))
	res.Put(value.ObjValue(m.NewString("rows_affected")), value.NumberValue(float64(affected)))
	res.Put(value.ObjValue(m.NewString("last_insert_id")), value.NumberValue(float64(lastID)))
	return value.ObjValue(res)
}

func queryResult(m *vm.VM, ok bool, errMsg string, cols, rows []value.Value) value.Value {
	res := m.NewMap()
	res.Put(value.ObjValue(m.NewString("ok")), value.BoolValue(ok))
	res.Put(value.ObjValue(m.NewString("error")), value.ObjValue(m.NewString(errMsg)))
	res.Put(value.ObjValue(m.NewString("columns")), value.ObjValue(m.NewList(cols)))
	res.Put(value.ObjValue(m.NewString("rows")), value.ObjValue(m.NewList(rows)))
	return value.ObjValue(res)
}

// sqlArgs splits a call's arguments into the query string and its bind
// parameters, converting each Ember Value to the Go type database/sql
// expects.
func sqlArgs(args []value.Value) (string, []interface{}, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("expected a SQL query string")
	}
	query, ok := asString(args[0])
	if !ok {
		return "", nil, fmt.Errorf("expected a SQL query string, got %s", value.TypeName(args[0]))
	}
	out := make([]interface{}, len(args)-1)
	for i, v := range args[1:] {
		switch {
		case v.IsNil():
			out[i] = nil
		case v.IsBool():
			out[i] = v.AsBool()
		case v.IsNumber():
			out[i] = v.AsNumber()
		default:
			if s, ok := asString(v); ok {
				out[i] = s
			} else {
				out[i] = value.ToString(v)
			}
		}
	}
	return query, out, nil
}

// goToEmber converts one database/sql-scanned column value into an
// Ember Value, matching the teacher's sqlite_query row conversion
// (nil/int64/float64/string/[]byte, default stringified).
func goToEmber(m *vm.VM, v interface{}) value.Value {
	switch tv := v.(type) {
	case nil:
		return value.NilValue()
	case int64:
		return value.NumberValue(float64(tv))
	case float64:
		return value.NumberValue(tv)
	case string:
		return value.ObjValue(m.NewString(tv))
	case []byte:
		return value.ObjValue(m.NewString(string(tv)))
	default:
		return value.ObjValue(m.NewString(fmt.Sprintf("%v", tv)))
	}
}
