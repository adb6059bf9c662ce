// Package stdlib is Ember's built-in module set (spec.md component 10):
// the small collection of namespaced native functions every script gets
// for free beyond the bare language core in internal/vm. It mirrors the
// Archer reference interpreter's single native-registration entry point
// (library.c's table), generalised from the teacher's "every native is
// a flat global" layout into namespace objects (db, uuid, regex, bytes,
// fmt, cloud) so that e.g. `db.open(...)` reads as a method call rather
// than a `db_open(...)` global.
package stdlib

import (
	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

// Register binds every stdlib namespace into m's globals. cmd/ember
// calls this once per VM, before compiling and running the script.
func Register(m *vm.VM) {
	db := m.NewNamespace("db")
	m.DefineGlobal("db", value.ObjValue(db))
	registerDB(m, db)

	id := m.NewNamespace("uuid")
	m.DefineGlobal("uuid", value.ObjValue(id))
	registerUUID(m, id)

	regex := m.NewNamespace("regex")
	m.DefineGlobal("regex", value.ObjValue(regex))
	bytesNS := m.NewNamespace("bytes")
	m.DefineGlobal("bytes", value.ObjValue(bytesNS))
	fmtNS := m.NewNamespace("fmt")
	m.DefineGlobal("fmt", value.ObjValue(fmtNS))
	registerText(m, regex, bytesNS, fmtNS)

	cloud := m.NewNamespace("cloud")
	m.DefineGlobal("cloud", value.ObjValue(cloud))
	registerCloud(m, cloud)
}
