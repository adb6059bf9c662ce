package stdlib

import (
	"github.com/google/uuid"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

// registerUUID installs the "uuid" namespace: uuid.v4() returns a
// random RFC 4122 string, grounded on the teacher's one direct
// google/uuid call site (cmd/noxy-plugin-dynamodb's client-ID minting).
func registerUUID(m *vm.VM, ns *value.Module) {
	ns.SetField("v4", value.ObjValue(m.NewNative("v4", 0, func(args []value.Value) (value.Value, error) {
		return value.ObjValue(m.NewString(uuid.New().String())), nil
	})))
}
