package vm

import (
	"path"
	"strings"

	"github.com/emberlang/ember/internal/value"
)

// loadModule resolves an IMPORT_MODULE path to a *value.Module,
// memoizing by path so repeated imports of the same module within a
// script (or across coroutines) share one object (spec.md §4.6.7).
// Actual source loading/compiling of the target file is the caller's
// (cmd/ember's) responsibility: the VM only needs a stable handle with
// a derived name and an export table that native/host code can
// populate before the importing script runs.
func (vm *VM) loadModule(importPath string) *value.Module {
	if mod, ok := vm.modules[importPath]; ok {
		return mod
	}
	name := path.Base(importPath)
	name = strings.TrimSuffix(name, path.Ext(name))
	mod := value.NewModule(importPath, name)
	mod.Imported = true
	vm.adopt(mod, 0)
	vm.modules[importPath] = mod
	return mod
}
