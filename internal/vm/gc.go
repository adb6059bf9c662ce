package vm

import (
	"github.com/emberlang/ember/internal/table"
	"github.com/emberlang/ember/internal/value"
)

// collectGarbage runs one tri-colour mark/gray-queue/sweep pass over
// the intrusive all-objects list, grounded on Archer's gc.c
// (gc_attempt_collection, threshold doubling, gray stack). It lives
// here rather than its own package because its root set is VM/
// coroutine state; see DESIGN.md.
func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.sweepStrings()
	vm.sweep()
	vm.nextGC = vm.bytesAllocated * 2
	if vm.nextGC < initialGCThreshold {
		vm.nextGC = initialGCThreshold
	}
}

// markRoots walks spec.md §4.8's enumerated root set: every live
// Coroutine's value stack and CallFrame closures, every open upvalue,
// the globals table, the interned "init" string, and the current
// Coroutine plus its transfer chain. The two compile-time roots
// (active Compiler's enclosing chain, current ClassCompiler chain) have
// no runtime analogue — compilation fully completes, producing a
// closed Function tree with no live Compiler, before the VM or its GC
// ever runs (see DESIGN.md Open Questions).
func (vm *VM) markRoots() {
	vm.grayStack = vm.grayStack[:0]
	vm.markObject(vm.main)
	if vm.current != vm.main {
		vm.markObject(vm.current)
	}
	for co := vm.current.transfer; co != nil; co = co.transfer {
		vm.markObject(co)
	}
	vm.markTable(vm.globals)
	if vm.initString != nil {
		vm.markObject(vm.initString)
	}
	for _, mod := range vm.modules {
		vm.markObject(mod)
	}
}

func (vm *VM) markTable(t *table.Table) {
	for _, k := range t.Keys() {
		vm.markValue(k)
		if v, ok := t.Get(k); ok {
			vm.markValue(v)
		}
	}
}

func (vm *VM) markValue(v value.Value) {
	if v.IsObj() {
		vm.markObject(v.AsObj())
	}
}

func (vm *VM) markObject(o value.Object) {
	if o == nil {
		return
	}
	h := o.(value.HeaderHolder).Head()
	if h.Marked {
		return
	}
	h.Marked = true
	vm.grayStack = append(vm.grayStack, o)
}

// traceReferences drains the gray stack, asking each object to mark
// whatever it references via the optional Traverser vtable slot
// (spec.md §4.8's Mark algorithm).
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		n := len(vm.grayStack) - 1
		o := vm.grayStack[n]
		vm.grayStack = vm.grayStack[:n]
		if t, ok := o.(value.Traverser); ok {
			t.Traverse(vm.markValue)
		}
	}
}

// sweepStrings removes unmarked entries from the intern table before
// the general sweep, mirroring Archer's table_remove_white step so a
// dead string's interned slot does not keep it falsely reachable.
func (vm *VM) sweepStrings() {
	vm.strings.RemoveWhite(func(o value.Object) bool {
		return o.(value.HeaderHolder).Head().Marked
	})
}

// sweep walks the intrusive all-objects list, unlinking every unmarked
// node and clearing the mark bit on survivors for the next cycle
// (spec.md §4.8's Sweep algorithm). Ember has no explicit free(): once
// a node is unlinked nothing in the interpreter still points at it, so
// Go's own collector reclaims it on its own schedule.
func (vm *VM) sweep() {
	var prev value.Object
	cur := vm.objects
	for cur != nil {
		h := cur.(value.HeaderHolder).Head()
		next := h.Next
		if h.Marked {
			h.Marked = false
			prev = cur
		} else if prev == nil {
			vm.objects = next
		} else {
			prev.(value.HeaderHolder).Head().Next = next
		}
		cur = next
	}
}
