package vm

import (
	"unsafe"

	"github.com/emberlang/ember/internal/value"
)

// slotOf recovers the absolute stack index a Location pointer refers
// to, so the open-upvalue list (ordered by slot, not by pointer value)
// can be walked and compared numerically.
func slotOf(home *Coroutine, loc *value.Value) int {
	base := unsafe.Pointer(&home.stack[0])
	return int((uintptr(unsafe.Pointer(loc)) - uintptr(base)) / unsafe.Sizeof(home.stack[0]))
}

// captureUpvalue returns the open upvalue for the stack slot `absSlot`
// (an absolute index into home.stack) belonging to home, creating one
// and inserting it into home's singly-linked open-upvalue list if none
// exists yet (spec.md §3 invariant 4: closures sharing a local share
// exactly one Upvalue). The list is kept sorted descending by slot, as
// value.Upvalue.NextOpen documents, so closeUpvalues can stop early.
func (vm *VM) captureUpvalue(home *Coroutine, absSlot int) *value.Upvalue {
	var prev *value.Upvalue
	cur := home.openUpvalues
	for cur != nil && slotOf(home, cur.Location) > absSlot {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && slotOf(home, cur.Location) == absSlot {
		return cur
	}
	created := &value.Upvalue{Location: &home.stack[absSlot]}
	created.NextOpen = cur
	if prev == nil {
		home.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	vm.adopt(created, 0)
	return created
}

// closeUpvalues closes every open upvalue at or above fromSlot, copying
// each stack value into the Upvalue's own storage (spec.md §3 invariant
// 4's "close on scope exit / return" rule) and unlinking it from home's
// open list.
func (vm *VM) closeUpvalues(home *Coroutine, fromSlot int) {
	for home.openUpvalues != nil && slotOf(home, home.openUpvalues.Location) >= fromSlot {
		uv := home.openUpvalues
		uv.Close()
		home.openUpvalues = uv.NextOpen
	}
}
