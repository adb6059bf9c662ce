package vm

import "github.com/emberlang/ember/internal/value"

// adopt links a freshly-built Object into the intrusive all-objects
// list and accounts its size for the GC threshold (spec.md §4.8's
// allocator contract). size is an approximate byte cost; exactness
// does not matter, only that the threshold doubles in proportion to
// real allocation pressure.
func (vm *VM) adopt(o value.Object, size int) value.Object {
	o.(value.HeaderHolder).Head().Next = vm.objects
	vm.objects = o
	vm.bytesAllocated += size
	if vm.stressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
	return o
}

// newString interns s: spec.md §3 requires byte-equal strings to
// share one object so Equal/Hash32 reduce to pointer comparisons
// (internal/table.FindString backs this, exactly as it does for the
// teacher's string table).
func (vm *VM) newString(s string) *value.String {
	return vm.internString(s)
}

func (vm *VM) internString(s string) *value.String {
	probe := value.NewString(s)
	if found := vm.strings.FindString(s, probe.Hash()); found != nil {
		return found
	}
	vm.adopt(probe, len(s))
	vm.strings.Put(value.ObjValue(probe), value.BoolValue(true))
	return probe
}

func (vm *VM) newClosure(fn *value.Function) *value.Closure {
	c := value.NewClosure(fn)
	vm.adopt(c, 8*fn.UpvalueCount)
	return c
}

func (vm *VM) newClass(name string) *value.Class {
	cls := value.NewClass(name)
	vm.adopt(cls.Metaclass, 0)
	vm.adopt(cls, 0)
	return cls
}

func (vm *VM) newInstance(cls *value.Class) *value.Instance {
	inst := value.NewInstance(cls)
	vm.adopt(inst, 0)
	return inst
}

func (vm *VM) newList(elems []value.Value) *value.List {
	l := value.NewList(elems)
	vm.adopt(l, len(elems)*16)
	return l
}

func (vm *VM) newTuple(elems []value.Value) *value.Tuple {
	t := value.NewTuple(elems)
	vm.adopt(t, len(elems)*16)
	return t
}

func (vm *VM) newMap() *value.Map {
	m := value.NewMap()
	vm.adopt(m, 0)
	return m
}

func (vm *VM) newRange(begin, end, step float64) *value.Range {
	r := value.NewRange(begin, end, step)
	vm.adopt(r, 0)
	return r
}
