package vm

import (
	"github.com/emberlang/ember/internal/chunk"
	"github.com/emberlang/ember/internal/value"
)

// callValue dispatches `CALL argc` (spec.md §4.7.4): callee sits argc
// slots below the top of vm.current's stack. Every branch below must,
// once the call completes, leave argc fewer values on the stack than it
// found (argc+1
// consumed, 1 result produced), matching every other call shape.
func (vm *VM) callValue(callee value.Value, argc int) error {
	if !callee.IsObj() {
		return vm.callError("'%s' is not callable", value.TypeName(callee))
	}
	switch c := callee.AsObj().(type) {
	case *value.Closure:
		if c.Function.IsCoroutine {
			return vm.wrapCoroutine(c, argc)
		}
		return vm.call(c, argc)
	case *value.Native:
		return vm.callNative(c, argc)
	case *value.BoundMethod:
		vm.current.stack[vm.current.stackTop-argc-1] = c.Receiver
		return vm.invokeMethod(c.Method, argc)
	case *value.Class:
		return vm.instantiate(c, argc)
	case *Coroutine:
		return vm.resumeCoroutine(c, argc)
	default:
		return vm.callError("'%s' is not callable", value.TypeName(callee))
	}
}

// wrapCoroutine handles `CALL` on a Closure whose Function is declared
// `coroutine fun` (spec.md §4.6.8, concrete scenario 5): rather than
// running the body, it produces a fresh, unstarted Coroutine wrapping
// the closure, exactly as if `coroutine gen` had been written at this
// call site — the body only starts running on the *first* later call
// of the returned Coroutine. This keeps `gen()` (bare call) and
// `coroutine gen` (explicit keyword) producing the same kind of value
// for a coroutine-declared function; see DESIGN.md.
func (vm *VM) wrapCoroutine(c *value.Closure, argc int) error {
	if argc != 0 {
		return vm.callError("coroutine '%s' takes no arguments when called directly; pass arguments to its first resume instead", c.Function.Name)
	}
	vm.popN(argc + 1)
	vm.push(value.ObjValue(vm.newCoroutineObj(value.ObjValue(c))))
	return nil
}

// call pushes a new CallFrame for closure onto vm.current, checking
// arity (spec.md §4.7.4). slot0 of the new frame is the closure value
// itself (already on the stack at argc below the args, per callValue's
// convention); the caller leaves it there on purpose — the frame's
// locals start at that slot.
func (vm *VM) call(closure *value.Closure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.callError("expected %d arguments but got %d", closure.Function.Arity, argc)
	}
	co := vm.current
	if co.frameCount == FramesMax {
		return vm.callError("stack overflow")
	}
	co.frames[co.frameCount] = CallFrame{
		Closure: closure,
		IP:      0,
		Slots:   co.stackTop - argc - 1,
	}
	co.frameCount++
	return nil
}

func (vm *VM) callNative(n *value.Native, argc int) error {
	if n.Arity >= 0 && argc != n.Arity {
		return vm.callError("%s expects %d arguments but got %d", n.Name, n.Arity, argc)
	}
	co := vm.current
	args := make([]value.Value, argc)
	copy(args, co.stack[co.stackTop-argc:co.stackTop])
	result, err := n.Fn(args)
	vm.popN(argc + 1)
	if err != nil {
		return vm.callError("%s", err)
	}
	vm.push(result)
	return nil
}

// invoke combines load-property + call (spec.md §4.7.4): an Instance
// field holding a callable takes priority over the method table, so
// script code can shadow a method with an instance-local closure.
func (vm *VM) invoke(name string, argc int, safe bool) error {
	receiver := vm.peek(argc)
	if safe && receiver.IsNil() {
		vm.popN(argc + 1)
		vm.push(value.NilValue())
		return nil
	}
	if !receiver.IsObj() {
		return vm.callError("cannot invoke '%s' on a %s", name, value.TypeName(receiver))
	}
	if inst, ok := receiver.AsObj().(*value.Instance); ok {
		if field, ok := inst.GetField(name); ok {
			vm.current.stack[vm.current.stackTop-argc-1] = field
			return vm.callValue(field, argc)
		}
		if method, ok := inst.GetMethod(name); ok {
			return vm.invokeMethod(method, argc)
		}
		return vm.callError("undefined property '%s'", name)
	}
	resolver, ok := receiver.AsObj().(value.MethodResolver)
	if !ok {
		return vm.callError("cannot invoke '%s' on a %s", name, value.TypeName(receiver))
	}
	method, ok := resolver.GetMethod(name)
	if !ok {
		return vm.callError("undefined property '%s'", name)
	}
	return vm.invokeMethod(method, argc)
}

// invokeMethod calls an already-resolved method directly, without
// allocating a BoundMethod (spec.md §4.7.4's INVOKE/SUPER_INVOKE
// shortcut) — slot0 (the receiver) is assumed already placed by the
// caller.
func (vm *VM) invokeMethod(method value.Value, argc int) error {
	if !method.IsObj() {
		return vm.callError("method is not callable")
	}
	switch m := method.AsObj().(type) {
	case *value.Closure:
		return vm.call(m, argc)
	case *value.Native:
		return vm.callNative(m, argc)
	default:
		return vm.callError("method is not callable")
	}
}

// instantiate handles `CALL argc` on a Class (spec.md §4.7.4): slot0
// becomes a fresh Instance, and init (if present) runs with it as the
// receiver; a class with no init requires zero constructor arguments.
func (vm *VM) instantiate(cls *value.Class, argc int) error {
	inst := vm.newInstance(cls)
	vm.current.stack[vm.current.stackTop-argc-1] = value.ObjValue(inst)
	if init, ok := cls.GetMethod("init"); ok {
		return vm.invokeMethod(init, argc)
	}
	if argc != 0 {
		return vm.callError("%s takes no arguments", cls.Name)
	}
	return nil
}

// resumeCoroutine implements `CALL` on a Coroutine (spec.md §4.7.5):
// first resume starts the entry callable as the coroutine's first
// frame; subsequent resumes push the resume argument as the value of
// the suspending `yield`. Either way control transfers synchronously —
// this call does not return until the callee yields or its frames
// empty.
func (vm *VM) resumeCoroutine(co *Coroutine, argc int) error {
	if argc > 1 {
		return vm.callError("coroutine resume takes 0 or 1 argument")
	}
	if co.done {
		return vm.callError("cannot resume a done coroutine")
	}
	var arg value.Value
	hadArg := argc == 1
	if hadArg {
		arg = vm.pop()
	}
	vm.pop() // the coroutine callee value itself

	resumer := vm.current
	co.transfer = resumer
	vm.current = co

	if !co.started {
		co.started = true
		vm.push(co.entry)
		callArgc := 0
		if hadArg {
			vm.push(arg)
			callArgc = 1
		}
		if err := vm.callValue(co.entry, callArgc); err != nil {
			return err
		}
	} else {
		if hadArg {
			vm.push(arg)
		} else {
			vm.push(value.NilValue())
		}
	}

	if err := vm.run(co, 0); err != nil {
		return err
	}
	vm.current = resumer
	return nil
}

// completeCoroutine handles a Coroutine's frames emptying without a
// final yield (spec.md §4.7.5: "mark done, implicitly yield nil").
// Only coroutines currently mid-resume (transfer != nil) get this
// treatment; the main Coroutine reaching frame 0 is ordinary script
// completion and needs no special handling.
func (vm *VM) completeCoroutine(co *Coroutine) error {
	if co.transfer == nil {
		return nil
	}
	co.done = true
	target := co.transfer
	vm.current = target
	vm.push(value.NilValue())
	return nil
}

func (vm *VM) newCoroutineObj(entry value.Value) *Coroutine {
	co := newCoroutine(entry)
	vm.adopt(co, 0)
	return co
}

// endClass runs OP_END_CLASS: if the class (still on top of the
// current Coroutine's stack) has a static `init`, it runs synchronously
// to completion before control returns to the main loop — the
// compiler's very next instruction is a plain POP expecting only the
// class value to remain (spec.md §4.6.6).
func (vm *VM) endClass(home *Coroutine) error {
	cls := vm.peek(0).AsObj().(*value.Class)
	init, ok := cls.Metaclass.GetMethod("init")
	if !ok {
		return nil
	}
	closure, ok := init.AsObj().(*value.Closure)
	if !ok {
		return nil
	}
	priorFrames := home.frameCount
	vm.push(value.ObjValue(closure))
	if err := vm.call(closure, 0); err != nil {
		return err
	}
	if err := vm.run(home, priorFrames); err != nil {
		return err
	}
	vm.pop() // discard the static initializer's return value
	return nil
}

// ---- property / subscript access ----

func (vm *VM) loadProperty(ch *chunk.Chunk, frame *CallFrame, safe bool) error {
	idx := ch.Code[frame.IP]
	frame.IP++
	name := ch.Constants[idx].AsObj().(*value.String)
	obj := vm.pop()
	if safe && obj.IsNil() {
		vm.push(value.NilValue())
		return nil
	}
	if !obj.IsObj() {
		return vm.runtimeError(frame, "cannot read property '%s' of a %s", name.Chars, value.TypeName(obj))
	}
	if fa, ok := obj.AsObj().(value.FieldAccessor); ok {
		if v, ok := fa.GetField(name.Chars); ok {
			vm.push(v)
			return nil
		}
	}
	if mr, ok := obj.AsObj().(value.MethodResolver); ok {
		if m, ok := mr.GetMethod(name.Chars); ok {
			vm.push(value.ObjValue(value.NewBoundMethod(obj, m)))
			return nil
		}
	}
	return vm.runtimeError(frame, "undefined property '%s'", name.Chars)
}

func (vm *VM) storeProperty(ch *chunk.Chunk, frame *CallFrame, safe bool) error {
	idx := ch.Code[frame.IP]
	frame.IP++
	name := ch.Constants[idx].AsObj().(*value.String)
	val := vm.pop()
	obj := vm.pop()
	if safe && obj.IsNil() {
		vm.push(value.NilValue())
		return nil
	}
	fa, ok := obj.AsObj().(value.FieldAccessor)
	if !ok {
		return vm.runtimeError(frame, "cannot set property '%s' on a %s", name.Chars, value.TypeName(obj))
	}
	fa.SetField(name.Chars, val)
	vm.push(val)
	return nil
}

func (vm *VM) subscriptGet(obj, idx value.Value) (value.Value, error) {
	if !obj.IsObj() {
		return value.Value{}, notSubscriptable(obj)
	}
	sub, ok := obj.AsObj().(value.Subscriptable)
	if !ok {
		return value.Value{}, notSubscriptable(obj)
	}
	return sub.GetSubscript(idx)
}

func (vm *VM) subscriptSet(obj, idx, val value.Value) error {
	if !obj.IsObj() {
		return notSubscriptable(obj)
	}
	sub, ok := obj.AsObj().(value.Subscriptable)
	if !ok {
		return notSubscriptable(obj)
	}
	return sub.SetSubscript(idx, val)
}

func notSubscriptable(v value.Value) error {
	return vmError("'%s' does not support subscripting", value.TypeName(v))
}

func (vm *VM) makeIterator(v value.Value) (*value.Iterator, error) {
	if !v.IsObj() {
		return nil, vmError("'%s' is not iterable", value.TypeName(v))
	}
	it, ok := v.AsObj().(value.Iterable)
	if !ok {
		return nil, vmError("'%s' is not iterable", value.TypeName(v))
	}
	iter, err := it.MakeIterator()
	if err != nil {
		return nil, err
	}
	vm.adopt(iter, 0)
	return iter, nil
}
