// Package vm implements Ember's bytecode interpreter: a giant-switch
// dispatch loop over CallFrames, generalising the teacher's
// estevaofon-noxy/internal/vm/vm.go (frame array, stack array, shared
// globals) with the call/invoke/inherit/coroutine-switch semantics
// spec.md §4.7 describes. Coroutines are an explicit switchable
// (stack, frames, open-upvalues) triple rather than goroutines, since
// spec.md §5 requires strict cooperative single-threaded scheduling.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/emberlang/ember/internal/chunk"
	"github.com/emberlang/ember/internal/table"
	"github.com/emberlang/ember/internal/value"
)

const (
	// StackMax and FramesMax are per-Coroutine limits (spec.md §4.7.1);
	// the teacher's vm.go uses StackMax=2048, but spec.md fixes 512.
	StackMax  = 512
	FramesMax = 64

	initialGCThreshold = 1 << 20 // bytes, mirrors Archer's gc.c starting threshold
)

// CallFrame is one activation record on a Coroutine's frame stack
// (spec.md §4.7.1): the running Closure, its instruction pointer, and
// the base slot of its locals within the owning Coroutine's stack.
type CallFrame struct {
	Closure *value.Closure
	IP      int
	Slots   int
}

func (f *CallFrame) chunk() *chunk.Chunk {
	return f.Closure.Function.Chunk.(*chunk.Chunk)
}

// Coroutine is Ember's suspension unit (spec.md Glossary): its own
// fixed-size value stack and frame stack, its own open-upvalue list,
// started/done flags, and a transfer back-link to whichever Coroutine
// resumed it. It satisfies value.Object via an embedded value.Header
// exactly like every other heap type; it lives in package vm, next to
// the dispatch loop that runs it. Package value's own Coroutine and
// CallFrame types (internal/value/coroutine.go) are not used here.
type Coroutine struct {
	value.Header

	stack    [StackMax]value.Value
	stackTop int

	frames     [FramesMax]CallFrame
	frameCount int

	openUpvalues *value.Upvalue

	entry    value.Value // callable to run on first resume; unused afterwards
	started  bool
	done     bool
	transfer *Coroutine
}

func newCoroutine(entry value.Value) *Coroutine {
	return &Coroutine{entry: entry}
}

func (c *Coroutine) TypeName() string { return "Coroutine" }
func (c *Coroutine) ToString() string { return "<coroutine>" }

func (c *Coroutine) Traverse(mark func(value.Value)) {
	for i := 0; i < c.stackTop; i++ {
		mark(c.stack[i])
	}
	for i := 0; i < c.frameCount; i++ {
		mark(value.ObjValue(c.frames[i].Closure))
	}
	for uv := c.openUpvalues; uv != nil; uv = uv.NextOpen {
		mark(value.ObjValue(uv))
	}
	if !c.started {
		mark(c.entry)
	}
	if c.transfer != nil {
		mark(value.ObjValue(c.transfer))
	}
}

// VM is a single Ember interpreter instance. Per spec.md §5 there is
// exactly one VM and exactly one executing Coroutine at a time, so no
// field here needs locking.
type VM struct {
	main    *Coroutine
	current *Coroutine

	globals *table.Table
	strings *table.Table // string-intern table, shared across all chunks

	initString *value.String

	modules map[string]*value.Module

	Stdout io.Writer
	Stderr io.Writer

	// GC bookkeeping (internal/vm/gc.go).
	objects        value.Object
	bytesAllocated int
	nextGC         int
	grayStack      []value.Object
	stressGC       bool
}

// New creates a VM with stdout/stderr wired to the process streams.
func New() *VM {
	vm := &VM{
		globals: table.New(),
		strings: table.New(),
		modules: make(map[string]*value.Module),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		nextGC:  initialGCThreshold,
	}
	vm.initString = vm.internString("init")
	vm.main = newCoroutine(value.NilValue())
	vm.main.started = true
	vm.current = vm.main
	vm.defineNatives()
	return vm
}

// DefineGlobal binds name directly into the global table, used by
// internal/stdlib to register native functions and constants before a
// script runs.
func (vm *VM) DefineGlobal(name string, v value.Value) {
	vm.globals.Put(value.ObjValue(vm.internString(name)), v)
}

// NewString interns and GC-registers s, exported so internal/stdlib can
// build String values (error messages, query results, encoded output)
// without reaching into unexported allocator internals.
func (vm *VM) NewString(s string) *value.String {
	return vm.newString(s)
}

// NewNative wraps fn as a callable Native value, exported for
// internal/stdlib's builtin registration (spec.md component 10).
func (vm *VM) NewNative(name string, arity int, fn value.NativeFunc) *value.Native {
	return value.NewNative(name, arity, fn)
}

// NewNamespace builds a Module-shaped value used purely as a property
// bag of Natives (e.g. "db", "uuid", "regex"), grounded on the teacher's
// single native-registration entry point (library.c's table, mirrored by
// internal/stdlib/builtins.go's Register(vm)). Namespaces are adopted
// into the GC's object list like any other allocation.
func (vm *VM) NewNamespace(name string) *value.Module {
	ns := value.NewModule(name, name)
	vm.adopt(ns, 0)
	return ns
}

// NewInstance exposes instance allocation for stdlib types (db handles,
// cloud clients) that wrap a Go value behind Ember method calls.
func (vm *VM) NewInstance(cls *value.Class) *value.Instance {
	return vm.newInstance(cls)
}

// NewClass exposes class allocation so internal/stdlib can mint the
// small handle classes it needs (db connection, dynamodb client) without
// going through script-level `class` declarations.
func (vm *VM) NewClass(name string) *value.Class {
	return vm.newClass(name)
}

// NewList and NewMap expose collection allocation for stdlib functions
// that return Ember-native aggregate results (query rows, scan results).
func (vm *VM) NewList(elems []value.Value) *value.List {
	return vm.newList(elems)
}

func (vm *VM) NewMap() *value.Map {
	return vm.newMap()
}

// Interpret compiles-and-runs a top-level script Function (spec.md §2's
// compiler→VM boundary): it wraps fn in a Closure, pushes the initial
// frame on the main Coroutine, and runs the dispatch loop to completion.
func (vm *VM) Interpret(fn *value.Function) error {
	vm.registerConstants(fn)
	closure := vm.newClosure(fn)
	vm.current = vm.main
	vm.push(value.ObjValue(closure))
	if err := vm.call(closure, 0); err != nil {
		return err
	}
	return vm.run(vm.main, 0)
}

// registerConstants walks a freshly-compiled Function's constant pool
// (and every nested Function it references) so every compile-time
// object becomes reachable from the GC's intrusive list before any
// runtime allocation can trigger a collection (spec.md §4.8 root 5's
// "Function held by the compiler" root has no runtime analogue here
// since compilation fully completes before the VM ever runs — see
// DESIGN.md).
func (vm *VM) registerConstants(fn *value.Function) {
	seen := make(map[value.Object]bool)
	var walk func(value.Object)
	walk = func(o value.Object) {
		if o == nil || seen[o] {
			return
		}
		seen[o] = true
		vm.adopt(o, 0)
		if f, ok := o.(*value.Function); ok {
			ch := f.Chunk.(*chunk.Chunk)
			for i, c := range ch.Constants {
				if !c.IsObj() {
					continue
				}
				if s, ok := c.AsObj().(*value.String); ok {
					// swap the compiler's String for the interned one
					ch.Constants[i] = value.ObjValue(vm.internString(s.Chars))
					continue
				}
				walk(c.AsObj())
			}
		}
	}
	walk(fn)
}

// ---- stack primitives (operate on vm.current) ----

func (vm *VM) push(v value.Value) {
	co := vm.current
	co.stack[co.stackTop] = v
	co.stackTop++
}

func (vm *VM) pop() value.Value {
	co := vm.current
	co.stackTop--
	return co.stack[co.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	co := vm.current
	return co.stack[co.stackTop-1-distance]
}

func (vm *VM) popN(n int) {
	vm.current.stackTop -= n
}

// ---- run loop ----

// run executes home's dispatch loop until home's frame count drops to
// minFrameCount or vm.current switches away from home (a coroutine
// yield or implicit-yield-on-completion, spec.md §4.7.5) — whichever
// happens first. Callers recurse into run() for every control transfer
// that must block synchronously: the top-level Interpret call, a
// coroutine resume, and a synchronous static-initializer invocation
// from END_CLASS.
func (vm *VM) run(home *Coroutine, minFrameCount int) error {
	for vm.current == home && home.frameCount > minFrameCount {
		frame := &home.frames[home.frameCount-1]
		ch := frame.chunk()
		op := chunk.OpCode(ch.Code[frame.IP])
		frame.IP++

		switch op {
		case chunk.OpLoadConstant:
			idx := ch.Code[frame.IP]
			frame.IP++
			vm.push(ch.Constants[idx])

		case chunk.OpLoadTrue:
			vm.push(value.BoolValue(true))
		case chunk.OpLoadFalse:
			vm.push(value.BoolValue(false))
		case chunk.OpLoadNil:
			vm.push(value.NilValue())

		case chunk.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.BoolValue(value.Equal(a, b)))
		case chunk.OpNotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.BoolValue(!value.Equal(a, b)))
		case chunk.OpGreater, chunk.OpGreaterEqual, chunk.OpLess, chunk.OpLessEqual:
			if err := vm.compare(op, frame); err != nil {
				return err
			}

		case chunk.OpNot:
			vm.push(value.BoolValue(vm.pop().IsFalsy()))
		case chunk.OpNegate:
			v := vm.pop()
			if !v.IsNumber() {
				return vm.runtimeError(frame, "operand to unary '-' must be a number")
			}
			vm.push(value.NumberValue(-v.AsNumber()))
		case chunk.OpBitwiseNot:
			v := vm.pop()
			if !v.IsNumber() {
				return vm.runtimeError(frame, "operand to '~' must be a number")
			}
			vm.push(value.NumberValue(float64(^int64(v.AsNumber()))))
		case chunk.OpInc:
			v := vm.pop()
			if !v.IsNumber() {
				return vm.runtimeError(frame, "operand to '++' must be a number")
			}
			vm.push(value.NumberValue(v.AsNumber() + 1))
		case chunk.OpDec:
			v := vm.pop()
			if !v.IsNumber() {
				return vm.runtimeError(frame, "operand to '--' must be a number")
			}
			vm.push(value.NumberValue(v.AsNumber() - 1))

		case chunk.OpAdd:
			if err := vm.add(frame); err != nil {
				return err
			}
		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide, chunk.OpModulo, chunk.OpPower,
			chunk.OpBitwiseAnd, chunk.OpBitwiseOr, chunk.OpBitwiseXor,
			chunk.OpBitwiseLeftShift, chunk.OpBitwiseRightShift:
			if err := vm.arith(op, frame); err != nil {
				return err
			}

		case chunk.OpPrint:
			fmt.Fprintln(vm.Stdout, value.ToString(vm.pop()))

		case chunk.OpLoop:
			offset := vm.readShort(frame)
			frame.IP -= offset
		case chunk.OpJump:
			offset := vm.readShort(frame)
			frame.IP += offset
		case chunk.OpJumpIfFalse:
			offset := vm.readShort(frame)
			if vm.peek(0).IsFalsy() {
				frame.IP += offset
			}
		case chunk.OpPopJumpIfFalse:
			offset := vm.readShort(frame)
			if vm.pop().IsFalsy() {
				frame.IP += offset
			}
		case chunk.OpPopJumpIfEqual:
			offset := vm.readShort(frame)
			caseVal := vm.pop()
			control := vm.peek(0)
			if value.Equal(control, caseVal) {
				vm.pop()
				frame.IP += offset
			}
		case chunk.OpJumpIfNotNil:
			offset := vm.readShort(frame)
			if !vm.peek(0).IsNil() {
				frame.IP += offset
			}
		case chunk.OpPopLoopIfTrue:
			offset := vm.readShort(frame)
			if !vm.pop().IsFalsy() {
				frame.IP -= offset
			}

		case chunk.OpPop:
			vm.pop()
		case chunk.OpDup:
			vm.push(vm.peek(0))
		case chunk.OpDupTwo:
			a, b := vm.peek(1), vm.peek(0)
			vm.push(a)
			vm.push(b)
		case chunk.OpSwap:
			co := vm.current
			top := co.stackTop - 1
			co.stack[top], co.stack[top-1] = co.stack[top-1], co.stack[top]
		case chunk.OpSwapThree:
			co := vm.current
			top := co.stackTop - 1
			a, b, c := co.stack[top-2], co.stack[top-1], co.stack[top]
			co.stack[top-2], co.stack[top-1], co.stack[top] = c, a, b
		case chunk.OpSwapFour:
			co := vm.current
			top := co.stackTop - 1
			a, b, c, d := co.stack[top-3], co.stack[top-2], co.stack[top-1], co.stack[top]
			co.stack[top-3], co.stack[top-2], co.stack[top-1], co.stack[top] = d, a, b, c

		case chunk.OpDefineGlobal:
			name := ch.Constants[ch.Code[frame.IP]].AsObj().(*value.String)
			frame.IP++
			vm.globals.Put(value.ObjValue(name), vm.pop())
		case chunk.OpLoadGlobal:
			name := ch.Constants[ch.Code[frame.IP]].AsObj().(*value.String)
			frame.IP++
			v, ok := vm.globals.Get(value.ObjValue(name))
			if !ok {
				return vm.runtimeError(frame, "undefined variable '%s'", name.Chars)
			}
			vm.push(v)
		case chunk.OpStoreGlobal:
			name := ch.Constants[ch.Code[frame.IP]].AsObj().(*value.String)
			frame.IP++
			if _, ok := vm.globals.Get(value.ObjValue(name)); !ok {
				return vm.runtimeError(frame, "undefined variable '%s'", name.Chars)
			}
			vm.globals.Put(value.ObjValue(name), vm.peek(0))

		case chunk.OpLoadLocal:
			slot := int(ch.Code[frame.IP])
			frame.IP++
			vm.push(home.stack[frame.Slots+slot])
		case chunk.OpStoreLocal:
			slot := int(ch.Code[frame.IP])
			frame.IP++
			home.stack[frame.Slots+slot] = vm.peek(0)

		case chunk.OpLoadUpvalue:
			slot := int(ch.Code[frame.IP])
			frame.IP++
			vm.push(frame.Closure.Upvalues[slot].Get())
		case chunk.OpStoreUpvalue:
			slot := int(ch.Code[frame.IP])
			frame.IP++
			frame.Closure.Upvalues[slot].Set(vm.peek(0))

		case chunk.OpLoadProperty, chunk.OpLoadPropertySafe:
			if err := vm.loadProperty(ch, frame, op == chunk.OpLoadPropertySafe); err != nil {
				return err
			}
		case chunk.OpStoreProperty, chunk.OpStorePropertySafe:
			if err := vm.storeProperty(ch, frame, op == chunk.OpStorePropertySafe); err != nil {
				return err
			}

		case chunk.OpLoadSubscript, chunk.OpLoadSubscriptSafe:
			idx, obj := vm.pop(), vm.pop()
			if op == chunk.OpLoadSubscriptSafe && obj.IsNil() {
				vm.push(value.NilValue())
				break
			}
			v, err := vm.subscriptGet(obj, idx)
			if err != nil {
				return vm.runtimeError(frame, "%s", err)
			}
			vm.push(v)
		case chunk.OpStoreSubscript, chunk.OpStoreSubscriptSafe:
			val, idx, obj := vm.pop(), vm.pop(), vm.pop()
			if op == chunk.OpStoreSubscriptSafe && obj.IsNil() {
				vm.push(value.NilValue())
				break
			}
			if err := vm.subscriptSet(obj, idx, val); err != nil {
				return vm.runtimeError(frame, "%s", err)
			}
			vm.push(val)

		case chunk.OpClosure:
			idx := ch.Code[frame.IP]
			frame.IP++
			fn := ch.Constants[idx].AsObj().(*value.Function)
			closure := vm.newClosure(fn)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := ch.Code[frame.IP]
				index := ch.Code[frame.IP+1]
				frame.IP += 2
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(home, frame.Slots+int(index))
				} else {
					closure.Upvalues[i] = frame.Closure.Upvalues[index]
				}
			}
			vm.push(value.ObjValue(closure))
		case chunk.OpCloseUpvalue:
			vm.closeUpvalues(home, home.stackTop-1)
			vm.pop()

		case chunk.OpCall:
			argc := int(ch.Code[frame.IP])
			frame.IP++
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
		case chunk.OpInvoke, chunk.OpInvokeSafe:
			nameIdx := ch.Code[frame.IP]
			argc := int(ch.Code[frame.IP+1])
			frame.IP += 2
			name := ch.Constants[nameIdx].AsObj().(*value.String)
			if err := vm.invoke(name.Chars, argc, op == chunk.OpInvokeSafe); err != nil {
				return err
			}
		case chunk.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(home, frame.Slots)
			home.frameCount--
			if home.frameCount == 0 {
				if err := vm.completeCoroutine(home); err != nil {
					return err
				}
				return nil
			}
			home.stackTop = frame.Slots
			vm.push(result)

		case chunk.OpClass:
			idx := ch.Code[frame.IP]
			frame.IP++
			name := ch.Constants[idx].AsObj().(*value.String)
			vm.push(value.ObjValue(vm.newClass(name.Chars)))
		case chunk.OpMethod:
			idx := ch.Code[frame.IP]
			frame.IP++
			name := ch.Constants[idx].AsObj().(*value.String)
			method := vm.pop()
			cls := vm.peek(0).AsObj().(*value.Class)
			cls.Methods[name.Chars] = method
		case chunk.OpStaticMethod:
			idx := ch.Code[frame.IP]
			frame.IP++
			name := ch.Constants[idx].AsObj().(*value.String)
			method := vm.pop()
			cls := vm.peek(0).AsObj().(*value.Class)
			cls.Metaclass.Methods[name.Chars] = method
		case chunk.OpInherit:
			subVal := vm.pop()
			sub, ok := subVal.AsObj().(*value.Class)
			if !ok {
				return vm.runtimeError(frame, "class body is not a class")
			}
			supVal := vm.peek(0)
			sup, ok := supVal.AsObj().(*value.Class)
			if !ok {
				return vm.runtimeError(frame, "superclass must be a class")
			}
			for name, m := range sup.Methods {
				sub.Methods[name] = m
			}
			sub.Superclass = sup
		case chunk.OpGetSuper:
			idx := ch.Code[frame.IP]
			frame.IP++
			name := ch.Constants[idx].AsObj().(*value.String)
			super := vm.pop().AsObj().(*value.Class)
			this := vm.pop()
			method, ok := super.GetMethod(name.Chars)
			if !ok {
				return vm.runtimeError(frame, "undefined property '%s'", name.Chars)
			}
			vm.push(value.ObjValue(value.NewBoundMethod(this, method)))
		case chunk.OpSuperInvoke:
			idx := ch.Code[frame.IP]
			argc := int(ch.Code[frame.IP+1])
			frame.IP += 2
			name := ch.Constants[idx].AsObj().(*value.String)
			super := vm.pop().AsObj().(*value.Class)
			method, ok := super.GetMethod(name.Chars)
			if !ok {
				return vm.runtimeError(frame, "undefined property '%s'", name.Chars)
			}
			this := vm.peek(argc)
			home.stack[home.stackTop-argc-1] = this
			if err := vm.invokeMethod(method, argc); err != nil {
				return err
			}
		case chunk.OpEndClass:
			if err := vm.endClass(home); err != nil {
				return err
			}

		case chunk.OpCoroutine:
			callee := vm.pop()
			if !isCallable(callee) {
				return vm.runtimeError(frame, "coroutine requires a callable")
			}
			vm.push(value.ObjValue(vm.newCoroutineObj(callee)))
		case chunk.OpYield:
			v := vm.pop()
			if home.transfer == nil {
				return vm.runtimeError(frame, "yield outside a running coroutine")
			}
			target := home.transfer
			vm.current = target
			vm.push(v)

		case chunk.OpIterator:
			top := vm.pop()
			it, err := vm.makeIterator(top)
			if err != nil {
				return vm.runtimeError(frame, "%s", err)
			}
			vm.push(value.ObjValue(it))
		case chunk.OpForIterator:
			offset := vm.readShort(frame)
			it := vm.peek(0).AsObj().(*value.Iterator)
			if it.ReachedEnd() {
				vm.pop()
				frame.IP += offset
			} else {
				v := it.GetValue()
				it.Advance()
				vm.push(v)
			}

		case chunk.OpList:
			n := int(ch.Code[frame.IP])
			frame.IP++
			elems := make([]value.Value, n)
			copy(elems, home.stack[home.stackTop-n:home.stackTop])
			vm.popN(n)
			vm.push(value.ObjValue(vm.newList(elems)))
		case chunk.OpTuple:
			n := int(ch.Code[frame.IP])
			frame.IP++
			elems := make([]value.Value, n)
			copy(elems, home.stack[home.stackTop-n:home.stackTop])
			vm.popN(n)
			vm.push(value.ObjValue(vm.newTuple(elems)))
		case chunk.OpMap:
			n := int(ch.Code[frame.IP])
			frame.IP++
			m := vm.newMap()
			base := home.stackTop - 2*n
			for i := 0; i < n; i++ {
				k := home.stack[base+2*i]
				val := home.stack[base+2*i+1]
				m.Put(k, val)
			}
			vm.popN(2 * n)
			vm.push(value.ObjValue(m))
		case chunk.OpTupleUnpack:
			n := int(ch.Code[frame.IP])
			frame.IP++
			tup, ok := vm.pop().AsObj().(*value.Tuple)
			if !ok {
				return vm.runtimeError(frame, "cannot unpack a non-tuple value")
			}
			if len(tup.Elements) != n {
				return vm.runtimeError(frame, "expected a %d-element tuple, got %d", n, len(tup.Elements))
			}
			for _, e := range tup.Elements {
				vm.push(e)
			}

		case chunk.OpRange:
			step := vm.pop()
			end := vm.pop()
			begin := vm.pop()
			if !begin.IsNumber() || !end.IsNumber() || !step.IsNumber() {
				return vm.runtimeError(frame, "range bounds must be numbers")
			}
			vm.push(value.ObjValue(vm.newRange(begin.AsNumber(), end.AsNumber(), step.AsNumber())))
		case chunk.OpBuildString:
			n := int(ch.Code[frame.IP])
			frame.IP++
			var sb []byte
			for i := n; i > 0; i-- {
				sb = append(sb, value.ToString(vm.peek(i-1))...)
			}
			vm.popN(n)
			vm.push(value.ObjValue(vm.newString(string(sb))))

		case chunk.OpImportModule:
			idx := ch.Code[frame.IP]
			frame.IP++
			path := ch.Constants[idx].AsObj().(*value.String)
			vm.push(value.ObjValue(vm.loadModule(path.Chars)))
		case chunk.OpSaveModule:
			mod := vm.pop().AsObj().(*value.Module)
			vm.globals.Put(value.ObjValue(vm.internString(mod.Name)), value.ObjValue(mod))
		case chunk.OpImportAll:
			mod := vm.pop().AsObj().(*value.Module)
			for _, name := range mod.Exports.Keys() {
				v, _ := mod.Exports.Get(name)
				vm.globals.Put(value.ObjValue(vm.internString(name)), v)
			}
		case chunk.OpImportByName:
			idx := ch.Code[frame.IP]
			frame.IP++
			name := ch.Constants[idx].AsObj().(*value.String)
			mod := vm.pop()
			vm.globals.Put(value.ObjValue(name), mod)

		default:
			return vm.runtimeError(frame, "unhandled opcode %s", op)
		}
	}
	return nil
}

// readShort decodes a 16-bit jump/loop operand. spec.md §3 invariant 6 /
// §4.7.3 mandate little-endian encoding.
func (vm *VM) readShort(frame *CallFrame) int {
	ch := frame.chunk()
	lo := int(ch.Code[frame.IP])
	hi := int(ch.Code[frame.IP+1])
	frame.IP += 2
	return hi<<8 | lo
}

func isCallable(v value.Value) bool {
	if !v.IsObj() {
		return false
	}
	switch v.AsObj().(type) {
	case *value.Closure, *value.Native, *value.BoundMethod, *value.Class, *Coroutine:
		return true
	default:
		return false
	}
}
