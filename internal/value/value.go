// Package value implements Ember's dynamic Value representation and
// built-in object types, generalising the teacher's tagged-struct Value
// (estevaofon-noxy/internal/value) to the full object system spec.md §3
// describes. spec.md asks for NaN-boxing; a tagged struct is used instead
// because Go's garbage collector cannot safely retain a heap pointer that
// has been bit-packed into the payload of a float64 — the GC's pointer
// scanner only recognises pointer-typed words, so any object reachable
// only through a NaN-boxed float would be collected out from under the
// VM. The tradeoff is documented in DESIGN.md; the testable properties of
// spec.md §8 do not depend on the bit layout.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

type Type int

const (
	Nil Type = iota
	Undefined
	Bool
	Number
	Obj
)

func (t Type) String() string {
	switch t {
	case Nil:
		return "nil"
	case Undefined:
		return "undefined"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case Obj:
		return "object"
	default:
		return "?"
	}
}

// Value is Ember's dynamic value: nil, the hash-table-only undefined
// sentinel, boolean, IEEE double, or a heap object reference.
type Value struct {
	typ  Type
	num  float64
	boo  bool
	obj  Object
}

func NilValue() Value                 { return Value{typ: Nil} }
func UndefinedValue() Value           { return Value{typ: Undefined} }
func BoolValue(b bool) Value          { return Value{typ: Bool, boo: b} }
func NumberValue(n float64) Value     { return Value{typ: Number, num: n} }
func ObjValue(o Object) Value         { return Value{typ: Obj, obj: o} }

func (v Value) Type() Type     { return v.typ }
func (v Value) IsNil() bool    { return v.typ == Nil }
func (v Value) IsUndefined() bool { return v.typ == Undefined }
func (v Value) IsBool() bool   { return v.typ == Bool }
func (v Value) IsNumber() bool { return v.typ == Number }
func (v Value) IsObj() bool    { return v.typ == Obj }

func (v Value) AsBool() bool     { return v.boo }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Object    { return v.obj }

// IsFalsy implements truthiness: nil and false are falsy, everything
// else (including 0 and "") is truthy — matching the teacher's
// `isFalsey` and Archer's `IS_FALSEY` macro.
func (v Value) IsFalsy() bool {
	switch v.typ {
	case Nil, Undefined:
		return true
	case Bool:
		return !v.boo
	default:
		return false
	}
}

// Equal implements spec.md §3 Value equality: numbers by IEEE equality,
// everything else bitwise/by-identity except interned strings (identity
// equality IS content equality for those) and Tuples, which the original
// Archer source overrides to structural equality (SPEC_FULL.md §4).
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case Nil, Undefined:
		return true
	case Bool:
		return a.boo == b.boo
	case Number:
		return a.num == b.num
	case Obj:
		if as, ok := a.obj.(*String); ok {
			if bs, ok := b.obj.(*String); ok {
				return as == bs // interned: pointer equality is content equality
			}
			return false
		}
		if at, ok := a.obj.(*Tuple); ok {
			if bt, ok := b.obj.(*Tuple); ok {
				return tupleEqual(at, bt)
			}
			return false
		}
		return a.obj == b.obj
	default:
		return false
	}
}

func tupleEqual(a, b *Tuple) bool {
	if len(a.Elements) != len(b.Elements) {
		return false
	}
	for i := range a.Elements {
		if !Equal(a.Elements[i], b.Elements[i]) {
			return false
		}
	}
	return true
}

// Hash32 produces a 32-bit hash consistent with Equal: equal values hash
// equal (spec.md §8 "values_equal(a,b) implies hash(a)==hash(b)").
func Hash32(v Value) uint32 {
	switch v.typ {
	case Nil:
		return 1
	case Undefined:
		return 2
	case Bool:
		if v.boo {
			return 3
		}
		return 4
	case Number:
		n := v.num
		if n == 0 {
			n = 0 // -0 == 0, so both must hash as +0
		}
		bits := fnv1a(fmt.Sprintf("%g", n))
		return bits
	case Obj:
		if h, ok := v.obj.(Hasher); ok {
			return h.Hash()
		}
		return fnv1a(fmt.Sprintf("%p", v.obj))
	default:
		return 0
	}
}

func fnv1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// ToString implements the to_string vtable slot at the Value level,
// dispatching to the object's Stringer if present. Numbers are formatted
// with Go's shortest round-trippable representation, mirroring Archer's
// `%.14g`-equivalent formatting (SPEC_FULL.md §4).
func ToString(v Value) string {
	switch v.typ {
	case Nil, Undefined:
		return "nil"
	case Bool:
		return strconv.FormatBool(v.boo)
	case Number:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Obj:
		if s, ok := v.obj.(Stringer); ok {
			return s.ToString()
		}
		return fmt.Sprintf("<object %T>", v.obj)
	default:
		return "?"
	}
}

// TypeName names a Value's dynamic type for the typeOf() built-in and
// error messages.
func TypeName(v Value) string {
	switch v.typ {
	case Nil:
		return "nil"
	case Undefined:
		return "undefined"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case Obj:
		return v.obj.TypeName()
	default:
		return "?"
	}
}

// ---- Object system ----

// Object is the header contract every heap object satisfies (spec.md
// §3's ObjectType). Marked/Next back the GC's intrusive all-objects
// list and tri-colour mark bit (internal/vm/gc.go); TypeName backs the
// to_string/typeOf fallback and error messages.
type Object interface {
	TypeName() string
	object() *Header
}

// Header is embedded in every concrete Object; it is the "header" spec.md
// §3 describes (type info lives in the Go type itself via the TypeName
// method and the optional-interface vtable below, rather than a runtime
// type pointer, since Go already gives us that via dynamic dispatch).
type Header struct {
	Marked bool
	Next   Object // intrusive all-objects list, see internal/vm/gc.go
	Fields *FieldTable
}

func (h *Header) object() *Header { return h }

// Head exposes the embedded Header to other packages (internal/vm's
// allocator and collector need to read/set Marked and Next on an
// arbitrary Object; object() is unexported so only package value can
// call it directly through the Object interface).
func (h *Header) Head() *Header { return h }

// HeaderHolder is satisfied by every concrete Object via the promoted
// Head method above.
type HeaderHolder interface {
	Head() *Header
}

// Optional per-type vtable slots (spec.md §3 ObjectType table), modelled
// as Go interfaces instead of function pointers (spec.md §9 Design
// Notes explicitly permits either).
type Stringer interface{ ToString() string }
type Hasher interface{ Hash() uint32 }
type FieldAccessor interface {
	GetField(name string) (Value, bool)
	SetField(name string, v Value)
}
type Subscriptable interface {
	GetSubscript(index Value) (Value, error)
	SetSubscript(index Value, v Value) error
}
type MethodResolver interface {
	GetMethod(name string) (Value, bool)
}
type Iterable interface {
	MakeIterator() (*Iterator, error)
}
type Traverser interface {
	Traverse(mark func(Value))
}

// FieldTable is the per-object dynamic field store (spec.md §3: "a
// table of per-object dynamic fields (may be empty for types that
// disallow fields)"). It is a thin ordered map so field iteration
// (e.g. for future reflection built-ins) is deterministic.
type FieldTable struct {
	keys   []string
	values map[string]Value
}

func NewFieldTable() *FieldTable {
	return &FieldTable{values: make(map[string]Value)}
}

func (f *FieldTable) Get(name string) (Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *FieldTable) Set(name string, v Value) {
	if _, ok := f.values[name]; !ok {
		f.keys = append(f.keys, name)
	}
	f.values[name] = v
}

func (f *FieldTable) Keys() []string { return f.keys }

// ---- String ----

// String is interned: the VM's string-intern table (internal/vm) guarantees
// byte-equal strings share one object, so Equal and Hash32 both reduce to
// pointer comparisons.
type String struct {
	Header
	Chars string
	hash  uint32
}

func NewString(s string) *String {
	return &String{Chars: s, hash: fnv1a(s)}
}

func (s *String) TypeName() string { return "String" }
func (s *String) ToString() string { return s.Chars }
func (s *String) Hash() uint32     { return s.hash }

// ---- Function / Upvalue / Closure / Native ----

// ChunkHolder is satisfied by *chunk.Chunk; declared here (rather than
// importing internal/chunk) to avoid a value<->chunk import cycle, since
// chunk's constant pool stores Values.
type ChunkHolder interface {
	Disassemble(name string) string
	// Values exposes the chunk's constant pool so Function.Traverse can
	// mark it (interned strings, nested Functions) without an import
	// cycle (spec.md §4.8; grounded on objfunction.c's traverse_function
	// marking chunk.constants).
	Values() []Value
}

type FunctionType int

const (
	FuncScript FunctionType = iota
	FuncFunction
	FuncLambda
	FuncMethod
	FuncStaticMethod
	FuncInitializer
	FuncStaticInitializer
)

type Function struct {
	Header
	Name          string
	Arity         int
	UpvalueCount  int
	Chunk         ChunkHolder
	Module        *Module
	IsCoroutine   bool
	Type          FunctionType
}

func NewFunction(name string) *Function { return &Function{Name: name} }

func (f *Function) TypeName() string { return "Function" }
func (f *Function) ToString() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// Traverse marks the function's constant pool — interned strings and
// any nested Function/Closure constants created by nested `fun`/lambda
// declarations — so a live Closure's code keeps its constants reachable
// (spec.md §3 invariant 1; grounded on objfunction.c's traverse_function).
func (f *Function) Traverse(mark func(Value)) {
	if f.Chunk == nil {
		return
	}
	for _, c := range f.Chunk.Values() {
		mark(c)
	}
}

// Upvalue either points at a live stack slot (open) or owns a closed
// Value (spec.md §3 invariant 4). Location is a pointer into the owning
// Coroutine's value stack array while open.
type Upvalue struct {
	Header
	Location *Value
	Closed   Value
	IsClosed bool
	NextOpen *Upvalue // singly-linked open-upvalue list, descending by slot
}

func (u *Upvalue) TypeName() string { return "Upvalue" }
func (u *Upvalue) ToString() string { return "<upvalue>" }

// Traverse marks the closed-over value once the upvalue has been
// promoted off the stack; an open upvalue's Location already points at
// a live stack slot that markRoots reaches directly, so there is
// nothing extra to mark in that state (spec.md §3 invariant 1;
// grounded on objfunction.c's upvalue traverse marking `closed`).
func (u *Upvalue) Traverse(mark func(Value)) {
	if u.IsClosed {
		mark(u.Closed)
	}
}

func (u *Upvalue) Get() Value {
	if u.IsClosed {
		return u.Closed
	}
	return *u.Location
}

func (u *Upvalue) Set(v Value) {
	if u.IsClosed {
		u.Closed = v
	} else {
		*u.Location = v
	}
}

func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.IsClosed = true
	u.Location = &u.Closed
}

type Closure struct {
	Header
	Function *Function
	Upvalues []*Upvalue
}

func NewClosure(fn *Function) *Closure {
	return &Closure{Function: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

func (c *Closure) TypeName() string { return "Closure" }
func (c *Closure) ToString() string { return c.Function.ToString() }
func (c *Closure) Traverse(mark func(Value)) {
	mark(ObjValue(c.Function))
	for _, uv := range c.Upvalues {
		if uv != nil {
			mark(ObjValue(uv))
		}
	}
}

// NativeFunc is a host-implemented builtin. It returns (result, error);
// a non-nil error surfaces as a runtime error carrying its message,
// matching spec.md §4.7.4's "natives report failure via an error-message
// String in the receiver slot" — internal/vm translates the Go error
// into that protocol so native authors just return Go errors.
type NativeFunc func(args []Value) (Value, error)

type Native struct {
	Header
	Name  string
	Arity int // -1 = variadic
	Fn    NativeFunc
}

func NewNative(name string, arity int, fn NativeFunc) *Native {
	return &Native{Name: name, Arity: arity, Fn: fn}
}

func (n *Native) TypeName() string { return "Native" }
func (n *Native) ToString() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// ---- Class / Instance / BoundMethod ----

// Class is itself an Instance of its Metaclass (spec.md §3): the
// Metaclass pointer is never nil for a fully-constructed Class, and
// StaticMethods IS the Metaclass's method table (spec.md §4.6.6).
type Class struct {
	Header
	Name       string
	Superclass *Class
	Methods    map[string]Value // name -> Closure/Native, instance methods
	Metaclass  *Metaclass
}

// Metaclass stores static methods; it is the spec.md "class of a class".
// It is its own lightweight type rather than a Class-of-Class loop, since
// a Metaclass has no further metaclass of its own (spec.md §3's cycle is
// Class<->Metaclass, not an infinite regress).
type Metaclass struct {
	Header
	Name    string // class name + " meta" (spec.md §3 invariant 5)
	Of      *Class
	Methods map[string]Value
}

func NewClass(name string) *Class {
	mc := &Metaclass{Name: name + " meta", Methods: map[string]Value{}}
	cls := &Class{Name: name, Methods: map[string]Value{}, Metaclass: mc}
	mc.Of = cls
	return cls
}

func (c *Class) TypeName() string { return "Class" }
func (c *Class) ToString() string { return fmt.Sprintf("<class %s>", c.Name) }
func (c *Class) GetMethod(name string) (Value, bool) {
	v, ok := c.Methods[name]
	return v, ok
}
func (c *Class) Traverse(mark func(Value)) {
	for _, m := range c.Methods {
		mark(m)
	}
	if c.Superclass != nil {
		mark(ObjValue(c.Superclass))
	}
	if c.Metaclass != nil {
		mark(ObjValue(c.Metaclass))
	}
}

func (m *Metaclass) TypeName() string { return "Metaclass" }
func (m *Metaclass) ToString() string { return fmt.Sprintf("<metaclass %s>", m.Name) }
func (m *Metaclass) GetMethod(name string) (Value, bool) {
	v, ok := m.Methods[name]
	return v, ok
}
func (m *Metaclass) Traverse(mark func(Value)) {
	for _, me := range m.Methods {
		mark(me)
	}
	if m.Of != nil {
		mark(ObjValue(m.Of))
	}
}

type Instance struct {
	Header
	Class *Class
}

func NewInstance(cls *Class) *Instance {
	return &Instance{Header: Header{Fields: NewFieldTable()}, Class: cls}
}

func (i *Instance) TypeName() string { return i.Class.Name }
func (i *Instance) ToString() string { return fmt.Sprintf("<%s instance>", i.Class.Name) }
func (i *Instance) GetField(name string) (Value, bool) { return i.Fields.Get(name) }
func (i *Instance) SetField(name string, v Value)       { i.Fields.Set(name, v) }
func (i *Instance) GetMethod(name string) (Value, bool) {
	for c := i.Class; c != nil; c = c.Superclass {
		if v, ok := c.Methods[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}
func (i *Instance) Traverse(mark func(Value)) {
	mark(ObjValue(i.Class))
	for _, k := range i.Fields.Keys() {
		v, _ := i.Fields.Get(k)
		mark(v)
	}
}

// BoundMethod pairs a receiver with the Closure or Native it was
// resolved from, created by LOAD_PROPERTY when the property names a
// method rather than a field (spec.md §3).
type BoundMethod struct {
	Header
	Receiver Value
	Method   Value // Closure or Native
}

func NewBoundMethod(recv, method Value) *BoundMethod {
	return &BoundMethod{Receiver: recv, Method: method}
}

func (b *BoundMethod) TypeName() string { return "BoundMethod" }
func (b *BoundMethod) ToString() string { return "<bound method>" }
func (b *BoundMethod) Traverse(mark func(Value)) {
	mark(b.Receiver)
	mark(b.Method)
}

// ---- List / Tuple / Map / Range ----

type List struct {
	Header
	Elements []Value
}

func NewList(elems []Value) *List { return &List{Elements: elems} }

func (l *List) TypeName() string { return "List" }
func (l *List) ToString() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = reprElement(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *List) Traverse(mark func(Value)) {
	for _, e := range l.Elements {
		mark(e)
	}
}
func (l *List) GetSubscript(index Value) (Value, error) {
	i, err := indexOf(index, len(l.Elements))
	if err != nil {
		return Value{}, err
	}
	return l.Elements[i], nil
}
func (l *List) SetSubscript(index Value, v Value) error {
	i, err := indexOf(index, len(l.Elements))
	if err != nil {
		return err
	}
	l.Elements[i] = v
	return nil
}
func (l *List) MakeIterator() (*Iterator, error) {
	return newSliceIterator(l, l.Elements), nil
}

func indexOf(index Value, length int) (int, error) {
	if !index.IsNumber() {
		return 0, fmt.Errorf("subscript index must be a number")
	}
	i := int(index.AsNumber())
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, fmt.Errorf("index %d out of bounds (length %d)", int(index.AsNumber()), length)
	}
	return i, nil
}

type Tuple struct {
	Header
	Elements []Value
}

func NewTuple(elems []Value) *Tuple { return &Tuple{Elements: elems} }

func (t *Tuple) TypeName() string { return "Tuple" }
func (t *Tuple) ToString() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = reprElement(e)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) Hash() uint32 {
	h := uint32(2166136261)
	for _, e := range t.Elements {
		h ^= Hash32(e)
		h *= 16777619
	}
	return h
}
func (t *Tuple) Traverse(mark func(Value)) {
	for _, e := range t.Elements {
		mark(e)
	}
}
func (t *Tuple) GetSubscript(index Value) (Value, error) {
	i, err := indexOf(index, len(t.Elements))
	if err != nil {
		return Value{}, err
	}
	return t.Elements[i], nil
}
func (t *Tuple) MakeIterator() (*Iterator, error) {
	return newSliceIterator(t, t.Elements), nil
}

// mapEntry / Map is a thin wrapper used for the language-level Map type;
// internal/table's hash table backs globals and string interning, while
// this type is what script code actually manipulates via `@{...}`
// literals. Entries are grouped in a Go map keyed by Hash32 (one slice
// per hash); Delete marks an entry dead rather than removing it.
type Map struct {
	Header
	entries map[uint32][]mapEntry
	order   []uint32
}

type mapEntry struct {
	key   Value
	val   Value
	alive bool
}

func NewMap() *Map {
	return &Map{entries: make(map[uint32][]mapEntry)}
}

func (m *Map) TypeName() string { return "Map" }
func (m *Map) ToString() string {
	var parts []string
	for _, h := range m.order {
		for _, e := range m.entries[h] {
			if e.alive {
				parts = append(parts, fmt.Sprintf("%s: %s", reprElement(e.key), reprElement(e.val)))
			}
		}
	}
	return "@{" + strings.Join(parts, ", ") + "}"
}

func (m *Map) Get(key Value) (Value, bool) {
	h := Hash32(key)
	for _, e := range m.entries[h] {
		if e.alive && Equal(e.key, key) {
			return e.val, true
		}
	}
	return Value{}, false
}

func (m *Map) Put(key, val Value) {
	h := Hash32(key)
	bucket := m.entries[h]
	for i, e := range bucket {
		if e.alive && Equal(e.key, key) {
			bucket[i].val = val
			return
		}
	}
	if len(bucket) == 0 {
		m.order = append(m.order, h)
	}
	m.entries[h] = append(bucket, mapEntry{key: key, val: val, alive: true})
}

func (m *Map) Delete(key Value) bool {
	h := Hash32(key)
	bucket := m.entries[h]
	for i, e := range bucket {
		if e.alive && Equal(e.key, key) {
			bucket[i].alive = false
			return true
		}
	}
	return false
}

// Keys returns live keys ordered by when each key's hash was first
// added (a key deleted and re-added keeps that place); MakeIterator and
// Len use it.
func (m *Map) Keys() []Value {
	var out []Value
	for _, h := range m.order {
		for _, e := range m.entries[h] {
			if e.alive {
				out = append(out, e.key)
			}
		}
	}
	return out
}

func (m *Map) Len() int {
	n := 0
	for _, k := range m.Keys() {
		_ = k
		n++
	}
	return n
}

func (m *Map) Traverse(mark func(Value)) {
	for _, h := range m.order {
		for _, e := range m.entries[h] {
			if e.alive {
				mark(e.key)
				mark(e.val)
			}
		}
	}
}

func (m *Map) GetSubscript(index Value) (Value, error) {
	v, ok := m.Get(index)
	if !ok {
		return Value{}, fmt.Errorf("key not found: %s", ToString(index))
	}
	return v, nil
}

func (m *Map) SetSubscript(index Value, v Value) error {
	m.Put(index, v)
	return nil
}

func (m *Map) MakeIterator() (*Iterator, error) {
	return newSliceIterator(m, m.Keys()), nil
}

// Range is begin/end/step as doubles (spec.md §3); it supports both
// subscript (treating itself as a lazily-indexed sequence) and iteration.
type Range struct {
	Header
	Begin, End, Step float64
}

func NewRange(begin, end, step float64) *Range {
	return &Range{Begin: begin, End: end, Step: step}
}

func (r *Range) TypeName() string { return "Range" }
func (r *Range) ToString() string {
	if r.Step == 1 {
		return fmt.Sprintf("%s..%s", fmtNum(r.Begin), fmtNum(r.End))
	}
	return fmt.Sprintf("%s..%s:%s", fmtNum(r.Begin), fmtNum(r.End), fmtNum(r.Step))
}

func fmtNum(n float64) string { return strconv.FormatFloat(n, 'g', -1, 64) }

func (r *Range) Len() int {
	if r.Step == 0 {
		return 0
	}
	n := int((r.End - r.Begin) / r.Step)
	if n < 0 {
		return 0
	}
	if r.Begin+float64(n)*r.Step != r.End {
		n++
	}
	return n
}

func (r *Range) GetSubscript(index Value) (Value, error) {
	length := r.Len()
	i, err := indexOf(index, length)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(r.Begin + float64(i)*r.Step), nil
}

func (r *Range) MakeIterator() (*Iterator, error) {
	cur := r.Begin
	return &Iterator{
		reachedEnd: func() bool {
			if r.Step >= 0 {
				return cur >= r.End
			}
			return cur <= r.End
		},
		advance: func() { cur += r.Step },
		getValue: func() Value { return NumberValue(cur) },
	}, nil
}

// ---- Iterator ----

// Iterator is the three-function protocol object (spec.md §3/§4.7.6).
// The function fields play the role of the spec's vtable slots
// (ReachedEnd/Advance/GetValue) directly, since an Iterator's behaviour
// is inherently per-instance rather than per-type.
type Iterator struct {
	Header
	reachedEnd func() bool
	advance    func()
	getValue   func() Value
	container  Object // keeps the backing collection reachable for GC
}

func (it *Iterator) TypeName() string { return "Iterator" }
func (it *Iterator) ToString() string { return "<iterator>" }
func (it *Iterator) ReachedEnd() bool { return it.reachedEnd() }
func (it *Iterator) Advance()         { it.advance() }
func (it *Iterator) GetValue() Value  { return it.getValue() }
func (it *Iterator) Traverse(mark func(Value)) {
	if it.container != nil {
		mark(ObjValue(it.container))
	}
}

func newSliceIterator(container Object, elems []Value) *Iterator {
	i := 0
	return &Iterator{
		reachedEnd: func() bool { return i >= len(elems) },
		advance:    func() { i++ },
		getValue:   func() Value { return elems[i] },
		container:  container,
	}
}

// ---- Module ----

type Module struct {
	Header
	Path     string
	Name     string
	Imported bool
	Exports  *FieldTable
}

func NewModule(path, name string) *Module {
	return &Module{Path: path, Name: name, Exports: NewFieldTable()}
}

func (m *Module) TypeName() string { return "Module" }
func (m *Module) ToString() string { return fmt.Sprintf("<module %s>", m.Name) }
func (m *Module) GetField(name string) (Value, bool) { return m.Exports.Get(name) }
func (m *Module) SetField(name string, v Value)       { m.Exports.Set(name, v) }
func (m *Module) Traverse(mark func(Value)) {
	for _, k := range m.Exports.Keys() {
		v, _ := m.Exports.Get(k)
		mark(v)
	}
}

func reprElement(v Value) string {
	if v.IsObj() {
		if s, ok := v.AsObj().(*String); ok {
			return strconv.Quote(s.Chars)
		}
	}
	return ToString(v)
}
