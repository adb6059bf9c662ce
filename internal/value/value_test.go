package value

import "testing"

func TestInternedStringEquality(t *testing.T) {
	a := NewString("hello")
	b := NewString("hello")
	// Interning itself is the VM's responsibility (internal/vm); at the
	// value-package level, distinct String objects with equal contents
	// are NOT Equal (identity), matching spec.md §3.
	if Equal(ObjValue(a), ObjValue(b)) {
		t.Fatal("expected distinct un-interned Strings to compare unequal")
	}
	if !Equal(ObjValue(a), ObjValue(a)) {
		t.Fatal("expected identity equality to hold")
	}
}

func TestTupleStructuralEquality(t *testing.T) {
	a := NewTuple([]Value{NumberValue(1), NumberValue(2)})
	b := NewTuple([]Value{NumberValue(1), NumberValue(2)})
	if !Equal(ObjValue(a), ObjValue(b)) {
		t.Fatal("expected structurally-equal tuples to compare equal")
	}
	if Hash32(ObjValue(a)) != Hash32(ObjValue(b)) {
		t.Fatal("equal tuples must hash equal")
	}
}

func TestFalsy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NilValue(), true},
		{BoolValue(false), true},
		{BoolValue(true), false},
		{NumberValue(0), false},
		{ObjValue(NewString("")), false},
	}
	for _, c := range cases {
		if got := c.v.IsFalsy(); got != c.want {
			t.Errorf("IsFalsy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestListSubscriptNegativeIndex(t *testing.T) {
	l := NewList([]Value{NumberValue(10), NumberValue(20), NumberValue(30)})
	v, err := l.GetSubscript(NumberValue(-1))
	if err != nil {
		t.Fatal(err)
	}
	if v.AsNumber() != 30 {
		t.Errorf("got %v", v.AsNumber())
	}
}

func TestListSubscriptOutOfBounds(t *testing.T) {
	l := NewList([]Value{NumberValue(1), NumberValue(2)})
	if _, err := l.GetSubscript(NumberValue(9)); err == nil {
		t.Fatal("expected out-of-bounds error")
	}
}

func TestMapPutGetDelete(t *testing.T) {
	m := NewMap()
	// one String object, as the VM's intern table would hand out
	k := ObjValue(NewString("k"))
	m.Put(k, NumberValue(42))
	v, ok := m.Get(k)
	if !ok || v.AsNumber() != 42 {
		t.Fatalf("get = %v, %v", v, ok)
	}
	if !m.Delete(k) {
		t.Fatal("expected delete to report found")
	}
	if _, ok := m.Get(k); ok {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestRangeIterator(t *testing.T) {
	r := NewRange(0, 5, 1)
	it, err := r.MakeIterator()
	if err != nil {
		t.Fatal(err)
	}
	var got []float64
	for !it.ReachedEnd() {
		got = append(got, it.GetValue().AsNumber())
		it.Advance()
	}
	want := []float64{0, 1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("at %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestUpvalueCloseSemantics(t *testing.T) {
	slot := NumberValue(5)
	uv := &Upvalue{Location: &slot}
	if uv.Get().AsNumber() != 5 {
		t.Fatal("expected open upvalue to read through location")
	}
	uv.Close()
	slot = NumberValue(999) // mutating the old stack slot must not affect the closed upvalue
	if uv.Get().AsNumber() != 5 {
		t.Fatalf("closed upvalue should retain 5, got %v", uv.Get().AsNumber())
	}
}

func TestClassMetaclassLink(t *testing.T) {
	cls := NewClass("Dog")
	if cls.Metaclass == nil {
		t.Fatal("expected metaclass to exist")
	}
	if cls.Metaclass.Name != "Dog meta" {
		t.Errorf("metaclass name = %q", cls.Metaclass.Name)
	}
	if cls.Metaclass.Of != cls {
		t.Fatal("expected metaclass back-link to class")
	}
}

func TestInstanceMethodResolutionWalksSuperclass(t *testing.T) {
	base := NewClass("Animal")
	base.Methods["speak"] = ObjValue(NewNative("speak", 0, func(args []Value) (Value, error) {
		return ObjValue(NewString("...")), nil
	}))
	derived := NewClass("Dog")
	derived.Superclass = base
	inst := NewInstance(derived)
	if _, ok := inst.GetMethod("speak"); !ok {
		t.Fatal("expected inherited method to resolve")
	}
}
