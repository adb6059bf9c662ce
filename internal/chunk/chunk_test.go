package chunk

import (
	"testing"

	"github.com/emberlang/ember/internal/value"
)

func TestWriteByteAndGetLine(t *testing.T) {
	c := New()
	c.WriteByte(byte(OpLoadNil), 1)
	c.WriteByte(byte(OpLoadNil), 1)
	c.WriteByte(byte(OpReturn), 2)

	if got := c.GetLine(0); got != 1 {
		t.Errorf("line(0) = %d, want 1", got)
	}
	if got := c.GetLine(1); got != 1 {
		t.Errorf("line(1) = %d, want 1", got)
	}
	if got := c.GetLine(2); got != 2 {
		t.Errorf("line(2) = %d, want 2", got)
	}
}

func TestAddConstantLimit(t *testing.T) {
	c := New()
	for i := 0; i < MaxConstants; i++ {
		if _, err := c.AddConstant(value.NumberValue(float64(i))); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if _, err := c.AddConstant(value.NumberValue(999)); err == nil {
		t.Fatal("expected error exceeding max constants")
	}
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	c := New()
	idx, _ := c.AddConstant(value.NumberValue(42))
	c.WriteByte(byte(OpLoadConstant), 1)
	c.WriteByte(byte(idx), 1)
	c.WriteByte(byte(OpReturn), 1)
	out := c.Disassemble("test")
	if out == "" {
		t.Fatal("expected non-empty disassembly")
	}
}
