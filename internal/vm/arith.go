package vm

import (
	"math"

	"github.com/emberlang/ember/internal/chunk"
	"github.com/emberlang/ember/internal/value"
)

// compare implements the four ordering opcodes (spec.md §4.6.3): numbers
// compare numerically, strings compare lexicographically by byte value,
// any other pairing is a type error.
func (vm *VM) compare(op chunk.OpCode, frame *CallFrame) error {
	b, a := vm.pop(), vm.pop()
	var less, greater bool
	switch {
	case a.IsNumber() && b.IsNumber():
		less = a.AsNumber() < b.AsNumber()
		greater = a.AsNumber() > b.AsNumber()
	case isString(a) && isString(b):
		as, bs := a.AsObj().(*value.String).Chars, b.AsObj().(*value.String).Chars
		less = as < bs
		greater = as > bs
	default:
		return vm.runtimeError(frame, "cannot compare %s and %s", value.TypeName(a), value.TypeName(b))
	}
	var result bool
	switch op {
	case chunk.OpGreater:
		result = greater
	case chunk.OpGreaterEqual:
		result = !less
	case chunk.OpLess:
		result = less
	case chunk.OpLessEqual:
		result = !greater
	}
	vm.push(value.BoolValue(result))
	return nil
}

// add implements OP_ADD (spec.md §4.6.3): numeric addition, or string
// concatenation when both operands are strings. Mixed number/string
// operands are a type error — Ember requires explicit interpolation or
// conversion rather than implicit coercion.
func (vm *VM) add(frame *CallFrame) error {
	b, a := vm.pop(), vm.pop()
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.push(value.NumberValue(a.AsNumber() + b.AsNumber()))
	case isString(a) && isString(b):
		as := a.AsObj().(*value.String).Chars
		bs := b.AsObj().(*value.String).Chars
		vm.push(value.ObjValue(vm.newString(as + bs)))
	default:
		return vm.runtimeError(frame, "cannot add %s and %s", value.TypeName(a), value.TypeName(b))
	}
	return nil
}

func isString(v value.Value) bool {
	if !v.IsObj() {
		return false
	}
	_, ok := v.AsObj().(*value.String)
	return ok
}

// arith implements the remaining binary numeric operators (spec.md
// §4.6.3): subtraction, multiplication, division, modulo, power, and
// the five bitwise operators, which truncate both operands to int64
// exactly as Archer's NUMBER_VAL(AS_NUMBER... & ...) macros do.
func (vm *VM) arith(op chunk.OpCode, frame *CallFrame) error {
	b, a := vm.pop(), vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError(frame, "operands must be numbers, got %s and %s", value.TypeName(a), value.TypeName(b))
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case chunk.OpSubtract:
		vm.push(value.NumberValue(x - y))
	case chunk.OpMultiply:
		vm.push(value.NumberValue(x * y))
	case chunk.OpDivide:
		if y == 0 {
			return vm.runtimeError(frame, "division by zero")
		}
		vm.push(value.NumberValue(x / y))
	case chunk.OpModulo:
		if y == 0 {
			return vm.runtimeError(frame, "division by zero")
		}
		vm.push(value.NumberValue(math.Mod(x, y)))
	case chunk.OpPower:
		vm.push(value.NumberValue(math.Pow(x, y)))
	case chunk.OpBitwiseAnd:
		vm.push(value.NumberValue(float64(int64(x) & int64(y))))
	case chunk.OpBitwiseOr:
		vm.push(value.NumberValue(float64(int64(x) | int64(y))))
	case chunk.OpBitwiseXor:
		vm.push(value.NumberValue(float64(int64(x) ^ int64(y))))
	case chunk.OpBitwiseLeftShift:
		vm.push(value.NumberValue(float64(int64(x) << uint(int64(y)))))
	case chunk.OpBitwiseRightShift:
		vm.push(value.NumberValue(float64(int64(x) >> uint(int64(y)))))
	default:
		return vm.runtimeError(frame, "unhandled arithmetic opcode %s", op)
	}
	return nil
}
