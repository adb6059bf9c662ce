package vm

import (
	"fmt"
	"math"
	"time"

	"github.com/emberlang/ember/internal/value"
)

// defineNatives registers the small set of global native functions
// every script gets for free, grounded on the teacher's
// vm_define_native registration style. Domain-specific natives (string,
// collection, and I/O helpers) live in internal/stdlib and are bound in
// by cmd/ember, not here.
func (vm *VM) defineNatives() {
	vm.DefineGlobal("clock", value.ObjValue(value.NewNative("clock", 0, nativeClock)))
	vm.DefineGlobal("abs", value.ObjValue(value.NewNative("abs", 1, nativeAbs)))
	vm.DefineGlobal("pow", value.ObjValue(value.NewNative("pow", 2, nativePow)))
	vm.DefineGlobal("typeOf", value.ObjValue(value.NewNative("typeOf", 1, vm.nativeTypeOf)))
}

func nativeClock(args []value.Value) (value.Value, error) {
	return value.NumberValue(float64(time.Now().UnixNano()) / 1e9), nil
}

func nativeAbs(args []value.Value) (value.Value, error) {
	if !args[0].IsNumber() {
		return value.Value{}, fmt.Errorf("abs expects a number, got %s", value.TypeName(args[0]))
	}
	return value.NumberValue(math.Abs(args[0].AsNumber())), nil
}

func nativePow(args []value.Value) (value.Value, error) {
	if !args[0].IsNumber() || !args[1].IsNumber() {
		return value.Value{}, fmt.Errorf("pow expects two numbers")
	}
	return value.NumberValue(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
}

func (vm *VM) nativeTypeOf(args []value.Value) (value.Value, error) {
	return value.ObjValue(vm.newString(value.TypeName(args[0]))), nil
}
