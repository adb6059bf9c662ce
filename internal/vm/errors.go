package vm

import "fmt"

// RuntimeError is the error type returned by the dispatch loop for any
// failure that originates in running bytecode, as opposed to a Go-level
// bug in the VM itself (spec.md §4.7.7). Frames holds the stack trace,
// innermost frame first, captured at the moment the error is raised —
// by the time it is printed the CallFrames that produced it may already
// have been popped.
type RuntimeError struct {
	Message string
	Frames  []TraceFrame
}

// TraceFrame names one line of a stack trace: the function it was in
// (or "script" for the implicit top-level frame) and the source line
// the frame's IP pointed at when the error fired.
type TraceFrame struct {
	Name string
	Line int
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// runtimeError builds a RuntimeError rooted at frame, then unwinds
// vm.current's active CallFrames to capture the rest of the trace
// (innermost first, matching spec.md §4.7.7's reporting order).
func (vm *VM) runtimeError(frame *CallFrame, format string, args ...interface{}) error {
	co := vm.current
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := co.frameCount - 1; i >= 0; i-- {
		f := &co.frames[i]
		name := "script"
		if f.Closure.Function.Name != "" {
			name = f.Closure.Function.Name + "()"
		}
		line := f.chunk().GetLine(f.IP - 1)
		err.Frames = append(err.Frames, TraceFrame{Name: name, Line: line})
		_ = frame
	}
	return err
}

// callError is used by call-shape failures (arity mismatch, calling a
// non-callable value, stack overflow) raised before or without a
// CallFrame of their own to attribute the fault to.
func (vm *VM) callError(format string, args ...interface{}) error {
	return vmError(format, args...)
}

// vmError builds a bare RuntimeError with no captured trace, for
// failures raised outside the main dispatch loop (e.g. during
// subscript/iterator resolution helpers that don't carry a frame).
func vmError(format string, args ...interface{}) error {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}
