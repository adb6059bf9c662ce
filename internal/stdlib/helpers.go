package stdlib

import "github.com/emberlang/ember/internal/value"

// asString extracts a Go string from an Ember String value, the common
// argument-unwrapping step every native below needs.
func asString(v value.Value) (string, bool) {
	if !v.IsObj() {
		return "", false
	}
	s, ok := v.AsObj().(*value.String)
	if !ok {
		return "", false
	}
	return s.Chars, true
}
