package stdlib

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/dustin/go-humanize"

	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

// registerText installs the "regex", "bytes", and "fmt" namespaces,
// grounded on the teacher's hex_encode/hex_decode/base64_encode/
// base64_decode natives, generalised to a regexp-backed "regex"
// namespace and enriched with github.com/dustin/go-humanize's
// human-readable formatting (the teacher imports it only transitively
// through sqlite, with no call site of its own).
func registerText(m *vm.VM, regex, bytesNS, fmtNS *value.Module) {
	regex.SetField("match", value.ObjValue(m.NewNative("match", 2, func(args []value.Value) (value.Value, error) {
		pattern, ok1 := asString(args[0])
		s, ok2 := asString(args[1])
		if !ok1 || !ok2 {
			return value.Value{}, fmt.Errorf("regex.match expects (pattern, string)")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid regex: %v", err)
		}
		return value.BoolValue(re.MatchString(s)), nil
	})))

	regex.SetField("find", value.ObjValue(m.NewNative("find", 2, func(args []value.Value) (value.Value, error) {
		pattern, ok1 := asString(args[0])
		s, ok2 := asString(args[1])
		if !ok1 || !ok2 {
			return value.Value{}, fmt.Errorf("regex.find expects (pattern, string)")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid regex: %v", err)
		}
		match := re.FindString(s)
		if match == "" && !re.MatchString(s) {
			return value.NilValue(), nil
		}
		return value.ObjValue(m.NewString(match)), nil
	})))

	regex.SetField("replace", value.ObjValue(m.NewNative("replace", 3, func(args []value.Value) (value.Value, error) {
		pattern, ok1 := asString(args[0])
		s, ok2 := asString(args[1])
		repl, ok3 := asString(args[2])
		if !ok1 || !ok2 || !ok3 {
			return value.Value{}, fmt.Errorf("regex.replace expects (pattern, string, replacement)")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid regex: %v", err)
		}
		return value.ObjValue(m.NewString(re.ReplaceAllString(s, repl))), nil
	})))

	bytesNS.SetField("toHex", value.ObjValue(m.NewNative("toHex", 1, func(args []value.Value) (value.Value, error) {
		s, ok := asString(args[0])
		if !ok {
			return value.Value{}, fmt.Errorf("bytes.toHex expects a string")
		}
		return value.ObjValue(m.NewString(hex.EncodeToString([]byte(s)))), nil
	})))

	bytesNS.SetField("fromHex", value.ObjValue(m.NewNative("fromHex", 1, func(args []value.Value) (value.Value, error) {
		s, ok := asString(args[0])
		if !ok {
			return value.Value{}, fmt.Errorf("bytes.fromHex expects a string")
		}
		decoded, err := hex.DecodeString(s)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid hex: %v", err)
		}
		return value.ObjValue(m.NewString(string(decoded))), nil
	})))

	bytesNS.SetField("toBase64", value.ObjValue(m.NewNative("toBase64", 1, func(args []value.Value) (value.Value, error) {
		s, ok := asString(args[0])
		if !ok {
			return value.Value{}, fmt.Errorf("bytes.toBase64 expects a string")
		}
		return value.ObjValue(m.NewString(base64.StdEncoding.EncodeToString([]byte(s)))), nil
	})))

	bytesNS.SetField("fromBase64", value.ObjValue(m.NewNative("fromBase64", 1, func(args []value.Value) (value.Value, error) {
		s, ok := asString(args[0])
		if !ok {
			return value.Value{}, fmt.Errorf("bytes.fromBase64 expects a string")
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid base64: %v", err)
		}
		return value.ObjValue(m.NewString(string(decoded))), nil
	})))

	fmtNS.SetField("bytes", value.ObjValue(m.NewNative("bytes", 1, func(args []value.Value) (value.Value, error) {
		if !args[0].IsNumber() {
			return value.Value{}, fmt.Errorf("fmt.bytes expects a number")
		}
		n := args[0].AsNumber()
		if n < 0 {
			return value.Value{}, fmt.Errorf("fmt.bytes expects a non-negative size")
		}
		return value.ObjValue(m.NewString(humanize.Bytes(uint64(n)))), nil
	})))

	fmtNS.SetField("ordinal", value.ObjValue(m.NewNative("ordinal", 1, func(args []value.Value) (value.Value, error) {
		if !args[0].IsNumber() {
			return value.Value{}, fmt.Errorf("fmt.ordinal expects a number")
		}
		return value.ObjValue(m.NewString(humanize.Ordinal(int(args[0].AsNumber())))), nil
	})))
}
