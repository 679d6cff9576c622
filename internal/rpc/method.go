package rpc

import "fmt"

// Method is one of the closed set of operations a request may invoke.
// The wire form is the lowercase string itself.
type Method string

const (
	MethodCreate   Method = "create"
	MethodRead     Method = "read"
	MethodUpdate   Method = "update"
	MethodDelete   Method = "delete"
	MethodAdd      Method = "add"
	MethodSubtract Method = "subtract"
	MethodMultiply Method = "multiply"
	MethodDivide   Method = "divide"
)

// ParseMethod matches raw case-sensitively against the closed
// vocabulary. The input is peer-controlled, so an unmatched string is a
// parse error, never a panic.
func ParseMethod(raw string) (Method, error) {
	switch m := Method(raw); m {
	case MethodCreate, MethodRead, MethodUpdate, MethodDelete,
		MethodAdd, MethodSubtract, MethodMultiply, MethodDivide:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, raw)
	}
}

// Binary reports whether m is one of the arithmetic methods.
func (m Method) Binary() bool {
	switch m {
	case MethodAdd, MethodSubtract, MethodMultiply, MethodDivide:
		return true
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}
