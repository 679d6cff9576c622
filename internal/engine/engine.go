// Package engine interprets one parsed method plus resolved parameters
// against a token-scoped store. Create, update and delete are each a
// single atomic store operation; the arithmetic methods are read-only
// two-point reads with no cross-key atomicity.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/danmuck/numvault/internal/rpc"
	"github.com/danmuck/numvault/internal/store"
)

// divisionPrecision is the number of digits kept to the right of the
// decimal point when dividing. Addition, subtraction and multiplication
// are exact.
const divisionPrecision = 100

// Execute runs one transaction. A nil result with a nil error is the
// void acknowledgment of a mutating method; read and arithmetic methods
// return the canonical decimal string of their value.
func Execute(st *store.UserStore, m rpc.Method, params []rpc.Param) (*string, error) {
	if len(params) == 0 {
		return nil, &MissingParamError{Index: 1}
	}
	key, ok := params[0].Name()
	if !ok {
		return nil, ErrInvalidKeyParam
	}

	switch m {
	case rpc.MethodCreate:
		v, err := numberArg(params, 1)
		if err != nil {
			return nil, err
		}
		return nil, st.CreateValue(key, v)

	case rpc.MethodRead:
		v, err := st.Fetch(key)
		if err != nil {
			return nil, err
		}
		return result(v), nil

	case rpc.MethodUpdate:
		v, err := numberArg(params, 1)
		if err != nil {
			return nil, err
		}
		return nil, st.UpdateValue(key, v)

	case rpc.MethodDelete:
		return nil, st.DeleteValue(key)

	default:
		return binary(st, m, key, params)
	}
}

// numberArg extracts the decimal literal at idx (0-based).
func numberArg(params []rpc.Param, idx int) (decimal.Decimal, error) {
	if len(params) <= idx {
		return decimal.Decimal{}, &MissingParamError{Index: idx + 1}
	}
	v, ok := params[idx].Number()
	if !ok {
		return decimal.Decimal{}, ErrMissingNumber
	}
	return v, nil
}

// binary computes left op right. The left operand is always read from
// the store; the right operand is either a second key read the same way
// or a literal used directly. The result is never written back.
func binary(st *store.UserStore, m rpc.Method, key string, params []rpc.Param) (*string, error) {
	if len(params) < 2 {
		return nil, &MissingParamError{Index: 2}
	}

	left, err := st.Fetch(key)
	if err != nil {
		return nil, err
	}

	var right decimal.Decimal
	if name, ok := params[1].Name(); ok {
		right, err = st.Fetch(name)
		if err != nil {
			return nil, err
		}
	} else {
		right, _ = params[1].Number()
	}

	switch m {
	case rpc.MethodAdd:
		return result(left.Add(right)), nil
	case rpc.MethodSubtract:
		return result(left.Sub(right)), nil
	case rpc.MethodMultiply:
		return result(left.Mul(right)), nil
	case rpc.MethodDivide:
		// shopspring/decimal panics on a zero divisor; detect it first
		// and surface an explicit arithmetic error.
		if right.IsZero() {
			return nil, ErrDivision
		}
		return result(left.DivRound(right, divisionPrecision)), nil
	default:
		return nil, rpc.ErrUnknownMethod
	}
}

func result(v decimal.Decimal) *string {
	s := v.String()
	return &s
}
