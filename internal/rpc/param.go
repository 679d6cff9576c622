package rpc

import "github.com/shopspring/decimal"

// Param is one resolved request parameter: either a key name or a
// decimal number literal.
type Param struct {
	name  string
	num   decimal.Decimal
	isNum bool
}

func Name(s string) Param {
	return Param{name: s}
}

func Number(d decimal.Decimal) Param {
	return Param{num: d, isNum: true}
}

// ResolveParam classifies raw by attempting a decimal parse first; any
// string that fails the parse is a key name. A key spelled like a
// number is therefore indistinguishable from a literal and cannot be
// addressed by name. That ambiguity belongs to the wire protocol and is
// preserved here rather than papered over.
func ResolveParam(raw string) Param {
	if d, err := decimal.NewFromString(raw); err == nil {
		return Number(d)
	}
	return Name(raw)
}

// ResolveParams resolves each raw parameter independently, preserving
// order. Order is semantically significant: the first element is always
// interpreted as a key name by the engine.
func ResolveParams(raw []string) []Param {
	params := make([]Param, len(raw))
	for i, r := range raw {
		params[i] = ResolveParam(r)
	}
	return params
}

// Name returns the key name when the parameter resolved as one.
func (p Param) Name() (string, bool) {
	if p.isNum {
		return "", false
	}
	return p.name, true
}

// Number returns the decimal literal when the parameter resolved as one.
func (p Param) Number() (decimal.Decimal, bool) {
	return p.num, p.isNum
}
