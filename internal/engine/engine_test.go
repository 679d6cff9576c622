package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/danmuck/numvault/internal/rpc"
	"github.com/danmuck/numvault/internal/store"
	"github.com/danmuck/numvault/internal/testutil/testlog"
)

func newUserStore(t *testing.T) *store.UserStore {
	t.Helper()
	pool, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	st, err := pool.User([]byte("default"))
	if err != nil {
		t.Fatalf("open user store: %v", err)
	}
	return st
}

func run(t *testing.T, st *store.UserStore, method string, params ...string) (*string, error) {
	t.Helper()
	m, err := rpc.ParseMethod(method)
	if err != nil {
		t.Fatalf("parse method %q: %v", method, err)
	}
	return Execute(st, m, rpc.ResolveParams(params))
}

func mustRun(t *testing.T, st *store.UserStore, method string, params ...string) *string {
	t.Helper()
	res, err := run(t, st, method, params...)
	if err != nil {
		t.Fatalf("%s %v: %v", method, params, err)
	}
	return res
}

func TestSubjectKeyRules(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	var missing *MissingParamError
	if _, err := Execute(st, rpc.MethodRead, nil); !errors.As(err, &missing) || missing.Index != 1 {
		t.Fatalf("expected MissingParamError{1}, got %v", err)
	}
	if _, err := run(t, st, "read", "42"); !errors.Is(err, ErrInvalidKeyParam) {
		t.Fatalf("expected ErrInvalidKeyParam for numeric first param, got %v", err)
	}
}

func TestCreateParamShape(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	var missing *MissingParamError
	if _, err := run(t, st, "create", "k"); !errors.As(err, &missing) || missing.Index != 2 {
		t.Fatalf("expected MissingParamError{2}, got %v", err)
	}
	if _, err := run(t, st, "create", "k", "other_key"); !errors.Is(err, ErrMissingNumber) {
		t.Fatalf("expected ErrMissingNumber, got %v", err)
	}
}

func TestCreateReadUpdateDeleteFlow(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	if res := mustRun(t, st, "create", "grav_const", "0.000000000066731039356729"); res != nil {
		t.Fatalf("create should have a void result, got %q", *res)
	}
	if _, err := run(t, st, "create", "grav_const", "1"); !errors.Is(err, store.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}

	res := mustRun(t, st, "read", "grav_const")
	if res == nil || *res != "0.000000000066731039356729" {
		t.Fatalf("unexpected read result: %v", res)
	}

	var updateMissing *store.UpdateMissingError
	if _, err := run(t, st, "update", "never_created", "1"); !errors.As(err, &updateMissing) {
		t.Fatalf("expected UpdateMissingError, got %v", err)
	}
	if res := mustRun(t, st, "update", "grav_const", "428208470021099.94"); res != nil {
		t.Fatalf("update should have a void result, got %q", *res)
	}
	res = mustRun(t, st, "read", "grav_const")
	if res == nil || *res != "428208470021099.94" {
		t.Fatalf("update did not stick: %v", res)
	}

	if res := mustRun(t, st, "delete", "grav_const"); res != nil {
		t.Fatalf("delete should have a void result, got %q", *res)
	}
	var notFound *store.NotFoundError
	if _, err := run(t, st, "read", "grav_const"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
	if _, err := run(t, st, "delete", "grav_const"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for double delete, got %v", err)
	}
}

func TestMultiplyFullPrecision(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	mustRun(t, st, "create", "grav_const", "0.000000000066731039356729")
	mustRun(t, st, "create", "planet_mass", "6416930923733925522307001.29472615")

	res := mustRun(t, st, "multiply", "grav_const", "planet_mass")
	const want = "428208470021099.96114484339101847547483621476335"
	if res == nil || *res != want {
		t.Fatalf("product mismatch:\n got %v\nwant %s", res, want)
	}
}

func TestBinaryLiteralOperand(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	mustRun(t, st, "create", "planet_mass", "6416930923733925522307001.29472615")

	res := mustRun(t, st, "multiply", "planet_mass", "0.5")
	if res == nil || *res != "3208465461866962761153500.647363075" {
		t.Fatalf("unexpected literal product: %v", res)
	}

	res = mustRun(t, st, "subtract", "planet_mass", "6416930923733925522307001.29472615")
	if res == nil || *res != "0" {
		t.Fatalf("unexpected difference: %v", res)
	}
}

func TestBinaryIsReadOnly(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	mustRun(t, st, "create", "k", "2")
	mustRun(t, st, "add", "k", "3")

	res := mustRun(t, st, "read", "k")
	if res == nil || *res != "2" {
		t.Fatalf("arithmetic must not write back, read %v", res)
	}
}

func TestBinaryMissingOperandKey(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	mustRun(t, st, "create", "k", "2")

	var notFound *store.NotFoundError
	if _, err := run(t, st, "add", "k", "absent_key"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for right operand, got %v", err)
	}
	if _, err := run(t, st, "add", "absent_key", "k"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for left operand, got %v", err)
	}
	var missing *MissingParamError
	if _, err := run(t, st, "add", "k"); !errors.As(err, &missing) || missing.Index != 2 {
		t.Fatalf("expected MissingParamError{2}, got %v", err)
	}
}

func TestDivision(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	mustRun(t, st, "create", "ten", "10")
	mustRun(t, st, "create", "one", "1")

	res := mustRun(t, st, "divide", "ten", "4")
	if res == nil || *res != "2.5" {
		t.Fatalf("unexpected quotient: %v", res)
	}

	// 1/3 keeps 100 fractional digits instead of truncating early.
	res = mustRun(t, st, "divide", "one", "3")
	if res == nil || *res != "0."+strings.Repeat("3", 100) {
		t.Fatalf("unexpected repeating quotient: %v", res)
	}
}

func TestDivisionByZero(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	mustRun(t, st, "create", "ten", "10")
	mustRun(t, st, "create", "zero", "0")

	if _, err := run(t, st, "divide", "ten", "0"); !errors.Is(err, ErrDivision) {
		t.Fatalf("expected ErrDivision for literal zero, got %v", err)
	}
	if _, err := run(t, st, "divide", "ten", "zero"); !errors.Is(err, ErrDivision) {
		t.Fatalf("expected ErrDivision for stored zero, got %v", err)
	}

	res := mustRun(t, st, "read", "ten")
	if res == nil || *res != "10" {
		t.Fatalf("operands must be untouched after a division error: %v", res)
	}
}

func TestExecuteNumberLiteralsStayExact(t *testing.T) {
	testlog.Start(t)
	st := newUserStore(t)

	// A float64 round trip would mangle this literal.
	const v = "0.1000000000000000000000000000000000000001"
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != v {
		t.Fatalf("decimal round trip mangled the literal: %s", d)
	}

	mustRun(t, st, "create", "k", v)
	res := mustRun(t, st, "read", "k")
	if res == nil || *res != v {
		t.Fatalf("stored literal mangled: %v", res)
	}
}
