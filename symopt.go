// Package symopt provides a deterministic expression optimizer for generated
// quadrature code.
//
// Tensor-assembly kernels evaluate sums of many products of basis function
// values, integration point values, geometry values and constants. The
// package normalizes such expressions into an expanded sum-of-products form,
// then rewrites them to reduce the number of floating point operations while
// tracking at which loop level each factor may be hoisted.
//
// Design goals:
//   - Value semantics: every transformation returns a new expression
//   - Deterministic canonical ordering and stable output
//   - Explicit configuration: the target-language token table is passed in,
//     never read from package state
//   - JSON and MCP-ready tool interface
package symopt

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================
// Variable classes
// ============================================================

// VarType is the loop-invariance class of a term. The order is significant:
// a composite takes the smallest class among its members.
type VarType int

const (
	Basis VarType = iota
	IP
	Geo
	Const
)

var varTypeNames = [...]string{Basis: "basis", IP: "ip", Geo: "geo", Const: "const"}

func (t VarType) String() string {
	if t < Basis || t > Const {
		return fmt.Sprintf("VarType(%d)", int(t))
	}
	return varTypeNames[t]
}

// ParseVarType maps "basis", "ip", "geo" or "const" to a VarType.
func ParseVarType(s string) (VarType, error) {
	for i, n := range varTypeNames {
		if strings.EqualFold(s, n) {
			return VarType(i), nil
		}
	}
	return 0, errors.Errorf("unknown variable class %q", s)
}

func minType(a, b VarType) VarType {
	if a < b {
		return a
	}
	return b
}

// ============================================================
// Errors
// ============================================================

var (
	// ErrDivisionByZero is returned when an expression is divided by a
	// zero-valued expression.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUnsupportedCombination is returned when Add is called on
	// expressions of different shape.
	ErrUnsupportedCombination = errors.New("unsupported combination")
	// ErrMalformedProduct is returned when a product is built without members.
	ErrMalformedProduct = errors.New("malformed product")
)

// fault carries an algebra error through a panic up to the exported entry
// point that recovers it.
type fault struct{ err error }

func (f fault) Error() string { return f.err.Error() }

func raise(err error) { panic(fault{err: err}) }

// catch converts a fault panic into an error. Other panics propagate.
func catch(err *error) {
	if r := recover(); r != nil {
		f, ok := r.(fault)
		if !ok {
			panic(r)
		}
		*err = f.err
	}
}

// ============================================================
// Format — target language token table
// ============================================================

// DefaultPrecision is the number of significant digits used by NewFormat
// when no precision is given.
const DefaultPrecision = 15

// Format holds the rendering functions of the target language. A Format is
// read-only once built and may be shared between goroutines.
type Format struct {
	Precision         int
	Add               func(terms []string) string
	Subtract          func(terms []string) string
	Multiply          func(factors []string) string
	Division          string
	Grouping          func(s string) string
	Block             func(s string) string
	Float             func(v float64) string
	GeometryTensor    string
	IntegrationPoints string
	ConstDeclaration  string
}

// NewFormat returns the C++ token table. Floats below 100 in magnitude use
// %g, larger ones %e, both with the given number of digits.
func NewFormat(precision int) *Format {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	g := fmt.Sprintf("%%.%dg", precision)
	e := fmt.Sprintf("%%.%de", precision)
	return &Format{
		Precision: precision,
		Add:       func(t []string) string { return strings.Join(t, " + ") },
		Subtract:  func(t []string) string { return strings.Join(t, " - ") },
		Multiply:  func(f []string) string { return strings.Join(f, "*") },
		Division:  "/",
		Grouping:  func(s string) string { return "(" + s + ")" },
		Block:     func(s string) string { return "{" + s + "}" },
		Float: func(v float64) string {
			if math.Abs(v) < 100.0 {
				return fmt.Sprintf(g, v)
			}
			return fmt.Sprintf(e, v)
		},
		GeometryTensor:    "G",
		IntegrationPoints: "ip",
		ConstDeclaration:  "const double ",
	}
}

// defaultFormat backs Expr.String. It is never mutated.
var defaultFormat = NewFormat(DefaultPrecision)

// ============================================================
// Core interface
// ============================================================

// Expr is one of *Symbol, *Product, *Sum or *Fraction. Expressions are
// immutable; operations return new values.
type Expr interface {
	// Coeff is the scalar multiplier of the expression.
	Coeff() float64
	// Type is the variable class, the smallest class among members.
	Type() VarType
	// Ops is the number of floating point operations needed to evaluate
	// the expression.
	Ops() int
	// Equal reports shape equality: the top-level coefficient is ignored.
	Equal(other Expr) bool
	// Compare imposes the canonical order Symbol < Product < Sum < Fraction.
	Compare(other Expr) int
	// Copy returns a deep, independent copy.
	Copy() Expr
	// Members returns the immediate sub-terms with the coefficient
	// distributed so that they can be iterated regardless of variant.
	Members() []Expr
	Render(f *Format) string
	String() string

	rank() int
	withCoeff(c float64) Expr
}

// scale returns e with its coefficient multiplied by k.
func scale(e Expr, k float64) Expr {
	if k == 1 {
		return e
	}
	return e.withCoeff(e.Coeff() * k)
}

func unit(e Expr) Expr {
	if e.Coeff() == 1 {
		return e
	}
	return e.withCoeff(1)
}

func isZero(e Expr) bool { return e == nil || e.Coeff() == 0 }

func isConstSym(e Expr) bool {
	s, ok := e.(*Symbol)
	return ok && s.t == Const
}

// identical reports shape equality plus equal coefficients.
func identical(a, b Expr) bool {
	return a.Equal(b) && a.Coeff() == b.Coeff()
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareLists orders member lists lexicographically; a shorter list that is
// a prefix of the other sorts first.
func compareLists(a, b []Expr) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Equal(b[i]) {
			continue
		}
		return a[i].Compare(b[i])
	}
	return len(a) - len(b)
}

func equalLists(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func copyList(l []Expr) []Expr {
	out := make([]Expr, len(l))
	for i, e := range l {
		out[i] = e.Copy()
	}
	return out
}

func renderList(l []Expr, f *Format) []string {
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.Render(f)
	}
	return out
}

// withSign prefixes a rendered term with the subtract token when c < 0 and
// scales it by |c| when c is not a unit.
func withSign(s string, c float64, f *Format) string {
	if c != 1 && c != -1 {
		s = f.Multiply([]string{f.Float(math.Abs(c)), s})
	}
	if c < 0 {
		s = f.Subtract([]string{"", s})
	}
	return s
}
