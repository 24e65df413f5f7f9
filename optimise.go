package symopt

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// ============================================================
// Constant tables
// ============================================================

// ConstantTable assigns integer indices to hoisted sub-expressions in
// insertion order. Expressions of equal shape and coefficient share an
// index. A table is owned by one compilation unit and is not safe for
// concurrent use.
type ConstantTable struct {
	buckets map[uint64][]int
	entries []Expr
}

func NewConstantTable() *ConstantTable {
	return &ConstantTable{buckets: map[uint64][]int{}}
}

func tableKey(e Expr) uint64 { return xxhash.Sum64String(e.String()) }

// Lookup returns the index of e, if present.
func (t *ConstantTable) Lookup(e Expr) (int, bool) {
	for _, i := range t.buckets[tableKey(e)] {
		if identical(t.entries[i], e) {
			return i, true
		}
	}
	return 0, false
}

// Index returns the index of e, adding it to the table when absent.
func (t *ConstantTable) Index(e Expr) int {
	if i, ok := t.Lookup(e); ok {
		return i
	}
	k := tableKey(e)
	i := len(t.entries)
	t.entries = append(t.entries, e.Copy())
	t.buckets[k] = append(t.buckets[k], i)
	return i
}

func (t *ConstantTable) Len() int { return len(t.entries) }

// Entries returns the expressions in index order.
func (t *ConstantTable) Entries() []Expr { return copyList(t.entries) }

// ============================================================
// Declaration driver
// ============================================================

// Optimiser rewrites integrands one at a time, hoisting geometry and
// integration point sub-expressions into its constant tables and recording
// the geometry names they reference in Used.
type Optimiser struct {
	Format    *Format
	IPConsts  *ConstantTable
	GeoConsts *ConstantTable
	Used      *set.Set[string]
	Logger    *slog.Logger
}

// NewOptimiser returns an Optimiser with empty tables. A nil format selects
// NewFormat(DefaultPrecision); a nil logger discards.
func NewOptimiser(f *Format, logger *slog.Logger) *Optimiser {
	if f == nil {
		f = NewFormat(DefaultPrecision)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Optimiser{
		Format:    f,
		IPConsts:  NewConstantTable(),
		GeoConsts: NewConstantTable(),
		Used:      set.New[string](0),
		Logger:    logger,
	}
}

// OptimiseCode optimises the integrand expr, identified by name in errors,
// against caller-owned tables. It is the single-call form of
// Optimiser.Optimise.
func OptimiseCode(name string, expr Expr, ipConsts, geoConsts *ConstantTable, used *set.Set[string], f *Format) (Expr, error) {
	o := NewOptimiser(f, nil)
	o.IPConsts, o.GeoConsts, o.Used = ipConsts, geoConsts, used
	return o.Optimise(name, expr)
}

// Optimise rewrites the integrand e. The result is a sum over basis
// groupings of basis factors times a reference to an entry of IPConsts,
// whose entries in turn reference GeoConsts. name identifies the integrand
// in errors and log records.
func (o *Optimiser) Optimise(name string, e Expr) (r Expr, err error) {
	defer func() {
		if err != nil {
			r = nil
			if name != "" {
				err = errors.Wrapf(err, "integrand %s", name)
			}
		}
	}()
	defer catch(&err)
	if e == nil {
		return nil, errors.New("nil expression")
	}
	return o.optimise(name, e), nil
}

func (o *Optimiser) optimise(name string, e Expr) Expr {
	if isZero(e) {
		return Zero()
	}
	fm := o.Format
	log := o.Logger.With("integrand", name)

	var basisVals []Expr
	for _, b := range reduceVartype(expand(e), Basis) {
		basis := b.Found
		if basis == nil {
			basis = C(1)
		}
		ipExpr := b.Remainder
		log.Debug("basis split", "basis", basis.Render(fm), "ip", ipExpr.Render(fm))
		if ipExpr.Ops() == 0 {
			o.markUsed(ipExpr)
			basisVals = append(basisVals, times(basis, ipExpr))
			continue
		}

		var ipVals []Expr
		for _, p := range reduceVartype(expand(ipExpr), IP) {
			if p.Found != nil {
				o.markUsed(p.Found)
			}
			geo := p.Remainder
			o.markUsed(geo)
			geo = reduceOps(expand(geo))
			if geo.Ops() > 0 {
				i := o.GeoConsts.Index(geo)
				log.Debug("geometry constant", "index", i, "expr", geo.Render(fm))
				geo = Sym(fm.GeometryTensor+strconv.Itoa(i), 1, Geo)
			}
			if p.Found == nil {
				ipVals = append(ipVals, geo)
			} else {
				ipVals = append(ipVals, times(p.Found, geo))
			}
		}

		ip := sumOf(ipVals)
		if ip.Ops() > 0 {
			i := o.IPConsts.Index(ip)
			log.Debug("ip constant", "index", i, "expr", ip.Render(fm))
			ip = Sym(fm.GeometryTensor+fm.IntegrationPoints+strconv.Itoa(i), 1, IP)
		}
		basisVals = append(basisVals, expand(times(basis, ip)))
	}
	return sumOf(basisVals)
}

// times multiplies without distributing over sums.
func times(a, b Expr) Expr { return recon(newProduct([]Expr{a, b}, 1)) }

func (o *Optimiser) markUsed(e Expr) {
	for _, v := range UniqueVars(e, Geo) {
		o.Used.Insert(v.Name())
	}
}

// ============================================================
// Auxiliary constants
// ============================================================

// Declaration is one named auxiliary constant.
type Declaration struct {
	Name string
	Expr Expr
	Ops  int
}

// Render formats the declaration as a statement of the target language.
func (d Declaration) Render(f *Format) string {
	return f.ConstDeclaration + d.Name + " = " + d.Expr.Render(f) + ";"
}

// GenerateAuxConstants expands and reduces every entry of table in index
// order and names it prefix followed by its index. It returns the total
// operation count of the declarations.
func GenerateAuxConstants(table *ConstantTable, prefix string) (ops int, decls []Declaration, err error) {
	defer catch(&err)
	decls = make([]Declaration, 0, table.Len())
	for i, e := range table.entries {
		r := reduceOps(expand(e))
		n := r.Ops()
		ops += n
		decls = append(decls, Declaration{Name: prefix + strconv.Itoa(i), Expr: r, Ops: n})
	}
	return ops, decls, nil
}

// ============================================================
// Integrand construction
// ============================================================

// Term is one weighted product of an integrand.
type Term struct {
	Weight float64
	Basis  []Expr
	IP     []Expr
}

// Integrand sums the weighted products of terms. Terms with zero weight
// are skipped.
func Integrand(terms []Term) Expr {
	var out []Expr
	for _, t := range terms {
		if t.Weight == 0 {
			continue
		}
		members := append(append([]Expr{}, t.Basis...), t.IP...)
		if len(members) == 0 {
			out = append(out, C(t.Weight))
			continue
		}
		out = append(out, recon(newProduct(members, t.Weight)))
	}
	return sumOf(out)
}
