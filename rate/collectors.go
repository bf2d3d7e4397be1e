package rate

import "github.com/shopspring/decimal"

// =============================================================================
// RATE REDUCERS
// =============================================================================

// Compound reduces per-period rates r1..rn to Π(1+ri) − 1.
//
// The zero value is not usable; create one with NewCompound. Two partial
// reductions can be combined with Merge in any order.
type Compound struct {
	precision int32
	product   decimal.Decimal
	count     int
}

// NewCompound returns an empty reducer rounding its result to precision digits.
func NewCompound(precision int32) *Compound {
	return &Compound{precision: precision, product: one}
}

// Add folds one more period rate in.
func (c *Compound) Add(r decimal.Decimal) *Compound {
	c.product = c.product.Mul(one.Add(r)).RoundBank(c.precision + guardDigits)
	c.count++
	return c
}

// Merge folds another partial reduction in.
func (c *Compound) Merge(other *Compound) *Compound {
	c.product = c.product.Mul(other.product).RoundBank(c.precision + guardDigits)
	c.count += other.count
	return c
}

// Count is the number of rates folded in so far.
func (c *Compound) Count() int { return c.count }

// Result returns the compound rate; 0 for an empty reduction.
func (c *Compound) Result() decimal.Decimal {
	return c.product.Sub(one).RoundBank(c.precision)
}

// CompoundRates is a one-shot Compound reduction.
func CompoundRates(precision int32, rates ...decimal.Decimal) decimal.Decimal {
	c := NewCompound(precision)
	for _, r := range rates {
		c.Add(r)
	}
	return c.Result()
}

// GeometricMean reduces per-period rates to the single rate k such that
// compounding k over n periods gives the same result as compounding the
// original rates: k = (Π(1+ri))^(1/n) − 1.
type GeometricMean struct {
	inner *Compound
}

// NewGeometricMean returns an empty reducer rounding its result to precision digits.
func NewGeometricMean(precision int32) *GeometricMean {
	return &GeometricMean{inner: NewCompound(precision)}
}

func (g *GeometricMean) Add(r decimal.Decimal) *GeometricMean {
	g.inner.Add(r)
	return g
}

func (g *GeometricMean) Merge(other *GeometricMean) *GeometricMean {
	g.inner.Merge(other.inner)
	return g
}

// Result returns the mean rate; 0 for an empty reduction.
func (g *GeometricMean) Result() decimal.Decimal {
	if g.inner.count == 0 {
		return decimal.Zero
	}
	working := g.inner.precision + guardDigits
	return Root(g.inner.product, g.inner.count, working).Sub(one).RoundBank(g.inner.precision)
}

// GeometricMeanRate is a one-shot GeometricMean reduction.
func GeometricMeanRate(precision int32, rates ...decimal.Decimal) decimal.Decimal {
	g := NewGeometricMean(precision)
	for _, r := range rates {
		g.Add(r)
	}
	return g.Result()
}
