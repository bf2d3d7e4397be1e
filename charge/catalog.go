package charge

import (
	"errors"
	"fmt"

	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/schedule"
)

var (
	// ErrDuplicateCharge is returned when two definitions share an identifier.
	ErrDuplicateCharge = errors.New("duplicate charge identifier")

	// ErrUnknownSegmentSet is returned when a definition references a
	// segment set the product does not define.
	ErrUnknownSegmentSet = errors.New("unknown balance segment set")
)

// =============================================================================
// CATALOG - The charges of one product
// =============================================================================

// Catalog is the ordered, immutable set of charge definitions of a product
// together with the balance segment sets their ranges refer to.
type Catalog struct {
	definitions []*Definition
	byID        map[string]*Definition
	ranges      map[string]Range
}

// NewCatalog validates the definitions and resolves their ranges.
func NewCatalog(pattern *account.Pattern, definitions []*Definition, segmentSets []SegmentSet) (*Catalog, error) {
	sets := make(map[string]SegmentSet, len(segmentSets))
	for _, s := range segmentSets {
		sets[s.Identifier] = s
	}

	c := &Catalog{
		byID:   make(map[string]*Definition, len(definitions)),
		ranges: make(map[string]Range),
	}
	for _, def := range definitions {
		if err := def.Validate(pattern); err != nil {
			return nil, err
		}
		if _, dup := c.byID[def.Identifier]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCharge, def.Identifier)
		}
		if def.HasRange() {
			set, ok := sets[def.SegmentSet]
			if !ok {
				return nil, fmt.Errorf("charge %s: %w: %s", def.Identifier, ErrUnknownSegmentSet, def.SegmentSet)
			}
			r, err := set.Range(def.FromSegment, def.ToSegment)
			if err != nil {
				return nil, fmt.Errorf("charge %s: %w", def.Identifier, err)
			}
			c.ranges[def.Identifier] = r
		}
		c.byID[def.Identifier] = def
		c.definitions = append(c.definitions, def)
	}
	return c, nil
}

// Definitions returns the definitions in catalog order.
func (c *Catalog) Definitions() []*Definition {
	out := make([]*Definition, len(c.definitions))
	copy(out, c.definitions)
	return out
}

// Lookup finds a definition by identifier.
func (c *Catalog) Lookup(identifier string) (*Definition, bool) {
	def, ok := c.byID[identifier]
	return def, ok
}

// RangeFor returns the resolved range of a definition, if it has one.
func (c *Catalog) RangeFor(def *Definition) *Range {
	r, ok := c.ranges[def.Identifier]
	if !ok {
		return nil
	}
	return &r
}

// ForAction returns the definitions charged or accrued on action.
func (c *Catalog) ForAction(action schedule.Action) []*Definition {
	var out []*Definition
	for _, def := range c.definitions {
		if def.ChargeAction == action || (def.AccrueAction != "" && def.AccrueAction == action) {
			out = append(out, def)
		}
	}
	return out
}

// ScheduledCharges pairs every action with each definition charged or
// accrued on it, sorted by Compare.
func (c *Catalog) ScheduledCharges(actions []schedule.ScheduledAction) []ScheduledCharge {
	byAction := make(map[schedule.Action][]*Definition)
	var charges []ScheduledCharge
	for _, sa := range actions {
		defs, ok := byAction[sa.Action]
		if !ok {
			defs = c.ForAction(sa.Action)
			byAction[sa.Action] = defs
		}
		for _, def := range defs {
			charges = append(charges, ScheduledCharge{Action: sa, Definition: def, Range: c.RangeFor(def)})
		}
	}
	Sort(charges)
	return charges
}

// With returns a copy of the catalog with extra definitions appended.
// Synthetic definitions built per action are added this way so they are
// scheduled like configured ones.
func (c *Catalog) With(definitions ...*Definition) *Catalog {
	out := &Catalog{
		definitions: append(c.Definitions(), definitions...),
		byID:        make(map[string]*Definition, len(c.byID)+len(definitions)),
		ranges:      c.ranges,
	}
	for _, def := range out.definitions {
		out.byID[def.Identifier] = def
	}
	return out
}
