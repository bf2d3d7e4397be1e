package product

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// ProductYAML is the file representation of a product.
type ProductYAML struct {
	Identifier            string              `yaml:"identifier"`
	Name                  string              `yaml:"name"`
	Description           string              `yaml:"description,omitempty"`
	MinorCurrencyDigits   *int32              `yaml:"minor_currency_digits,omitempty"`
	AccrualAccounting     bool                `yaml:"accrual_accounting,omitempty"`
	IncludeDefaultCharges bool                `yaml:"include_default_charges,omitempty"`
	InterestRange         *BoundsYAML         `yaml:"interest_range,omitempty"`
	BalanceRange          *BoundsYAML         `yaml:"balance_range,omitempty"`
	TermRange             *TermRangeYAML      `yaml:"term_range,omitempty"`
	BalanceSegmentSets    []SegmentSetYAML    `yaml:"balance_segment_sets,omitempty"`
	Charges               []ChargeYAML        `yaml:"charges,omitempty"`
	LossProvisionSteps    []ProvisionStepYAML `yaml:"loss_provision_steps,omitempty"`
	AccountAssignments    []AssignmentYAML    `yaml:"account_assignments,omitempty"`
}

// BoundsYAML is an inclusive interval.
type BoundsYAML struct {
	Minimum decimal.Decimal `yaml:"minimum"`
	Maximum decimal.Decimal `yaml:"maximum"`
}

// TermRangeYAML bounds the term of a case.
type TermRangeYAML struct {
	TemporalUnit string `yaml:"temporal_unit"`
	Maximum      int    `yaml:"maximum"`
}

// SegmentSetYAML is a named set of balance segments.
type SegmentSetYAML struct {
	Identifier string        `yaml:"identifier"`
	Segments   []SegmentYAML `yaml:"segments"`
}

// SegmentYAML is one segment of a set.
type SegmentYAML struct {
	Identifier string          `yaml:"identifier"`
	LowerBound decimal.Decimal `yaml:"lower_bound"`
}

// ChargeYAML is a charge definition.
type ChargeYAML struct {
	Identifier       string           `yaml:"identifier"`
	Name             string           `yaml:"name,omitempty"`
	Description      string           `yaml:"description,omitempty"`
	ChargeAction     string           `yaml:"charge_action"`
	AccrueAction     string           `yaml:"accrue_action,omitempty"`
	AccrualAccount   string           `yaml:"accrual_account,omitempty"`
	Method           string           `yaml:"method"`
	Amount           *decimal.Decimal `yaml:"amount,omitempty"`
	ProportionalTo   string           `yaml:"proportional_to,omitempty"`
	FromAccount      string           `yaml:"from_account"`
	ToAccount        string           `yaml:"to_account"`
	ForCycleSizeUnit string           `yaml:"for_cycle_size_unit,omitempty"`
	SegmentSet       string           `yaml:"segment_set,omitempty"`
	FromSegment      string           `yaml:"from_segment,omitempty"`
	ToSegment        string           `yaml:"to_segment,omitempty"`
	ChargeOnTop      bool             `yaml:"charge_on_top,omitempty"`
}

// ProvisionStepYAML is a loss provisioning step.
type ProvisionStepYAML struct {
	DaysLate         int             `yaml:"days_late"`
	PercentProvision decimal.Decimal `yaml:"percent_provision"`
}

// AssignmentYAML binds a role to a ledger account.
type AssignmentYAML struct {
	Designator string `yaml:"designator"`
	Account    string `yaml:"account"`
}

// defaultMinorCurrencyDigits applies when a product does not set one.
const defaultMinorCurrencyDigits int32 = 2

// =============================================================================
// LOADING
// =============================================================================

// LoadFile reads and parses a product file.
func LoadFile(path string) (*Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a YAML product definition.
func Parse(data []byte) (*Product, error) {
	var py ProductYAML
	if err := yaml.Unmarshal(data, &py); err != nil {
		return nil, fmt.Errorf("failed to parse product YAML: %w", err)
	}
	return FromYAML(py)
}

// FromYAML validates a schema value and builds the product.
func FromYAML(py ProductYAML) (*Product, error) {
	if py.Identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", ErrInvalidProduct)
	}
	pattern := account.IndividualLending()

	p := &Product{
		Identifier:          py.Identifier,
		Name:                py.Name,
		Description:         py.Description,
		MinorCurrencyDigits: defaultMinorCurrencyDigits,
		AccrualAccounting:   py.AccrualAccounting,
		Pattern:             pattern,
	}
	if py.MinorCurrencyDigits != nil {
		if *py.MinorCurrencyDigits < 0 {
			return nil, fmt.Errorf("%w: negative minor currency digits", ErrInvalidProduct)
		}
		p.MinorCurrencyDigits = *py.MinorCurrencyDigits
	}

	var err error
	if p.InterestRange, err = parseBounds("interest range", py.InterestRange); err != nil {
		return nil, err
	}
	if p.BalanceRange, err = parseBounds("balance range", py.BalanceRange); err != nil {
		return nil, err
	}
	if py.TermRange != nil {
		unit, err := schedule.ParseChronoUnit(py.TermRange.TemporalUnit)
		if err != nil {
			return nil, fmt.Errorf("%w: term range: %w", ErrInvalidProduct, err)
		}
		if py.TermRange.Maximum < 1 {
			return nil, fmt.Errorf("%w: term range maximum must be positive", ErrInvalidProduct)
		}
		p.TermRange = &schedule.TermRange{TemporalUnit: unit, Maximum: py.TermRange.Maximum}
	}

	definitions, err := mergeCharges(py, pattern)
	if err != nil {
		return nil, err
	}
	sets := make([]charge.SegmentSet, 0, len(py.BalanceSegmentSets))
	for _, sy := range py.BalanceSegmentSets {
		segments := make([]charge.Segment, 0, len(sy.Segments))
		for _, seg := range sy.Segments {
			segments = append(segments, charge.Segment{Identifier: seg.Identifier, LowerBound: seg.LowerBound})
		}
		sets = append(sets, charge.NewSegmentSet(sy.Identifier, segments...))
	}
	if p.Catalog, err = charge.NewCatalog(pattern, definitions, sets); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}

	seenSteps := make(map[int]bool)
	for _, s := range py.LossProvisionSteps {
		if s.DaysLate < 0 || seenSteps[s.DaysLate] {
			return nil, fmt.Errorf("%w: loss provision step for %d days late", ErrInvalidProduct, s.DaysLate)
		}
		seenSteps[s.DaysLate] = true
		p.LossProvisionSteps = append(p.LossProvisionSteps, LossProvisionStep{
			DaysLate:         s.DaysLate,
			PercentProvision: s.PercentProvision,
		})
	}
	sortSteps(p.LossProvisionSteps)

	for _, a := range py.AccountAssignments {
		d, err := pattern.Lookup(a.Designator)
		if err != nil {
			return nil, fmt.Errorf("%w: account assignment: %w", ErrInvalidProduct, err)
		}
		if pattern.IsGroup(d) {
			return nil, fmt.Errorf("%w: cannot assign an account to group %s", ErrInvalidProduct, d)
		}
		p.AccountAssignments = append(p.AccountAssignments, balance.AccountAssignment{Designator: d, AccountID: a.Account})
	}
	return p, nil
}

func parseBounds(what string, by *BoundsYAML) (*Bounds, error) {
	if by == nil {
		return nil, nil
	}
	if by.Maximum.LessThan(by.Minimum) {
		return nil, fmt.Errorf("%w: %s maximum below minimum", ErrInvalidProduct, what)
	}
	return &Bounds{Minimum: by.Minimum, Maximum: by.Maximum}, nil
}

// reservedIdentifiers are the charges built per action at run time.
var reservedIdentifiers = map[string]bool{
	charge.ProvisionForLossesID: true,
	charge.WriteOffPrincipalID:  true,
	charge.WriteOffInterestID:   true,
	charge.WriteOffFeesID:       true,
	charge.RecoverLossID:        true,
}

// mergeCharges starts from the default charges when asked to and lets the
// file override them by identifier. Configured charges keep file order
// after the defaults.
func mergeCharges(py ProductYAML, pattern *account.Pattern) ([]*charge.Definition, error) {
	var definitions []*charge.Definition
	index := make(map[string]int)
	if py.IncludeDefaultCharges {
		for _, def := range DefaultCharges() {
			index[def.Identifier] = len(definitions)
			definitions = append(definitions, def)
		}
	}

	for _, cy := range py.Charges {
		if reservedIdentifiers[cy.Identifier] {
			return nil, fmt.Errorf("%w: charge identifier %s is reserved", ErrInvalidProduct, cy.Identifier)
		}
		def, err := parseCharge(cy, pattern)
		if err != nil {
			return nil, err
		}
		if i, ok := index[def.Identifier]; ok {
			if definitions[i].ReadOnly {
				return nil, fmt.Errorf("%w: %s", ErrReadOnlyCharge, def.Identifier)
			}
			definitions[i] = def
			continue
		}
		index[def.Identifier] = len(definitions)
		definitions = append(definitions, def)
	}
	return definitions, nil
}

func parseCharge(cy ChargeYAML, pattern *account.Pattern) (*charge.Definition, error) {
	wrap := func(err error) error {
		return fmt.Errorf("%w: charge %s: %w", ErrInvalidProduct, cy.Identifier, err)
	}

	chargeAction, err := schedule.ParseAction(cy.ChargeAction)
	if err != nil {
		return nil, wrap(err)
	}
	method, err := charge.ParseMethod(cy.Method)
	if err != nil {
		return nil, wrap(err)
	}
	from, err := pattern.Lookup(cy.FromAccount)
	if err != nil {
		return nil, wrap(err)
	}
	to, err := pattern.Lookup(cy.ToAccount)
	if err != nil {
		return nil, wrap(err)
	}

	def := &charge.Definition{
		Identifier:     cy.Identifier,
		Name:           cy.Name,
		Description:    cy.Description,
		ChargeAction:   chargeAction,
		Method:         method,
		ProportionalTo: charge.Proportional(cy.ProportionalTo),
		FromAccount:    from,
		ToAccount:      to,
		SegmentSet:     cy.SegmentSet,
		FromSegment:    cy.FromSegment,
		ToSegment:      cy.ToSegment,
		ChargeOnTop:    cy.ChargeOnTop,
	}
	if cy.Amount != nil {
		def.Amount = *cy.Amount
	} else if method != charge.MethodInterest {
		return nil, wrap(fmt.Errorf("amount is required for %s charges", method))
	}
	if def.ProportionalTo == "" {
		def.ProportionalTo = charge.NotProportional
	}
	if cy.AccrueAction != "" {
		if def.AccrueAction, err = schedule.ParseAction(cy.AccrueAction); err != nil {
			return nil, wrap(err)
		}
	}
	if cy.AccrualAccount != "" {
		if def.AccrualAccount, err = pattern.Lookup(cy.AccrualAccount); err != nil {
			return nil, wrap(err)
		}
	}
	switch {
	case cy.ForCycleSizeUnit != "":
		if def.ForCycleSizeUnit, err = schedule.ParseChronoUnit(cy.ForCycleSizeUnit); err != nil {
			return nil, wrap(err)
		}
	case method == charge.MethodInterest:
		// Interest rates are annual.
		def.ForCycleSizeUnit = schedule.Years
	}
	return def, nil
}
