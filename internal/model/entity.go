package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Relationship is how an entity relates to the primary entity being tested.
type Relationship string

const (
	RelationshipPrimary   Relationship = "primary"
	RelationshipConnected Relationship = "connected"
	RelationshipAffiliate Relationship = "affiliate"
)

// Entity contributes turnover to an aggregated turnover test.
type Entity struct {
	Name              string           `json:"name"`
	Identifier        string           `json:"identifier,omitempty"`
	Turnover          decimal.Decimal  `json:"turnover"`
	Relationship      Relationship     `json:"relationship"`
	ControlPercentage *decimal.Decimal `json:"control_percentage,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// Validate checks a single entity.
func (e Entity) Validate() error {
	if e.Name == "" {
		return Invalid("name", "is required")
	}
	if e.Turnover.IsNegative() {
		return Invalid("turnover", "%s: must not be negative", e.Name)
	}
	switch e.Relationship {
	case RelationshipPrimary, RelationshipConnected, RelationshipAffiliate:
	default:
		return Invalid("relationship", "%s: unknown relationship %q", e.Name, e.Relationship)
	}
	if c := e.ControlPercentage; c != nil && (c.IsNegative() || c.GreaterThan(hundred)) {
		return Invalid("control_percentage", "%s: must be within 0-100, got %s", e.Name, c)
	}
	return nil
}

// ConcessionEligibility is the verdict for one turnover-tested concession.
type ConcessionEligibility struct {
	Name      string          `json:"name"`
	Threshold decimal.Decimal `json:"threshold"`
	Eligible  bool            `json:"eligible"`
	Margin    decimal.Decimal `json:"margin"`
}

// EligibilityResult is the aggregated turnover verdict for a group of entities.
type EligibilityResult struct {
	AggregatedTurnover      decimal.Decimal         `json:"aggregated_turnover"`
	GeneralThreshold        decimal.Decimal         `json:"general_threshold"`
	IsPrimaryEntityEligible bool                    `json:"is_primary_entity_eligible"`
	Margin                  decimal.Decimal         `json:"margin"`
	Concessions             []ConcessionEligibility `json:"concessions"`
	Warnings                []string                `json:"warnings"`
	Recommendations         []string                `json:"recommendations"`
	RateSource              string                  `json:"rate_source"`
}

// Eligible returns the named concession's verdict.
func (r EligibilityResult) Eligible(name string) (bool, error) {
	for _, c := range r.Concessions {
		if c.Name == name {
			return c.Eligible, nil
		}
	}
	return false, fmt.Errorf("unknown concession %q", name)
}
