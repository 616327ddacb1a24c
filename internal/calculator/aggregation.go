package calculator

import (
	"strings"

	"TaxSentinel/internal/advice"
	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Concession is a turnover-tested concession and the rate key holding its threshold.
type Concession struct {
	Name         string
	Label        string
	ThresholdKey string
}

// GeneralConcession is the concession whose threshold defines the eligibility margin.
const GeneralConcession = "small_business_entity"

// Concessions are evaluated in this order.
var Concessions = []Concession{
	{GeneralConcession, "Small business entity concessions", model.RateSBETurnoverThreshold},
	{"instant_asset_write_off", "Instant asset write-off", model.RateInstantWriteOffTurnover},
	{"small_business_income_tax_offset", "Small business income tax offset", model.RateSBIncomeTaxOffsetThreshold},
	{"small_business_cgt_concessions", "Small business CGT concessions (turnover test)", model.RateCGTConcessionTurnover},
	{"base_rate_entity", "Base rate entity company tax rate", model.RateBaseRateEntityThreshold},
}

// connectedControlThreshold is the usual control percentage for connected-entity status.
var connectedControlThreshold = decimal.NewFromInt(40)

// CheckEligibility aggregates turnover across the primary entity and every
// connected or affiliated entity and tests each concession threshold.
//
// All supplied entities are aggregated whatever their relationship or control
// percentage; low-control entities are flagged for review, not excluded.
func CheckEligibility(entities []model.Entity, snap model.RateSnapshot) (model.EligibilityResult, error) {
	if len(entities) == 0 {
		return model.EligibilityResult{}, model.Invalid("entities", "at least one entity is required")
	}
	primaries := 0
	for _, e := range entities {
		if err := e.Validate(); err != nil {
			return model.EligibilityResult{}, err
		}
		if e.Relationship == model.RelationshipPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		return model.EligibilityResult{}, model.Invalid("relationship", "exactly one primary entity is required, got %d", primaries)
	}

	general, err := snap.Require(model.RateSBETurnoverThreshold)
	if err != nil {
		return model.EligibilityResult{}, err
	}
	ratio, err := snap.Require(model.RateMaterialityRatio)
	if err != nil {
		return model.EligibilityResult{}, err
	}

	b := advice.NewBuilder()
	b.Degraded(snap)

	aggregated := decimal.Zero
	for _, e := range entities {
		aggregated = aggregated.Add(e.Turnover)
		if e.Relationship != model.RelationshipPrimary && e.ControlPercentage != nil &&
			e.ControlPercentage.LessThan(connectedControlThreshold) {
			b.Warn("%s is included in aggregated turnover with %s%% control; connected-entity status normally needs at least %s%% control, confirm before relying on this result",
				e.Name, e.ControlPercentage.String(), connectedControlThreshold.String())
		}
	}

	concessions := make([]model.ConcessionEligibility, 0, len(Concessions))
	var qualifying []string
	for _, c := range Concessions {
		threshold, err := snap.Require(c.ThresholdKey)
		if err != nil {
			return model.EligibilityResult{}, err
		}
		eligible := aggregated.LessThan(threshold)
		concessions = append(concessions, model.ConcessionEligibility{
			Name:      c.Name,
			Threshold: threshold,
			Eligible:  eligible,
			Margin:    threshold.Sub(aggregated),
		})
		if eligible {
			qualifying = append(qualifying, c.Label)
		}
	}

	margin := general.Sub(aggregated)
	eligible := aggregated.LessThan(general)
	b.CheckMargin("Small business entity", margin, general.Mul(ratio))

	if len(qualifying) > 0 {
		b.Recommend("Primary entity qualifies for: %s", strings.Join(qualifying, ", "))
	}
	if !eligible {
		b.Recommend("Aggregated turnover of %s is not below the %s small business threshold; review the group structure and whether each connected entity is genuinely controlled before claiming small business concessions",
			advice.Money(aggregated), advice.Money(general))
	}

	return model.EligibilityResult{
		AggregatedTurnover:      aggregated,
		GeneralThreshold:        general,
		IsPrimaryEntityEligible: eligible,
		Margin:                  margin,
		Concessions:             concessions,
		Warnings:                b.Warnings(),
		Recommendations:         b.Recommendations(),
		RateSource:              snap.Source,
	}, nil
}
