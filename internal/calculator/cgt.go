package calculator

import (
	"fmt"
	"time"

	"TaxSentinel/internal/advice"
	"TaxSentinel/internal/model"
	"TaxSentinel/internal/money"

	"github.com/shopspring/decimal"
)

// Ownership beyond longOwnershipYears needs only longActiveYears of active use.
const (
	longOwnershipYears = 15
	longActiveYears    = 7
	longActiveMonths   = 6
)

// nearMissDays is how close to the 12-month mark a short-held disposal is flagged.
const nearMissDays = 60

// DiscountEligibleDate is the first disposal date that satisfies the 12-month
// holding rule: the 12-month anniversary of acquisition.
func DiscountEligibleDate(acquired time.Time) time.Time {
	return dateOnly(acquired).AddDate(1, 0, 0)
}

// HeldForDiscount reports whether the holding period allows the CGT discount.
func HeldForDiscount(acquired, disposed time.Time) bool {
	return !dateOnly(disposed).Before(DiscountEligibleDate(acquired))
}

func discountRate(entity model.EntityType, snap model.RateSnapshot) (decimal.Decimal, error) {
	switch entity {
	case model.EntityIndividual, model.EntityTrust:
		return snap.Require(model.RateCGTDiscountIndividual)
	case model.EntitySuperFund:
		return snap.Require(model.RateCGTDiscountSuperFund)
	case model.EntityCompany:
		return decimal.Zero, nil
	}
	return decimal.Zero, model.Invalid("entity_type", "unknown entity type %q", entity)
}

// lossPool applies losses against gains, never using more than is available.
type lossPool struct{ remaining decimal.Decimal }

func (p *lossPool) absorb(gain decimal.Decimal) (left, used decimal.Decimal) {
	used = money.Min(gain, p.remaining)
	p.remaining = p.remaining.Sub(used)
	return gain.Sub(used), used
}

// AnalyzeCapitalGains works out each event's gain and discount eligibility,
// runs the small business concession tests when asked, and nets the period.
//
// Current-year losses are applied first, then carried-forward losses, each to
// non-discountable gains before discountable ones. The discount applies last,
// to what remains.
func AnalyzeCapitalGains(events []model.CapitalGainsEvent, cgtCtx model.CGTContext, snap model.RateSnapshot) (model.CGTSummary, error) {
	rate, err := discountRate(cgtCtx.EntityType, snap)
	if err != nil {
		return model.CGTSummary{}, err
	}
	if cgtCtx.CarriedForwardLosses.IsNegative() {
		return model.CGTSummary{}, model.Invalid("carried_forward_losses", "must not be negative")
	}

	b := advice.NewBuilder()
	b.Degraded(snap)

	var netAssets *decimal.Decimal
	var ceiling, proportion decimal.Decimal
	if cgtCtx.EvaluateConcessions {
		if ceiling, err = snap.Require(model.RateCGTNetAssetCeiling); err != nil {
			return model.CGTSummary{}, err
		}
		if proportion, err = snap.Require(model.RateActiveAssetProportion); err != nil {
			return model.CGTSummary{}, err
		}
		if cgtCtx.NetAssetValue != nil {
			total := cgtCtx.NetAssetValue.Add(money.Sum(cgtCtx.ConnectedNetAssets...))
			netAssets = &total
		}
	}

	results := make([]model.CGTEventResult, 0, len(events))
	totalGains, totalLosses := decimal.Zero, decimal.Zero
	discountable, other := decimal.Zero, decimal.Zero

	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return model.CGTSummary{}, err
		}
		ev.HoldingDays = daysBetween(ev.AcquisitionDate, ev.DisposalDate)
		if ev.ActiveUseDays != nil && *ev.ActiveUseDays > ev.HoldingDays {
			return model.CGTSummary{}, model.Invalid("active_use_days", "%s: %d active days exceeds %d days owned",
				ev.AssetDescription, *ev.ActiveUseDays, ev.HoldingDays)
		}
		ev.Gain = ev.CapitalProceeds.Sub(ev.CostBase)
		ev.DiscountEligible = rate.IsPositive() && HeldForDiscount(ev.AcquisitionDate, ev.DisposalDate)

		switch {
		case ev.Gain.IsPositive():
			totalGains = totalGains.Add(ev.Gain)
			if ev.DiscountEligible {
				discountable = discountable.Add(ev.Gain)
			} else {
				other = other.Add(ev.Gain)
				if short := daysBetween(ev.DisposalDate, DiscountEligibleDate(ev.AcquisitionDate)); rate.IsPositive() && short > 0 && short <= nearMissDays {
					b.Warn("%s was disposed of %d days before qualifying for the CGT discount", ev.AssetDescription, short)
				}
			}
		case ev.Gain.IsNegative():
			totalLosses = totalLosses.Add(ev.Gain.Neg())
		}

		res := model.CGTEventResult{CapitalGainsEvent: ev}
		if cgtCtx.EvaluateConcessions {
			ct := concessionTest(ev, netAssets, ceiling, proportion)
			res.Concession = &ct
			switch ct.Overall {
			case model.VerdictPass:
				if ev.Gain.IsPositive() {
					b.Recommend("%s passes the small business CGT basic conditions; consider the 15-year exemption, 50%% active asset reduction, retirement exemption or rollover", ev.AssetDescription)
				}
			case model.VerdictInconclusive:
				b.Recommend("%s: supply %s so the small business CGT concession tests can be completed", ev.AssetDescription, missingInputs(ct))
			}
		}
		results = append(results, res)
	}

	current := &lossPool{remaining: totalLosses}
	other, _ = current.absorb(other)
	discountable, _ = current.absorb(discountable)

	carried := &lossPool{remaining: cgtCtx.CarriedForwardLosses}
	other, usedOther := carried.absorb(other)
	discountable, usedDisc := carried.absorb(discountable)

	discount := money.Currency(discountable.Mul(rate), money.HalfEven)
	net := other.Add(discountable).Sub(discount)
	carryForward := current.remaining.Add(carried.remaining)

	if carryForward.IsPositive() {
		b.Recommend("Record a net capital loss of %s to carry forward to future income years", advice.Money(carryForward))
	}

	return model.CGTSummary{
		Events:                       results,
		TotalGains:                   totalGains,
		TotalLosses:                  totalLosses,
		CarriedForwardLossesApplied:  usedOther.Add(usedDisc),
		DiscountRate:                 rate,
		DiscountApplied:              discount,
		NetCapitalGain:               net,
		NetCapitalLossCarriedForward: carryForward,
		Warnings:                     b.Warnings(),
		Recommendations:              b.Recommendations(),
		RateSource:                   snap.Source,
	}, nil
}

// concessionTest runs the net asset value and active asset tests for one event.
// Missing input makes a sub-test inconclusive, never a failure.
func concessionTest(ev model.CapitalGainsEvent, netAssets *decimal.Decimal, ceiling, proportion decimal.Decimal) model.ConcessionTest {
	ct := model.ConcessionTest{}

	switch {
	case netAssets == nil:
		ct.NetAssetTest = model.VerdictInconclusive
		ct.Notes = append(ct.Notes, "net asset value not supplied")
	case netAssets.LessThan(ceiling):
		ct.NetAssetTest = model.VerdictPass
	default:
		ct.NetAssetTest = model.VerdictFail
		ct.Notes = append(ct.Notes, fmt.Sprintf("net assets %s are not under the %s ceiling", advice.Money(*netAssets), advice.Money(ceiling)))
	}

	if ev.ActiveUseDays == nil {
		ct.ActiveAssetTest = model.VerdictInconclusive
		ct.Notes = append(ct.Notes, "active use period not supplied")
	} else {
		required := requiredActiveDays(ev, proportion)
		if *ev.ActiveUseDays >= required {
			ct.ActiveAssetTest = model.VerdictPass
		} else {
			ct.ActiveAssetTest = model.VerdictFail
			ct.Notes = append(ct.Notes, fmt.Sprintf("active for %d days, %d required", *ev.ActiveUseDays, required))
		}
	}

	switch {
	case ct.NetAssetTest == model.VerdictFail || ct.ActiveAssetTest == model.VerdictFail:
		ct.Overall = model.VerdictFail
	case ct.NetAssetTest == model.VerdictPass && ct.ActiveAssetTest == model.VerdictPass:
		ct.Overall = model.VerdictPass
	default:
		ct.Overall = model.VerdictInconclusive
	}
	return ct
}

// requiredActiveDays is the active use needed: the given proportion of the
// ownership period, or 7.5 years when the asset was owned for more than 15 years.
func requiredActiveDays(ev model.CapitalGainsEvent, proportion decimal.Decimal) int {
	acquired := dateOnly(ev.AcquisitionDate)
	if dateOnly(ev.DisposalDate).After(acquired.AddDate(longOwnershipYears, 0, 0)) {
		return daysBetween(acquired, acquired.AddDate(longActiveYears, longActiveMonths, 0))
	}
	return int(decimal.NewFromInt(int64(ev.HoldingDays)).Mul(proportion).Ceil().IntPart())
}

func missingInputs(ct model.ConcessionTest) string {
	switch {
	case ct.NetAssetTest == model.VerdictInconclusive && ct.ActiveAssetTest == model.VerdictInconclusive:
		return "net asset value and active use period"
	case ct.NetAssetTest == model.VerdictInconclusive:
		return "net asset value"
	default:
		return "active use period"
	}
}
