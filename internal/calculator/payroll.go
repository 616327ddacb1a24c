package calculator

import (
	"slices"
	"time"

	"TaxSentinel/internal/model"
	"TaxSentinel/internal/money"

	"github.com/shopspring/decimal"
)

const payrollDueDay = 7

var twelve = decimal.NewFromInt(12)

// jurisdictionLiability is the annual position of one jurisdiction for the whole group.
type jurisdictionLiability struct {
	code      string
	wages     decimal.Decimal
	threshold decimal.Decimal // share of the annual threshold apportioned to this jurisdiction
	rate      decimal.Decimal
}

// groupPayroll aggregates wages across all group members per jurisdiction and
// apportions each jurisdiction's threshold by its share of total group wages.
func groupPayroll(p model.PayrollParams, snap model.RateSnapshot) ([]jurisdictionLiability, error) {
	if len(p.Members) == 0 {
		return nil, model.Invalid("members", "at least one group member is required")
	}

	wages := map[string]decimal.Decimal{}
	for _, m := range p.Members {
		for code, w := range m.AnnualWages {
			if w.IsNegative() {
				return nil, model.Invalid("annual_wages", "%s: %s wages must not be negative", m.Name, code)
			}
			wages[code] = wages[code].Add(w)
		}
	}

	codes := make([]string, 0, len(wages))
	for code := range wages {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	total := decimal.Zero
	for _, code := range codes {
		total = total.Add(wages[code])
	}

	out := make([]jurisdictionLiability, 0, len(codes))
	for _, code := range codes {
		threshold, err := snap.Require(model.PayrollThresholdKey(code))
		if err != nil {
			return nil, model.Invalid("jurisdiction", "no payroll tax threshold for %q", code)
		}
		rate, err := snap.Require(model.PayrollRateKey(code))
		if err != nil {
			return nil, model.Invalid("jurisdiction", "no payroll tax rate for %q", code)
		}
		share := decimal.Zero
		if total.IsPositive() {
			ratio, err := money.Div(wages[code], total)
			if err != nil {
				return nil, model.Boundary("annual_wages", "%v", err)
			}
			share = threshold.Mul(ratio)
		}
		out = append(out, jurisdictionLiability{code: code, wages: wages[code], threshold: share, rate: rate})
	}
	return out, nil
}

// monthly is this jurisdiction's liability for one month: wages and threshold
// are both taken as a twelfth of the annual figure.
func (j jurisdictionLiability) monthly() decimal.Decimal {
	taxable := money.NonNegative(j.wages.Sub(j.threshold))
	return money.Currency(taxable.Mul(j.rate).DivRound(twelve, 16), money.HalfUp)
}

func projectPayroll(p model.PayrollParams, snap model.RateSnapshot, start time.Time, horizon int) ([]model.ObligationPeriod, error) {
	juris, err := groupPayroll(p, snap)
	if err != nil {
		return nil, err
	}

	out := make([]model.ObligationPeriod, 0, horizon)
	for _, per := range months(start, horizon) {
		breakdown := make(map[string]decimal.Decimal, len(juris))
		total := decimal.Zero
		for _, j := range juris {
			amt := j.monthly()
			breakdown[j.code] = amt
			total = total.Add(amt)
		}
		out = append(out, model.ObligationPeriod{
			Label:       per.start.Format("2006-01"),
			PeriodStart: per.start,
			PeriodEnd:   per.end,
			Liability:   total,
			DueDate:     nextMonthDay(per.end, payrollDueDay),
			Method:      model.MethodPayrollTax,
			Breakdown:   breakdown,
		})
	}
	return out, nil
}
