package calculator

import (
	"fmt"
	"time"

	"TaxSentinel/internal/model"
	"TaxSentinel/internal/money"

	"github.com/shopspring/decimal"
)

// MaxHorizon bounds the number of projected periods.
const MaxHorizon = 60

// Due date rules for activity statement instalments.
const (
	quarterlyDueDays   = 28
	monthlyDueDay      = 21
	decemberQuarterDue = 28 // 28 February
)

// period is one projection window, inclusive of both ends.
type period struct {
	start, end time.Time
}

// ProjectObligations projects horizon periods of tax obligations from params.
// Each period is worked out on its own; periods are returned oldest first.
func ProjectObligations(params model.ObligationParams, snap model.RateSnapshot, horizon int) ([]model.ObligationPeriod, error) {
	if horizon < 1 || horizon > MaxHorizon {
		return nil, model.Invalid("horizon", "must be between 1 and %d, got %d", MaxHorizon, horizon)
	}
	if params.Start.IsZero() {
		return nil, model.Invalid("start", "is required")
	}

	switch params.Kind {
	case model.ObligationInstalment:
		if params.Instalment == nil {
			return nil, model.Invalid("instalment", "parameters are required")
		}
		return projectInstalments(*params.Instalment, params.Start, horizon)
	case model.ObligationPayroll:
		if params.Payroll == nil {
			return nil, model.Invalid("payroll", "parameters are required")
		}
		return projectPayroll(*params.Payroll, snap, params.Start, horizon)
	}
	return nil, model.Invalid("kind", "unknown obligation kind %q", params.Kind)
}

func projectInstalments(p model.InstalmentParams, start time.Time, horizon int) ([]model.ObligationPeriod, error) {
	freq := p.Frequency
	if freq == "" {
		freq = model.FrequencyQuarterly
	}

	amount, err := instalmentAmount(p)
	if err != nil {
		return nil, err
	}

	var periods []period
	switch freq {
	case model.FrequencyQuarterly:
		periods = quarters(start, horizon)
	case model.FrequencyMonthly:
		periods = months(start, horizon)
	default:
		return nil, model.Invalid("frequency", "unknown frequency %q", freq)
	}

	out := make([]model.ObligationPeriod, 0, len(periods))
	for _, per := range periods {
		op := model.ObligationPeriod{
			PeriodStart: per.start,
			PeriodEnd:   per.end,
			Liability:   amount,
			Method:      p.Method,
		}
		if freq == model.FrequencyQuarterly {
			op.Label = quarterLabel(per.start)
			op.DueDate = quarterDueDate(per.end)
		} else {
			op.Label = per.start.Format("2006-01")
			op.DueDate = nextMonthDay(per.end, monthlyDueDay)
		}
		out = append(out, op)
	}
	return out, nil
}

// instalmentAmount is the same for every period: the inputs are per-period figures.
func instalmentAmount(p model.InstalmentParams) (decimal.Decimal, error) {
	switch p.Method {
	case model.MethodNotifiedAmount:
		if p.NotifiedAmount.IsNegative() {
			return decimal.Zero, model.Invalid("notified_amount", "must not be negative")
		}
		return p.NotifiedAmount, nil
	case model.MethodNotifiedRate:
		return rateOfIncome("notified_rate", p.NotifiedRate, p.InstalmentIncome)
	case model.MethodVariedAmount:
		if p.VariedRate != nil {
			return rateOfIncome("varied_rate", *p.VariedRate, p.InstalmentIncome)
		}
		if p.VariedAmount.IsNegative() {
			return decimal.Zero, model.Invalid("varied_amount", "must not be negative")
		}
		return p.VariedAmount, nil
	}
	return decimal.Zero, model.Invalid("method", "unknown instalment method %q", p.Method)
}

// rateOfIncome applies an instalment rate to the period's instalment income.
func rateOfIncome(field string, rate, income decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return decimal.Zero, model.Invalid(field, "must be within 0-1, got %s", rate)
	}
	if income.IsNegative() {
		return decimal.Zero, model.Invalid("instalment_income", "must not be negative")
	}
	return money.Currency(income.Mul(rate), money.HalfUp), nil
}

// quarters returns horizon calendar quarters starting with the one containing start.
func quarters(start time.Time, horizon int) []period {
	first := time.Date(start.Year(), ((start.Month()-1)/3)*3+1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]period, horizon)
	for i := range out {
		s := first.AddDate(0, 3*i, 0)
		out[i] = period{start: s, end: s.AddDate(0, 3, -1)}
	}
	return out
}

// months returns horizon calendar months starting with the one containing start.
func months(start time.Time, horizon int) []period {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]period, horizon)
	for i := range out {
		s := first.AddDate(0, i, 0)
		out[i] = period{start: s, end: s.AddDate(0, 1, -1)}
	}
	return out
}

// quarterLabel names a quarter by its position in the financial year, e.g. Q1 FY2024-25.
func quarterLabel(start time.Time) string {
	q := (int(start.Month())+5)%12/3 + 1
	return fmt.Sprintf("Q%d %s", q, FYLabel(FinancialYearEnding(start)))
}

// quarterDueDate is 28 days after quarter end, except the December quarter which is due 28 February.
func quarterDueDate(end time.Time) time.Time {
	if end.Month() == time.December {
		return time.Date(end.Year()+1, time.February, decemberQuarterDue, 0, 0, 0, 0, time.UTC)
	}
	return end.AddDate(0, 0, quarterlyDueDays)
}

// nextMonthDay is the given day of the month after t.
func nextMonthDay(t time.Time, day int) time.Time {
	return time.Date(t.Year(), t.Month()+1, day, 0, 0, 0, 0, time.UTC)
}
