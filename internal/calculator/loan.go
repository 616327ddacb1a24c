package calculator

import (
	"TaxSentinel/internal/advice"
	"TaxSentinel/internal/model"
	"TaxSentinel/internal/money"

	"github.com/shopspring/decimal"
)

// Division 7A maximum loan terms in years.
const (
	SecuredLoanTerm   = 25
	UnsecuredLoanTerm = 7
)

var one = decimal.NewFromInt(1)

// LoanTerm is 25 years for a loan secured by a registered mortgage, else 7.
func LoanTerm(secured bool) int {
	if secured {
		return SecuredLoanTerm
	}
	return UnsecuredLoanTerm
}

// AnnualRepayment is the fixed yearly payment that amortises principal over
// term years at rate, rounded up to the cent so it never understates the minimum.
func AnnualRepayment(principal, rate decimal.Decimal, term int) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, model.Boundary("rate", "amortisation needs a positive rate, got %s", rate)
	}
	if term < 1 {
		return decimal.Zero, model.Boundary("term", "must be at least one year, got %d", term)
	}
	growth, err := money.Pow(one.Add(rate), term)
	if err != nil {
		return decimal.Zero, model.Boundary("term", "%v", err)
	}
	q, err := money.Div(principal.Mul(rate).Mul(growth), growth.Sub(one))
	if err != nil {
		return decimal.Zero, model.Boundary("rate", "amortisation formula undefined: %v", err)
	}
	return money.Currency(q, money.Up), nil
}

// ScheduleLoan builds the minimum yearly repayment schedule of a Division 7A loan.
func ScheduleLoan(loan model.Loan, snap model.RateSnapshot) (model.LoanSchedule, error) {
	if err := loan.Validate(); err != nil {
		return model.LoanSchedule{}, err
	}
	bench, err := snap.Require(model.RateDiv7ABenchmark)
	if err != nil {
		return model.LoanSchedule{}, err
	}
	if !bench.IsPositive() {
		return model.LoanSchedule{}, model.Boundary(model.RateDiv7ABenchmark, "must be positive, got %s", bench)
	}

	b := advice.NewBuilder()
	b.Degraded(snap)

	term := LoanTerm(loan.IsSecured)
	rate := bench
	if loan.StatedRate != nil {
		rate = *loan.StatedRate
		if rate.LessThan(bench) {
			b.Warn("Stated interest rate %s is below the Division 7A benchmark rate %s", advice.Percent(rate), advice.Percent(bench))
			b.Recommend("Increase the loan interest rate to at least %s to avoid the shortfall being treated as a deemed dividend", advice.Percent(bench))
		}
	}
	if loan.HasWrittenAgreement != nil && !*loan.HasWrittenAgreement {
		b.Warn("No written loan agreement is recorded; without one before the company's lodgment day the loan is treated as a deemed dividend")
		b.Recommend("Put a complying written loan agreement in place before the company's lodgment day")
	}

	payment, err := AnnualRepayment(loan.Principal, rate, term)
	if err != nil {
		return model.LoanSchedule{}, err
	}

	startFY := FinancialYearEnding(loan.StartDate)
	periods := make([]model.RepaymentPeriod, 0, term)
	totalInterest, totalRepaid := decimal.Zero, decimal.Zero
	shortfallSeen := false

	opening := loan.Principal
	for year := 1; year <= term && opening.IsPositive(); year++ {
		interest := money.Currency(opening.Mul(rate), money.Up)
		minimum := payment
		principal := minimum.Sub(interest)
		if principal.IsNegative() {
			return model.LoanSchedule{}, model.Boundary("rate", "repayment %s does not cover interest %s in year %d", payment, interest, year)
		}
		// The last year clears whatever rounding has left behind.
		if year == term || principal.GreaterThanOrEqual(opening) {
			principal = opening
			minimum = interest.Add(opening)
		}
		closing := money.NonNegative(opening.Sub(principal))

		label := FYLabel(startFY + year)
		p := model.RepaymentPeriod{
			Year:               year,
			FinancialYear:      label,
			OpeningBalance:     opening,
			MinimumRepayment:   minimum,
			Interest:           interest,
			Principal:          principal,
			ClosingBalance:     closing,
			DeemedDividendRisk: minimum,
		}
		if actual, ok := loan.ActualRepayments[year]; ok {
			s := minimum.Sub(actual)
			p.Shortfall = &s
			if b.CheckShortfall(label, s) {
				shortfallSeen = true
			}
		}
		periods = append(periods, p)

		totalInterest = totalInterest.Add(interest)
		totalRepaid = totalRepaid.Add(minimum)
		opening = closing
	}

	if shortfallSeen {
		b.Recommend("Make up repayment shortfalls before the company's lodgment day; an unpaid shortfall is assessed as an unfranked deemed dividend")
	}

	return model.LoanSchedule{
		BenchmarkRate:     bench,
		EffectiveRate:     rate,
		LoanTerm:          term,
		MinimumRepayment:  payment,
		TotalInterest:     totalInterest,
		TotalRepayments:   totalRepaid,
		RepaymentSchedule: periods,
		Warnings:          b.Warnings(),
		Recommendations:   b.Recommendations(),
		RateSource:        snap.Source,
	}, nil
}
