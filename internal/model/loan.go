package model

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Loan is a related-party (Division 7A) loan from a private company.
type Loan struct {
	Principal decimal.Decimal `json:"principal"`
	StartDate time.Time       `json:"start_date"`
	// IsSecured is true when the loan is secured by a registered mortgage over real property.
	IsSecured  bool             `json:"is_secured"`
	StatedRate *decimal.Decimal `json:"stated_rate,omitempty"`
	// HasWrittenAgreement is nil when unknown.
	HasWrittenAgreement *bool `json:"has_written_agreement,omitempty"`
	// ActualRepayments maps a schedule year (1-based) to the amount actually repaid that year.
	ActualRepayments map[int]decimal.Decimal `json:"actual_repayments,omitempty"`
}

// Validate checks the loan before any scheduling is attempted.
func (l Loan) Validate() error {
	if !l.Principal.IsPositive() {
		return Invalid("principal", "must be positive, got %s", l.Principal)
	}
	if l.StartDate.IsZero() {
		return Invalid("start_date", "is required")
	}
	if l.StatedRate != nil && !l.StatedRate.IsPositive() {
		return Boundary("stated_rate", "must be positive, got %s", l.StatedRate)
	}
	for _, year := range slices.Sorted(maps.Keys(l.ActualRepayments)) {
		amt := l.ActualRepayments[year]
		if year < 1 {
			return Invalid("actual_repayments", "year %d is out of range", year)
		}
		if amt.IsNegative() {
			return Invalid("actual_repayments", "year %d repayment is negative", year)
		}
	}
	return nil
}

// RepaymentPeriod is one income year of a minimum repayment schedule.
type RepaymentPeriod struct {
	Year               int             `json:"year"`
	FinancialYear      string          `json:"financial_year"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	MinimumRepayment   decimal.Decimal `json:"minimum_repayment"`
	Interest           decimal.Decimal `json:"interest"`
	Principal          decimal.Decimal `json:"principal"`
	ClosingBalance     decimal.Decimal `json:"closing_balance"`
	DeemedDividendRisk decimal.Decimal `json:"deemed_dividend_risk"`
	// Shortfall is minimum minus actual repayment, set only when an actual repayment is known.
	Shortfall *decimal.Decimal `json:"shortfall,omitempty"`
}

// LoanSchedule is the full minimum repayment schedule of a loan.
type LoanSchedule struct {
	BenchmarkRate     decimal.Decimal   `json:"benchmark_rate"`
	EffectiveRate     decimal.Decimal   `json:"effective_rate"`
	LoanTerm          int               `json:"loan_term"`
	MinimumRepayment  decimal.Decimal   `json:"minimum_repayment"`
	TotalInterest     decimal.Decimal   `json:"total_interest"`
	TotalRepayments   decimal.Decimal   `json:"total_repayments"`
	RepaymentSchedule []RepaymentPeriod `json:"repayment_schedule"`
	Warnings          []string          `json:"warnings"`
	Recommendations   []string          `json:"recommendations"`
	RateSource        string            `json:"rate_source"`
}
