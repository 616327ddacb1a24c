package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObligationKind selects the projection performed by the obligation analyzer.
type ObligationKind string

const (
	ObligationInstalment ObligationKind = "instalment"
	ObligationPayroll    ObligationKind = "payroll"
)

// InstalmentMethod is how a periodic instalment is worked out.
type InstalmentMethod string

const (
	MethodNotifiedAmount InstalmentMethod = "notified_amount"
	MethodNotifiedRate   InstalmentMethod = "notified_rate"
	MethodVariedAmount   InstalmentMethod = "varied_amount"
	MethodPayrollTax     InstalmentMethod = "payroll_tax"
)

// Frequency of an instalment schedule.
type Frequency string

const (
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyMonthly   Frequency = "monthly"
)

// InstalmentParams drives an instalment projection.
type InstalmentParams struct {
	Method    InstalmentMethod `json:"method"`
	Frequency Frequency        `json:"frequency"`
	// NotifiedAmount is the per-period amount for notified_amount.
	NotifiedAmount decimal.Decimal `json:"notified_amount"`
	// NotifiedRate is applied to instalment income for notified_rate.
	NotifiedRate decimal.Decimal `json:"notified_rate"`
	// InstalmentIncome is the projected per-period instalment income (turnover).
	InstalmentIncome decimal.Decimal `json:"instalment_income"`
	// VariedAmount is the caller-varied per-period amount for varied_amount.
	VariedAmount decimal.Decimal `json:"varied_amount"`
	// VariedRate, when set, replaces VariedAmount and is applied to instalment income.
	VariedRate *decimal.Decimal `json:"varied_rate,omitempty"`
}

// GroupMember is one member of a payroll tax group.
type GroupMember struct {
	Name string `json:"name"`
	// AnnualWages maps a jurisdiction code (NSW, VIC, ...) to annual taxable wages.
	AnnualWages map[string]decimal.Decimal `json:"annual_wages"`
}

// PayrollParams drives a grouped, multi-jurisdiction payroll tax projection.
type PayrollParams struct {
	Members []GroupMember `json:"members"`
}

// ObligationParams is the input of an obligation projection.
type ObligationParams struct {
	Kind ObligationKind `json:"kind"`
	// Start is any date inside the first projected period.
	Start      time.Time         `json:"start"`
	Instalment *InstalmentParams `json:"instalment,omitempty"`
	Payroll    *PayrollParams    `json:"payroll,omitempty"`
}

// ObligationPeriod is one projected liability.
type ObligationPeriod struct {
	Label       string           `json:"label"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	Liability   decimal.Decimal  `json:"liability"`
	DueDate     time.Time        `json:"due_date"`
	Method      InstalmentMethod `json:"method"`
	// Breakdown is the per-jurisdiction liability for payroll projections.
	Breakdown map[string]decimal.Decimal `json:"breakdown,omitempty"`
}
