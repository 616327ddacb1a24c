package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the domain classification of a transaction.
type Category string

const (
	CategoryUnknown          Category = "unknown"
	CategoryFuel             Category = "fuel_purchase"
	CategoryUPE              Category = "unpaid_present_entitlement"
	CategoryShareholderLoan  Category = "shareholder_loan"
	CategoryRnD              Category = "rnd_expenditure"
	CategoryMotorVehicle     Category = "motor_vehicle"
	CategoryTravel           Category = "travel"
	CategoryProfessionalFees Category = "professional_fees"
	CategorySoftware         Category = "software_subscription"
	CategoryCapitalAsset     Category = "capital_asset"
	CategoryWages            Category = "wages"
)

// Platform is the accounting system a transaction came from.
type Platform string

const (
	PlatformXero       Platform = "xero"
	PlatformMYOB       Platform = "myob"
	PlatformQuickBooks Platform = "quickbooks"
)

// Record is a platform transaction decoded into a single shape.
type Record struct {
	ID          string           `json:"id"`
	Platform    Platform         `json:"platform"`
	Date        time.Time        `json:"date"`
	Supplier    string           `json:"supplier"`
	Description string           `json:"description"`
	AccountCode string           `json:"account_code"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// Data quality flags attached to a ClassificationResult.
const (
	FlagMissingDescription = "missing_description"
	FlagMissingSupplier    = "missing_supplier"
	FlagMissingAmount      = "missing_amount"
	FlagMissingAccountCode = "missing_account_code"
	FlagNegativeAmount     = "negative_amount"
	FlagMissingDate        = "missing_date"
	FlagAboveWriteOff      = "above_instant_write_off"
)

// ClassificationResult is the best-effort category of one record.
type ClassificationResult struct {
	RecordID   string           `json:"record_id"`
	Category   Category         `json:"category"`
	Confidence int              `json:"confidence"`
	Rule       string           `json:"rule,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Unit       string           `json:"unit,omitempty"`
	Flags      []string         `json:"flags"`
}
