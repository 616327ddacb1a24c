package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType selects the CGT discount available to the taxpayer.
type EntityType string

const (
	EntityIndividual EntityType = "individual"
	EntityTrust      EntityType = "trust"
	EntityCompany    EntityType = "company"
	EntitySuperFund  EntityType = "super_fund"
)

// Verdict is the outcome of a concession sub-test.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
	// VerdictInconclusive means the input was insufficient to run the test.
	VerdictInconclusive Verdict = "inconclusive"
)

// CapitalGainsEvent is a disposal of a CGT asset. Gain, DiscountEligible and
// HoldingDays are filled in by the analyzer on its own copy.
type CapitalGainsEvent struct {
	AssetDescription string          `json:"asset_description"`
	AcquisitionDate  time.Time       `json:"acquisition_date"`
	DisposalDate     time.Time       `json:"disposal_date"`
	CapitalProceeds  decimal.Decimal `json:"capital_proceeds"`
	CostBase         decimal.Decimal `json:"cost_base"`
	// ActiveUseDays is the number of owned days the asset was an active asset; nil when unknown.
	ActiveUseDays *int `json:"active_use_days,omitempty"`

	Gain             decimal.Decimal `json:"gain"`
	DiscountEligible bool            `json:"discount_eligible"`
	HoldingDays      int             `json:"holding_days"`
}

// Validate checks the caller-supplied fields of the event.
func (e CapitalGainsEvent) Validate() error {
	if e.AcquisitionDate.IsZero() || e.DisposalDate.IsZero() {
		return Invalid("dates", "%s: acquisition and disposal dates are required", e.AssetDescription)
	}
	if e.DisposalDate.Before(e.AcquisitionDate) {
		return Invalid("disposal_date", "%s: disposal %s precedes acquisition %s",
			e.AssetDescription, e.DisposalDate.Format(time.DateOnly), e.AcquisitionDate.Format(time.DateOnly))
	}
	if e.CapitalProceeds.IsNegative() {
		return Invalid("capital_proceeds", "%s: must not be negative", e.AssetDescription)
	}
	if e.CostBase.IsNegative() {
		return Invalid("cost_base", "%s: must not be negative", e.AssetDescription)
	}
	if e.ActiveUseDays != nil && *e.ActiveUseDays < 0 {
		return Invalid("active_use_days", "%s: must not be negative", e.AssetDescription)
	}
	return nil
}

// CGTContext describes the taxpayer disposing of the assets.
type CGTContext struct {
	EntityType EntityType `json:"entity_type"`
	// NetAssetValue of the taxpayer; nil when unknown.
	NetAssetValue        *decimal.Decimal  `json:"net_asset_value,omitempty"`
	ConnectedNetAssets   []decimal.Decimal `json:"connected_net_assets,omitempty"`
	CarriedForwardLosses decimal.Decimal   `json:"carried_forward_losses"`
	EvaluateConcessions  bool              `json:"evaluate_concessions"`
}

// ConcessionTest is the small business CGT concession basic conditions check.
type ConcessionTest struct {
	NetAssetTest    Verdict  `json:"net_asset_test"`
	ActiveAssetTest Verdict  `json:"active_asset_test"`
	Overall         Verdict  `json:"overall"`
	Notes           []string `json:"notes,omitempty"`
}

// CGTEventResult is one analysed event.
type CGTEventResult struct {
	CapitalGainsEvent
	Concession *ConcessionTest `json:"concession,omitempty"`
}

// CGTSummary is the net capital gain position for a set of events.
type CGTSummary struct {
	Events                       []CGTEventResult `json:"events"`
	TotalGains                   decimal.Decimal  `json:"total_gains"`
	TotalLosses                  decimal.Decimal  `json:"total_losses"`
	CarriedForwardLossesApplied  decimal.Decimal  `json:"carried_forward_losses_applied"`
	DiscountRate                 decimal.Decimal  `json:"discount_rate"`
	DiscountApplied              decimal.Decimal  `json:"discount_applied"`
	NetCapitalGain               decimal.Decimal  `json:"net_capital_gain"`
	NetCapitalLossCarriedForward decimal.Decimal  `json:"net_capital_loss_carried_forward"`
	Warnings                     []string         `json:"warnings"`
	Recommendations              []string         `json:"recommendations"`
	RateSource                   string           `json:"rate_source"`
}
