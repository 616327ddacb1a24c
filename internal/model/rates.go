package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceFallback marks a snapshot built from embedded constants.
const SourceFallback = "FALLBACK"

// Rate keys understood by the calculators.
const (
	RateDiv7ABenchmark             = "div7a_benchmark_rate"
	RateSBETurnoverThreshold       = "sbe_turnover_threshold"
	RateInstantWriteOffTurnover    = "instant_write_off_turnover_threshold"
	RateSBIncomeTaxOffsetThreshold = "sb_income_tax_offset_turnover_threshold"
	RateCGTConcessionTurnover      = "cgt_concession_turnover_threshold"
	RateBaseRateEntityThreshold    = "base_rate_entity_turnover_threshold"
	RateCGTDiscountIndividual      = "cgt_discount_individual"
	RateCGTDiscountSuperFund       = "cgt_discount_super_fund"
	RateCGTNetAssetCeiling         = "cgt_net_asset_ceiling"
	RateActiveAssetProportion      = "cgt_active_asset_proportion"
	RateMaterialityRatio           = "eligibility_materiality_ratio"
	RateRnDOffset                  = "rnd_refundable_offset"
	RateSmallBusinessTax           = "small_business_tax_rate"
	RateCorporateTax               = "corporate_tax_rate"
	RateInstantWriteOffAsset       = "instant_write_off_asset_threshold"
)

// PayrollThresholdKey is the rate key of a jurisdiction's annual payroll tax threshold.
func PayrollThresholdKey(jurisdiction string) string {
	return "payroll_threshold_" + jurisdiction
}

// PayrollRateKey is the rate key of a jurisdiction's payroll tax rate.
func PayrollRateKey(jurisdiction string) string {
	return "payroll_rate_" + jurisdiction
}

// RateSnapshot is one resolution of legislative rates and thresholds.
// It is a value: the resolver builds a new one per resolution and nothing mutates it.
type RateSnapshot struct {
	Rates              map[string]decimal.Decimal `json:"rates"`
	Source             string                     `json:"source"`
	FetchedAt          time.Time                  `json:"fetched_at"`
	CacheAge           time.Duration              `json:"cache_age"`
	FilledFromFallback []string                   `json:"filled_from_fallback,omitempty"`
}

// Rate looks up a single rate.
func (s RateSnapshot) Rate(key string) (decimal.Decimal, bool) {
	v, ok := s.Rates[key]
	return v, ok
}

// Require returns the rate for key, or a ValidationError when the snapshot lacks it.
func (s RateSnapshot) Require(key string) (decimal.Decimal, error) {
	v, ok := s.Rates[key]
	if !ok {
		return decimal.Zero, Invalid(key, "rate missing from snapshot (source %s)", s.Source)
	}
	return v, nil
}

// IsFallback reports whether the snapshot came from embedded constants.
func (s RateSnapshot) IsFallback() bool {
	return s.Source == SourceFallback
}
