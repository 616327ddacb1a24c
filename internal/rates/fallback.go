package rates

import (
	"maps"

	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Jurisdictions with an embedded payroll tax threshold and rate.
var Jurisdictions = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}

// FY2024-25 legislative constants.
var fallbackRates = map[string]string{
	model.RateDiv7ABenchmark:             "0.0877",
	model.RateSBETurnoverThreshold:       "10000000",
	model.RateInstantWriteOffTurnover:    "10000000",
	model.RateSBIncomeTaxOffsetThreshold: "5000000",
	model.RateCGTConcessionTurnover:      "2000000",
	model.RateBaseRateEntityThreshold:    "50000000",
	model.RateCGTDiscountIndividual:      "0.5",
	model.RateCGTDiscountSuperFund:       "0.3333333333",
	model.RateCGTNetAssetCeiling:         "6000000",
	model.RateActiveAssetProportion:      "0.5",
	model.RateMaterialityRatio:           "0.1",
	model.RateRnDOffset:                  "0.435",
	model.RateSmallBusinessTax:           "0.25",
	model.RateCorporateTax:               "0.30",
	model.RateInstantWriteOffAsset:       "20000",

	model.PayrollThresholdKey("NSW"): "1200000",
	model.PayrollRateKey("NSW"):      "0.0545",
	model.PayrollThresholdKey("VIC"): "900000",
	model.PayrollRateKey("VIC"):      "0.0485",
	model.PayrollThresholdKey("QLD"): "1300000",
	model.PayrollRateKey("QLD"):      "0.0475",
	model.PayrollThresholdKey("WA"):  "1000000",
	model.PayrollRateKey("WA"):       "0.055",
	model.PayrollThresholdKey("SA"):  "1500000",
	model.PayrollRateKey("SA"):       "0.0495",
	model.PayrollThresholdKey("TAS"): "1250000",
	model.PayrollRateKey("TAS"):      "0.04",
	model.PayrollThresholdKey("ACT"): "2000000",
	model.PayrollRateKey("ACT"):      "0.0685",
	model.PayrollThresholdKey("NT"):  "1500000",
	model.PayrollRateKey("NT"):       "0.055",
}

var fallback = func() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(fallbackRates))
	for k, v := range fallbackRates {
		m[k] = decimal.RequireFromString(v)
	}
	return m
}()

// Fallback returns a copy of the embedded constants.
func Fallback() map[string]decimal.Decimal {
	return maps.Clone(fallback)
}

// FallbackWith returns the embedded constants with overrides applied on top.
func FallbackWith(overrides map[string]decimal.Decimal) map[string]decimal.Decimal {
	m := Fallback()
	maps.Copy(m, overrides)
	return m
}
