package calculator

import (
	"reflect"
	"testing"
	"time"

	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func event(desc string, acq, disp time.Time, proceeds, cost string) model.CapitalGainsEvent {
	return model.CapitalGainsEvent{
		AssetDescription: desc,
		AcquisitionDate:  acq,
		DisposalDate:     disp,
		CapitalProceeds:  d(proceeds),
		CostBase:         d(cost),
	}
}

func individual() model.CGTContext {
	return model.CGTContext{EntityType: model.EntityIndividual}
}

func TestAnalyzeCapitalGains_ShortHolding(t *testing.T) {
	ev := event("shares", date(2023, 1, 1), date(2023, 6, 1), "9000000", "100")
	sum, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{ev}, individual(), testSnapshot())
	require.NoError(t, err)

	got := sum.Events[0]
	assert.False(t, got.DiscountEligible)
	assert.Equal(t, 151, got.HoldingDays)
	assert.True(t, sum.DiscountApplied.IsZero())
	assert.Equal(t, "8999900", sum.NetCapitalGain.String())
}

func TestAnalyzeCapitalGains_LongHolding(t *testing.T) {
	ev := event("investment property", date(2020, 1, 15), date(2025, 6, 30), "500000", "450000")
	sum, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{ev}, individual(), testSnapshot())
	require.NoError(t, err)

	got := sum.Events[0]
	assert.Equal(t, "50000", got.Gain.String())
	assert.True(t, got.DiscountEligible)
	assert.Equal(t, "25000.00", sum.DiscountApplied.StringFixed(2))
	assert.Equal(t, "25000.00", sum.NetCapitalGain.StringFixed(2))
	assert.Equal(t, "0.5", sum.DiscountRate.String())
}

func TestHeldForDiscount_Boundary(t *testing.T) {
	acq := date(2023, 1, 1)
	assert.False(t, HeldForDiscount(acq, date(2023, 12, 31)))
	assert.True(t, HeldForDiscount(acq, date(2024, 1, 1)))
	assert.True(t, HeldForDiscount(acq, date(2024, 1, 2)))
	assert.False(t, HeldForDiscount(acq, acq))
	// 29 February acquisitions normalise to 1 March of the following year.
	assert.True(t, HeldForDiscount(date(2024, 2, 29), date(2025, 3, 1)))
	assert.False(t, HeldForDiscount(date(2024, 2, 29), date(2025, 2, 28)))
}

func TestAnalyzeCapitalGains_AnniversaryDisposalIsDiscounted(t *testing.T) {
	ev := event("shares", date(2023, 1, 1), date(2024, 1, 1), "200", "100")
	sum, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{ev}, individual(), testSnapshot())
	require.NoError(t, err)

	assert.True(t, sum.Events[0].DiscountEligible)
	assert.Equal(t, "50.00", sum.DiscountApplied.StringFixed(2))
	assert.Equal(t, "50.00", sum.NetCapitalGain.StringFixed(2))
}

func TestAnalyzeCapitalGains_DiscountByEntity(t *testing.T) {
	ev := event("shares", date(2018, 3, 1), date(2024, 3, 1), "160000", "10000")
	tests := []struct {
		entity   model.EntityType
		eligible bool
		net      string
	}{
		{model.EntityIndividual, true, "75000.00"},
		{model.EntityTrust, true, "75000.00"},
		{model.EntitySuperFund, true, "100000.00"},
		{model.EntityCompany, false, "150000.00"},
	}
	for _, tt := range tests {
		t.Run(string(tt.entity), func(t *testing.T) {
			sum, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{ev}, model.CGTContext{EntityType: tt.entity}, testSnapshot())
			require.NoError(t, err)
			assert.Equal(t, tt.eligible, sum.Events[0].DiscountEligible)
			assert.Equal(t, tt.net, sum.NetCapitalGain.StringFixed(2))
		})
	}
}

func TestAnalyzeCapitalGains_LossesBeforeDiscount(t *testing.T) {
	events := []model.CapitalGainsEvent{
		event("long-held shares", date(2015, 1, 1), date(2024, 9, 1), "100000", "40000"), // +60000 discountable
		event("crypto", date(2024, 1, 1), date(2024, 8, 1), "30000", "20000"),             // +10000 not discountable
		event("failed venture", date(2019, 1, 1), date(2024, 10, 1), "5000", "25000"),     // -20000
	}
	sum, err := AnalyzeCapitalGains(events, individual(), testSnapshot())
	require.NoError(t, err)

	assert.Equal(t, "70000", sum.TotalGains.String())
	assert.Equal(t, "20000", sum.TotalLosses.String())
	// 20000 loss absorbs the 10000 non-discount gain, then 10000 of the discountable gain.
	// (60000 - 10000) x 50% = 25000.
	assert.Equal(t, "25000.00", sum.DiscountApplied.StringFixed(2))
	assert.Equal(t, "25000.00", sum.NetCapitalGain.StringFixed(2))
	assert.True(t, sum.NetCapitalLossCarriedForward.IsZero())
}

func TestAnalyzeCapitalGains_CarriedForwardLosses(t *testing.T) {
	events := []model.CapitalGainsEvent{
		event("shares", date(2015, 1, 1), date(2024, 9, 1), "100000", "40000"), // +60000 discountable
	}
	ctx := individual()
	ctx.CarriedForwardLosses = d("15000")
	sum, err := AnalyzeCapitalGains(events, ctx, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "15000", sum.CarriedForwardLossesApplied.String())
	assert.Equal(t, "22500.00", sum.NetCapitalGain.StringFixed(2))

	ctx.CarriedForwardLosses = d("80000")
	sum, err = AnalyzeCapitalGains(events, ctx, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "60000", sum.CarriedForwardLossesApplied.String())
	assert.True(t, sum.NetCapitalGain.IsZero())
	assert.Equal(t, "20000", sum.NetCapitalLossCarriedForward.String())
	assert.NotEmpty(t, sum.Recommendations)
}

func TestAnalyzeCapitalGains_NetLossOnly(t *testing.T) {
	events := []model.CapitalGainsEvent{
		event("shares", date(2020, 1, 1), date(2024, 9, 1), "1000", "4000"),
	}
	sum, err := AnalyzeCapitalGains(events, individual(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "-3000", sum.Events[0].Gain.String())
	assert.True(t, sum.NetCapitalGain.IsZero())
	assert.Equal(t, "3000", sum.NetCapitalLossCarriedForward.String())
}

func TestAnalyzeCapitalGains_NearMissWarning(t *testing.T) {
	ev := event("shares", date(2023, 7, 1), date(2024, 6, 20), "50000", "10000")
	sum, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{ev}, individual(), testSnapshot())
	require.NoError(t, err)
	require.Len(t, sum.Warnings, 1)
	assert.Contains(t, sum.Warnings[0], "11 days before qualifying")
}

func TestAnalyzeCapitalGains_ConcessionTests(t *testing.T) {
	active := func(n int) *int { return &n }

	tests := []struct {
		name       string
		netAssets  *decimal.Decimal
		connected  []decimal.Decimal
		activeDays *int
		netTest    model.Verdict
		activeTest model.Verdict
		overall    model.Verdict
	}{
		{"both pass", dp("2000000"), nil, active(1000), model.VerdictPass, model.VerdictPass, model.VerdictPass},
		{"connected assets push over ceiling", dp("4000000"), []decimal.Decimal{d("2500000")}, active(1000), model.VerdictFail, model.VerdictPass, model.VerdictFail},
		{"missing net assets", nil, nil, active(1000), model.VerdictInconclusive, model.VerdictPass, model.VerdictInconclusive},
		{"missing active use", dp("1000000"), nil, nil, model.VerdictPass, model.VerdictInconclusive, model.VerdictInconclusive},
		{"inactive asset fails even without net assets", nil, nil, active(10), model.VerdictInconclusive, model.VerdictFail, model.VerdictFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := event("business premises", date(2019, 7, 1), date(2024, 7, 1), "900000", "400000")
			ev.ActiveUseDays = tt.activeDays
			ctx := model.CGTContext{
				EntityType:          model.EntityIndividual,
				NetAssetValue:       tt.netAssets,
				ConnectedNetAssets:  tt.connected,
				EvaluateConcessions: true,
			}
			sum, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{ev}, ctx, testSnapshot())
			require.NoError(t, err)
			ct := sum.Events[0].Concession
			require.NotNil(t, ct)
			assert.Equal(t, tt.netTest, ct.NetAssetTest)
			assert.Equal(t, tt.activeTest, ct.ActiveAssetTest)
			assert.Equal(t, tt.overall, ct.Overall)
		})
	}
}

func TestRequiredActiveDays(t *testing.T) {
	short := event("a", date(2020, 1, 1), date(2022, 1, 1), "1", "1")
	short.HoldingDays = daysBetween(short.AcquisitionDate, short.DisposalDate)
	assert.Equal(t, 366, requiredActiveDays(short, d("0.5")))

	long := event("b", date(2000, 1, 1), date(2024, 1, 1), "1", "1")
	long.HoldingDays = daysBetween(long.AcquisitionDate, long.DisposalDate)
	assert.Equal(t, daysBetween(date(2000, 1, 1), date(2007, 7, 1)), requiredActiveDays(long, d("0.5")))
}

func TestAnalyzeCapitalGains_NoConcessionsWhenNotRequested(t *testing.T) {
	ev := event("shares", date(2020, 1, 1), date(2024, 9, 1), "2", "1")
	sum, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{ev}, individual(), testSnapshot())
	require.NoError(t, err)
	assert.Nil(t, sum.Events[0].Concession)
}

func TestAnalyzeCapitalGains_Validation(t *testing.T) {
	bad := event("shares", date(2024, 1, 1), date(2023, 1, 1), "1", "1")
	_, err := AnalyzeCapitalGains([]model.CapitalGainsEvent{bad}, individual(), testSnapshot())
	assert.ErrorIs(t, err, model.ErrValidation)

	tooActive := event("shares", date(2024, 1, 1), date(2024, 1, 11), "1", "1")
	days := 20
	tooActive.ActiveUseDays = &days
	_, err = AnalyzeCapitalGains([]model.CapitalGainsEvent{tooActive}, individual(), testSnapshot())
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = AnalyzeCapitalGains(nil, model.CGTContext{EntityType: "partnership"}, testSnapshot())
	assert.ErrorIs(t, err, model.ErrValidation)

	neg := individual()
	neg.CarriedForwardLosses = d("-1")
	_, err = AnalyzeCapitalGains(nil, neg, testSnapshot())
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAnalyzeCapitalGains_DoesNotMutateInput(t *testing.T) {
	events := []model.CapitalGainsEvent{event("shares", date(2020, 1, 1), date(2024, 9, 1), "200", "100")}
	_, err := AnalyzeCapitalGains(events, individual(), testSnapshot())
	require.NoError(t, err)
	assert.True(t, events[0].Gain.IsZero())
	assert.False(t, events[0].DiscountEligible)
}

func TestAnalyzeCapitalGains_PartialFillWarning(t *testing.T) {
	events := []model.CapitalGainsEvent{event("shares", date(2020, 1, 1), date(2024, 9, 1), "200", "100")}
	sum, err := AnalyzeCapitalGains(events, individual(), partialSnapshot())
	require.NoError(t, err)
	require.NotEmpty(t, sum.Warnings)
	assert.Contains(t, sum.Warnings[0], model.RateCGTDiscountIndividual)
}

func TestAnalyzeCapitalGains_Idempotent(t *testing.T) {
	events := []model.CapitalGainsEvent{
		event("long-held shares", date(2015, 1, 1), date(2024, 9, 1), "100000", "40000"),
		event("crypto", date(2024, 1, 1), date(2024, 8, 1), "30000", "20000"),
		event("failed venture", date(2019, 1, 1), date(2024, 10, 1), "5000", "25000"),
	}
	ctx := individual()
	ctx.CarriedForwardLosses = d("1500")
	a, err := AnalyzeCapitalGains(events, ctx, testSnapshot())
	require.NoError(t, err)
	b, err := AnalyzeCapitalGains(events, ctx, testSnapshot())
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(a, b))
}
