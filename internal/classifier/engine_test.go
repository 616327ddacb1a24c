package classifier

import (
	"reflect"
	"slices"
	"testing"
	"time"

	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
)

func amt(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

var txDate = time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC)

func TestClassify_FuelWithQuantity(t *testing.T) {
	res := Classify(model.Record{
		ID:          "tx-1",
		Date:        txDate,
		Supplier:    "BP Connect Richmond",
		Description: "Diesel 62.5L",
		AccountCode: "449",
		Amount:      amt("128.40"),
	})
	if res.Category != model.CategoryFuel {
		t.Fatalf("expected fuel, got %s", res.Category)
	}
	if res.Rule != "fuel" {
		t.Errorf("expected fuel rule to win over account code, got %s", res.Rule)
	}
	if res.Quantity == nil || !res.Quantity.Equal(decimal.RequireFromString("62.5")) || res.Unit != "L" {
		t.Errorf("expected 62.5 L, got %v %s", res.Quantity, res.Unit)
	}
	if res.Confidence != 100 {
		t.Errorf("expected confidence clamped to 100, got %d", res.Confidence)
	}
	if len(res.Flags) != 0 {
		t.Errorf("unexpected flags: %v", res.Flags)
	}
}

func TestClassify_Confidence(t *testing.T) {
	tests := []struct {
		name string
		rec  model.Record
		cat  model.Category
		conf int
	}{
		{
			name: "fuel without corroboration",
			rec:  model.Record{ID: "a", Date: txDate, Description: "unleaded top up", Amount: amt("80")},
			cat:  model.CategoryFuel,
			conf: 85,
		},
		{
			name: "upe keyword",
			rec:  model.Record{ID: "b", Date: txDate, Description: "UPE owing to Smith Family Trust", AccountCode: "800", Amount: amt("150000")},
			cat:  model.CategoryUPE,
			conf: 100,
		},
		{
			name: "account code only",
			rec:  model.Record{ID: "c", Date: txDate, Supplier: "JB Hi-Fi", AccountCode: "720", Amount: amt("25000")},
			cat:  model.CategoryCapitalAsset,
			conf: 75,
		},
		{
			name: "negative software refund",
			rec:  model.Record{ID: "d", Date: txDate, Supplier: "Adobe", Description: "Creative Cloud subscription refund", Amount: amt("-49.99")},
			cat:  model.CategorySoftware,
			conf: 60,
		},
		{
			name: "missing date",
			rec:  model.Record{ID: "e", Description: "Qantas flight SYD-MEL", Amount: amt("389")},
			cat:  model.CategoryTravel,
			conf: 55,
		},
		{
			name: "r&d keyword",
			rec:  model.Record{ID: "f", Date: txDate, Supplier: "Fab Lab", Description: "Prototype PCB run", Amount: amt("4200"), AccountCode: "310"},
			cat:  model.CategoryRnD,
			conf: 85,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.rec)
			if res.Category != tt.cat {
				t.Fatalf("expected %s, got %s", tt.cat, res.Category)
			}
			if res.Confidence != tt.conf {
				t.Errorf("expected confidence %d, got %d", tt.conf, res.Confidence)
			}
			if res.RecordID != tt.rec.ID {
				t.Errorf("record id not carried: %s", res.RecordID)
			}
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	res := Classify(model.Record{ID: "x", Date: txDate, Description: "Director loan repayment via fuel card"})
	if res.Category != model.CategoryShareholderLoan {
		t.Errorf("expected shareholder loan, got %s", res.Category)
	}
}

func TestClassify_WordBoundaries(t *testing.T) {
	tests := []model.Record{
		{ID: "1", Supplier: "Shellharbour City Council", Description: "rates notice"},
		{ID: "2", Description: "BPAY reference 1234"},
		{ID: "3", Description: "groupe dinner"},
	}
	for _, rec := range tests {
		res := Classify(rec)
		if res.Category != model.CategoryUnknown {
			t.Errorf("record %s: expected unknown, got %s via %s", rec.ID, res.Category, res.Rule)
		}
	}
}

func TestClassify_Unknown(t *testing.T) {
	res := Classify(model.Record{ID: "u"})
	if res.Category != model.CategoryUnknown || res.Confidence != 0 {
		t.Fatalf("expected unknown/0, got %s/%d", res.Category, res.Confidence)
	}
	want := []string{
		model.FlagMissingDescription,
		model.FlagMissingSupplier,
		model.FlagMissingAmount,
		model.FlagMissingAccountCode,
		model.FlagMissingDate,
	}
	if !slices.Equal(res.Flags, want) {
		t.Errorf("expected flags %v, got %v", want, res.Flags)
	}
}

func TestClassify_WriteOffThreshold(t *testing.T) {
	rec := model.Record{ID: "c", Date: txDate, Supplier: "JB Hi-Fi", AccountCode: "720", Amount: amt("25000")}

	if res := Classify(rec); !slices.Contains(res.Flags, model.FlagAboveWriteOff) {
		t.Errorf("expected write-off flag at default threshold, got %v", res.Flags)
	}

	e := NewEngine(model.RateSnapshot{Rates: map[string]decimal.Decimal{
		model.RateInstantWriteOffAsset: decimal.NewFromInt(30000),
	}})
	if res := e.Classify(rec); slices.Contains(res.Flags, model.FlagAboveWriteOff) {
		t.Errorf("unexpected write-off flag under 30000 threshold: %v", res.Flags)
	}
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	recs := []model.Record{
		{ID: "1", Description: "diesel"},
		{ID: "2", Description: "nothing useful"},
		{ID: "3", Description: "monthly payroll run"},
	}
	out := NewEngine(model.RateSnapshot{}).ClassifyAll(recs)
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	want := []model.Category{model.CategoryFuel, model.CategoryUnknown, model.CategoryWages}
	for i, res := range out {
		if res.RecordID != recs[i].ID || res.Category != want[i] {
			t.Errorf("result %d: got %s/%s", i, res.RecordID, res.Category)
		}
	}
}

func TestClassify_ConfidenceBounds(t *testing.T) {
	e := &Engine{Rules: []Rule{
		KeywordRule("weak", model.CategoryTravel, 3, "taxi"),
	}}
	res := e.Classify(model.Record{ID: "t", Supplier: "taxi", Amount: amt("-20")})
	// 3 + 5 + 5 - 5 - 10 - 5
	if res.Confidence != 0 {
		t.Errorf("expected confidence clamped to 0, got %d", res.Confidence)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	rec := model.Record{
		ID:          "tx-1",
		Date:        txDate,
		Supplier:    "BP Connect Richmond",
		Description: "Diesel 62.5L",
		Amount:      amt("128.40"),
	}
	e := NewEngine(model.RateSnapshot{})
	first := e.Classify(rec)
	second := e.Classify(rec)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated classification differs: %+v vs %+v", first, second)
	}
}
