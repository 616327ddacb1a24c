package classifier

import (
	"errors"
	"testing"
	"time"

	"TaxSentinel/internal/model"
)

func TestDecodeRecord_Xero(t *testing.T) {
	payload := []byte(`{
		"BankTransactionID": "d20b6c54-7f5d-4ce6-ab83-55f609719126",
		"Date": "/Date(1726099200000+0000)/",
		"Total": 128.40,
		"Contact": {"Name": "BP Connect Richmond"},
		"LineItems": [{"Description": "Diesel 62.5L", "AccountCode": "449"}]
	}`)
	rec, err := DecodeRecord(model.PlatformXero, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "d20b6c54-7f5d-4ce6-ab83-55f609719126" {
		t.Errorf("unexpected id %q", rec.ID)
	}
	if !rec.Date.Equal(time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %s", rec.Date)
	}
	if rec.Amount == nil || rec.Amount.StringFixed(2) != "128.40" {
		t.Errorf("unexpected amount %v", rec.Amount)
	}
	if rec.Supplier != "BP Connect Richmond" || rec.Description != "Diesel 62.5L" || rec.AccountCode != "449" {
		t.Errorf("unexpected fields %+v", rec)
	}
	if rec.Platform != model.PlatformXero {
		t.Errorf("platform not set: %s", rec.Platform)
	}
}

func TestDecodeRecord_XeroAlternateFields(t *testing.T) {
	payload := []byte(`{"TransactionID": "T-9", "TransactionDate": "2024-10-01T00:00:00", "Amount": "-12.50", "Reference": "bank fee"}`)
	rec, err := DecodeRecord(model.PlatformXero, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "T-9" || rec.Description != "bank fee" {
		t.Errorf("unexpected fields %+v", rec)
	}
	if !rec.Date.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %s", rec.Date)
	}
	if rec.Amount == nil || rec.Amount.StringFixed(2) != "-12.50" {
		t.Errorf("unexpected amount %v", rec.Amount)
	}
}

func TestDecodeRecord_MYOB(t *testing.T) {
	payload := []byte(`{
		"UID": "6f1e2c1a",
		"Date": "2024-11-05T00:00:00",
		"TotalAmount": 3200,
		"Memo": " Laptop for engineering ",
		"Contact": {"Name": "Harvey Norman"},
		"Account": {"DisplayID": "1-2110"}
	}`)
	rec, err := DecodeRecord(model.PlatformMYOB, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "6f1e2c1a" || rec.AccountCode != "1-2110" || rec.Description != "Laptop for engineering" {
		t.Errorf("unexpected fields %+v", rec)
	}
	if res := Classify(rec); res.Category != model.CategoryCapitalAsset {
		t.Errorf("expected capital asset, got %s", res.Category)
	}
}

func TestDecodeRecord_QuickBooks(t *testing.T) {
	payload := []byte(`{
		"Id": "145",
		"TxnDate": "2025-01-20",
		"TotalAmt": 990.00,
		"EntityRef": {"name": "Smith & Co Accountants"},
		"AccountRef": {"value": "412"},
		"Line": [{"Description": "Year end accounting"}]
	}`)
	rec, err := DecodeRecord(model.PlatformQuickBooks, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "145" || rec.Description != "Year end accounting" || rec.AccountCode != "412" {
		t.Errorf("unexpected fields %+v", rec)
	}
	if !rec.Date.Equal(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %s", rec.Date)
	}
}

func TestDecodeRecord_MissingAmountIsNotAnError(t *testing.T) {
	rec, err := DecodeRecord(model.PlatformQuickBooks, []byte(`{"Id": "7"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Amount != nil {
		t.Errorf("expected nil amount, got %v", rec.Amount)
	}
}

func TestDecodeRecord_Errors(t *testing.T) {
	tests := []struct {
		name     string
		platform model.Platform
		payload  string
	}{
		{"unsupported platform", "sage", `{"id": "1"}`},
		{"malformed json", model.PlatformXero, `{"TransactionID": `},
		{"missing id", model.PlatformMYOB, `{"Date": "2024-01-01"}`},
		{"bad date", model.PlatformQuickBooks, `{"Id": "1", "TxnDate": "20/01/2025"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.platform, []byte(tt.payload))
			if !errors.Is(err, model.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeRecords(t *testing.T) {
	recs, err := DecodeRecords(model.PlatformMYOB, []byte(`[{"UID": "a"}, {"UID": "b"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "a" || recs[1].ID != "b" {
		t.Errorf("unexpected records %+v", recs)
	}
}
