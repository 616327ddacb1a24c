package classifier

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// xeroDatePattern matches the legacy "/Date(1718150400000+0000)/" form.
var xeroDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type xeroLineItem struct {
	Description string `json:"Description"`
	AccountCode string `json:"AccountCode"`
}

type xeroTransaction struct {
	TransactionID   string           `json:"TransactionID"`
	BankTransaction string           `json:"BankTransactionID"`
	ID              string           `json:"ID"`
	Date            string           `json:"Date"`
	TransactionDate string           `json:"TransactionDate"`
	Total           *decimal.Decimal `json:"Total"`
	Amount          *decimal.Decimal `json:"Amount"`
	Reference       string           `json:"Reference"`
	Contact         struct {
		Name string `json:"Name"`
	} `json:"Contact"`
	LineItems []xeroLineItem `json:"LineItems"`
}

type myobTransaction struct {
	UID         string           `json:"UID"`
	Date        string           `json:"Date"`
	Amount      *decimal.Decimal `json:"Amount"`
	TotalAmount *decimal.Decimal `json:"TotalAmount"`
	Memo        string           `json:"Memo"`
	Contact     struct {
		Name string `json:"Name"`
	} `json:"Contact"`
	Account struct {
		DisplayID string `json:"DisplayID"`
	} `json:"Account"`
}

type quickBooksTransaction struct {
	ID          string           `json:"Id"`
	TxnDate     string           `json:"TxnDate"`
	TotalAmt    *decimal.Decimal `json:"TotalAmt"`
	PrivateNote string           `json:"PrivateNote"`
	EntityRef   struct {
		Name string `json:"name"`
	} `json:"EntityRef"`
	AccountRef struct {
		Value string `json:"value"`
	} `json:"AccountRef"`
	Line []struct {
		Description string `json:"Description"`
	} `json:"Line"`
}

// DecodeRecord converts one platform payload into a Record. Only the ID is
// mandatory; anything else missing is left for the engine to flag.
func DecodeRecord(platform model.Platform, payload []byte) (model.Record, error) {
	var (
		rec  model.Record
		date string
		err  error
	)
	switch platform {
	case model.PlatformXero:
		var tx xeroTransaction
		if err = json.Unmarshal(payload, &tx); err != nil {
			return rec, model.Invalid("payload", "xero: %v", err)
		}
		rec = model.Record{
			ID:          firstNonEmpty(tx.TransactionID, tx.BankTransaction, tx.ID),
			Supplier:    tx.Contact.Name,
			Description: tx.Reference,
			Amount:      firstAmount(tx.Total, tx.Amount),
		}
		date = firstNonEmpty(tx.Date, tx.TransactionDate)
		if len(tx.LineItems) > 0 {
			li := tx.LineItems[0]
			rec.Description = firstNonEmpty(li.Description, rec.Description)
			rec.AccountCode = li.AccountCode
		}
	case model.PlatformMYOB:
		var tx myobTransaction
		if err = json.Unmarshal(payload, &tx); err != nil {
			return rec, model.Invalid("payload", "myob: %v", err)
		}
		rec = model.Record{
			ID:          tx.UID,
			Supplier:    tx.Contact.Name,
			Description: tx.Memo,
			AccountCode: tx.Account.DisplayID,
			Amount:      firstAmount(tx.TotalAmount, tx.Amount),
		}
		date = tx.Date
	case model.PlatformQuickBooks:
		var tx quickBooksTransaction
		if err = json.Unmarshal(payload, &tx); err != nil {
			return rec, model.Invalid("payload", "quickbooks: %v", err)
		}
		rec = model.Record{
			ID:          tx.ID,
			Supplier:    tx.EntityRef.Name,
			Description: tx.PrivateNote,
			AccountCode: tx.AccountRef.Value,
			Amount:      tx.TotalAmt,
		}
		if len(tx.Line) > 0 && tx.Line[0].Description != "" {
			rec.Description = tx.Line[0].Description
		}
		date = tx.TxnDate
	default:
		return rec, model.Invalid("platform", "unsupported platform %q", platform)
	}

	rec.Platform = platform
	rec.Supplier = strings.TrimSpace(rec.Supplier)
	rec.Description = strings.TrimSpace(rec.Description)
	rec.AccountCode = strings.TrimSpace(rec.AccountCode)
	if rec.ID == "" {
		return rec, model.Invalid("id", "%s transaction has no identifier", platform)
	}
	if date != "" {
		if rec.Date, err = parseDate(date); err != nil {
			return rec, model.Invalid("date", "%s: %v", rec.ID, err)
		}
	}
	return rec, nil
}

// DecodeRecords decodes a JSON array of platform payloads.
func DecodeRecords(platform model.Platform, payload []byte) ([]model.Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, model.Invalid("payload", "%s: %v", platform, err)
	}
	out := make([]model.Record, 0, len(raw))
	for _, r := range raw {
		rec, err := DecodeRecord(platform, r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	if m := xeroDatePattern.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		t := time.UnixMilli(ms).UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstAmount(vals ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
