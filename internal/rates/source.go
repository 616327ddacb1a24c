package rates

//go:generate mockgen -destination=mocks/mock_source.go -source=source.go Source

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Table is a rate table returned by a live source, with its provenance.
type Table struct {
	Rates  map[string]decimal.Decimal
	Origin string
	AsOf   time.Time
}

// Source defines the interface for fetching legislative rates.
// A source either returns a complete table or fails; there is no partial result.
type Source interface {
	Fetch(ctx context.Context) (*Table, error)
	Name() string
}

// RequiredKeys must be present in every live table. Any other key the live
// source omits is taken from the fallback constants.
var RequiredKeys = []string{
	model.RateDiv7ABenchmark,
	model.RateSBETurnoverThreshold,
}

var errEmptyTable = errors.New("empty rate table")

// validateTable rejects anything that is not a clean, complete table.
func validateTable(t *Table) error {
	if t == nil || len(t.Rates) == 0 {
		return errEmptyTable
	}
	for _, k := range RequiredKeys {
		if _, ok := t.Rates[k]; !ok {
			return fmt.Errorf("rate table missing %s", k)
		}
	}
	for k, v := range t.Rates {
		if v.IsNegative() {
			return fmt.Errorf("rate table value %s is negative: %s", k, v)
		}
	}
	return nil
}

// StaticSource serves a fixed table. Useful for development and testing.
type StaticSource struct {
	Label string
	Rates map[string]decimal.Decimal
	AsOf  time.Time
}

func (s *StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s *StaticSource) Fetch(_ context.Context) (*Table, error) {
	return &Table{Rates: maps.Clone(s.Rates), Origin: s.Name(), AsOf: s.AsOf}, nil
}
