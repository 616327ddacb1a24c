package advice

import (
	"fmt"
	"strings"

	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Builder collects warnings and recommendations for one calculator result.
// Order of first insertion is kept; duplicates are dropped.
type Builder struct {
	warnings        []string
	recommendations []string
	seen            map[string]struct{}
}

func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

func (b *Builder) add(list *[]string, kind, msg string) {
	key := kind + "\x00" + msg
	if _, ok := b.seen[key]; ok {
		return
	}
	b.seen[key] = struct{}{}
	*list = append(*list, msg)
}

// Warn adds a warning.
func (b *Builder) Warn(format string, args ...any) {
	b.add(&b.warnings, "w", fmt.Sprintf(format, args...))
}

// Recommend adds a recommendation.
func (b *Builder) Recommend(format string, args ...any) {
	b.add(&b.recommendations, "r", fmt.Sprintf(format, args...))
}

// Degraded warns when the result was computed wholly or partly from fallback constants.
func (b *Builder) Degraded(snap model.RateSnapshot) {
	switch {
	case snap.IsFallback():
		b.Warn("Live legislative rates were unavailable; figures use embedded %s constants and should be confirmed", model.SourceFallback)
	case len(snap.FilledFromFallback) > 0:
		b.Warn("Rates from %s were incomplete; embedded %s constants used for %s and should be confirmed",
			snap.Source, model.SourceFallback, strings.Join(snap.FilledFromFallback, ", "))
	}
}

// CheckMargin evaluates headroom below a threshold. A margin inside (0, band)
// is near the threshold; a margin at or below zero is a breach.
// It returns true when a warning was emitted.
func (b *Builder) CheckMargin(name string, margin, band decimal.Decimal) bool {
	switch {
	case !margin.IsPositive():
		b.Warn("%s threshold exceeded by %s", name, Money(margin.Neg()))
		return true
	case margin.LessThan(band):
		b.Warn("%s threshold is within %s (headroom %s); growth could remove eligibility", name, Money(band), Money(margin))
		return true
	}
	return false
}

// CheckShortfall warns when a required amount was not met.
func (b *Builder) CheckShortfall(label string, shortfall decimal.Decimal) bool {
	if !shortfall.IsPositive() {
		return false
	}
	b.Warn("%s: repayment short by %s", label, Money(shortfall))
	return true
}

// Warnings returns the warnings collected so far; never nil.
func (b *Builder) Warnings() []string {
	return append([]string{}, b.warnings...)
}

// Recommendations returns the recommendations collected so far; never nil.
func (b *Builder) Recommendations() []string {
	return append([]string{}, b.recommendations...)
}
