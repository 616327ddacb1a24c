package classifier

import (
	"regexp"

	"TaxSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Corroboration bonuses and data quality penalties applied to a rule's strength.
const (
	bonusQuantity    = 10
	bonusSupplier    = 5
	bonusAmount      = 5
	bonusAccountCode = 5

	penaltyMissingDescription = 10
	penaltyNegativeAmount     = 5
	penaltyMissingDate        = 5
)

var defaultWriteOffThreshold = decimal.NewFromInt(20000)

// quantityPattern finds an explicit litre quantity such as "45.2L" or "60 litres".
var quantityPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(l|ltr|litres?|liters?)\b`)

// Engine classifies records against an ordered rule table.
type Engine struct {
	Rules []Rule
	// WriteOffThreshold flags capital purchases that cannot be written off immediately.
	WriteOffThreshold decimal.Decimal
}

// NewEngine builds an engine on DefaultRules, taking the instant asset
// write-off threshold from snap when present.
func NewEngine(snap model.RateSnapshot) *Engine {
	threshold := defaultWriteOffThreshold
	if v, ok := snap.Rate(model.RateInstantWriteOffAsset); ok {
		threshold = v
	}
	return &Engine{Rules: DefaultRules, WriteOffThreshold: threshold}
}

var defaultEngine = &Engine{Rules: DefaultRules, WriteOffThreshold: defaultWriteOffThreshold}

// Classify runs the default engine.
func Classify(r model.Record) model.ClassificationResult {
	return defaultEngine.Classify(r)
}

// matchRule returns the first rule that matches, or nil.
func (e *Engine) matchRule(r model.Record) *Rule {
	for i := range e.Rules {
		if e.Rules[i].Match(r) {
			return &e.Rules[i]
		}
	}
	return nil
}

// Classify assigns a category and a confidence in [0, 100]. It is best effort
// and meant for human review.
func (e *Engine) Classify(r model.Record) model.ClassificationResult {
	res := model.ClassificationResult{
		RecordID: r.ID,
		Category: model.CategoryUnknown,
		Flags:    qualityFlags(r),
	}

	rule := e.matchRule(r)
	if rule == nil {
		return res
	}
	res.Category = rule.Category
	res.Rule = rule.Name

	score := rule.Strength
	if qty, unit, ok := extractQuantity(r.Description); ok {
		res.Quantity = &qty
		res.Unit = unit
		score += bonusQuantity
	}
	if r.Supplier != "" {
		score += bonusSupplier
	}
	if r.Amount != nil {
		score += bonusAmount
		if r.Amount.IsNegative() {
			score -= penaltyNegativeAmount
		}
	}
	if r.AccountCode != "" && rule.Kind != KindCodePrefix {
		score += bonusAccountCode
	}
	if r.Description == "" {
		score -= penaltyMissingDescription
	}
	if r.Date.IsZero() {
		score -= penaltyMissingDate
	}
	res.Confidence = clamp(score, 0, 100)

	if rule.Category == model.CategoryCapitalAsset && r.Amount != nil && r.Amount.Abs().GreaterThanOrEqual(e.WriteOffThreshold) {
		res.Flags = append(res.Flags, model.FlagAboveWriteOff)
	}
	return res
}

// ClassifyAll classifies records in input order.
func (e *Engine) ClassifyAll(records []model.Record) []model.ClassificationResult {
	out := make([]model.ClassificationResult, len(records))
	for i, r := range records {
		out[i] = e.Classify(r)
	}
	return out
}

func extractQuantity(text string) (decimal.Decimal, string, bool) {
	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, "", false
	}
	q, err := decimal.NewFromString(m[1])
	if err != nil || !q.IsPositive() {
		return decimal.Zero, "", false
	}
	return q, "L", true
}

func qualityFlags(r model.Record) []string {
	flags := []string{}
	if r.Description == "" {
		flags = append(flags, model.FlagMissingDescription)
	}
	if r.Supplier == "" {
		flags = append(flags, model.FlagMissingSupplier)
	}
	if r.Amount == nil {
		flags = append(flags, model.FlagMissingAmount)
	} else if r.Amount.IsNegative() {
		flags = append(flags, model.FlagNegativeAmount)
	}
	if r.AccountCode == "" {
		flags = append(flags, model.FlagMissingAccountCode)
	}
	if r.Date.IsZero() {
		flags = append(flags, model.FlagMissingDate)
	}
	return flags
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
