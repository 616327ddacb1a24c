package classifier

import (
	"strings"
	"unicode"

	"TaxSentinel/internal/model"
)

// RuleKind tells how a rule matches.
type RuleKind string

const (
	KindKeyword    RuleKind = "keyword"
	KindCodePrefix RuleKind = "code_prefix"
)

// Rule is one heuristic: a typed predicate and the category it assigns.
type Rule struct {
	Name     string
	Kind     RuleKind
	Category model.Category
	Strength int
	Match    func(r model.Record) bool
}

// KeywordRule matches whole-word keywords in the supplier or description.
func KeywordRule(name string, cat model.Category, strength int, keywords ...string) Rule {
	return Rule{
		Name:     name,
		Kind:     KindKeyword,
		Category: cat,
		Strength: strength,
		Match: func(r model.Record) bool {
			text := strings.ToLower(r.Supplier + " " + r.Description)
			for _, kw := range keywords {
				if containsWord(text, kw) {
					return true
				}
			}
			return false
		},
	}
}

// CodePrefixRule matches the account code against known prefixes.
func CodePrefixRule(name string, cat model.Category, strength int, prefixes ...string) Rule {
	return Rule{
		Name:     name,
		Kind:     KindCodePrefix,
		Category: cat,
		Strength: strength,
		Match: func(r model.Record) bool {
			code := strings.ToUpper(strings.TrimSpace(r.AccountCode))
			if code == "" {
				return false
			}
			for _, p := range prefixes {
				if strings.HasPrefix(code, p) {
					return true
				}
			}
			return false
		},
	}
}

// DefaultRules are evaluated in order; the first match wins. Specific
// keyword rules come before account codes, generic keywords last.
var DefaultRules = []Rule{
	KeywordRule("upe", model.CategoryUPE, 90,
		"unpaid present entitlement", "upe", "trust distribution payable", "beneficiary entitlement"),
	KeywordRule("div7a-loan", model.CategoryShareholderLoan, 85,
		"division 7a", "div 7a", "div7a", "director loan", "shareholder loan", "loan to director", "loan to shareholder"),
	KeywordRule("fuel", model.CategoryFuel, 80,
		"fuel", "diesel", "unleaded", "petrol", "bp", "caltex", "ampol", "shell", "7-eleven", "united petroleum"),
	KeywordRule("rnd", model.CategoryRnD, 70,
		"research and development", "r&d", "prototype", "experimental"),

	CodePrefixRule("code-capital", model.CategoryCapitalAsset, 75, "71", "72", "1-2"),
	CodePrefixRule("code-wages", model.CategoryWages, 75, "477", "6-5"),
	CodePrefixRule("code-motor", model.CategoryMotorVehicle, 75, "449"),
	CodePrefixRule("code-travel", model.CategoryTravel, 75, "493", "494"),
	CodePrefixRule("code-professional", model.CategoryProfessionalFees, 75, "412"),
	CodePrefixRule("code-software", model.CategorySoftware, 75, "485"),

	KeywordRule("software", model.CategorySoftware, 55,
		"subscription", "saas", "adobe", "microsoft 365", "atlassian", "github"),
	KeywordRule("travel", model.CategoryTravel, 55,
		"qantas", "virgin australia", "jetstar", "airbnb", "hotel", "flight"),
	KeywordRule("professional", model.CategoryProfessionalFees, 50,
		"accounting", "legal", "consulting", "bookkeeping"),
	KeywordRule("motor", model.CategoryMotorVehicle, 50,
		"rego", "registration", "tyres", "car service"),
	KeywordRule("wages", model.CategoryWages, 50,
		"payroll", "salary", "wages"),
}

// containsWord reports whether kw occurs in text bounded by non-alphanumerics.
func containsWord(text, kw string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		if boundary(text, start-1) && boundary(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := rune(text[i])
	return !unicode.IsLetter(c) && !unicode.IsDigit(c)
}
