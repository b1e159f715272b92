package intent

import "strings"

// rule maps trigger keywords to a category. Rules are evaluated in
// order; the first rule with a matching keyword wins.
type rule struct {
	keywords []string
	category Category
}

// rules is the priority-ordered classification table. Order matters:
// "I need help logging in" classifies as general_help because the help
// rule outranks the account rule.
var rules = []rule{
	{[]string{"help", "support", "assistance"}, CategoryGeneralHelp},
	{[]string{"price", "cost", "payment"}, CategoryPricing},
	{[]string{"technical", "error", "problem"}, CategoryTechnicalSupport},
	{[]string{"account", "login", "password"}, CategoryAccountSupport},
}

// Classify buckets text into the intent taxonomy by substring keyword
// matching against the lowercased input. Unmatched text falls back to
// general_inquiry.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return CategoryGeneralInquiry
}
