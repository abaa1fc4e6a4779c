package core

import (
	"strings"
	"unicode"
)

const (
	CategoryClothing      = "Clothing"
	CategoryTransport     = "Transport"
	CategoryFood          = "Food"
	CategoryHousing       = "Housing"
	CategoryEntertainment = "Entertainment"
	CategoryUtilities     = "Utilities"
	CategoryIncome        = "Income"
	CategoryHealth        = "Health"
	CategoryEducation     = "Education"
	CategorySavings       = "Savings"
	CategoryOther         = "Other"
)

// KeywordRule maps description words to a category. Multi-word keywords
// match as phrases.
type KeywordRule struct {
	Category string
	Keywords []string
}

// keywordRules are checked in order; the first rule with a match wins.
var keywordRules = []KeywordRule{
	{CategoryClothing, []string{"clothes", "clothing", "shirt", "shirts", "t-shirt", "shoes", "sneakers", "jacket", "coat",
		"dress", "pants", "jeans", "apparel", "fashion", "socks"}},
	{CategoryTransport, []string{"uber", "lyft", "taxi", "cab", "bus", "train", "metro", "subway", "tram", "fuel", "gas",
		"petrol", "parking", "toll", "flight", "airline", "transport", "car wash", "bike"}},
	{CategoryFood, []string{"grocery", "groceries", "food", "restaurant", "cafe", "coffee", "lunch", "dinner", "breakfast",
		"pizza", "burger", "supermarket", "takeout", "snack", "snacks", "meal", "bakery", "sushi"}},
	{CategoryHousing, []string{"rent", "mortgage", "landlord", "apartment", "housing", "furniture", "repair", "repairs",
		"hoa"}},
	{CategoryEntertainment, []string{"movie", "movies", "cinema", "netflix", "spotify", "concert", "game", "games",
		"gaming", "theater", "theatre", "party", "bar", "festival", "museum"}},
	{CategoryUtilities, []string{"electricity", "electric", "water", "internet", "wifi", "phone", "utility", "utilities",
		"heating", "power bill"}},
	{CategoryIncome, []string{"salary", "paycheck", "payroll", "wage", "wages", "bonus", "income", "refund", "dividend",
		"dividends", "freelance", "invoice"}},
	{CategoryHealth, []string{"doctor", "pharmacy", "medicine", "medication", "hospital", "dentist", "gym", "health",
		"clinic", "therapy"}},
	{CategoryEducation, []string{"tuition", "course", "courses", "book", "books", "textbook", "school", "university",
		"college", "education", "class", "classes", "workshop"}},
	{CategorySavings, []string{"savings", "saving", "deposit", "investment", "invest", "emergency fund"}},
}

// Categories is the closed label set offered to the external classifier.
var Categories = []string{
	CategoryClothing, CategoryTransport, CategoryFood, CategoryHousing, CategoryEntertainment,
	CategoryUtilities, CategoryIncome, CategoryHealth, CategoryEducation, CategorySavings, CategoryOther,
}

// IsCategory reports whether label is one of Categories, ignoring case, and
// returns its canonical spelling.
func IsCategory(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(c, label) {
			return c, true
		}
	}
	return "", false
}

// CategorizeByKeywords is the deterministic classifier used when the
// external one is unavailable.
func CategorizeByKeywords(description string) string {
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	if len(words) == 0 {
		return CategoryOther
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	joined := " " + strings.Join(words, " ") + " "

	for _, rule := range keywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(joined, " "+kw+" ") {
					return rule.Category
				}
				continue
			}
			if _, ok := set[kw]; ok {
				return rule.Category
			}
		}
	}
	return CategoryOther
}
