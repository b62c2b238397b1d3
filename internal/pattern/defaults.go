package pattern

import "github.com/Veraticus/tally/internal/model"

func substrings(values ...string) []model.CategoryPattern {
	out := make([]model.CategoryPattern, len(values))
	for i, v := range values {
		out[i] = model.CategoryPattern{Kind: model.PatternSubstring, Value: v}
	}
	return out
}

func regex(value, representative string) model.CategoryPattern {
	return model.CategoryPattern{Kind: model.PatternRegex, Value: value, Representative: representative}
}

// DefaultCategories returns the built-in category definitions.
// Lower priority numbers win when several categories match at the same tier.
func DefaultCategories() []model.CategoryDefinition {
	return []model.CategoryDefinition{
		{
			Name:     "Transfer/Payment",
			Type:     model.CategoryTypeSystem,
			Priority: 5,
			Patterns: []model.CategoryPattern{
				regex(`payment\s+thank\s+you`, "payment thank you"),
				regex(`\b(online|electronic|automatic|mobile|web)\s+payment\b`, "online payment"),
				regex(`\bautopay\b`, "autopay"),
				regex(`\b(credit\s+card|cc)\s+payment\b`, "credit card payment"),
				regex(`\b(chase\s+credit\s+crd|discover\s+payment|capital\s+one\s+payment|citi\s+payment|amex\s+payment)\b`, "card payment"),
				regex(`\b(internal|account|online|mobile|wire|ach)\s+transfer\b`, "online transfer"),
				regex(`\btransfer\s+(to|from)\b`, "transfer to"),
				{Kind: model.PatternSubstring, Value: "zelle"},
				{Kind: model.PatternSubstring, Value: "venmo"},
				{Kind: model.PatternKeywords, Value: "cash app"},
			},
		},
		{
			Name:     "Income",
			Type:     model.CategoryTypeIncome,
			Priority: 10,
			Patterns: substrings("payroll", "salary", "direct deposit", "paycheck", "wages",
				"tax refund", "dividend", "interest earned", "cashback", "reimbursement"),
		},
		{
			Name:     "Banking & Fees",
			Type:     model.CategoryTypeExpense,
			Priority: 20,
			Patterns: substrings("overdraft", "maintenance fee", "service charge", "wire fee",
				"atm fee", "atm", "cash withdrawal", "interest charge", "finance charge", "late fee"),
		},
		{
			Name:     "Coffee/Dining",
			Type:     model.CategoryTypeExpense,
			Priority: 30,
			Patterns: substrings("starbucks", "dunkin", "coffee", "espresso", "latte", "cafe"),
		},
		{
			Name:     "Food & Dining",
			Type:     model.CategoryTypeExpense,
			Priority: 35,
			Patterns: substrings("restaurant", "bistro", "diner", "grill", "kitchen", "eatery",
				"pizzeria", "buffet", "mcdonalds", "burger king", "kfc", "taco bell", "subway",
				"chipotle", "panera", "chick fil a", "doordash", "ubereats", "grubhub",
				"postmates", "seamless", "pub", "brewery", "tavern", "wine bar", "pizza"),
		},
		{
			Name:     "Groceries",
			Type:     model.CategoryTypeExpense,
			Priority: 40,
			Patterns: substrings("grocery", "supermarket", "whole foods", "trader joes", "sprouts",
				"fresh market", "safeway", "kroger", "publix", "aldi", "food lion", "costco",
				"sams club"),
		},
		{
			Name:     "Transportation",
			Type:     model.CategoryTypeExpense,
			Priority: 45,
			Patterns: substrings("shell", "exxon", "chevron", "mobil", "citgo", "gas station",
				"fuel", "uber", "lyft", "taxi", "parking", "metro", "transit", "mta", "bart",
				"oil change", "car wash", "auto repair"),
		},
		{
			Name:     "Bills & Utilities",
			Type:     model.CategoryTypeExpense,
			Priority: 50,
			Patterns: substrings("electric", "electricity", "water", "utility", "verizon",
				"t mobile", "comcast", "xfinity", "internet", "insurance", "geico", "allstate",
				"progressive", "state farm", "rent", "mortgage", "hoa"),
		},
		{
			Name:     "Healthcare",
			Type:     model.CategoryTypeExpense,
			Priority: 55,
			Patterns: substrings("hospital", "clinic", "doctor", "physician", "medical", "cvs",
				"walgreens", "rite aid", "pharmacy", "dental", "dentist", "optometry"),
		},
		{
			Name:     "Entertainment",
			Type:     model.CategoryTypeExpense,
			Priority: 60,
			Patterns: substrings("netflix", "hulu", "disney", "spotify", "apple music", "cinema",
				"theater", "amc", "regal", "steam", "playstation", "xbox", "nintendo", "gym",
				"fitness", "yoga"),
		},
		{
			Name:     "Shopping",
			Type:     model.CategoryTypeExpense,
			Priority: 65,
			Patterns: substrings("amazon", "amzn", "ebay", "walmart", "target", "kohls",
				"nordstrom", "best buy", "bestbuy", "apple store", "home depot", "lowes", "ikea",
				"old navy", "zara", "nike", "adidas"),
		},
		{
			Name:     "Personal Care",
			Type:     model.CategoryTypeExpense,
			Priority: 70,
			Patterns: substrings("salon", "spa", "barber", "nail", "massage", "cosmetics"),
		},
		{
			Name:     "Education",
			Type:     model.CategoryTypeExpense,
			Priority: 75,
			Patterns: substrings("university", "college", "tuition", "bookstore", "textbook"),
		},
		{
			Name:     "Travel",
			Type:     model.CategoryTypeExpense,
			Priority: 80,
			Patterns: substrings("hotel", "motel", "resort", "airbnb", "airline", "airways",
				"car rental", "booking com"),
		},
	}
}

// DefaultSignatures returns the built-in duplicate-detection signatures.
func DefaultSignatures() []model.DuplicateSignature {
	return []model.DuplicateSignature{
		{Name: "Payment Thank You", Kind: model.SignaturePayment, Pattern: `payment\s+thank\s+you`},
		{Name: "Online Payment", Kind: model.SignaturePayment, Pattern: `(online|electronic|web|mobile)\s+payment`},
		{Name: "Autopay", Kind: model.SignaturePayment, Pattern: `auto\s*pay|automatic\s+payment`},
		{Name: "Credit Card Payment", Kind: model.SignaturePayment, Pattern: `(credit\s+card|cc)\s+payment`},
		{Name: "Bill Pay", Kind: model.SignaturePayment, Pattern: `bill\s*pay`},
		{Name: "Issuer Payment", Kind: model.SignaturePayment, Pattern: `(chase\s+credit\s+crd|discover|capital\s+one|citi|amex|american\s+express)\s+payment`},
		{Name: "Account Transfer", Kind: model.SignatureTransfer, Pattern: `(internal|account|online|mobile|wire|ach)\s+transfer|transfer\s+(to|from)`},
		{Name: "P2P Transfer", Kind: model.SignatureTransfer, Pattern: `zelle|venmo|quickpay|cash\s+app|person\s+to\s+person`},
		{Name: "Card Purchase", Kind: model.SignaturePurchase, Pattern: `amazon|walmart|target|starbucks|mcdonalds|gas\s+station|grocery|restaurant|retail|online\s+purchase`},
		{Name: "Recurring Charge", Kind: model.SignaturePurchase, Pattern: `netflix|spotify|hulu|disney|subscription|membership|insurance|utility`},
	}
}
