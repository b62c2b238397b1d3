package model

import "fmt"

// PatternKind identifies how a category pattern is matched.
type PatternKind string

const (
	// PatternSubstring matches when the pattern text occurs in the description.
	PatternSubstring PatternKind = "substring"
	// PatternKeywords matches when every keyword occurs in the description.
	PatternKeywords PatternKind = "keywords"
	// PatternRegex matches a case-insensitive regular expression.
	PatternRegex PatternKind = "regex"
)

// ParsePatternKind converts a configuration string into a PatternKind.
func ParsePatternKind(s string) (PatternKind, error) {
	switch PatternKind(s) {
	case PatternSubstring, PatternKeywords, PatternRegex:
		return PatternKind(s), nil
	case "":
		return PatternSubstring, nil
	}
	return "", fmt.Errorf("unknown pattern kind %q", s)
}

// CategoryPattern is one matcher belonging to a category.
type CategoryPattern struct {
	Kind  PatternKind `mapstructure:"kind" yaml:"kind"`
	Value string      `mapstructure:"value" yaml:"value"`
	// Representative is the text used for fuzzy scoring of regex patterns.
	Representative string `mapstructure:"representative" yaml:"representative,omitempty"`
}

// CategoryDefinition is a static category loaded into the pattern registry.
type CategoryDefinition struct {
	Name     string            `mapstructure:"name" yaml:"name"`
	Type     CategoryType      `mapstructure:"type" yaml:"type,omitempty"`
	Patterns []CategoryPattern `mapstructure:"patterns" yaml:"patterns"`
	Priority int               `mapstructure:"priority" yaml:"priority"`
}

// CategoryType indicates whether a category is for income, expense, or system use.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeSystem represents system-managed categories (e.g., transfers).
	CategoryTypeSystem CategoryType = "system"
)

// Uncategorized is assigned when no tier produced a match.
const Uncategorized = "Uncategorized"
