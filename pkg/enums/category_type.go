package enums

import "fmt"

// CategoryType maps to the category_type enum in Postgres.
type CategoryType string

const (
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeExpense  CategoryType = "expense"
	CategoryTypeTransfer CategoryType = "transfer"
)

var validCategoryTypes = []CategoryType{
	CategoryTypeIncome,
	CategoryTypeExpense,
	CategoryTypeTransfer,
}

// String returns the literal string for the category type.
func (c CategoryType) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical category_type enum.
func (c CategoryType) IsValid() bool {
	for _, candidate := range validCategoryTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategoryType converts raw input into a CategoryType.
func ParseCategoryType(value string) (CategoryType, error) {
	for _, candidate := range validCategoryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category type %q", value)
}
