package enums

import "fmt"

// AccountType maps to the account_type enum in Postgres.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeRetirement AccountType = "retirement"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeMortgage   AccountType = "mortgage"
	AccountTypeOther      AccountType = "other"
)

var validAccountTypes = []AccountType{
	AccountTypeChecking,
	AccountTypeSavings,
	AccountTypeCreditCard,
	AccountTypeInvestment,
	AccountTypeRetirement,
	AccountTypeLoan,
	AccountTypeMortgage,
	AccountTypeOther,
}

// String returns the literal string for the account type.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value matches the canonical account_type enum.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsLiability reports whether balances on this account represent money owed.
func (a AccountType) IsLiability() bool {
	switch a {
	case AccountTypeCreditCard, AccountTypeLoan, AccountTypeMortgage:
		return true
	default:
		return false
	}
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
