// Package networth buckets account balances into semantic categories and
// maintains the daily snapshot.
package networth

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// Buckets holds the six aggregation totals.
type Buckets struct {
	Cash        decimal.Decimal `json:"cash"`
	Investments decimal.Decimal `json:"investments"`
	RealEstate  decimal.Decimal `json:"realEstate"`
	Crypto      decimal.Decimal `json:"crypto"`
	Retirement  decimal.Decimal `json:"retirement"`
	Liabilities decimal.Decimal `json:"liabilities"`
}

// TotalAssets sums every bucket except liabilities.
func (b Buckets) TotalAssets() decimal.Decimal {
	return b.Cash.Add(b.Investments).Add(b.RealEstate).Add(b.Crypto).Add(b.Retirement)
}

// NetWorth is total assets minus liabilities.
func (b Buckets) NetWorth() decimal.Decimal {
	return b.TotalAssets().Sub(b.Liabilities)
}

func (b *Buckets) add(bucket enums.NetWorthBucket, amount decimal.Decimal) {
	switch bucket {
	case enums.BucketCash:
		b.Cash = b.Cash.Add(amount)
	case enums.BucketInvestments:
		b.Investments = b.Investments.Add(amount)
	case enums.BucketRealEstate:
		b.RealEstate = b.RealEstate.Add(amount)
	case enums.BucketCrypto:
		b.Crypto = b.Crypto.Add(amount)
	case enums.BucketRetirement:
		b.Retirement = b.Retirement.Add(amount)
	case enums.BucketLiabilities:
		b.Liabilities = b.Liabilities.Add(amount)
	}
}

// bucketRule is one row of the ordered routing policy. The first rule
// whose match function fires wins; rule order is part of the contract.
type bucketRule struct {
	tag    string
	bucket enums.NetWorthBucket
	match  func(typ enums.AccountType, loweredName string) bool
}

var bucketRules = []bucketRule{
	{
		tag:    "liability-type",
		bucket: enums.BucketLiabilities,
		match: func(typ enums.AccountType, _ string) bool {
			return typ.IsLiability()
		},
	},
	{
		tag:    "cash-type",
		bucket: enums.BucketCash,
		match: func(typ enums.AccountType, _ string) bool {
			return typ == enums.AccountTypeChecking || typ == enums.AccountTypeSavings
		},
	},
	{
		tag:    "retirement-type",
		bucket: enums.BucketRetirement,
		match: func(typ enums.AccountType, _ string) bool {
			return typ == enums.AccountTypeRetirement
		},
	},
	{
		tag:    "crypto-keyword",
		bucket: enums.BucketCrypto,
		match: func(_ enums.AccountType, name string) bool {
			return strings.Contains(name, "crypto")
		},
	},
	{
		tag:    "investment-type",
		bucket: enums.BucketInvestments,
		match: func(typ enums.AccountType, _ string) bool {
			return typ == enums.AccountTypeInvestment
		},
	},
	{
		tag:    "real-estate-keyword",
		bucket: enums.BucketRealEstate,
		match: func(_ enums.AccountType, name string) bool {
			return strings.Contains(name, "house") ||
				strings.Contains(name, "property") ||
				strings.Contains(name, "real estate")
		},
	},
	{
		tag:    "default",
		bucket: enums.BucketInvestments,
		match: func(enums.AccountType, string) bool {
			return true
		},
	},
}

// BucketFor routes one account through the decision table. Keyword rules
// are a known source of misclassification; the table keeps the policy in
// one ordered, inspectable place.
func BucketFor(account models.Account) enums.NetWorthBucket {
	name := strings.ToLower(account.Name)
	for _, rule := range bucketRules {
		if rule.match(account.AccountType, name) {
			return rule.bucket
		}
	}
	return enums.BucketInvestments
}

// AccountBalance pairs an account with its current resolved balance. For
// liabilities the balance is negative while money is owed.
type AccountBalance struct {
	Account models.Account
	Balance decimal.Decimal
}

// Aggregate routes every active account's balance into exactly one
// bucket. Liability balances land as absolute values so the liabilities
// total reads as a positive owed amount.
func Aggregate(balances []AccountBalance) Buckets {
	var buckets Buckets
	for _, ab := range balances {
		if !ab.Account.IsActive {
			continue
		}
		bucket := BucketFor(ab.Account)
		amount := ab.Balance
		if bucket == enums.BucketLiabilities {
			amount = amount.Abs()
		}
		buckets.add(bucket, amount)
	}
	return buckets
}
