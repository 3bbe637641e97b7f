package enums

import "fmt"

// NetWorthBucket is one of the semantic buckets an account balance is
// routed into when aggregating net worth.
type NetWorthBucket string

const (
	BucketCash        NetWorthBucket = "cash"
	BucketInvestments NetWorthBucket = "investments"
	BucketRealEstate  NetWorthBucket = "real_estate"
	BucketCrypto      NetWorthBucket = "crypto"
	BucketRetirement  NetWorthBucket = "retirement"
	BucketLiabilities NetWorthBucket = "liabilities"
)

var validNetWorthBuckets = []NetWorthBucket{
	BucketCash,
	BucketInvestments,
	BucketRealEstate,
	BucketCrypto,
	BucketRetirement,
	BucketLiabilities,
}

// String returns the literal string for the bucket.
func (b NetWorthBucket) String() string {
	return string(b)
}

// IsValid reports whether the value is a known bucket.
func (b NetWorthBucket) IsValid() bool {
	for _, candidate := range validNetWorthBuckets {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseNetWorthBucket converts raw input into a NetWorthBucket.
func ParseNetWorthBucket(value string) (NetWorthBucket, error) {
	for _, candidate := range validNetWorthBuckets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid net worth bucket %q", value)
}
