package domain

// Address identifies an account. The empty string is the zero address: it is
// never a real account, and map lookups keyed by a missing address read as
// the zero value of the field (zero balance, no approvals).
type Address string

// ZeroAddress is the null account identifier. Burned tokens are owned by it,
// and it is rejected wherever a real account is required.
const ZeroAddress Address = ""

// IsZero reports whether the address is the null identifier.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the string representation of the address.
func (a Address) String() string {
	return string(a)
}

// TokenID identifies a token. IDs are assigned by mint starting at 1 and are
// never reused; 0 is not a valid token id.
type TokenID uint64
