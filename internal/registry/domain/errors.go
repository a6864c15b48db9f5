package domain

import "errors"

// Registry errors. Every mutation either fully succeeds or fails with one of
// these, wrapped with call context; no partial state change is observable.
var (
	// ErrZeroAddress indicates an account argument was the null identifier
	// where a real account is required.
	ErrZeroAddress = errors.New("zero address")

	// ErrTokenNotFound indicates a query against a token id that was never
	// minted or has been burned.
	ErrTokenNotFound = errors.New("token not found")

	// ErrInvalidAccount indicates a balance query on the null identifier.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrSelfApproval indicates an attempt to approve oneself as a delegate
	// or operator.
	ErrSelfApproval = errors.New("approval to current caller")

	// ErrUnauthorized indicates the caller lacks owner, operator, or
	// per-token approval rights for the attempted operation.
	ErrUnauthorized = errors.New("caller is not owner nor approved")

	// ErrOwnerMismatch indicates the supplied from account does not match
	// the token's actual current owner.
	ErrOwnerMismatch = errors.New("from does not match token owner")

	// ErrAlreadyMinted indicates a mint collision on an existing token id.
	// Unreachable while the id counter is monotonic; kept as a defensive
	// check.
	ErrAlreadyMinted = errors.New("token already minted")
)
