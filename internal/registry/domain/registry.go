package domain

import "fmt"

// operatorKey is the directed (owner, operator) pair keying blanket grants.
type operatorKey struct {
	owner    Address
	operator Address
}

// Registry is the aggregate holding all ledger state for one deployed
// registry instance. All maps follow the sparse-table contract: an absent
// key reads as the zero value of the field. The aggregate is not safe for
// concurrent use; the hosting environment serializes all calls.
type Registry struct {
	name   string
	symbol string

	// counter is the last assigned token id; the next mint uses counter+1.
	counter TokenID

	owners            map[TokenID]Address
	balances          map[Address]uint64
	tokenApprovals    map[TokenID]Address
	operatorApprovals map[operatorKey]bool
	tokenURIs         map[TokenID]string

	// Enumeration index: the ordered tokens each account currently holds,
	// plus each token's position in its owner's list for O(1) removal.
	held    map[Address][]TokenID
	heldPos map[TokenID]int

	sink EventSink
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithEventSink routes emitted events to sink. Without it, events are
// silently discarded.
func WithEventSink(sink EventSink) Option {
	return func(r *Registry) { r.sink = sink }
}

// NewRegistry creates an empty registry with the given collection name and
// symbol.
func NewRegistry(name, symbol string, opts ...Option) *Registry {
	r := &Registry{
		name:              name,
		symbol:            symbol,
		owners:            make(map[TokenID]Address),
		balances:          make(map[Address]uint64),
		tokenApprovals:    make(map[TokenID]Address),
		operatorApprovals: make(map[operatorKey]bool),
		tokenURIs:         make(map[TokenID]string),
		held:              make(map[Address][]TokenID),
		heldPos:           make(map[TokenID]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) emit(e Event) {
	if r.sink != nil {
		r.sink.Emit(e)
	}
}

// Name returns the collection name set at construction.
func (r *Registry) Name() string { return r.name }

// Symbol returns the collection symbol set at construction.
func (r *Registry) Symbol() string { return r.symbol }

// TotalMinted returns the last assigned token id. Minted ids are exactly
// 1..TotalMinted with no gaps; burned ids remain counted.
func (r *Registry) TotalMinted() TokenID { return r.counter }

// OwnerOf returns the current owner of id, or the zero address if the token
// was never minted or has been burned. It never fails; callers distinguish
// "no owner" from error.
func (r *Registry) OwnerOf(id TokenID) Address {
	return r.owners[id]
}

// exists reports whether id refers to a live token.
func (r *Registry) exists(id TokenID) bool {
	return !r.owners[id].IsZero()
}

// BalanceOf returns the number of tokens account currently owns. Accounts
// never seen by the registry have balance zero. The zero address is rejected
// with ErrInvalidAccount.
func (r *Registry) BalanceOf(account Address) (uint64, error) {
	if account.IsZero() {
		return 0, fmt.Errorf("balance query: %w", ErrInvalidAccount)
	}
	return r.balances[account], nil
}

// TokenURI returns the stored URI for a live token (empty if never set).
// Never-minted and burned ids are rejected with ErrTokenNotFound.
func (r *Registry) TokenURI(id TokenID) (string, error) {
	if !r.exists(id) {
		return "", fmt.Errorf("token %d: %w", id, ErrTokenNotFound)
	}
	return r.tokenURIs[id], nil
}

// Approved returns the account approved to transfer id, or the zero address
// if none. Never-minted and burned ids are rejected with ErrTokenNotFound.
func (r *Registry) Approved(id TokenID) (Address, error) {
	if !r.exists(id) {
		return ZeroAddress, fmt.Errorf("token %d: %w", id, ErrTokenNotFound)
	}
	return r.tokenApprovals[id], nil
}

// IsApprovedForAll reports whether operator holds a blanket grant over every
// token owner holds. Grants are independent per directed pair.
func (r *Registry) IsApprovedForAll(owner, operator Address) bool {
	return r.operatorApprovals[operatorKey{owner, operator}]
}

// Mint assigns the next token id to the given account.
func (r *Registry) Mint(to Address) (TokenID, error) {
	return r.MintWithURI(to, "")
}

// MintWithURI assigns the next token id to the given account and records its
// metadata URI. The id is counter+1; the counter is advanced on success.
func (r *Registry) MintWithURI(to Address, uri string) (TokenID, error) {
	if to.IsZero() {
		return 0, fmt.Errorf("mint: %w", ErrZeroAddress)
	}
	id := r.counter + 1
	if r.exists(id) {
		// Unreachable while the counter is monotonic.
		return 0, fmt.Errorf("mint token %d: %w", id, ErrAlreadyMinted)
	}

	r.balances[to]++
	r.owners[id] = to
	r.counter = id
	if uri != "" {
		r.tokenURIs[id] = uri
	}
	r.trackHeld(to, id)

	r.emit(TransferEvent{From: ZeroAddress, To: to, TokenID: id})
	return id, nil
}

// Approve delegates transfer rights for a single token. The caller must be
// the token's owner or hold a blanket grant from the owner. Approving the
// owner itself is rejected; approving the zero address clears the
// delegation.
func (r *Registry) Approve(caller, to Address, id TokenID) error {
	owner := r.owners[id]
	if to == owner {
		return fmt.Errorf("approve token %d: %w", id, ErrSelfApproval)
	}
	if caller != owner && !r.IsApprovedForAll(owner, caller) {
		return fmt.Errorf("approve token %d: %w", id, ErrUnauthorized)
	}

	if to.IsZero() {
		delete(r.tokenApprovals, id)
	} else {
		r.tokenApprovals[id] = to
	}

	r.emit(ApprovalEvent{Owner: owner, Approved: to, TokenID: id})
	return nil
}

// SetOperatorApproval grants or revokes operator's blanket transfer rights
// over every token the caller holds, now and in the future. The grant never
// changes balances.
func (r *Registry) SetOperatorApproval(caller, operator Address, approved bool) error {
	if operator == caller {
		return fmt.Errorf("operator approval: %w", ErrSelfApproval)
	}

	key := operatorKey{caller, operator}
	if approved {
		r.operatorApprovals[key] = true
	} else {
		delete(r.operatorApprovals, key)
	}

	r.emit(OperatorApprovalEvent{Owner: caller, Operator: operator, Approved: approved})
	return nil
}

// Transfer reassigns ownership of id from one account to another. The caller
// must be the token's owner, an operator of the owner, or the account
// specifically approved for the token. Authorization is evaluated against
// the token's actual stored owner; the supplied from is validated separately
// and a mismatch is rejected with ErrOwnerMismatch.
func (r *Registry) Transfer(caller, from, to Address, id TokenID) error {
	if !r.isAuthorized(caller, id) {
		return fmt.Errorf("transfer token %d: %w", id, ErrUnauthorized)
	}
	return r.transfer(from, to, id)
}

// isAuthorized reports whether caller may move or burn id: token owner,
// operator of the owner, or the specifically approved account. The zero
// address is never authorized.
func (r *Registry) isAuthorized(caller Address, id TokenID) bool {
	if caller.IsZero() {
		return false
	}
	owner := r.owners[id]
	return caller == owner ||
		r.IsApprovedForAll(owner, caller) ||
		r.tokenApprovals[id] == caller
}

// transfer applies the ownership change. Both checks run before any write,
// so a rejection leaves state untouched.
func (r *Registry) transfer(from, to Address, id TokenID) error {
	owner := r.owners[id]
	if from != owner {
		return fmt.Errorf("transfer token %d: %w", id, ErrOwnerMismatch)
	}
	if to.IsZero() {
		return fmt.Errorf("transfer token %d: %w", id, ErrZeroAddress)
	}

	delete(r.tokenApprovals, id)

	r.balances[from]--
	if r.balances[from] == 0 {
		delete(r.balances, from)
	}
	r.balances[to]++

	r.owners[id] = to
	r.untrackHeld(from, id)
	r.trackHeld(to, id)

	r.emit(TransferEvent{From: from, To: to, TokenID: id})
	return nil
}

// Burn destroys a live token. Authorization matches Transfer: owner,
// operator of the owner, or the approved account. The id is never reassigned
// afterwards.
func (r *Registry) Burn(caller Address, id TokenID) error {
	if !r.exists(id) {
		return fmt.Errorf("burn token %d: %w", id, ErrTokenNotFound)
	}
	if !r.isAuthorized(caller, id) {
		return fmt.Errorf("burn token %d: %w", id, ErrUnauthorized)
	}
	r.burn(id)
	return nil
}

// burn clears all per-token state and retracts the enumeration entry.
func (r *Registry) burn(id TokenID) {
	owner := r.owners[id]

	delete(r.tokenApprovals, id)
	delete(r.tokenURIs, id)

	r.balances[owner]--
	if r.balances[owner] == 0 {
		delete(r.balances, owner)
	}

	delete(r.owners, id)
	r.untrackHeld(owner, id)

	r.emit(TransferEvent{From: owner, To: ZeroAddress, TokenID: id})
}
