package domain

import (
	"fmt"
	"sort"
)

// TokenRecord is the persisted per-token state of a live token.
type TokenRecord struct {
	ID       TokenID
	Owner    Address
	URI      string
	Approved Address
}

// OperatorGrant is a persisted (owner, operator) blanket approval.
type OperatorGrant struct {
	Owner    Address
	Operator Address
}

// Snapshot is the full persisted state of a registry, used to reconstitute
// the aggregate from storage. Burned tokens are absent; they are represented
// only by the gap between live ids and Counter.
type Snapshot struct {
	Name     string
	Symbol   string
	Counter  TokenID
	Tokens   []TokenRecord
	Grants   []OperatorGrant
	Holdings map[Address][]TokenID
}

// Snapshot captures the registry's current state. Tokens are ordered by id
// and grants by owner then operator, so equal states produce equal
// snapshots.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		Name:     r.name,
		Symbol:   r.symbol,
		Counter:  r.counter,
		Holdings: make(map[Address][]TokenID, len(r.held)),
	}

	for id, owner := range r.owners {
		snap.Tokens = append(snap.Tokens, TokenRecord{
			ID:       id,
			Owner:    owner,
			URI:      r.tokenURIs[id],
			Approved: r.tokenApprovals[id],
		})
	}
	sort.Slice(snap.Tokens, func(i, j int) bool { return snap.Tokens[i].ID < snap.Tokens[j].ID })

	for key := range r.operatorApprovals {
		snap.Grants = append(snap.Grants, OperatorGrant{Owner: key.owner, Operator: key.operator})
	}
	sort.Slice(snap.Grants, func(i, j int) bool {
		if snap.Grants[i].Owner != snap.Grants[j].Owner {
			return snap.Grants[i].Owner < snap.Grants[j].Owner
		}
		return snap.Grants[i].Operator < snap.Grants[j].Operator
	})

	for account, held := range r.held {
		out := make([]TokenID, len(held))
		copy(out, held)
		snap.Holdings[account] = out
	}

	return snap
}

// ReconstituteRegistry rebuilds an aggregate from a persisted snapshot,
// typically when hydrating from the ledger database. Balances and holding
// positions are derived from the snapshot's ordered holdings.
func ReconstituteRegistry(snap Snapshot, opts ...Option) (*Registry, error) {
	r := NewRegistry(snap.Name, snap.Symbol, opts...)
	r.counter = snap.Counter

	for _, tok := range snap.Tokens {
		if tok.ID == 0 || tok.ID > snap.Counter {
			return nil, fmt.Errorf("reconstitute: token %d outside minted range 1..%d", tok.ID, snap.Counter)
		}
		if tok.Owner.IsZero() {
			return nil, fmt.Errorf("reconstitute: token %d has no owner", tok.ID)
		}
		r.owners[tok.ID] = tok.Owner
		if tok.URI != "" {
			r.tokenURIs[tok.ID] = tok.URI
		}
		if !tok.Approved.IsZero() {
			r.tokenApprovals[tok.ID] = tok.Approved
		}
	}

	for _, g := range snap.Grants {
		r.operatorApprovals[operatorKey{g.Owner, g.Operator}] = true
	}

	tracked := 0
	for account, held := range snap.Holdings {
		for _, id := range held {
			if r.owners[id] != account {
				return nil, fmt.Errorf("reconstitute: token %d listed under %q but owned by %q", id, account, r.owners[id])
			}
			r.trackHeld(account, id)
			tracked++
		}
		r.balances[account] = uint64(len(held))
	}
	if tracked != len(snap.Tokens) {
		return nil, fmt.Errorf("reconstitute: %d tokens but %d holding entries", len(snap.Tokens), tracked)
	}

	return r, nil
}
