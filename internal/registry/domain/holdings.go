package domain

// TokenIDsOf returns the ordered list of token ids account currently holds.
// The slice is a copy; its length always equals the account's balance.
// Unseen accounts and the zero address yield an empty list.
func (r *Registry) TokenIDsOf(account Address) []TokenID {
	held := r.held[account]
	out := make([]TokenID, len(held))
	copy(out, held)
	return out
}

// trackHeld appends id to account's holdings and records its position.
func (r *Registry) trackHeld(account Address, id TokenID) {
	r.heldPos[id] = len(r.held[account])
	r.held[account] = append(r.held[account], id)
}

// untrackHeld removes id from account's holdings by swapping the last entry
// into its slot and shrinking the list, so removal stays O(1) and the index
// never over-reports after a burn or transfer.
func (r *Registry) untrackHeld(account Address, id TokenID) {
	held := r.held[account]
	pos := r.heldPos[id]

	last := len(held) - 1
	if pos != last {
		moved := held[last]
		held[pos] = moved
		r.heldPos[moved] = pos
	}
	held = held[:last]

	if len(held) == 0 {
		delete(r.held, account)
	} else {
		r.held[account] = held
	}
	delete(r.heldPos, id)
}
