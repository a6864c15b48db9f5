package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// collectEvents returns a registry option wiring a sink that appends every
// emitted event to the returned slice.
func collectEvents(events *[]Event) Option {
	return WithEventSink(EventSinkFunc(func(e Event) {
		*events = append(*events, e)
	}))
}

func TestNewRegistry_Empty(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	require.Equal(t, "Curios", r.Name())
	require.Equal(t, "CUR", r.Symbol())
	require.Equal(t, TokenID(0), r.TotalMinted())
	require.Equal(t, ZeroAddress, r.OwnerOf(1), "unminted token should have no owner")
}

func TestMint_AssignsSequentialIDs(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	id1, err := r.Mint("alice")
	require.NoError(t, err)
	require.Equal(t, TokenID(1), id1)

	id2, err := r.Mint("bob")
	require.NoError(t, err)
	require.Equal(t, TokenID(2), id2)

	require.Equal(t, TokenID(2), r.TotalMinted())
	require.Equal(t, Address("alice"), r.OwnerOf(1))
	require.Equal(t, Address("bob"), r.OwnerOf(2))
}

func TestMint_ZeroAddressRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint(ZeroAddress)
	require.ErrorIs(t, err, ErrZeroAddress)
	require.Equal(t, TokenID(0), r.TotalMinted(), "failed mint must not advance the counter")
}

func TestMintWithURI_StoresURI(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	id, err := r.MintWithURI("alice", "ipfs://curio/1")
	require.NoError(t, err)

	uri, err := r.TokenURI(id)
	require.NoError(t, err)
	require.Equal(t, "ipfs://curio/1", uri)
}

func TestTokenURI_DefaultsEmpty(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	id, err := r.Mint("alice")
	require.NoError(t, err)

	uri, err := r.TokenURI(id)
	require.NoError(t, err)
	require.Empty(t, uri)
}

func TestTokenURI_UnknownTokenRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.TokenURI(7)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestBalanceOf_ZeroAddressRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.BalanceOf(ZeroAddress)
	require.ErrorIs(t, err, ErrInvalidAccount)
}

func TestBalanceOf_UnseenAccountIsZero(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	balance, err := r.BalanceOf("nobody")
	require.NoError(t, err)
	require.Zero(t, balance)
}

// TestMintTransferScenario covers the concrete lifecycle: two mints to the
// same account, then a transfer of the first token away.
func TestMintTransferScenario(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.Equal(t, Address("alice"), r.OwnerOf(1))
	requireBalance(t, r, "alice", 1)
	require.Equal(t, []TokenID{1}, r.TokenIDsOf("alice"))

	_, err = r.Mint("alice")
	require.NoError(t, err)
	require.Equal(t, Address("alice"), r.OwnerOf(2))
	requireBalance(t, r, "alice", 2)
	require.Equal(t, []TokenID{1, 2}, r.TokenIDsOf("alice"))

	err = r.Transfer("alice", "alice", "bob", 1)
	require.NoError(t, err)
	require.Equal(t, Address("bob"), r.OwnerOf(1))
	requireBalance(t, r, "alice", 1)
	requireBalance(t, r, "bob", 1)

	approved, err := r.Approved(1)
	require.NoError(t, err)
	require.Equal(t, ZeroAddress, approved)
}

func TestTransfer_UnauthorizedLeavesStateUnchanged(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)

	// carol is neither owner, operator, nor approved for the token.
	err = r.Transfer("carol", "alice", "carol", 1)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Equal(t, Address("alice"), r.OwnerOf(1))
	requireBalance(t, r, "alice", 1)
	requireBalance(t, r, "carol", 0)
	require.Equal(t, []TokenID{1}, r.TokenIDsOf("alice"))
}

func TestTransfer_OwnerMismatchRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)

	// The caller is authorized (owner), but the supplied from is wrong.
	err = r.Transfer("alice", "bob", "carol", 1)
	require.ErrorIs(t, err, ErrOwnerMismatch)
	require.Equal(t, Address("alice"), r.OwnerOf(1))
}

func TestTransfer_ZeroRecipientRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)

	err = r.Transfer("alice", "alice", ZeroAddress, 1)
	require.ErrorIs(t, err, ErrZeroAddress)
	require.Equal(t, Address("alice"), r.OwnerOf(1))
}

func TestTransfer_ByApprovedAccount(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.Approve("alice", "bob", 1))

	err = r.Transfer("bob", "alice", "bob", 1)
	require.NoError(t, err)
	require.Equal(t, Address("bob"), r.OwnerOf(1))
}

func TestTransfer_ByOperator(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.SetOperatorApproval("alice", "opera", true))

	err = r.Transfer("opera", "alice", "carol", 1)
	require.NoError(t, err)
	require.Equal(t, Address("carol"), r.OwnerOf(1))
}

func TestTransfer_ClearsApproval(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.Approve("alice", "bob", 1))

	approved, err := r.Approved(1)
	require.NoError(t, err)
	require.Equal(t, Address("bob"), approved)

	require.NoError(t, r.Transfer("alice", "alice", "carol", 1))

	approved, err = r.Approved(1)
	require.NoError(t, err)
	require.Equal(t, ZeroAddress, approved, "transfer must unconditionally clear the approval")
}

func TestApprove_SelfApprovalRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)

	err = r.Approve("alice", "alice", 1)
	require.ErrorIs(t, err, ErrSelfApproval)
}

func TestApprove_UnauthorizedCallerRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)

	err = r.Approve("bob", "carol", 1)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestApprove_ByOperator(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.SetOperatorApproval("alice", "opera", true))

	require.NoError(t, r.Approve("opera", "carol", 1))

	approved, err := r.Approved(1)
	require.NoError(t, err)
	require.Equal(t, Address("carol"), approved)
}

func TestApprove_ZeroAddressClears(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.Approve("alice", "bob", 1))
	require.NoError(t, r.Approve("alice", ZeroAddress, 1))

	approved, err := r.Approved(1)
	require.NoError(t, err)
	require.Equal(t, ZeroAddress, approved)
}

func TestSetOperatorApproval_SelfRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	err := r.SetOperatorApproval("alice", "alice", true)
	require.ErrorIs(t, err, ErrSelfApproval)
}

func TestSetOperatorApproval_DirectedPairsIndependent(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	require.NoError(t, r.SetOperatorApproval("alice", "bob", true))

	require.True(t, r.IsApprovedForAll("alice", "bob"))
	require.False(t, r.IsApprovedForAll("bob", "alice"), "grants are directed")
}

func TestBurn_ClearsTokenState(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.MintWithURI("alice", "ipfs://curio/1")
	require.NoError(t, err)
	require.NoError(t, r.Approve("alice", "bob", 1))

	require.NoError(t, r.Burn("alice", 1))

	require.Equal(t, ZeroAddress, r.OwnerOf(1))
	requireBalance(t, r, "alice", 0)
	require.Empty(t, r.TokenIDsOf("alice"), "burn must retract the enumeration entry")

	_, err = r.Approved(1)
	require.ErrorIs(t, err, ErrTokenNotFound)
	_, err = r.TokenURI(1)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestBurn_IDNeverReassigned(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.Burn("alice", 1))

	id, err := r.Mint("alice")
	require.NoError(t, err)
	require.Equal(t, TokenID(2), id, "burned ids are terminal")
	require.Equal(t, TokenID(2), r.TotalMinted())
}

func TestBurn_UnknownTokenRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	err := r.Burn("alice", 1)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestBurn_UnauthorizedRejected(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)

	err = r.Burn("carol", 1)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, Address("alice"), r.OwnerOf(1))
}

func TestBurn_ByOperator(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.SetOperatorApproval("alice", "opera", true))

	require.NoError(t, r.Burn("opera", 1))
	require.Equal(t, ZeroAddress, r.OwnerOf(1))
}

func TestEvents_EmittedInOperationOrder(t *testing.T) {
	var events []Event
	r := NewRegistry("Curios", "CUR", collectEvents(&events))

	_, err := r.Mint("alice")
	require.NoError(t, err)
	require.NoError(t, r.Approve("alice", "bob", 1))
	require.NoError(t, r.SetOperatorApproval("alice", "opera", true))
	require.NoError(t, r.Transfer("bob", "alice", "bob", 1))
	require.NoError(t, r.Burn("bob", 1))

	require.Equal(t, []Event{
		TransferEvent{From: ZeroAddress, To: "alice", TokenID: 1},
		ApprovalEvent{Owner: "alice", Approved: "bob", TokenID: 1},
		OperatorApprovalEvent{Owner: "alice", Operator: "opera", Approved: true},
		TransferEvent{From: "alice", To: "bob", TokenID: 1},
		TransferEvent{From: "bob", To: ZeroAddress, TokenID: 1},
	}, events)
}

func TestEvents_NotEmittedOnRejection(t *testing.T) {
	var events []Event
	r := NewRegistry("Curios", "CUR", collectEvents(&events))

	_, err := r.Mint(ZeroAddress)
	require.ErrorIs(t, err, ErrZeroAddress)
	require.Empty(t, events)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	r := NewRegistry("Curios", "CUR")

	_, err := r.MintWithURI("alice", "ipfs://curio/1")
	require.NoError(t, err)
	_, err = r.Mint("alice")
	require.NoError(t, err)
	_, err = r.Mint("bob")
	require.NoError(t, err)
	require.NoError(t, r.Approve("alice", "bob", 2))
	require.NoError(t, r.SetOperatorApproval("bob", "opera", true))
	require.NoError(t, r.Transfer("alice", "alice", "bob", 1))
	require.NoError(t, r.Burn("bob", 3))

	snap := r.Snapshot()
	restored, err := ReconstituteRegistry(snap)
	require.NoError(t, err)

	require.Equal(t, snap, restored.Snapshot())
	require.Equal(t, r.OwnerOf(1), restored.OwnerOf(1))
	require.Equal(t, r.TokenIDsOf("bob"), restored.TokenIDsOf("bob"))
	require.True(t, restored.IsApprovedForAll("bob", "opera"))
}

func TestReconstitute_RejectsInconsistentHoldings(t *testing.T) {
	snap := Snapshot{
		Name:    "Curios",
		Symbol:  "CUR",
		Counter: 1,
		Tokens:  []TokenRecord{{ID: 1, Owner: "alice"}},
		Holdings: map[Address][]TokenID{
			"bob": {1},
		},
	}

	_, err := ReconstituteRegistry(snap)
	require.Error(t, err)
}

func requireBalance(t *testing.T, r *Registry, account Address, want uint64) {
	t.Helper()
	balance, err := r.BalanceOf(account)
	require.NoError(t, err)
	require.Equal(t, want, balance, "balance of %s", account)
}
