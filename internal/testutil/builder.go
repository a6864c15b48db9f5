package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curioledger/curio/internal/registry/domain"
)

// Builder seeds a fresh registry repository with tokens, approvals, and
// operator grants. Each call runs the real domain operation and mirrors the
// result into the repository, so the persisted state is always one the
// aggregate could actually have produced.
type Builder struct {
	t       *testing.T
	repo    domain.RegistryRepository
	reg     *domain.Registry
	pending []domain.Event
}

// NewBuilder creates a builder over an empty repository.
func NewBuilder(t *testing.T, repo domain.RegistryRepository, name, symbol string) *Builder {
	t.Helper()

	b := &Builder{t: t, repo: repo}
	require.NoError(t, repo.Init(name, symbol))
	b.reg = domain.NewRegistry(name, symbol,
		domain.WithEventSink(domain.EventSinkFunc(func(e domain.Event) {
			b.pending = append(b.pending, e)
		})))

	return b
}

// MintFor mints the next token for owner, optionally with a metadata URI.
func (b *Builder) MintFor(owner domain.Address, uri string) *Builder {
	b.t.Helper()

	b.pending = nil
	_, err := b.reg.MintWithURI(owner, uri)
	require.NoError(b.t, err)

	ev := b.pending[0].(domain.TransferEvent)
	require.NoError(b.t, b.repo.RecordMint(ev, uri, b.holdings(owner)))

	return b
}

// Approve delegates the token to another account.
func (b *Builder) Approve(owner, to domain.Address, id domain.TokenID) *Builder {
	b.t.Helper()

	b.pending = nil
	require.NoError(b.t, b.reg.Approve(owner, to, id))

	ev := b.pending[0].(domain.ApprovalEvent)
	require.NoError(b.t, b.repo.RecordApproval(ev))

	return b
}

// Grant gives operator blanket rights over owner's tokens.
func (b *Builder) Grant(owner, operator domain.Address) *Builder {
	b.t.Helper()

	b.pending = nil
	require.NoError(b.t, b.reg.SetOperatorApproval(owner, operator, true))

	ev := b.pending[0].(domain.OperatorApprovalEvent)
	require.NoError(b.t, b.repo.RecordOperatorApproval(ev))

	return b
}

// Transfer moves a token between accounts on behalf of caller.
func (b *Builder) Transfer(caller, from, to domain.Address, id domain.TokenID) *Builder {
	b.t.Helper()

	b.pending = nil
	require.NoError(b.t, b.reg.Transfer(caller, from, to, id))

	ev := b.pending[len(b.pending)-1].(domain.TransferEvent)
	require.NoError(b.t, b.repo.RecordTransfer(ev, b.holdings(from, to)))

	return b
}

// Burn destroys a token on behalf of caller.
func (b *Builder) Burn(caller domain.Address, id domain.TokenID) *Builder {
	b.t.Helper()

	owner := b.reg.OwnerOf(id)
	b.pending = nil
	require.NoError(b.t, b.reg.Burn(caller, id))

	ev := b.pending[len(b.pending)-1].(domain.TransferEvent)
	require.NoError(b.t, b.repo.RecordBurn(ev, b.holdings(owner)))

	return b
}

// Registry returns the in-memory aggregate the builder has been driving.
func (b *Builder) Registry() *domain.Registry {
	return b.reg
}

func (b *Builder) holdings(accounts ...domain.Address) []domain.HoldingsUpdate {
	updates := make([]domain.HoldingsUpdate, 0, len(accounts))
	seen := make(map[domain.Address]bool, len(accounts))
	for _, account := range accounts {
		if account.IsZero() || seen[account] {
			continue
		}
		seen[account] = true
		updates = append(updates, domain.HoldingsUpdate{
			Account:  account,
			TokenIDs: b.reg.TokenIDsOf(account),
		})
	}

	return updates
}
