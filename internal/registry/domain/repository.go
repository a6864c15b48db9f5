package domain

import "time"

// HoldingsUpdate carries the full ordered holdings of one account touched by
// a mutation, so the store can mirror the enumeration index without
// replaying swap-and-pop bookkeeping.
type HoldingsUpdate struct {
	Account  Address
	TokenIDs []TokenID
}

// JournalEntry is a persisted event with its journal position.
type JournalEntry struct {
	// Seq is the monotonically increasing journal sequence.
	Seq int64

	// GUID uniquely identifies the entry across ledger copies.
	GUID string

	// Event is the decoded domain event.
	Event Event

	// CreatedAt is when the entry was journaled.
	CreatedAt time.Time
}

// RegistryRepository defines the persistence interface for the registry
// ledger. Implementations must apply each Record call atomically: the state
// rows and the journal entries of one operation become durable together or
// not at all.
type RegistryRepository interface {
	// Init creates the registry row if the ledger is empty. Name and symbol
	// are fixed for the lifetime of the ledger; an existing row wins over
	// the supplied values.
	Init(name, symbol string) error

	// LoadState reads the full persisted state for reconstitution.
	LoadState() (Snapshot, error)

	// RecordMint persists a mint: the new token row, the advanced counter,
	// the recipient's holdings, and the journal entry.
	RecordMint(ev TransferEvent, uri string, holdings []HoldingsUpdate) error

	// RecordTransfer persists an ownership change: the token's new owner,
	// the cleared per-token approval, both accounts' holdings, and the
	// journal entry.
	RecordTransfer(ev TransferEvent, holdings []HoldingsUpdate) error

	// RecordBurn persists a burn: the deleted token row, the owner's
	// holdings, and the journal entry.
	RecordBurn(ev TransferEvent, holdings []HoldingsUpdate) error

	// RecordApproval persists a per-token delegation change and its journal
	// entry.
	RecordApproval(ev ApprovalEvent) error

	// RecordOperatorApproval persists a blanket grant change and its
	// journal entry.
	RecordOperatorApproval(ev OperatorApprovalEvent) error

	// Events returns the newest journal entries, oldest first, capped at
	// limit (0 means no cap).
	Events(limit int) ([]JournalEntry, error)

	// EventsSince returns all journal entries with Seq > seq, oldest first.
	EventsSince(seq int64) ([]JournalEntry, error)

	// Close releases any resources held by the repository.
	Close() error
}
