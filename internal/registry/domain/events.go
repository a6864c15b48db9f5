package domain

// EventKind discriminates the record types emitted by registry mutations.
type EventKind string

const (
	EventKindTransfer         EventKind = "transfer"
	EventKindApproval         EventKind = "approval"
	EventKindOperatorApproval EventKind = "approval_for_all"
)

// Event is a structured record emitted by a successful mutation, observable
// by external indexers.
type Event interface {
	Kind() EventKind
}

// TransferEvent records an ownership change. Mint emits it with a zero From;
// burn emits it with a zero To.
type TransferEvent struct {
	From    Address
	To      Address
	TokenID TokenID
}

func (TransferEvent) Kind() EventKind { return EventKindTransfer }

// ApprovalEvent records a per-token delegation change.
type ApprovalEvent struct {
	Owner    Address
	Approved Address
	TokenID  TokenID
}

func (ApprovalEvent) Kind() EventKind { return EventKindApproval }

// OperatorApprovalEvent records an operator grant or revocation for every
// token the owner holds.
type OperatorApprovalEvent struct {
	Owner    Address
	Operator Address
	Approved bool
}

func (OperatorApprovalEvent) Kind() EventKind { return EventKindOperatorApproval }

// EventSink receives events emitted by registry mutations. Emission happens
// after the state writes of a successful operation; rejected operations emit
// nothing.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(Event)

// Emit calls the wrapped function.
func (f EventSinkFunc) Emit(e Event) { f(e) }
