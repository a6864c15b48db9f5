package tracing

// Span attribute keys for registry tracing.
// These constants define the semantic conventions for span attributes
// across the registry service.
const (
	// Registry attributes
	AttrTokenID  = "token.id"
	AttrTokenURI = "token.uri"
	AttrCaller   = "account.caller"
	AttrFrom     = "account.from"
	AttrTo       = "account.to"
	AttrOwner    = "account.owner"
	AttrOperator = "account.operator"
	AttrApproved = "approval.granted"

	// Ledger attributes
	AttrLedgerPath = "ledger.path"
	AttrEventSeq   = "event.seq"

	// Error attributes
	AttrErrorMessage = "error.message"
	AttrErrorType    = "error.type"
)

// Span names for registry operations and persistence.
const (
	SpanMint             = "registry.mint"
	SpanTransfer         = "registry.transfer"
	SpanApprove          = "registry.approve"
	SpanOperatorApproval = "registry.set_operator_approval"
	SpanBurn             = "registry.burn"
	SpanReconstitute     = "registry.reconstitute"

	SpanPrefixRepo = "repo."
)

// Event names for span events.
const (
	EventValidated       = "operation.validated"
	EventPersisted       = "operation.persisted"
	EventPublished       = "events.published"
	EventCacheInvalidate = "cache.invalidated"
	EventErrorOccurred   = "error.occurred"
)
