package testutil

// WithStandardLedger seeds the dataset most integration tests start from:
// alice holding tokens 1 and 3, bob holding token 2, bob approved for
// token 1, and carol as alice's operator.
func (b *Builder) WithStandardLedger() *Builder {
	return b.
		MintFor("alice", "ipfs://meta/1").
		MintFor("bob", "").
		MintFor("alice", "ipfs://meta/3").
		Approve("alice", "bob", 1).
		Grant("alice", "carol")
}
