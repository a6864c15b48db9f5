// Package application implements the application layer for the token
// registry. It bridges the pure domain aggregate to infrastructure concerns:
//
//   - Hydrates the in-memory Registry from the ledger on startup
//   - Persists every successful mutation through the RegistryRepository
//   - Publishes emitted events on a pubsub Broker for live observers
//   - Serves hot token lookups through a read-through cache
//   - Wraps each mutation in an OpenTelemetry span
//
// # Execution model
//
// The Service assumes serialized callers, matching the domain aggregate. The
// CLI drives one operation per process; a long-lived embedder must provide
// its own serialization.
//
// # Consistency
//
// A mutation first runs against the in-memory aggregate, which validates all
// preconditions before touching state. Persistence happens next, in one
// repository transaction. If persistence fails the Service rehydrates the
// aggregate from the ledger so memory never drifts ahead of disk. Events are
// published only after the journal entry is durable.
package application
