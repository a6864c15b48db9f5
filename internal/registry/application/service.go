package application

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/curioledger/curio/internal/cachemanager"
	"github.com/curioledger/curio/internal/log"
	"github.com/curioledger/curio/internal/pubsub"
	"github.com/curioledger/curio/internal/registry/domain"
	"github.com/curioledger/curio/internal/tracing"
)

// TokenDetails is the fully resolved view of one token served to queries.
type TokenDetails struct {
	ID       domain.TokenID
	Owner    domain.Address
	URI      string
	Approved domain.Address
}

// RegistryInfo summarizes the registry for the info command.
type RegistryInfo struct {
	Name        string
	Symbol      string
	TotalMinted uint64
	LiveTokens  uint64
}

// TokenCacheUseCase names the cache partition for token lookups.
const TokenCacheUseCase = "token-details"

// DefaultTokenTTL bounds how long a token view stays cached between
// invalidations.
const DefaultTokenTTL = 5 * time.Minute

// Option configures a Service.
type Option func(*Service)

// WithBroker publishes every journaled event on the given broker.
func WithBroker(broker *pubsub.Broker[domain.Event]) Option {
	return func(s *Service) { s.broker = broker }
}

// WithCache serves Token queries through the given cache with the given TTL.
func WithCache(cache cachemanager.CacheManager[string, TokenDetails], ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithCacheRefresh makes Token reads extend the TTL of cached entries, so
// hot tokens stay warm between invalidations.
func WithCacheRefresh() Option {
	return func(s *Service) { s.refreshOnRead = true }
}

// WithTracer records spans for mutations and hydration.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// Service is the application facade over the registry aggregate.
type Service struct {
	registry *domain.Registry
	repo     domain.RegistryRepository
	broker   *pubsub.Broker[domain.Event]
	cache    cachemanager.CacheManager[string, TokenDetails]
	cacheTTL time.Duration

	refreshOnRead bool
	tracer        trace.Tracer

	// pending collects events emitted by the aggregate during the current
	// mutation, between validation and publication.
	pending []domain.Event
}

// NewService initializes the ledger if needed and hydrates the aggregate
// from it. Name and symbol only take effect on a fresh ledger.
func NewService(ctx context.Context, repo domain.RegistryRepository, name, symbol string, opts ...Option) (*Service, error) {
	s := &Service{
		repo:     repo,
		cacheTTL: DefaultTokenTTL,
		tracer:   noop.NewTracerProvider().Tracer("curio"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := repo.Init(name, symbol); err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}

	log.Info(log.CatRegistry, "registry hydrated",
		"name", s.registry.Name(),
		"symbol", s.registry.Symbol(),
		"minted", s.registry.TotalMinted())

	return s, nil
}

// hydrate rebuilds the in-memory aggregate from the persisted snapshot.
func (s *Service) hydrate(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, tracing.SpanReconstitute)
	defer span.End()

	snap, err := s.repo.LoadState()
	if err != nil {
		return s.fail(span, fmt.Errorf("load ledger state: %w", err))
	}

	reg, err := domain.ReconstituteRegistry(snap, domain.WithEventSink(domain.EventSinkFunc(s.collect)))
	if err != nil {
		return s.fail(span, fmt.Errorf("reconstitute registry: %w", err))
	}

	s.registry = reg

	return nil
}

func (s *Service) collect(e domain.Event) {
	s.pending = append(s.pending, e)
}

// takePending drains the events collected by the current mutation.
func (s *Service) takePending() []domain.Event {
	events := s.pending
	s.pending = nil

	return events
}

// fail records err on the span and returns it unchanged.
func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

// afterPersist runs the post-commit side effects shared by all mutations:
// event publication and cache invalidation for the touched tokens.
func (s *Service) afterPersist(ctx context.Context, span trace.Span, events []domain.Event, ids ...domain.TokenID) {
	span.AddEvent(tracing.EventPersisted)

	if s.broker != nil {
		for _, e := range events {
			s.broker.Publish(pubsub.EventType(e.Kind()), e)
		}
		span.AddEvent(tracing.EventPublished)
	}

	if s.cache != nil && len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, tokenCacheKey(id))
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			log.ErrorErr(log.CatCache, "invalidate token cache", err)
		}
		span.AddEvent(tracing.EventCacheInvalidate)
	}
}

// persistFailure rehydrates the aggregate so memory cannot drift ahead of
// the ledger, then returns the wrapped persistence error.
func (s *Service) persistFailure(ctx context.Context, span trace.Span, op string, err error) error {
	log.ErrorErr(log.CatDB, "persist "+op, err)
	if rerr := s.hydrate(ctx); rerr != nil {
		log.ErrorErr(log.CatDB, "rehydrate after failed "+op, rerr)
	}

	return s.fail(span, fmt.Errorf("persist %s: %w", op, err))
}

func tokenCacheKey(id domain.TokenID) string {
	return fmt.Sprintf("token:%d", id)
}

// Mint creates the next token for the recipient.
func (s *Service) Mint(ctx context.Context, to domain.Address) (domain.TokenID, error) {
	return s.MintWithURI(ctx, to, "")
}

// MintWithURI creates the next token for the recipient with attached
// metadata.
func (s *Service) MintWithURI(ctx context.Context, to domain.Address, uri string) (domain.TokenID, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanMint, trace.WithAttributes(
		attribute.String(tracing.AttrTo, to.String()),
		attribute.String(tracing.AttrTokenURI, uri),
	))
	defer span.End()

	s.pending = nil
	id, err := s.registry.MintWithURI(to, uri)
	if err != nil {
		return 0, s.fail(span, err)
	}
	span.AddEvent(tracing.EventValidated)
	span.SetAttributes(attribute.Int64(tracing.AttrTokenID, int64(id)))

	events := s.takePending()
	ev := events[0].(domain.TransferEvent)
	if err := s.repo.RecordMint(ev, uri, s.holdingsFor(to)); err != nil {
		return 0, s.persistFailure(ctx, span, "mint", err)
	}
	s.afterPersist(ctx, span, events, id)

	log.Info(log.CatRegistry, "token minted", "id", id, "to", to)

	return id, nil
}

// Transfer moves a token between accounts on behalf of caller.
func (s *Service) Transfer(ctx context.Context, caller, from, to domain.Address, id domain.TokenID) error {
	ctx, span := s.tracer.Start(ctx, tracing.SpanTransfer, trace.WithAttributes(
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.String(tracing.AttrFrom, from.String()),
		attribute.String(tracing.AttrTo, to.String()),
		attribute.Int64(tracing.AttrTokenID, int64(id)),
	))
	defer span.End()

	s.pending = nil
	if err := s.registry.Transfer(caller, from, to, id); err != nil {
		return s.fail(span, err)
	}
	span.AddEvent(tracing.EventValidated)

	events := s.takePending()
	ev := events[len(events)-1].(domain.TransferEvent)
	if err := s.repo.RecordTransfer(ev, s.holdingsFor(from, to)); err != nil {
		return s.persistFailure(ctx, span, "transfer", err)
	}
	s.afterPersist(ctx, span, events, id)

	log.Info(log.CatRegistry, "token transferred", "id", id, "from", from, "to", to)

	return nil
}

// Approve delegates (or clears, for a zero address) transfer rights on one
// token.
func (s *Service) Approve(ctx context.Context, caller, to domain.Address, id domain.TokenID) error {
	ctx, span := s.tracer.Start(ctx, tracing.SpanApprove, trace.WithAttributes(
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.String(tracing.AttrTo, to.String()),
		attribute.Int64(tracing.AttrTokenID, int64(id)),
	))
	defer span.End()

	s.pending = nil
	if err := s.registry.Approve(caller, to, id); err != nil {
		return s.fail(span, err)
	}
	span.AddEvent(tracing.EventValidated)

	events := s.takePending()
	ev := events[0].(domain.ApprovalEvent)
	if err := s.repo.RecordApproval(ev); err != nil {
		return s.persistFailure(ctx, span, "approval", err)
	}
	s.afterPersist(ctx, span, events, id)

	log.Info(log.CatRegistry, "token approval set", "id", id, "approved", to)

	return nil
}

// SetOperatorApproval grants or revokes a blanket operator for the caller's
// tokens.
func (s *Service) SetOperatorApproval(ctx context.Context, caller, operator domain.Address, approved bool) error {
	ctx, span := s.tracer.Start(ctx, tracing.SpanOperatorApproval, trace.WithAttributes(
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.String(tracing.AttrOperator, operator.String()),
		attribute.Bool(tracing.AttrApproved, approved),
	))
	defer span.End()

	s.pending = nil
	if err := s.registry.SetOperatorApproval(caller, operator, approved); err != nil {
		return s.fail(span, err)
	}
	span.AddEvent(tracing.EventValidated)

	events := s.takePending()
	ev := events[0].(domain.OperatorApprovalEvent)
	if err := s.repo.RecordOperatorApproval(ev); err != nil {
		return s.persistFailure(ctx, span, "operator approval", err)
	}
	s.afterPersist(ctx, span, events)

	log.Info(log.CatRegistry, "operator approval set",
		"owner", caller, "operator", operator, "approved", approved)

	return nil
}

// Burn destroys a token on behalf of caller. The id is never reassigned.
func (s *Service) Burn(ctx context.Context, caller domain.Address, id domain.TokenID) error {
	ctx, span := s.tracer.Start(ctx, tracing.SpanBurn, trace.WithAttributes(
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.Int64(tracing.AttrTokenID, int64(id)),
	))
	defer span.End()

	owner := s.registry.OwnerOf(id)

	s.pending = nil
	if err := s.registry.Burn(caller, id); err != nil {
		return s.fail(span, err)
	}
	span.AddEvent(tracing.EventValidated)

	events := s.takePending()
	ev := events[len(events)-1].(domain.TransferEvent)
	if err := s.repo.RecordBurn(ev, s.holdingsFor(owner)); err != nil {
		return s.persistFailure(ctx, span, "burn", err)
	}
	s.afterPersist(ctx, span, events, id)

	log.Info(log.CatRegistry, "token burned", "id", id, "owner", owner)

	return nil
}

// holdingsFor snapshots the post-mutation holdings of each touched account.
func (s *Service) holdingsFor(accounts ...domain.Address) []domain.HoldingsUpdate {
	updates := make([]domain.HoldingsUpdate, 0, len(accounts))
	seen := make(map[domain.Address]bool, len(accounts))
	for _, account := range accounts {
		if account.IsZero() || seen[account] {
			continue
		}
		seen[account] = true
		updates = append(updates, domain.HoldingsUpdate{
			Account:  account,
			TokenIDs: s.registry.TokenIDsOf(account),
		})
	}

	return updates
}

// Info returns the registry summary.
func (s *Service) Info() RegistryInfo {
	return RegistryInfo{
		Name:        s.registry.Name(),
		Symbol:      s.registry.Symbol(),
		TotalMinted: uint64(s.registry.TotalMinted()),
		LiveTokens:  uint64(len(s.registry.Snapshot().Tokens)),
	}
}

// Token resolves the full view of one token, through the cache when one is
// configured.
func (s *Service) Token(ctx context.Context, id domain.TokenID) (TokenDetails, error) {
	if s.cache == nil {
		return s.lookupToken(id)
	}

	key := tokenCacheKey(id)
	if s.refreshOnRead {
		if details, ok := s.cache.GetWithRefresh(ctx, key, s.cacheTTL); ok {
			return details, nil
		}
	} else if details, ok := s.cache.Get(ctx, key); ok {
		return details, nil
	}

	details, err := s.lookupToken(id)
	if err != nil {
		return TokenDetails{}, err
	}
	s.cache.Set(ctx, key, details, s.cacheTTL)

	return details, nil
}

func (s *Service) lookupToken(id domain.TokenID) (TokenDetails, error) {
	uri, err := s.registry.TokenURI(id)
	if err != nil {
		return TokenDetails{}, err
	}
	approved, err := s.registry.Approved(id)
	if err != nil {
		return TokenDetails{}, err
	}

	return TokenDetails{
		ID:       id,
		Owner:    s.registry.OwnerOf(id),
		URI:      uri,
		Approved: approved,
	}, nil
}

// OwnerOf reports the current owner, zero for unknown or burned ids.
func (s *Service) OwnerOf(id domain.TokenID) domain.Address {
	return s.registry.OwnerOf(id)
}

// BalanceOf reports how many tokens the account holds.
func (s *Service) BalanceOf(account domain.Address) (uint64, error) {
	return s.registry.BalanceOf(account)
}

// TokenIDsOf enumerates the account's holdings.
func (s *Service) TokenIDsOf(account domain.Address) []domain.TokenID {
	return s.registry.TokenIDsOf(account)
}

// IsApprovedForAll reports whether operator holds a blanket grant from
// owner.
func (s *Service) IsApprovedForAll(owner, operator domain.Address) bool {
	return s.registry.IsApprovedForAll(owner, operator)
}

// Events returns the newest journal entries, oldest first.
func (s *Service) Events(limit int) ([]domain.JournalEntry, error) {
	return s.repo.Events(limit)
}

// EventsSince returns journal entries newer than seq, oldest first.
func (s *Service) EventsSince(seq int64) ([]domain.JournalEntry, error) {
	return s.repo.EventsSince(seq)
}

// Close releases the underlying repository.
func (s *Service) Close() error {
	return s.repo.Close()
}
