package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/curioledger/curio/internal/registry/domain"
)

// eventColumns is the list of columns to select for journal queries.
const eventColumns = `seq, guid, type, from_account, to_account, owner, operator, approved, enabled, token_id, created_at`

// registryRepository implements domain.RegistryRepository using SQLite.
// Every Record method runs in one transaction, so the state rows and journal
// entries of an operation become durable together or not at all.
type registryRepository struct {
	db *sql.DB
}

// newRegistryRepository creates a new registryRepository instance.
func newRegistryRepository(db *sql.DB) *registryRepository {
	return &registryRepository{db: db}
}

// Ensure registryRepository implements domain.RegistryRepository.
var _ domain.RegistryRepository = (*registryRepository)(nil)

// Init creates the registry row if the ledger is empty. An existing row wins
// over the supplied name and symbol.
func (r *registryRepository) Init(name, symbol string) error {
	_, err := r.db.Exec(
		`INSERT INTO registry (id, name, symbol, counter) VALUES (1, ?, ?, 0)
		 ON CONFLICT (id) DO NOTHING`,
		name, symbol,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	return nil
}

// LoadState reads the full persisted state for reconstitution.
func (r *registryRepository) LoadState() (domain.Snapshot, error) {
	var snap domain.Snapshot

	var counter int64
	err := r.db.QueryRow(`SELECT name, symbol, counter FROM registry WHERE id = 1`).
		Scan(&snap.Name, &snap.Symbol, &counter)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, fmt.Errorf("registry not initialized")
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load registry row: %w", err)
	}
	snap.Counter = domain.TokenID(counter)

	rows, err := r.db.Query(
		`SELECT t.id, t.owner, t.uri, COALESCE(a.approved, '')
		 FROM tokens t LEFT JOIN token_approvals a ON a.token_id = t.id
		 ORDER BY t.id`,
	)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load tokens: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			id              int64
			owner, uri, app string
		)
		if err := rows.Scan(&id, &owner, &uri, &app); err != nil {
			return domain.Snapshot{}, fmt.Errorf("failed to scan token row: %w", err)
		}
		snap.Tokens = append(snap.Tokens, domain.TokenRecord{
			ID:       domain.TokenID(id),
			Owner:    domain.Address(owner),
			URI:      uri,
			Approved: domain.Address(app),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("error iterating token rows: %w", err)
	}

	grantRows, err := r.db.Query(`SELECT owner, operator FROM operator_approvals ORDER BY owner, operator`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load operator approvals: %w", err)
	}
	defer func() { _ = grantRows.Close() }()
	for grantRows.Next() {
		var owner, operator string
		if err := grantRows.Scan(&owner, &operator); err != nil {
			return domain.Snapshot{}, fmt.Errorf("failed to scan operator approval row: %w", err)
		}
		snap.Grants = append(snap.Grants, domain.OperatorGrant{
			Owner:    domain.Address(owner),
			Operator: domain.Address(operator),
		})
	}
	if err := grantRows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("error iterating operator approval rows: %w", err)
	}

	snap.Holdings = make(map[domain.Address][]domain.TokenID)
	heldRows, err := r.db.Query(`SELECT account, token_id FROM held_tokens ORDER BY account, position`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load holdings: %w", err)
	}
	defer func() { _ = heldRows.Close() }()
	for heldRows.Next() {
		var (
			account string
			tokenID int64
		)
		if err := heldRows.Scan(&account, &tokenID); err != nil {
			return domain.Snapshot{}, fmt.Errorf("failed to scan holdings row: %w", err)
		}
		acct := domain.Address(account)
		snap.Holdings[acct] = append(snap.Holdings[acct], domain.TokenID(tokenID))
	}
	if err := heldRows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("error iterating holdings rows: %w", err)
	}

	return snap, nil
}

// RecordMint persists a mint in one transaction.
func (r *registryRepository) RecordMint(ev domain.TransferEvent, uri string, holdings []domain.HoldingsUpdate) error {
	return r.inTx("record mint", func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO tokens (id, owner, uri) VALUES (?, ?, ?)`,
			int64(ev.TokenID), ev.To.String(), uri,
		); err != nil {
			return fmt.Errorf("inserting token: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE registry SET counter = ? WHERE id = 1`,
			int64(ev.TokenID),
		); err != nil {
			return fmt.Errorf("advancing counter: %w", err)
		}
		if err := applyHoldings(tx, holdings); err != nil {
			return err
		}
		return journal(tx, ev)
	})
}

// RecordTransfer persists an ownership change in one transaction.
func (r *registryRepository) RecordTransfer(ev domain.TransferEvent, holdings []domain.HoldingsUpdate) error {
	return r.inTx("record transfer", func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`UPDATE tokens SET owner = ? WHERE id = ?`,
			ev.To.String(), int64(ev.TokenID),
		); err != nil {
			return fmt.Errorf("updating token owner: %w", err)
		}
		if _, err := tx.Exec(
			`DELETE FROM token_approvals WHERE token_id = ?`,
			int64(ev.TokenID),
		); err != nil {
			return fmt.Errorf("clearing token approval: %w", err)
		}
		if err := applyHoldings(tx, holdings); err != nil {
			return err
		}
		return journal(tx, ev)
	})
}

// RecordBurn persists a burn in one transaction.
func (r *registryRepository) RecordBurn(ev domain.TransferEvent, holdings []domain.HoldingsUpdate) error {
	return r.inTx("record burn", func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`DELETE FROM tokens WHERE id = ?`,
			int64(ev.TokenID),
		); err != nil {
			return fmt.Errorf("deleting token: %w", err)
		}
		if _, err := tx.Exec(
			`DELETE FROM token_approvals WHERE token_id = ?`,
			int64(ev.TokenID),
		); err != nil {
			return fmt.Errorf("clearing token approval: %w", err)
		}
		if err := applyHoldings(tx, holdings); err != nil {
			return err
		}
		return journal(tx, ev)
	})
}

// RecordApproval persists a per-token delegation change in one transaction.
func (r *registryRepository) RecordApproval(ev domain.ApprovalEvent) error {
	return r.inTx("record approval", func(tx *sql.Tx) error {
		if ev.Approved.IsZero() {
			if _, err := tx.Exec(
				`DELETE FROM token_approvals WHERE token_id = ?`,
				int64(ev.TokenID),
			); err != nil {
				return fmt.Errorf("clearing token approval: %w", err)
			}
		} else {
			if _, err := tx.Exec(
				`INSERT INTO token_approvals (token_id, approved) VALUES (?, ?)
				 ON CONFLICT (token_id) DO UPDATE SET approved = excluded.approved`,
				int64(ev.TokenID), ev.Approved.String(),
			); err != nil {
				return fmt.Errorf("setting token approval: %w", err)
			}
		}
		return journal(tx, ev)
	})
}

// RecordOperatorApproval persists a blanket grant change in one transaction.
func (r *registryRepository) RecordOperatorApproval(ev domain.OperatorApprovalEvent) error {
	return r.inTx("record operator approval", func(tx *sql.Tx) error {
		if ev.Approved {
			if _, err := tx.Exec(
				`INSERT INTO operator_approvals (owner, operator) VALUES (?, ?)
				 ON CONFLICT (owner, operator) DO NOTHING`,
				ev.Owner.String(), ev.Operator.String(),
			); err != nil {
				return fmt.Errorf("setting operator approval: %w", err)
			}
		} else {
			if _, err := tx.Exec(
				`DELETE FROM operator_approvals WHERE owner = ? AND operator = ?`,
				ev.Owner.String(), ev.Operator.String(),
			); err != nil {
				return fmt.Errorf("clearing operator approval: %w", err)
			}
		}
		return journal(tx, ev)
	})
}

// Events returns the newest journal entries, oldest first, capped at limit
// (0 means no cap).
func (r *registryRepository) Events(limit int) ([]domain.JournalEntry, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY seq`
	args := []any{}
	if limit > 0 {
		query = `SELECT ` + eventColumns + ` FROM (
			SELECT ` + eventColumns + ` FROM events ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`
		args = append(args, limit)
	}
	return r.queryEvents(query, args...)
}

// EventsSince returns all journal entries with Seq > seq, oldest first.
func (r *registryRepository) EventsSince(seq int64) ([]domain.JournalEntry, error) {
	return r.queryEvents(
		`SELECT `+eventColumns+` FROM events WHERE seq > ? ORDER BY seq`,
		seq,
	)
}

func (r *registryRepository) queryEvents(query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.JournalEntry
	for rows.Next() {
		var m eventModel
		if err := rows.Scan(
			&m.Seq, &m.GUID, &m.Type, &m.FromAccount, &m.ToAccount,
			&m.Owner, &m.Operator, &m.Approved, &m.Enabled, &m.TokenID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		entry, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return entries, nil
}

// Close releases any resources held by the repository.
// This is a no-op because the connection is owned by the DB struct.
func (r *registryRepository) Close() error {
	// No-op: connection is owned by DB struct
	return nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *registryRepository) inTx(op string, fn func(*sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin %s: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", op, err)
	}
	return nil
}

// applyHoldings rewrites the held_tokens rows and balance of each touched
// account. Wholesale replacement sidesteps mirroring the swap-and-pop
// bookkeeping in SQL.
func applyHoldings(tx *sql.Tx, updates []domain.HoldingsUpdate) error {
	for _, u := range updates {
		if _, err := tx.Exec(`DELETE FROM held_tokens WHERE account = ?`, u.Account.String()); err != nil {
			return fmt.Errorf("clearing holdings of %s: %w", u.Account, err)
		}
		for pos, id := range u.TokenIDs {
			if _, err := tx.Exec(
				`INSERT INTO held_tokens (account, position, token_id) VALUES (?, ?, ?)`,
				u.Account.String(), pos, int64(id),
			); err != nil {
				return fmt.Errorf("writing holdings of %s: %w", u.Account, err)
			}
		}
		if len(u.TokenIDs) == 0 {
			if _, err := tx.Exec(`DELETE FROM balances WHERE account = ?`, u.Account.String()); err != nil {
				return fmt.Errorf("clearing balance of %s: %w", u.Account, err)
			}
		} else {
			if _, err := tx.Exec(
				`INSERT INTO balances (account, balance) VALUES (?, ?)
				 ON CONFLICT (account) DO UPDATE SET balance = excluded.balance`,
				u.Account.String(), len(u.TokenIDs),
			); err != nil {
				return fmt.Errorf("updating balance of %s: %w", u.Account, err)
			}
		}
	}
	return nil
}

// journal appends events to the journal inside the operation's transaction.
func journal(tx *sql.Tx, events ...domain.Event) error {
	now := time.Now().Unix()
	for _, e := range events {
		m := newEventModel(e)
		if _, err := tx.Exec(
			`INSERT INTO events (guid, type, from_account, to_account, owner, operator, approved, enabled, token_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), m.Type, m.FromAccount, m.ToAccount, m.Owner,
			m.Operator, m.Approved, m.Enabled, m.TokenID, now,
		); err != nil {
			return fmt.Errorf("journaling %s event: %w", m.Type, err)
		}
	}
	return nil
}
