package sqlite

import (
	"fmt"
	"time"

	"github.com/curioledger/curio/internal/registry/domain"
)

// eventModel represents a row of the events journal. The union columns are
// discriminated by Type; unused columns hold their defaults.
type eventModel struct {
	Seq         int64
	GUID        string
	Type        string
	FromAccount string
	ToAccount   string
	Owner       string
	Operator    string
	Approved    string
	Enabled     bool
	TokenID     int64
	CreatedAt   int64
}

// newEventModel flattens a domain event into journal columns.
func newEventModel(e domain.Event) eventModel {
	m := eventModel{Type: string(e.Kind())}
	switch ev := e.(type) {
	case domain.TransferEvent:
		m.FromAccount = ev.From.String()
		m.ToAccount = ev.To.String()
		m.TokenID = int64(ev.TokenID)
	case domain.ApprovalEvent:
		m.Owner = ev.Owner.String()
		m.Approved = ev.Approved.String()
		m.TokenID = int64(ev.TokenID)
	case domain.OperatorApprovalEvent:
		m.Owner = ev.Owner.String()
		m.Operator = ev.Operator.String()
		m.Enabled = ev.Approved
	}
	return m
}

// toDomain rebuilds the journal entry, including the decoded event.
func (m eventModel) toDomain() (domain.JournalEntry, error) {
	entry := domain.JournalEntry{
		Seq:       m.Seq,
		GUID:      m.GUID,
		CreatedAt: time.Unix(m.CreatedAt, 0),
	}

	switch domain.EventKind(m.Type) {
	case domain.EventKindTransfer:
		entry.Event = domain.TransferEvent{
			From:    domain.Address(m.FromAccount),
			To:      domain.Address(m.ToAccount),
			TokenID: domain.TokenID(m.TokenID),
		}
	case domain.EventKindApproval:
		entry.Event = domain.ApprovalEvent{
			Owner:    domain.Address(m.Owner),
			Approved: domain.Address(m.Approved),
			TokenID:  domain.TokenID(m.TokenID),
		}
	case domain.EventKindOperatorApproval:
		entry.Event = domain.OperatorApprovalEvent{
			Owner:    domain.Address(m.Owner),
			Operator: domain.Address(m.Operator),
			Approved: m.Enabled,
		}
	default:
		return domain.JournalEntry{}, fmt.Errorf("journal entry %d: unknown event type %q", m.Seq, m.Type)
	}

	return entry, nil
}
