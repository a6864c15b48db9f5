// Package presentation converts application results into the DTOs and
// output formats the CLI prints.
package presentation

import (
	"time"

	"github.com/curioledger/curio/internal/registry/application"
	"github.com/curioledger/curio/internal/registry/domain"
)

// RegistryDTO summarizes the registry for presentation.
type RegistryDTO struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalMinted uint64 `json:"total_minted"`
	LiveTokens  uint64 `json:"live_tokens"`
}

// TokenDTO represents one token for presentation.
type TokenDTO struct {
	ID       uint64 `json:"id"`
	Owner    string `json:"owner"`
	URI      string `json:"uri,omitempty"`
	Approved string `json:"approved,omitempty"`
}

// EventDTO represents one journal entry for presentation.
type EventDTO struct {
	Seq       int64     `json:"seq"`
	GUID      string    `json:"guid"`
	Type      string    `json:"type"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Operator  string    `json:"operator,omitempty"`
	Approved  string    `json:"approved,omitempty"`
	Enabled   *bool     `json:"enabled,omitempty"`
	TokenID   uint64    `json:"token_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromRegistryInfo converts the application summary to a DTO.
func FromRegistryInfo(info application.RegistryInfo) RegistryDTO {
	return RegistryDTO{
		Name:        info.Name,
		Symbol:      info.Symbol,
		TotalMinted: info.TotalMinted,
		LiveTokens:  info.LiveTokens,
	}
}

// FromTokenDetails converts a token view to a DTO.
func FromTokenDetails(details application.TokenDetails) TokenDTO {
	return TokenDTO{
		ID:       uint64(details.ID),
		Owner:    details.Owner.String(),
		URI:      details.URI,
		Approved: details.Approved.String(),
	}
}

// FromJournalEntry converts a journal entry to a DTO.
func FromJournalEntry(entry domain.JournalEntry) EventDTO {
	dto := EventDTO{
		Seq:       entry.Seq,
		GUID:      entry.GUID,
		Type:      string(entry.Event.Kind()),
		CreatedAt: entry.CreatedAt,
	}

	switch ev := entry.Event.(type) {
	case domain.TransferEvent:
		dto.From = ev.From.String()
		dto.To = ev.To.String()
		dto.TokenID = uint64(ev.TokenID)
	case domain.ApprovalEvent:
		dto.Owner = ev.Owner.String()
		dto.Approved = ev.Approved.String()
		dto.TokenID = uint64(ev.TokenID)
	case domain.OperatorApprovalEvent:
		dto.Owner = ev.Owner.String()
		dto.Operator = ev.Operator.String()
		enabled := ev.Approved
		dto.Enabled = &enabled
	}

	return dto
}

// FromJournalEntries converts a slice of journal entries to DTOs.
func FromJournalEntries(entries []domain.JournalEntry) []EventDTO {
	dtos := make([]EventDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = FromJournalEntry(entry)
	}
	return dtos
}
