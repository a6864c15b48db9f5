package presentation

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioledger/curio/internal/registry/application"
	"github.com/curioledger/curio/internal/registry/domain"
)

func TestFromTokenDetails(t *testing.T) {
	dto := FromTokenDetails(application.TokenDetails{
		ID:       7,
		Owner:    "alice",
		URI:      "ipfs://meta/7",
		Approved: "bob",
	})

	assert.Equal(t, TokenDTO{ID: 7, Owner: "alice", URI: "ipfs://meta/7", Approved: "bob"}, dto)
}

func TestFromJournalEntry(t *testing.T) {
	now := time.Now()

	transfer := FromJournalEntry(domain.JournalEntry{
		Seq:       1,
		GUID:      "g1",
		Event:     domain.TransferEvent{From: domain.ZeroAddress, To: "alice", TokenID: 1},
		CreatedAt: now,
	})
	assert.Equal(t, "transfer", transfer.Type)
	assert.Empty(t, transfer.From)
	assert.Equal(t, "alice", transfer.To)
	assert.Equal(t, uint64(1), transfer.TokenID)

	approval := FromJournalEntry(domain.JournalEntry{
		Seq:       2,
		GUID:      "g2",
		Event:     domain.ApprovalEvent{Owner: "alice", Approved: "bob", TokenID: 1},
		CreatedAt: now,
	})
	assert.Equal(t, "approval", approval.Type)
	assert.Equal(t, "alice", approval.Owner)
	assert.Equal(t, "bob", approval.Approved)

	operator := FromJournalEntry(domain.JournalEntry{
		Seq:       3,
		GUID:      "g3",
		Event:     domain.OperatorApprovalEvent{Owner: "alice", Operator: "carol", Approved: true},
		CreatedAt: now,
	})
	assert.Equal(t, "approval_for_all", operator.Type)
	require.NotNil(t, operator.Enabled)
	assert.True(t, *operator.Enabled)
}

func TestFormatter_TokenText(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, false)

	require.NoError(t, f.FormatToken(TokenDTO{ID: 3, Owner: "alice", URI: "ipfs://meta/3"}))

	out := buf.String()
	assert.Contains(t, out, "Token:")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "ipfs://meta/3")
	assert.NotContains(t, out, "Approved:", "empty approval is omitted")
}

func TestFormatter_TokenJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, true)

	require.NoError(t, f.FormatToken(TokenDTO{ID: 3, Owner: "alice"}))

	var got TokenDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, TokenDTO{ID: 3, Owner: "alice"}, got)
}

func TestFormatter_TokensEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, false)

	require.NoError(t, f.FormatTokens(nil))
	assert.Equal(t, "no tokens\n", buf.String())
}

func TestFormatter_EventsTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, false)

	enabled := true
	dtos := []EventDTO{
		{Seq: 1, Type: "transfer", To: "alice", TokenID: 1, CreatedAt: time.Now()},
		{Seq: 2, Type: "approval", Owner: "alice", Approved: "bob", TokenID: 1, CreatedAt: time.Now()},
		{Seq: 3, Type: "approval_for_all", Owner: "alice", Operator: "carol", Enabled: &enabled, CreatedAt: time.Now()},
	}
	require.NoError(t, f.FormatEvents(dtos))

	out := buf.String()
	assert.Contains(t, out, "token 1: - -> alice")
	assert.Contains(t, out, "token 1: alice approved bob")
	assert.Contains(t, out, "alice granted operator carol")
}

func TestFormatter_EventsJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, true)

	require.NoError(t, f.FormatEvents([]EventDTO{{Seq: 1, Type: "transfer", TokenID: 1}}))

	var got []EventDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Seq)
}
