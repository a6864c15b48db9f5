package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioledger/curio/internal/registry/domain"
)

// execute runs the root command with args against the current directory's
// ledger, resetting global flag state first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	cfgFile = ""
	flagAs = ""
	flagJSON = false
	flagDebug = false
	mintURI = ""
	approveClear = false
	operatorRevoke = false
	eventsLimit = 0
	eventsFollow = false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return buf.String(), err
}

func TestCLI_MintTransferShow(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "mint", "alice", "--uri", "ipfs://meta/1")
	require.NoError(t, err)
	assert.Contains(t, out, "minted token 1 for alice")

	out, err = execute(t, "transfer", "alice", "bob", "1", "--as", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "transferred token 1 from alice to bob")

	out, err = execute(t, "token:show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "ipfs://meta/1")
}

func TestCLI_TokenListJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "mint", "alice")
	require.NoError(t, err)
	_, err = execute(t, "mint", "alice")
	require.NoError(t, err)

	out, err := execute(t, "token:list", "alice", "--json")
	require.NoError(t, err)

	var tokens []struct {
		ID    uint64 `json:"id"`
		Owner string `json:"owner"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tokens))
	require.Len(t, tokens, 2)
	assert.Equal(t, uint64(1), tokens[0].ID)
	assert.Equal(t, "alice", tokens[1].Owner)
}

func TestCLI_ApproveAndClear(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "mint", "alice")
	require.NoError(t, err)

	out, err := execute(t, "approve", "bob", "1", "--as", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "approved bob for token 1")

	out, err = execute(t, "approve", "--clear", "1", "--as", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared approval on token 1")
}

func TestCLI_OperatorSetAndRevoke(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "mint", "alice")
	require.NoError(t, err)

	out, err := execute(t, "operator:set", "carol", "--as", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "granted carol operator rights for alice")

	// Operator can now move the token.
	_, err = execute(t, "transfer", "alice", "bob", "1", "--as", "carol")
	require.NoError(t, err)

	out, err = execute(t, "operator:set", "carol", "--revoke", "--as", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "revoked operator rights of carol for alice")
}

func TestCLI_BurnAndEvents(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "mint", "alice")
	require.NoError(t, err)
	out, err := execute(t, "burn", "1", "--as", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "burned token 1")

	out, err = execute(t, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "token 1: - -> alice")
	assert.Contains(t, out, "token 1: alice -> -")
}

func TestCLI_MutationsRequireAs(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "mint", "alice")
	require.NoError(t, err)

	_, err = execute(t, "transfer", "alice", "bob", "1")
	require.ErrorContains(t, err, "--as is required")

	_, err = execute(t, "burn", "1")
	require.ErrorContains(t, err, "--as is required")
}

func TestCLI_RejectsBadTokenID(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "token:show", "zero")
	require.ErrorContains(t, err, "invalid token id")

	_, err = execute(t, "token:show", "0")
	require.ErrorContains(t, err, "invalid token id")
}

func TestCLI_DomainErrorsSurface(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "mint", "alice")
	require.NoError(t, err)

	_, err = execute(t, "transfer", "alice", "bob", "1", "--as", "mallory")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = execute(t, "token:show", "42")
	require.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestCLI_StrictAccountsFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, os.MkdirAll(".curio", 0o750))
	cfgYAML := "flags:\n  strict-accounts: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(".curio", "config.yaml"), []byte(cfgYAML), 0o600))

	_, err := execute(t, "mint", "bad name")
	require.ErrorContains(t, err, "strict accounts")

	_, err = execute(t, "mint", "alice")
	require.NoError(t, err)
}

func TestCLI_Init(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "init", "--name", "Gallery Pieces", "--symbol", "ART")
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	data, err := os.ReadFile(filepath.Join(".curio", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Gallery Pieces")
	assert.Contains(t, string(data), "ART")

	// Running init twice fails.
	_, err = execute(t, "init")
	require.ErrorContains(t, err, "already exists")

	// The configured identity fixes the ledger's name.
	_, err = execute(t, "mint", "alice")
	require.NoError(t, err)
	out, err = execute(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Gallery Pieces")
}
