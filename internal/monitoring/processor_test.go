// ==================================
// File: internal/monitoring/processor_test.go
// ==================================
package monitoring

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func encodeCreateEvent(name, symbol, uri string, mint, curve, user, creator solana.PublicKey) []byte {
	buf := binary.LittleEndian.AppendUint64(nil, createEventDiscriminator)
	buf = appendString(buf, name)
	buf = appendString(buf, symbol)
	buf = appendString(buf, uri)
	buf = append(buf, mint.Bytes()...)
	buf = append(buf, curve.Bytes()...)
	buf = append(buf, user.Bytes()...)
	buf = append(buf, creator.Bytes()...)
	return buf
}

func TestLogsProcessor_CreateEvent(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	curve := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()

	payload := encodeCreateEvent("Dog Token", "DOG", "https://example.com/dog.json", mint, curve, user, creator)
	logs := []string{
		"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P invoke [1]",
		"Program log: Instruction: Create",
		"Program data: " + base64.StdEncoding.EncodeToString(payload),
		"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P success",
	}

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewLogsProcessor()
	p.now = func() time.Time { return fixed }

	token := p.Process(logs)
	require.NotNil(t, token)
	assert.Equal(t, "Dog Token", token.Name)
	assert.Equal(t, "DOG", token.Symbol)
	assert.Equal(t, "https://example.com/dog.json", token.URI)
	assert.Equal(t, mint, token.Mint)
	assert.Equal(t, curve, token.BondingCurve)
	assert.Equal(t, user, token.User)
	assert.Equal(t, creator, token.Creator)
	assert.Equal(t, fixed, token.DiscoveredAt)

	expectedATA, err := pumpfun.DeriveAssociatedBondingCurve(curve, mint)
	require.NoError(t, err)
	assert.Equal(t, expectedATA, token.AssociatedBondingCurve)

	expectedVault, err := pumpfun.DeriveCreatorVault(creator)
	require.NoError(t, err)
	assert.Equal(t, expectedVault, token.CreatorVault)
}

func TestLogsProcessor_IgnoresTokenAccountCreation(t *testing.T) {
	p := NewLogsProcessor()
	logs := []string{
		"Program log: Instruction: Create",
		"Program log: Instruction: CreateTokenAccount",
		"Program data: " + base64.StdEncoding.EncodeToString(make([]byte, 16)),
	}
	assert.Nil(t, p.Process(logs))
}

func TestLogsProcessor_NoCreateInstruction(t *testing.T) {
	p := NewLogsProcessor()
	logs := []string{
		"Program log: Instruction: Buy",
		"Program data: " + base64.StdEncoding.EncodeToString(make([]byte, 16)),
	}
	assert.Nil(t, p.Process(logs))
}

func TestLogsProcessor_TruncatedPayload(t *testing.T) {
	payload := binary.LittleEndian.AppendUint64(nil, createEventDiscriminator)
	payload = appendString(payload, "Dog")
	// symbol length prefix claims more bytes than the payload holds
	payload = binary.LittleEndian.AppendUint32(payload, 500)

	p := NewLogsProcessor()
	logs := []string{
		"Program log: Instruction: Create",
		"Program data: " + base64.StdEncoding.EncodeToString(payload),
	}
	assert.Nil(t, p.Process(logs))
}

func buildCreateTransaction(t *testing.T, mint, curve, curveATA, user solana.PublicKey) *solana.Transaction {
	t.Helper()

	data := binary.LittleEndian.AppendUint64(nil, createInstructionDiscriminator)
	data = appendString(data, "Cat Token")
	data = appendString(data, "CAT")
	data = appendString(data, "https://example.com/cat.json")

	metas := []*solana.AccountMeta{
		{PublicKey: mint, IsWritable: true},
		{PublicKey: solana.NewWallet().PublicKey(), IsWritable: true},
		{PublicKey: curve, IsWritable: true},
		{PublicKey: curveATA, IsWritable: true},
		{PublicKey: solana.NewWallet().PublicKey()},
		{PublicKey: solana.NewWallet().PublicKey()},
		{PublicKey: solana.NewWallet().PublicKey()},
		{PublicKey: user, IsWritable: true, IsSigner: true},
	}
	inst := solana.NewInstruction(pumpfun.ProgramID, metas, data)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{inst},
		solana.Hash{},
		solana.TransactionPayer(user),
	)
	require.NoError(t, err)
	return tx
}

func TestBlockProcessor_CreateInstruction(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	curve := solana.NewWallet().PublicKey()
	curveATA := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()

	tx := buildCreateTransaction(t, mint, curve, curveATA, user)

	p := NewBlockProcessor()
	token := p.Process(tx)
	require.NotNil(t, token)
	assert.Equal(t, "Cat Token", token.Name)
	assert.Equal(t, "CAT", token.Symbol)
	assert.Equal(t, mint, token.Mint)
	assert.Equal(t, curve, token.BondingCurve)
	assert.Equal(t, curveATA, token.AssociatedBondingCurve)
	assert.Equal(t, user, token.User)
	assert.Equal(t, user, token.Creator)

	expectedVault, err := pumpfun.DeriveCreatorVault(user)
	require.NoError(t, err)
	assert.Equal(t, expectedVault, token.CreatorVault)
}

func TestBlockProcessor_IgnoresOtherPrograms(t *testing.T) {
	data := binary.LittleEndian.AppendUint64(nil, createInstructionDiscriminator)
	data = appendString(data, "x")
	inst := solana.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{{PublicKey: solana.NewWallet().PublicKey(), IsSigner: true, IsWritable: true}},
		data,
	)
	tx, err := solana.NewTransaction([]solana.Instruction{inst}, solana.Hash{})
	require.NoError(t, err)

	assert.Nil(t, NewBlockProcessor().Process(tx))
}

func TestFiltersMatch(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	token := &domain.TokenInfo{Name: "Doge Moon", Symbol: "DMOON", Creator: creator}

	assert.True(t, Filters{}.Match(token))
	assert.True(t, Filters{MatchString: "moon"}.Match(token))
	assert.True(t, Filters{MatchString: "DOGE"}.Match(token))
	assert.False(t, Filters{MatchString: "pepe"}.Match(token))
	assert.True(t, Filters{CreatorAddress: creator.String()}.Match(token))
	assert.False(t, Filters{CreatorAddress: solana.NewWallet().PublicKey().String()}.Match(token))
}
