// ==================================
// File: internal/monitoring/block_processor.go
// ==================================
package monitoring

import (
	"encoding/binary"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

// Create instruction account positions within the compiled instruction.
const (
	createAccMint            = 0
	createAccBondingCurve    = 2
	createAccAssociatedCurve = 3
	createAccUser            = 7
)

// BlockProcessor extracts token creations from full transactions.
type BlockProcessor struct {
	now func() time.Time
}

func NewBlockProcessor() *BlockProcessor {
	return &BlockProcessor{now: time.Now}
}

// Process scans tx for a create instruction of the launchpad program and
// returns the decoded token, or nil when the transaction creates nothing.
func (p *BlockProcessor) Process(tx *solana.Transaction) *domain.TokenInfo {
	if tx == nil {
		return nil
	}
	msg := &tx.Message

	for _, inst := range msg.Instructions {
		programID, err := msg.Program(inst.ProgramIDIndex)
		if err != nil || !programID.Equals(pumpfun.ProgramID) {
			continue
		}

		data := []byte(inst.Data)
		if len(data) < 8 || binary.LittleEndian.Uint64(data[0:8]) != createInstructionDiscriminator {
			continue
		}

		if token := p.decodeCreateInstruction(msg, inst, data); token != nil {
			return token
		}
	}
	return nil
}

// decodeCreateInstruction parses the create args (name, symbol, uri strings)
// and resolves addresses from the instruction's account list. The signing
// user doubles as the creator in this path.
func (p *BlockProcessor) decodeCreateInstruction(msg *solana.Message, inst solana.CompiledInstruction, data []byte) *domain.TokenInfo {
	r := &eventReader{data: data, offset: 8}
	name, err := r.readString()
	if err != nil {
		return nil
	}
	symbol, err := r.readString()
	if err != nil {
		return nil
	}
	uri, err := r.readString()
	if err != nil {
		return nil
	}

	if len(inst.Accounts) <= createAccUser {
		return nil
	}
	resolve := func(pos int) (solana.PublicKey, bool) {
		idx := int(inst.Accounts[pos])
		if idx >= len(msg.AccountKeys) {
			return solana.PublicKey{}, false
		}
		return msg.AccountKeys[idx], true
	}

	mint, ok := resolve(createAccMint)
	if !ok {
		return nil
	}
	bondingCurve, ok := resolve(createAccBondingCurve)
	if !ok {
		return nil
	}
	associated, ok := resolve(createAccAssociatedCurve)
	if !ok {
		return nil
	}
	user, ok := resolve(createAccUser)
	if !ok {
		return nil
	}

	vault, err := pumpfun.DeriveCreatorVault(user)
	if err != nil {
		return nil
	}

	return &domain.TokenInfo{
		Name:                   name,
		Symbol:                 symbol,
		URI:                    uri,
		Mint:                   mint,
		BondingCurve:           bondingCurve,
		AssociatedBondingCurve: associated,
		User:                   user,
		Creator:                user,
		CreatorVault:           vault,
		DiscoveredAt:           p.now(),
	}
}
