// ==================================
// File: internal/monitoring/logs_processor.go
// ==================================
package monitoring

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"time"

	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

const programDataPrefix = "Program data: "

// LogsProcessor extracts token creations from transaction log messages.
type LogsProcessor struct {
	// now supplies discovery timestamps, overridable in tests.
	now func() time.Time
}

func NewLogsProcessor() *LogsProcessor {
	return &LogsProcessor{now: time.Now}
}

// Process scans a transaction's logs for a CreateEvent. It returns nil when
// the logs describe anything other than a token creation.
func (p *LogsProcessor) Process(logs []string) *domain.TokenInfo {
	hasCreate := false
	for _, log := range logs {
		if strings.Contains(log, "Program log: Instruction: Create") {
			hasCreate = true
		}
		// CreateTokenAccount also matches the Create prefix but is not a
		// token launch.
		if strings.Contains(log, "Program log: Instruction: CreateTokenAccount") {
			return nil
		}
	}
	if !hasCreate {
		return nil
	}

	for _, log := range logs {
		idx := strings.Index(log, programDataPrefix)
		if idx < 0 {
			continue
		}
		encoded := strings.TrimSpace(log[idx+len(programDataPrefix):])
		payload, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		if token := p.decodeCreateEvent(payload); token != nil {
			return token
		}
	}
	return nil
}

// decodeCreateEvent parses a CreateEvent payload: discriminator, then name,
// symbol and uri strings, then mint, bondingCurve, user and creator keys.
func (p *LogsProcessor) decodeCreateEvent(payload []byte) *domain.TokenInfo {
	if len(payload) < 8 {
		return nil
	}
	if binary.LittleEndian.Uint64(payload[0:8]) != createEventDiscriminator {
		return nil
	}

	r := &eventReader{data: payload, offset: 8}
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
	mint, err := r.readPublicKey()
	if err != nil {
		return nil
	}
	bondingCurve, err := r.readPublicKey()
	if err != nil {
		return nil
	}
	user, err := r.readPublicKey()
	if err != nil {
		return nil
	}
	creator, err := r.readPublicKey()
	if err != nil {
		return nil
	}

	associated, err := pumpfun.DeriveAssociatedBondingCurve(bondingCurve, mint)
	if err != nil {
		return nil
	}
	vault, err := pumpfun.DeriveCreatorVault(creator)
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
		Creator:                creator,
		CreatorVault:           vault,
		DiscoveredAt:           p.now(),
	}
}
