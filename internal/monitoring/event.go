// ==================================
// File: internal/monitoring/event.go
// ==================================
package monitoring

import (
	"encoding/binary"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// Anchor discriminators for the creation paths, little-endian u64 form.
const (
	createEventDiscriminator       uint64 = 8530921459188068891
	createInstructionDiscriminator uint64 = 8576854823835016728
)

var errTruncated = errors.New("event data truncated")

// eventReader walks length-prefixed Anchor event payloads.
type eventReader struct {
	data   []byte
	offset int
}

func (r *eventReader) readString() (string, error) {
	if r.offset+4 > len(r.data) {
		return "", errTruncated
	}
	n := int(binary.LittleEndian.Uint32(r.data[r.offset:]))
	r.offset += 4
	if n < 0 || r.offset+n > len(r.data) {
		return "", errTruncated
	}
	s := string(r.data[r.offset : r.offset+n])
	r.offset += n
	return s, nil
}

func (r *eventReader) readPublicKey() (solana.PublicKey, error) {
	if r.offset+32 > len(r.data) {
		return solana.PublicKey{}, errTruncated
	}
	key := solana.PublicKeyFromBytes(r.data[r.offset : r.offset+32])
	r.offset += 32
	return key, nil
}
