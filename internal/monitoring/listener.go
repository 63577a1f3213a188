// ==================================
// File: internal/monitoring/listener.go
// ==================================

// Package monitoring detects new bonding-curve token creations. Listeners own
// a websocket subscription and push decoded tokens to a callback; processors
// are pure transforms from raw chain data to TokenInfo.
package monitoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

// TokenCallback receives every decoded token creation that passes the filters.
// Callbacks must not block: listeners call them inline on the receive loop.
type TokenCallback func(*domain.TokenInfo)

// Listener watches the chain for token creations until ctx is cancelled.
type Listener interface {
	Listen(ctx context.Context, cb TokenCallback) error
}

// Filters narrows which token creations reach the callback.
type Filters struct {
	// MatchString keeps only tokens whose name or symbol contains the value,
	// case-insensitively. Empty matches everything.
	MatchString string
	// CreatorAddress keeps only tokens created by this address. Empty matches
	// everything.
	CreatorAddress string
}

// Match reports whether token passes the filters.
func (f Filters) Match(token *domain.TokenInfo) bool {
	if f.MatchString != "" {
		needle := strings.ToLower(f.MatchString)
		if !strings.Contains(strings.ToLower(token.Name), needle) &&
			!strings.Contains(strings.ToLower(token.Symbol), needle) {
			return false
		}
	}
	if f.CreatorAddress != "" && token.Creator.String() != f.CreatorAddress {
		return false
	}
	return true
}

// ListenerType selects the detection mechanism.
type ListenerType string

const (
	ListenerLogs  ListenerType = "logs"
	ListenerBlock ListenerType = "block"
)

// NewListener builds a listener of the given type over wssEndpoint.
func NewListener(typ ListenerType, wssEndpoint string, filters Filters, logger *zap.Logger) (Listener, error) {
	switch typ {
	case ListenerLogs, "":
		return NewLogsListener(wssEndpoint, filters, logger), nil
	case ListenerBlock:
		return NewBlockListener(wssEndpoint, filters, logger), nil
	default:
		return nil, fmt.Errorf("unsupported listener type: %q", typ)
	}
}
