// ==================================
// File: internal/fees/manager.go
// ==================================
package fees

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ManagerConfig mirrors the priority_fees section of the bot config.
type ManagerConfig struct {
	EnableDynamic bool
	EnableFixed   bool
	// FixedAmount is the compute-unit price when the fixed provider is used.
	FixedAmount uint64
	// ExtraPercent adds headroom on top of the computed fee, e.g. 0.1 adds 10%.
	ExtraPercent float64
	// HardCap clamps the final fee. Zero disables the cap.
	HardCap uint64
}

// Manager selects between dynamic and fixed fee providers and applies the
// extra-percentage markup and hard cap. When both providers are enabled the
// dynamic one wins.
type Manager struct {
	cfg     ManagerConfig
	dynamic Provider
	fixed   Provider
	logger  *zap.Logger
}

func NewManager(cfg ManagerConfig, dynamic, fixed Provider, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		dynamic: dynamic,
		fixed:   fixed,
		logger:  logger.Named("fees"),
	}
}

// PriorityFee returns the compute-unit price to attach to a trade touching
// accounts. ok is false when no fee should be attached.
func (m *Manager) PriorityFee(ctx context.Context, accounts []solana.PublicKey) (uint64, bool, error) {
	fee, ok, err := m.baseFee(ctx, accounts)
	if err != nil {
		return 0, false, err
	}
	if !ok || fee == 0 {
		return 0, false, nil
	}

	if m.cfg.ExtraPercent > 0 {
		fee = uint64(float64(fee) * (1 + m.cfg.ExtraPercent))
	}

	if m.cfg.HardCap > 0 && fee > m.cfg.HardCap {
		m.logger.Warn("Priority fee exceeds hard cap, clamping",
			zap.Uint64("fee", fee),
			zap.Uint64("hard_cap", m.cfg.HardCap))
		fee = m.cfg.HardCap
	}

	return fee, true, nil
}

// baseFee prefers the dynamic provider; when it yields nothing or fails the
// fixed provider is consulted as a fallback.
func (m *Manager) baseFee(ctx context.Context, accounts []solana.PublicKey) (uint64, bool, error) {
	if m.cfg.EnableDynamic && m.dynamic != nil {
		fee, ok, err := m.dynamic.Fee(ctx, accounts)
		switch {
		case err != nil:
			m.logger.Warn("Dynamic fee estimation failed, falling back to fixed fee", zap.Error(err))
		case ok:
			return fee, true, nil
		}
	}
	if m.cfg.EnableFixed && m.fixed != nil {
		return m.fixed.Fee(ctx, accounts)
	}
	return 0, false, nil
}
