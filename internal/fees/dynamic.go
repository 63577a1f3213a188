// ==================================
// File: internal/fees/dynamic.go
// ==================================
package fees

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
)

// Dynamic derives a fee from the cluster's recent prioritization fees for the
// accounts a trade touches.
type Dynamic struct {
	Client blockchain.Client
	// Percentile of the observed sample to use, in (0, 100]. Zero means the
	// default of 70.
	Percentile float64
}

func (d *Dynamic) Fee(ctx context.Context, accounts []solana.PublicKey) (uint64, bool, error) {
	samples, err := d.Client.GetRecentPrioritizationFees(ctx, accounts)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get recent prioritization fees: %w", err)
	}

	fees := make([]uint64, 0, len(samples))
	for _, s := range samples {
		fees = append(fees, s.PrioritizationFee)
	}

	fee := percentile(fees, d.percentile())
	if fee == 0 {
		return 0, false, nil
	}
	return fee, true, nil
}

func (d *Dynamic) percentile() float64 {
	if d.Percentile <= 0 || d.Percentile > 100 {
		return 70
	}
	return d.Percentile
}

// percentile returns the p-th percentile of values using linear interpolation
// between order statistics. An empty sample yields zero.
func percentile(values []uint64, p float64) uint64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]uint64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lower)
	interp := float64(sorted[lower]) + frac*(float64(sorted[lower+1])-float64(sorted[lower]))
	return uint64(math.Round(interp))
}

var _ Provider = (*Dynamic)(nil)
