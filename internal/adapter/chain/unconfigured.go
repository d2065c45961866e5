package chain

import (
	"context"
	"errors"

	"github.com/DevYoma/zora-be/internal/port"
)

// UnconfiguredVerifier stands in when no RPC endpoint is configured. Every
// proof-gated redemption then fails as verifier-unavailable instead of
// silently skipping the ownership check.
type UnconfiguredVerifier struct{}

func (UnconfiguredVerifier) VerifyOwnership(ctx context.Context, collectionAddress, tokenID, claimedOwner string) (port.OwnershipResult, error) {
	return port.OwnershipResult{}, errors.New("no ethereum rpc endpoint configured")
}
