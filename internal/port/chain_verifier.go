package port

import "context"

// OwnershipResult is the oracle's answer for one token. ActualOwner is set
// whenever the chain returned an owner, valid or not.
type OwnershipResult struct {
	IsValid     bool
	ActualOwner string
}

// ChainVerifier answers who currently owns a token in a collection. An error
// means the oracle could not be reached and is distinct from a negative
// verification.
type ChainVerifier interface {
	VerifyOwnership(ctx context.Context, collectionAddress, tokenID, claimedOwner string) (OwnershipResult, error)
}
