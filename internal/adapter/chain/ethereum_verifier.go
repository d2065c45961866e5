package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/DevYoma/zora-be/internal/port"
)

// ERC-721 ownerOf(uint256) selector.
var ownerOfSelector = []byte{0x63, 0x52, 0x21, 0x1e}

// EthereumVerifier answers ownership questions with a read-only ownerOf call
// against the collection contract.
type EthereumVerifier struct {
	client *ethclient.Client
}

func NewEthereumVerifier(ctx context.Context, rpcURL string) (*EthereumVerifier, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}
	return &EthereumVerifier{client: client}, nil
}

func NewEthereumVerifierWithClient(client *ethclient.Client) *EthereumVerifier {
	return &EthereumVerifier{client: client}
}

func (v *EthereumVerifier) Close() {
	v.client.Close()
}

func (v *EthereumVerifier) VerifyOwnership(ctx context.Context, collectionAddress, tokenID, claimedOwner string) (port.OwnershipResult, error) {
	if !common.IsHexAddress(collectionAddress) {
		return port.OwnershipResult{}, fmt.Errorf("invalid collection address %q", collectionAddress)
	}
	id, err := parseTokenID(tokenID)
	if err != nil {
		return port.OwnershipResult{}, err
	}

	contract := common.HexToAddress(collectionAddress)
	data := append(append([]byte{}, ownerOfSelector...), common.LeftPadBytes(id.Bytes(), 32)...)

	out, err := v.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return port.OwnershipResult{}, fmt.Errorf("ownerOf call: %w", err)
	}
	if len(out) < 32 {
		return port.OwnershipResult{}, fmt.Errorf("short ownerOf response: %d bytes", len(out))
	}

	actual := common.BytesToAddress(out[12:32])
	return port.OwnershipResult{
		IsValid:     strings.EqualFold(actual.Hex(), claimedOwner),
		ActualOwner: actual.Hex(),
	}, nil
}

func parseTokenID(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	id, ok := new(big.Int).SetString(s, base)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid token id %q", raw)
	}
	return id, nil
}
