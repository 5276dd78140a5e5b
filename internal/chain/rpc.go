package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// WaitForRPC polls url until it answers eth_blockNumber or attempts run out.
func WaitForRPC(ctx context.Context, url string, attempts int, interval time.Duration) error {
	for range attempts {
		client, err := ethclient.DialContext(ctx, url)
		if err == nil {
			_, err = client.BlockNumber(ctx)
			client.Close()
			if err == nil {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("stopped waiting for RPC at %s: %w", url, ctx.Err())
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("timed out waiting for RPC at %s", url)
}

// Dial connects to url and checks that the node reports expectedChainID.
func Dial(ctx context.Context, url string, expectedChainID int64) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID from %s: %w", url, err)
	}

	if !chainID.IsInt64() || chainID.Int64() != expectedChainID {
		client.Close()
		return nil, fmt.Errorf("node at %s reports chain id %s, expected %d", url, chainID, expectedChainID)
	}

	return client, nil
}
