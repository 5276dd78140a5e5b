package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrTransactionReverted = errors.New("transaction reverted")

type confirmationBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// WaitForConfirmations polls until txHash is mined and the chain head is
// confirmations-1 blocks past the inclusion block. A reverted receipt is returned
// together with ErrTransactionReverted as soon as it is seen.
func WaitForConfirmations(ctx context.Context, backend confirmationBackend, txHash common.Hash, confirmations uint64, pollInterval time.Duration, logger *slog.Logger) (*types.Receipt, error) {
	if confirmations == 0 {
		confirmations = 1
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	logger = logger.With("tx_hash", txHash.Hex()).With("confirmations", confirmations)

	for {
		receipt, err := backend.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: tx %s in block %s", ErrTransactionReverted, txHash.Hex(), receipt.BlockNumber)
			}

			head, err := backend.BlockNumber(ctx)
			if err != nil {
				logger.With("err", err.Error()).Warn("failed to read chain head, retrying")
				break
			}

			included := receipt.BlockNumber.Uint64()
			if head >= included && head-included+1 >= confirmations {
				logger.With("block_number", included).Debug("transaction confirmed")
				return receipt, nil
			}

			logger.
				With("block_number", included).
				With("head", head).
				Debug("waiting for more confirmations")
		case errors.Is(err, ethereum.NotFound):
			logger.Debug("transaction not yet mined")
		default:
			logger.With("err", err.Error()).Warn("failed to fetch receipt, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for %d confirmations of %s: %w", confirmations, txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
