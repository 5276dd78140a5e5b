package provisioner

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	eventSubscriptionCreated = "SubscriptionCreated"
	eventSubscriptionFunded  = "SubscriptionFunded"

	fieldSubID      = "subId"
	fieldNewBalance = "newBalance"
)

var errEventNotFound = errors.New("event not found in receipt")

// decodeEvent returns the fields of the first log in receipt emitted by emitter
// that matches eventName, indexed and non-indexed alike.
func decodeEvent(contractABI abi.ABI, eventName string, emitter common.Address, receipt *types.Receipt) (map[string]any, error) {
	event, ok := contractABI.Events[eventName]
	if !ok {
		return nil, fmt.Errorf("abi has no %s event", eventName)
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: %s (no receipt)", errEventNotFound, eventName)
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}

	for _, log := range receipt.Logs {
		if log == nil || log.Address != emitter || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}

		fields := make(map[string]any, len(event.Inputs))
		if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
			return nil, fmt.Errorf("failed to decode %s topics: %w", eventName, err)
		}
		if len(log.Data) > 0 {
			if err := contractABI.UnpackIntoMap(fields, eventName, log.Data); err != nil {
				return nil, fmt.Errorf("failed to decode %s data: %w", eventName, err)
			}
		}

		return fields, nil
	}

	return nil, fmt.Errorf("%w: %s from %s in transaction %s", errEventNotFound, eventName, emitter.Hex(), receipt.TxHash.Hex())
}

func subscriptionID(fields map[string]any) (uint64, error) {
	switch v := fields[fieldSubID].(type) {
	case uint64:
		return v, nil
	case *big.Int:
		if v == nil || !v.IsUint64() {
			return 0, fmt.Errorf("subscription id %v does not fit uint64", v)
		}
		return v.Uint64(), nil
	default:
		return 0, fmt.Errorf("unexpected subscription id type %T", v)
	}
}

func newBalance(fields map[string]any) (*big.Int, bool) {
	balance, ok := fields[fieldNewBalance].(*big.Int)
	if !ok || balance == nil {
		return nil, false
	}
	return new(big.Int).Set(balance), true
}
