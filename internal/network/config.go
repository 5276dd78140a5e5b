package network

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raffle-network/raffle-deploy/configs"
)

// NewRegistryFromConfig converts the configured network table into a Registry.
func NewRegistryFromConfig(networks map[configs.NetworkName]configs.Network, developmentChainIDs []int64) (*Registry, error) {
	var errs []error
	profiles := make([]Profile, 0, len(networks))

	for name, network := range networks {
		if slices.Contains(developmentChainIDs, network.ChainID) {
			network.Development = true
		}

		profile, err := profileFromConfig(name, network)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		profiles = append(profiles, profile)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid network configuration: %w", errors.Join(errs...))
	}

	return NewRegistry(developmentChainIDs, DevelopmentDefaults(), profiles...)
}

func profileFromConfig(name configs.NetworkName, network configs.Network) (Profile, error) {
	if err := network.Validate(name); err != nil {
		return Profile{}, err
	}

	profile := Profile{
		ChainID:            network.ChainID,
		Name:               string(name),
		RPCURL:             network.RPCURL,
		IsDevelopment:      network.Development,
		SubscriptionID:     network.SubscriptionID,
		UpdateInterval:     network.UpdateInterval,
		CallbackGasLimit:   network.CallbackGasLimit,
		BlockConfirmations: network.BlockConfirmations,
	}

	if network.VRFCoordinator != "" {
		profile.OracleAddress = common.HexToAddress(network.VRFCoordinator)
	}
	if network.GasLane != "" {
		profile.GasLane = common.HexToHash(network.GasLane)
	}
	if network.EntranceFeeWei != "" {
		fee, err := configs.ParseWei(network.EntranceFeeWei)
		if err != nil {
			return Profile{}, fmt.Errorf("networks.%s.entrance-fee-wei: %w", name, err)
		}
		profile.EntranceFee = fee
	}

	return profile, nil
}
