package raffle

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raffle-network/raffle-deploy/configs"
	"github.com/raffle-network/raffle-deploy/internal/network"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const chainIDFlag = "chain-id"

var CMD = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the Raffle contract, provisioning mocks first on development networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.With("network", configs.Values.Deploy.Network).Info("starting deploy command. Validating config")

		if err := configs.Values.Validate(); err != nil {
			return err
		}

		chainID, err := cmd.Flags().GetInt64(chainIDFlag)
		if err != nil {
			return err
		}

		slog.Info("config validation successful. Starting deployment...")

		outcome, summaryPath, err := Deploy(cmd.Context(), configs.Values, chainID)
		if err != nil {
			if outcome.Raffle.Address != (common.Address{}) {
				slog.With("raffle", outcome.Raffle.Address.Hex()).Warn("raffle is on chain despite the failure")
			}
			return fmt.Errorf("raffle deployment failed: %w", err)
		}

		slog.
			With("network", outcome.Profile.Name).
			With("raffle", outcome.Raffle.Address.Hex()).
			With("summary", summaryPath).
			Info("raffle deployment completed successfully")

		return nil
	},
}

var NetworksCMD = &cobra.Command{
	Use:   "networks",
	Short: "List the configured networks and the parameters deployments will use",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := network.NewRegistryFromConfig(configs.Values.Networks, configs.Values.Deploy.DevelopmentChainIDs)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(listNetworks(registry.Profiles()))
		if err != nil {
			return fmt.Errorf("failed to render networks: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

type networkListing struct {
	Name             string `yaml:"name"`
	ChainID          int64  `yaml:"chain-id"`
	RPCURL           string `yaml:"rpc-url,omitempty"`
	Development      bool   `yaml:"development"`
	VRFCoordinator   string `yaml:"vrf-coordinator,omitempty"`
	SubscriptionID   uint64 `yaml:"subscription-id,omitempty"`
	GasLane          string `yaml:"gas-lane"`
	UpdateInterval   uint64 `yaml:"update-interval"`
	EntranceFeeWei   string `yaml:"entrance-fee-wei"`
	CallbackGasLimit uint32 `yaml:"callback-gas-limit"`
	Confirmations    uint64 `yaml:"confirmations"`
}

func listNetworks(profiles []network.Profile) []networkListing {
	listing := make([]networkListing, 0, len(profiles))
	for _, profile := range profiles {
		entry := networkListing{
			Name:             profile.Name,
			ChainID:          profile.ChainID,
			RPCURL:           profile.RPCURL,
			Development:      profile.IsDevelopment,
			SubscriptionID:   profile.SubscriptionID,
			GasLane:          profile.GasLane.Hex(),
			UpdateInterval:   profile.UpdateInterval,
			CallbackGasLimit: profile.CallbackGasLimit,
			Confirmations:    profile.Confirmations(),
		}
		if !profile.IsDevelopment {
			entry.VRFCoordinator = profile.OracleAddress.Hex()
		}
		if profile.EntranceFee != nil {
			entry.EntranceFeeWei = profile.EntranceFee.String()
		}
		listing = append(listing, entry)
	}

	return listing
}
