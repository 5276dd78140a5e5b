package configs

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var Values Config

type (
	NetworkName string

	Config struct {
		LogLevel string                  `mapstructure:"log-level"`
		Deploy   Deploy                  `mapstructure:"deploy"`
		Mocks    Mocks                   `mapstructure:"mocks"`
		Networks map[NetworkName]Network `mapstructure:"networks"`
		Node     Node                    `mapstructure:"node"`
	}

	Deploy struct {
		Network             NetworkName   `mapstructure:"network"`
		RPCURL              string        `mapstructure:"rpc-url"`
		Wallet              Wallet        `mapstructure:"wallet"`
		ArtifactsDir        string        `mapstructure:"artifacts-dir"`
		DeploymentsDir      string        `mapstructure:"deployments-dir"`
		ConfirmationTimeout time.Duration `mapstructure:"confirmation-timeout"`
		PollInterval        time.Duration `mapstructure:"poll-interval"`
		GasLimit            uint64        `mapstructure:"gas-limit"`
		Reset               bool          `mapstructure:"reset"`
		DevelopmentChainIDs []int64       `mapstructure:"development-chain-ids"`
	}

	Wallet struct {
		PrivateKey string `mapstructure:"private-key"`
	}

	// Network describes one deployment target. Oracle and raffle parameters may be
	// omitted for development networks, which fall back to built-in defaults.
	Network struct {
		ChainID            int64  `mapstructure:"chain-id"`
		RPCURL             string `mapstructure:"rpc-url"`
		Development        bool   `mapstructure:"development"`
		VRFCoordinator     string `mapstructure:"vrf-coordinator"`
		SubscriptionID     uint64 `mapstructure:"subscription-id"`
		GasLane            string `mapstructure:"gas-lane"`
		UpdateInterval     uint64 `mapstructure:"update-interval"`
		EntranceFeeWei     string `mapstructure:"entrance-fee-wei"`
		CallbackGasLimit   uint32 `mapstructure:"callback-gas-limit"`
		BlockConfirmations uint64 `mapstructure:"block-confirmations"`
	}

	Mocks struct {
		BaseFeeWei       string `mapstructure:"base-fee-wei"`
		GasPriceLink     string `mapstructure:"gas-price-link"`
		FundAmountWei    string `mapstructure:"fund-amount-wei"`
		MinFundAmountWei string `mapstructure:"min-fund-amount-wei"`
	}

	Node struct {
		Image         string `mapstructure:"image"`
		ContainerName string `mapstructure:"container-name"`
		Port          int    `mapstructure:"port"`
		ChainID       int64  `mapstructure:"chain-id"`
		BlockTime     int    `mapstructure:"block-time"`
	}
)

func (c *Deploy) Validate() error {
	var errs []error

	if c.Network == "" {
		errs = append(errs, errors.New("deploy.network is required"))
	}
	if c.Wallet.PrivateKey == "" {
		errs = append(errs, errors.New("deploy.wallet.private-key is required"))
	}
	if c.ArtifactsDir == "" {
		errs = append(errs, errors.New("deploy.artifacts-dir is required"))
	}
	if c.DeploymentsDir == "" {
		errs = append(errs, errors.New("deploy.deployments-dir is required"))
	}
	if c.ConfirmationTimeout <= 0 {
		errs = append(errs, errors.New("deploy.confirmation-timeout must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("deploy.poll-interval must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("deploy configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Mocks) Validate() error {
	var errs []error

	for key, value := range map[string]string{
		"mocks.base-fee-wei":        c.BaseFeeWei,
		"mocks.gas-price-link":      c.GasPriceLink,
		"mocks.fund-amount-wei":     c.FundAmountWei,
		"mocks.min-fund-amount-wei": c.MinFundAmountWei,
	} {
		if _, err := ParseWei(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("mocks configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// Validate checks a single network entry. Live networks must spell out every
// parameter, including the block confirmation count used for the main deployment.
func (n *Network) Validate(name NetworkName) error {
	var errs []error

	if n.ChainID <= 0 {
		errs = append(errs, fmt.Errorf("networks.%s.chain-id is required", name))
	}
	if n.VRFCoordinator != "" && !common.IsHexAddress(n.VRFCoordinator) {
		errs = append(errs, fmt.Errorf("networks.%s.vrf-coordinator is not a valid address", name))
	}
	if n.GasLane != "" && !isHash(n.GasLane) {
		errs = append(errs, fmt.Errorf("networks.%s.gas-lane must be a 32 byte hex string", name))
	}
	if n.EntranceFeeWei != "" {
		if _, err := ParseWei(n.EntranceFeeWei); err != nil {
			errs = append(errs, fmt.Errorf("networks.%s.entrance-fee-wei: %w", name, err))
		}
	}

	if !n.Development {
		if n.RPCURL == "" {
			errs = append(errs, fmt.Errorf("networks.%s.rpc-url is required", name))
		}
		if n.VRFCoordinator == "" {
			errs = append(errs, fmt.Errorf("networks.%s.vrf-coordinator is required", name))
		}
		if n.SubscriptionID == 0 {
			errs = append(errs, fmt.Errorf("networks.%s.subscription-id is required", name))
		}
		if n.GasLane == "" {
			errs = append(errs, fmt.Errorf("networks.%s.gas-lane is required", name))
		}
		if n.UpdateInterval == 0 {
			errs = append(errs, fmt.Errorf("networks.%s.update-interval is required", name))
		}
		if n.EntranceFeeWei == "" {
			errs = append(errs, fmt.Errorf("networks.%s.entrance-fee-wei is required", name))
		}
		if n.CallbackGasLimit == 0 {
			errs = append(errs, fmt.Errorf("networks.%s.callback-gas-limit is required", name))
		}
		if n.BlockConfirmations == 0 {
			errs = append(errs, fmt.Errorf("networks.%s.block-confirmations is required", name))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	var errs []error

	if err := c.Deploy.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Mocks.Validate(); err != nil {
		errs = append(errs, err)
	}
	for name, network := range c.Networks {
		if slices.Contains(c.Deploy.DevelopmentChainIDs, network.ChainID) {
			network.Development = true
		}
		if err := network.Validate(name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ParseWei parses a non-negative base-10 integer amount.
func ParseWei(value string) (*big.Int, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", "")
	if value == "" {
		return nil, errors.New("value is empty")
	}

	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("'%s' is not a base-10 integer", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("'%s' must not be negative", value)
	}

	return amount, nil
}

func isHash(value string) bool {
	decoded, err := hexutil.Decode(value)
	return err == nil && len(decoded) == common.HashLength
}
