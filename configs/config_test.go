package configs

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, NetworkName("localhost"), cfg.Deploy.Network)
	assert.Equal(t, 5*time.Minute, cfg.Deploy.ConfirmationTimeout)
	assert.Equal(t, []int64{31337, 1337}, cfg.Deploy.DevelopmentChainIDs)
	assert.Equal(t, "250000000000000000", cfg.Mocks.BaseFeeWei)
	assert.Equal(t, "1000000000", cfg.Mocks.GasPriceLink)
	assert.Equal(t, "1000000000000000000", cfg.Mocks.FundAmountWei)

	require.Contains(t, cfg.Networks, NetworkName("sepolia"))
	assert.Equal(t, uint64(6), cfg.Networks["sepolia"].BlockConfirmations)
	assert.Equal(t, int64(31337), cfg.Node.ChainID)
}

func TestMergeDefaults_UserOverrides(t *testing.T) {
	v := viper.New()
	require.NoError(t, MergeDefaults(v))
	require.NoError(t, v.MergeConfig(strings.NewReader(`
deploy:
  network: sepolia
networks:
  sepolia:
    block-confirmations: 12
`)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, NetworkName("sepolia"), cfg.Deploy.Network)
	assert.Equal(t, uint64(12), cfg.Networks["sepolia"].BlockConfirmations)
	assert.Equal(t, uint64(588), cfg.Networks["sepolia"].SubscriptionID, "untouched keys keep their defaults")
	assert.Equal(t, "./artifacts", cfg.Deploy.ArtifactsDir)
}

func TestNetwork_Validate(t *testing.T) {
	live := func() Network {
		return Network{
			ChainID:            11155111,
			RPCURL:             "https://rpc.sepolia.org",
			VRFCoordinator:     "0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625",
			SubscriptionID:     588,
			GasLane:            "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c",
			UpdateInterval:     30,
			EntranceFeeWei:     "10000000000000000",
			CallbackGasLimit:   500000,
			BlockConfirmations: 6,
		}
	}

	testCases := []struct {
		name      string
		modify    func(*Network)
		expectErr string
	}{
		{name: "complete live network", modify: func(*Network) {}},
		{name: "missing confirmations", modify: func(n *Network) { n.BlockConfirmations = 0 }, expectErr: "networks.sepolia.block-confirmations is required"},
		{name: "missing coordinator", modify: func(n *Network) { n.VRFCoordinator = "" }, expectErr: "networks.sepolia.vrf-coordinator is required"},
		{name: "bad coordinator", modify: func(n *Network) { n.VRFCoordinator = "0x1234" }, expectErr: "not a valid address"},
		{name: "short gas lane", modify: func(n *Network) { n.GasLane = "0xd89b" }, expectErr: "32 byte hex string"},
		{name: "non-hex gas lane", modify: func(n *Network) { n.GasLane = "0x" + strings.Repeat("zz", 32) }, expectErr: "32 byte hex string"},
		{name: "unprefixed gas lane", modify: func(n *Network) { n.GasLane = strings.TrimPrefix(n.GasLane, "0x") }, expectErr: "32 byte hex string"},
		{name: "negative fee", modify: func(n *Network) { n.EntranceFeeWei = "-1" }, expectErr: "must not be negative"},
		{name: "development network needs only a chain id", modify: func(n *Network) { *n = Network{ChainID: 31337, Development: true} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			network := live()
			tc.modify(&network)

			err := network.Validate("sepolia")
			if tc.expectErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func TestConfig_ValidateCollectsErrors(t *testing.T) {
	cfg := Config{
		Mocks: Mocks{BaseFeeWei: "abc"},
		Networks: map[NetworkName]Network{
			"mainnet": {ChainID: 1},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, expected := range []string{
		"deploy.network is required",
		"deploy.wallet.private-key is required",
		"mocks.base-fee-wei",
		"networks.mainnet.rpc-url is required",
	} {
		assert.Contains(t, err.Error(), expected)
	}
}

func TestConfig_ValidateTreatsDevelopmentChainIDs(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	cfg.Networks = map[NetworkName]Network{"anvil": {ChainID: 31337}}
	require.NoError(t, cfg.Validate())
}

func TestParseWei(t *testing.T) {
	testCases := []struct {
		input     string
		expected  *big.Int
		expectErr bool
	}{
		{input: "250000000000000000", expected: big.NewInt(250000000000000000)},
		{input: "1_000_000_000", expected: big.NewInt(1000000000)},
		{input: " 7 ", expected: big.NewInt(7)},
		{input: "", expectErr: true},
		{input: "1e18", expectErr: true},
		{input: "-5", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseWei(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
