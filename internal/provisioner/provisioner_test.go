package provisioner

import (
	"context"
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/raffle-network/raffle-deploy/configs"
	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/deployer"
	"github.com/raffle-network/raffle-deploy/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockABIJSON = `[
	{"type":"constructor","inputs":[{"name":"_baseFee","type":"uint96"},{"name":"_gasPriceLink","type":"uint96"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"createSubscription","inputs":[],"outputs":[{"name":"_subId","type":"uint64"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"fundSubscription","inputs":[{"name":"_subId","type":"uint64"},{"name":"_amount","type":"uint96"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"event","name":"SubscriptionCreated","inputs":[{"name":"subId","type":"uint64","indexed":true},{"name":"owner","type":"address","indexed":false}],"anonymous":false},
	{"type":"event","name":"SubscriptionFunded","inputs":[{"name":"subId","type":"uint64","indexed":true},{"name":"oldBalance","type":"uint256","indexed":false},{"name":"newBalance","type":"uint256","indexed":false}],"anonymous":false}
]`

var (
	oracleAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	ownerAddress  = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func mockABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(mockABIJSON))
	require.NoError(t, err)
	return parsed
}

type fakeArtifacts struct {
	abi abi.ABI
}

func (f fakeArtifacts) Load(name artifacts.ContractName) (artifacts.Artifact, error) {
	return artifacts.Artifact{Name: name, ABI: f.abi}, nil
}

type deployCall struct {
	name          artifacts.ContractName
	args          []any
	confirmations uint64
}

type fakeDeployer struct {
	err   error
	calls []deployCall
}

func (f *fakeDeployer) Deploy(_ context.Context, name artifacts.ContractName, args []any, confirmations uint64) (deployer.Record, error) {
	f.calls = append(f.calls, deployCall{name: name, args: args, confirmations: confirmations})
	if f.err != nil {
		return deployer.Record{}, f.err
	}
	return deployer.Record{ContractName: name, Address: oracleAddress, ChainID: 31337, Network: "localhost", Args: args, Confirmations: confirmations}, nil
}

type transactCall struct {
	method        string
	confirmations uint64
	args          []any
}

// fakeOracle answers mock oracle transactions with receipts carrying the
// events the real mock emits.
type fakeOracle struct {
	abi              abi.ABI
	subID            uint64
	emitter          common.Address
	omitCreatedEvent bool
	omitFundedEvent  bool
	fundedBalance    *big.Int
	createErr        error
	fundErr          error
	calls            []transactCall
}

func newFakeOracle(t *testing.T, subID uint64) *fakeOracle {
	return &fakeOracle{abi: mockABI(t), subID: subID, emitter: oracleAddress}
}

func (f *fakeOracle) Transact(_ context.Context, address common.Address, _ abi.ABI, method string, confirmations uint64, args ...any) (*types.Receipt, error) {
	f.calls = append(f.calls, transactCall{method: method, confirmations: confirmations, args: args})
	if address != oracleAddress {
		return nil, errors.New("unexpected contract address")
	}

	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: common.HexToHash("0xfeed")}
	switch method {
	case methodCreateSubscription:
		if f.createErr != nil {
			return nil, f.createErr
		}
		if !f.omitCreatedEvent {
			receipt.Logs = append(receipt.Logs, f.log(eventSubscriptionCreated, ownerAddress))
		}
	case methodFundSubscription:
		if f.fundErr != nil {
			return nil, f.fundErr
		}
		if !f.omitFundedEvent {
			balance := f.fundedBalance
			if balance == nil {
				balance = args[1].(*big.Int)
			}
			receipt.Logs = append(receipt.Logs, f.log(eventSubscriptionFunded, big.NewInt(0), balance))
		}
	}

	return receipt, nil
}

func (f *fakeOracle) log(eventName string, data ...any) *types.Log {
	event := f.abi.Events[eventName]
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		panic(err)
	}
	return &types.Log{
		Address: f.emitter,
		Topics:  []common.Hash{event.ID, common.BigToHash(new(big.Int).SetUint64(f.subID))},
		Data:    packed,
	}
}

func defaultSettings(t *testing.T) Settings {
	t.Helper()
	cfg, err := configs.DefaultConfig()
	require.NoError(t, err)
	settings, err := SettingsFromConfig(cfg.Mocks)
	require.NoError(t, err)
	return settings
}

func localProfile() network.Profile {
	profile := network.DevelopmentDefaults()
	profile.ChainID = 31337
	profile.Name = "localhost"
	return profile
}

func TestProvisioner_Provision(t *testing.T) {
	mockDeployer := &fakeDeployer{}
	oracle := newFakeOracle(t, 1)
	p := New(mockDeployer, oracle, fakeArtifacts{abi: oracle.abi}, defaultSettings(t))

	result, err := p.Provision(context.Background(), localProfile())
	require.NoError(t, err)

	require.Len(t, mockDeployer.calls, 1)
	assert.Equal(t, artifacts.ContractNameVRFCoordinatorV2Mock, mockDeployer.calls[0].name)
	assert.Equal(t, []any{big.NewInt(250000000000000000), big.NewInt(1000000000)}, mockDeployer.calls[0].args)
	assert.Equal(t, uint64(1), mockDeployer.calls[0].confirmations)

	require.Len(t, oracle.calls, 2)
	assert.Equal(t, methodCreateSubscription, oracle.calls[0].method)
	assert.Empty(t, oracle.calls[0].args)
	assert.Equal(t, methodFundSubscription, oracle.calls[1].method)
	assert.Equal(t, []any{uint64(1), big.NewInt(1_000_000_000_000_000_000)}, oracle.calls[1].args)

	assert.Equal(t, oracleAddress, result.Oracle.Address)
	assert.Equal(t, uint64(1), result.Subscription.ID)
	assert.Equal(t, big.NewInt(1_000_000_000_000_000_000), result.Subscription.FundedAmount)
}

func TestProvisioner_FundAmountIndependentOfSubscriptionID(t *testing.T) {
	testCases := []struct {
		name  string
		subID uint64
	}{
		{name: "first subscription", subID: 1},
		{name: "arbitrary id", subID: 588},
		{name: "max id", subID: math.MaxUint64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := newFakeOracle(t, tc.subID)
			p := New(&fakeDeployer{}, oracle, fakeArtifacts{abi: oracle.abi}, defaultSettings(t))

			result, err := p.Provision(context.Background(), localProfile())
			require.NoError(t, err)
			assert.Equal(t, tc.subID, result.Subscription.ID)

			require.Len(t, oracle.calls, 2)
			assert.Equal(t, []any{tc.subID, big.NewInt(1_000_000_000_000_000_000)}, oracle.calls[1].args)
		})
	}
}

func TestProvisioner_SubscriptionCreationFailures(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*fakeOracle)
	}{
		{name: "no event in receipt", modify: func(o *fakeOracle) { o.omitCreatedEvent = true }},
		{name: "event from another contract", modify: func(o *fakeOracle) { o.emitter = ownerAddress }},
		{name: "transaction rejected", modify: func(o *fakeOracle) { o.createErr = errors.New("execution reverted") }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := newFakeOracle(t, 1)
			tc.modify(oracle)
			p := New(&fakeDeployer{}, oracle, fakeArtifacts{abi: oracle.abi}, defaultSettings(t))

			_, err := p.Provision(context.Background(), localProfile())
			require.ErrorIs(t, err, ErrSubscriptionCreationFailed)

			require.Len(t, oracle.calls, 1, "funding must not be attempted")
		})
	}
}

func TestProvisioner_FundingFailures(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*fakeOracle)
	}{
		{name: "transaction rejected", modify: func(o *fakeOracle) { o.fundErr = errors.New("execution reverted") }},
		{name: "balance below minimum", modify: func(o *fakeOracle) { o.fundedBalance = big.NewInt(0) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := newFakeOracle(t, 3)
			tc.modify(oracle)
			p := New(&fakeDeployer{}, oracle, fakeArtifacts{abi: oracle.abi}, defaultSettings(t))

			_, err := p.Provision(context.Background(), localProfile())
			require.ErrorIs(t, err, ErrFundingFailed)
			assert.NotErrorIs(t, err, ErrSubscriptionCreationFailed)
		})
	}
}

func TestProvisioner_FundedAmountWithoutEvent(t *testing.T) {
	oracle := newFakeOracle(t, 2)
	oracle.omitFundedEvent = true
	p := New(&fakeDeployer{}, oracle, fakeArtifacts{abi: oracle.abi}, defaultSettings(t))

	result, err := p.Provision(context.Background(), localProfile())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000_000_000_000), result.Subscription.FundedAmount)
}

func TestProvisioner_RefusesLiveNetwork(t *testing.T) {
	mockDeployer := &fakeDeployer{}
	oracle := newFakeOracle(t, 1)
	p := New(mockDeployer, oracle, fakeArtifacts{abi: oracle.abi}, defaultSettings(t))

	_, err := p.Provision(context.Background(), network.Profile{ChainID: 11155111, Name: "sepolia", BlockConfirmations: 6})
	require.ErrorIs(t, err, ErrLiveNetwork)
	assert.Empty(t, mockDeployer.calls)
	assert.Empty(t, oracle.calls)
}

func TestProvisioner_MockDeploymentFailure(t *testing.T) {
	mockDeployer := &fakeDeployer{err: deployer.ErrDeploymentFailed}
	oracle := newFakeOracle(t, 1)
	p := New(mockDeployer, oracle, fakeArtifacts{abi: oracle.abi}, defaultSettings(t))

	_, err := p.Provision(context.Background(), localProfile())
	require.ErrorIs(t, err, deployer.ErrDeploymentFailed)
	assert.Empty(t, oracle.calls)
}

func TestSettingsFromConfig(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       configs.Mocks
		expectErr string
	}{
		{
			name: "valid",
			cfg:  configs.Mocks{BaseFeeWei: "250000000000000000", GasPriceLink: "1_000_000_000", FundAmountWei: "10", MinFundAmountWei: "1"},
		},
		{
			name:      "not a number",
			cfg:       configs.Mocks{BaseFeeWei: "0.25 LINK", GasPriceLink: "1", FundAmountWei: "10", MinFundAmountWei: "1"},
			expectErr: "mocks.base-fee-wei",
		},
		{
			name:      "fund amount below minimum",
			cfg:       configs.Mocks{BaseFeeWei: "1", GasPriceLink: "1", FundAmountWei: "1", MinFundAmountWei: "5"},
			expectErr: "below the minimum",
		},
		{
			name:      "zero minimum",
			cfg:       configs.Mocks{BaseFeeWei: "1", GasPriceLink: "1", FundAmountWei: "1", MinFundAmountWei: "0"},
			expectErr: "must be positive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings, err := SettingsFromConfig(tc.cfg)
			if tc.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(1_000_000_000), settings.GasPriceLink)
		})
	}
}
