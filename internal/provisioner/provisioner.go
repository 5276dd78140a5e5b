package provisioner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/deployer"
	"github.com/raffle-network/raffle-deploy/internal/logger"
	"github.com/raffle-network/raffle-deploy/internal/network"
)

var (
	ErrSubscriptionCreationFailed = errors.New("subscription creation failed")
	ErrFundingFailed              = errors.New("subscription funding failed")
	ErrLiveNetwork                = errors.New("mock provisioning is only allowed on development networks")
)

const (
	methodCreateSubscription = "createSubscription"
	methodFundSubscription   = "fundSubscription"

	// Mock transactions only need to be mined.
	mockConfirmations = 1
)

type (
	contractDeployer interface {
		Deploy(ctx context.Context, name artifacts.ContractName, args []any, confirmations uint64) (deployer.Record, error)
	}
	transactor interface {
		Transact(ctx context.Context, address common.Address, contractABI abi.ABI, method string, confirmations uint64, args ...any) (*types.Receipt, error)
	}
	artifactSource interface {
		Load(name artifacts.ContractName) (artifacts.Artifact, error)
	}

	// SubscriptionHandle identifies a funded subscription on the mock oracle.
	SubscriptionHandle struct {
		ID           uint64
		FundedAmount *big.Int
	}

	Result struct {
		Oracle       deployer.Record
		Subscription SubscriptionHandle
	}

	// Provisioner brings up the mock oracle a development network needs before
	// the raffle can be deployed.
	Provisioner struct {
		deployer   contractDeployer
		transactor transactor
		artifacts  artifactSource
		settings   Settings
		logger     *slog.Logger
	}
)

func New(deployer contractDeployer, transactor transactor, artifacts artifactSource, settings Settings) *Provisioner {
	return &Provisioner{
		deployer:   deployer,
		transactor: transactor,
		artifacts:  artifacts,
		settings:   settings,
		logger:     logger.Named("provisioner"),
	}
}

// Provision deploys the mock oracle, creates a subscription on it and funds it
// with the configured amount.
func (p *Provisioner) Provision(ctx context.Context, profile network.Profile) (Result, error) {
	if !profile.IsDevelopment {
		return Result{}, fmt.Errorf("%w: %s (chain id %d)", ErrLiveNetwork, profile.Name, profile.ChainID)
	}
	if err := p.settings.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid mock settings: %w", err)
	}

	log := p.logger.With("network", profile.Name).With("chain_id", profile.ChainID)

	mock, err := p.artifacts.Load(artifacts.ContractNameVRFCoordinatorV2Mock)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load mock oracle artifact: %w", err)
	}

	log.Info("deploying mock oracle")
	oracle, err := p.deployer.Deploy(ctx, artifacts.ContractNameVRFCoordinatorV2Mock,
		[]any{new(big.Int).Set(p.settings.BaseFee), new(big.Int).Set(p.settings.GasPriceLink)}, mockConfirmations)
	if err != nil {
		return Result{}, fmt.Errorf("failed to deploy mock oracle: %w", err)
	}
	log.With("address", oracle.Address.Hex()).Info("mock oracle deployed")

	subID, err := p.createSubscription(ctx, mock.ABI, oracle.Address)
	if err != nil {
		return Result{}, err
	}
	log.With("subscription_id", subID).Info("subscription created")

	funded, err := p.fundSubscription(ctx, mock.ABI, oracle.Address, subID)
	if err != nil {
		return Result{}, err
	}
	log.With("subscription_id", subID).With("funded_amount", funded.String()).Info("subscription funded")

	return Result{
		Oracle: oracle,
		Subscription: SubscriptionHandle{
			ID:           subID,
			FundedAmount: funded,
		},
	}, nil
}

func (p *Provisioner) createSubscription(ctx context.Context, mockABI abi.ABI, oracle common.Address) (uint64, error) {
	receipt, err := p.transactor.Transact(ctx, oracle, mockABI, methodCreateSubscription, mockConfirmations)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSubscriptionCreationFailed, err)
	}

	fields, err := decodeEvent(mockABI, eventSubscriptionCreated, oracle, receipt)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSubscriptionCreationFailed, err)
	}

	subID, err := subscriptionID(fields)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSubscriptionCreationFailed, err)
	}

	return subID, nil
}

// fundSubscription returns the subscription balance after funding. The mock's
// SubscriptionFunded event is preferred; without it the sent amount is assumed.
func (p *Provisioner) fundSubscription(ctx context.Context, mockABI abi.ABI, oracle common.Address, subID uint64) (*big.Int, error) {
	amount := new(big.Int).Set(p.settings.FundAmount)

	receipt, err := p.transactor.Transact(ctx, oracle, mockABI, methodFundSubscription, mockConfirmations, subID, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: subscription %d: %w", ErrFundingFailed, subID, err)
	}

	funded := amount
	if fields, err := decodeEvent(mockABI, eventSubscriptionFunded, oracle, receipt); err == nil {
		if balance, ok := newBalance(fields); ok {
			funded = balance
		}
	} else if !errors.Is(err, errEventNotFound) {
		p.logger.With("subscription_id", subID).With("err", err).Warn("could not decode funding event")
	}

	if funded.Cmp(p.settings.MinFundAmount) < 0 {
		return nil, fmt.Errorf("%w: subscription %d holds %s, below the minimum %s",
			ErrFundingFailed, subID, funded, p.settings.MinFundAmount)
	}

	return funded, nil
}
