package orchestrator

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/deployer"
	"github.com/raffle-network/raffle-deploy/internal/logger"
	"github.com/raffle-network/raffle-deploy/internal/network"
	"github.com/raffle-network/raffle-deploy/internal/provisioner"
)

type (
	registry interface {
		Resolve(chainID int64) (network.Profile, error)
	}
	contractDeployer interface {
		Deploy(ctx context.Context, name artifacts.ContractName, args []any, confirmations uint64) (deployer.Record, error)
	}
	mockProvisioner interface {
		Provision(ctx context.Context, profile network.Profile) (provisioner.Result, error)
	}

	// Outcome is everything a run produced. Oracle and Subscription are only
	// set when mocks were provisioned.
	Outcome struct {
		Profile      network.Profile
		Raffle       deployer.Record
		Oracle       *deployer.Record
		Subscription *provisioner.SubscriptionHandle
	}

	// Orchestrator sequences a raffle deployment: mocks first on development
	// networks, then the raffle itself.
	Orchestrator struct {
		registry    registry
		deployer    contractDeployer
		provisioner mockProvisioner
		logger      *slog.Logger
	}
)

func New(registry registry, deployer contractDeployer, provisioner mockProvisioner) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		deployer:    deployer,
		provisioner: provisioner,
		logger:      logger.Named("orchestrator"),
	}
}

// Run deploys the raffle to chainID and returns its deployment record. The record
// is also returned alongside an error when the raffle reached the chain but could
// not be recorded.
func (o *Orchestrator) Run(ctx context.Context, chainID int64) (deployer.Record, error) {
	outcome, err := o.Execute(ctx, chainID)
	return outcome.Raffle, err
}

// Execute is Run with the intermediate results kept for reporting. On failure the
// outcome holds whatever was deployed before the error.
func (o *Orchestrator) Execute(ctx context.Context, chainID int64) (Outcome, error) {
	profile, err := o.registry.Resolve(chainID)
	if err != nil {
		return Outcome{}, &PhaseError{Phase: PhaseResolve, ChainID: chainID, Err: err}
	}

	log := o.logger.With("network", profile.Name).With("chain_id", chainID)
	outcome := Outcome{Profile: profile}

	oracle, subscriptionID := profile.OracleAddress, profile.SubscriptionID
	if profile.IsDevelopment {
		log.Info("development network detected, provisioning mocks")

		result, err := o.provisioner.Provision(ctx, profile)
		if err != nil {
			return Outcome{}, &PhaseError{Phase: PhaseProvision, ChainID: chainID, Network: profile.Name, Err: err}
		}

		oracle, subscriptionID = result.Oracle.Address, result.Subscription.ID
		outcome.Oracle = &result.Oracle
		outcome.Subscription = &result.Subscription
	}

	args := ConstructorArgs(profile, oracle, subscriptionID)
	confirmations := profile.Confirmations()

	log.
		With("oracle", oracle.Hex()).
		With("subscription_id", subscriptionID).
		With("confirmations", confirmations).
		Info("deploying raffle")

	record, err := o.deployer.Deploy(ctx, artifacts.ContractNameRaffle, args, confirmations)
	outcome.Raffle = record
	if err != nil {
		return outcome, &PhaseError{Phase: PhaseDeploy, ChainID: chainID, Network: profile.Name, Err: err}
	}

	log.With("address", record.Address.Hex()).Info("raffle deployed")

	return outcome, nil
}

// ConstructorArgs returns the raffle constructor arguments in declaration order:
// coordinator, subscription id, gas lane, interval, entrance fee, callback gas limit.
func ConstructorArgs(profile network.Profile, oracle common.Address, subscriptionID uint64) []any {
	entranceFee := new(big.Int)
	if profile.EntranceFee != nil {
		entranceFee.Set(profile.EntranceFee)
	}

	return []any{
		oracle,
		subscriptionID,
		[32]byte(profile.GasLane),
		new(big.Int).SetUint64(profile.UpdateInterval),
		entranceFee,
		profile.CallbackGasLimit,
	}
}
