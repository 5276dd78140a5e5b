package deployer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/chain"
	"github.com/raffle-network/raffle-deploy/internal/deployments"
	"github.com/raffle-network/raffle-deploy/internal/logger"
	"github.com/raffle-network/raffle-deploy/internal/network"
)

var ErrDeploymentFailed = errors.New("deployment failed")

type (
	executor interface {
		Deploy(ctx context.Context, artifact artifacts.Artifact, confirmations uint64, constructorArgs ...any) (chain.Deployment, error)
		HasCode(ctx context.Context, address common.Address) (bool, error)
	}
	artifactSource interface {
		Load(name artifacts.ContractName) (artifacts.Artifact, error)
	}
	store interface {
		Save(entry deployments.Entry) error
		Get(network, contract string) (deployments.Entry, error)
	}

	// Deployer deploys compiled contracts to the network it was created for.
	Deployer struct {
		profile   network.Profile
		executor  executor
		artifacts artifactSource
		store     store
		reset     bool
		now       func() time.Time
		logger    *slog.Logger
	}
)

// New creates a deployer for profile. With reset set, stored deployments are never reused.
func New(profile network.Profile, executor executor, artifacts artifactSource, store store, reset bool) *Deployer {
	return &Deployer{
		profile:   profile,
		executor:  executor,
		artifacts: artifacts,
		store:     store,
		reset:     reset,
		now:       time.Now,
		logger:    logger.Named("deployer").With("network", profile.Name),
	}
}

// Deploy deploys the named contract with args and blocks until confirmations blocks
// have been observed on top of the creation transaction.
func (d *Deployer) Deploy(ctx context.Context, name artifacts.ContractName, args []any, confirmations uint64) (Record, error) {
	log := d.logger.With("contract", name).With("args", FormatArgs(args))

	artifact, err := d.artifacts.Load(name)
	if err != nil {
		return Record{}, d.failed(name, args, err)
	}

	if record, ok := d.reusable(ctx, artifact, args); ok {
		log.With("address", record.Address.Hex()).Info("reusing existing deployment")
		return record, nil
	}

	log.With("confirmations", confirmations).Info("deploying contract")

	deployment, err := d.executor.Deploy(ctx, artifact, confirmations, args...)
	if err != nil {
		return Record{}, d.failed(name, args, err)
	}

	record := Record{
		ContractName:  name,
		Address:       deployment.Address,
		ChainID:       d.profile.ChainID,
		Network:       d.profile.Name,
		Args:          slices.Clone(args),
		TxHash:        deployment.TxHash,
		BlockNumber:   deployment.BlockNumber,
		Confirmations: confirmations,
		DeployedAt:    d.now().UTC(),
	}

	log.
		With("address", record.Address.Hex()).
		With("tx_hash", record.TxHash.Hex()).
		With("block", record.BlockNumber).
		Info("contract deployed")

	if err := d.store.Save(record.entry(artifact)); err != nil {
		return record, fmt.Errorf("%s deployed at %s but could not be recorded: %w", name, record.Address.Hex(), err)
	}

	return record, nil
}

// reusable returns a stored deployment of artifact when it was made from the same
// bytecode with the same arguments and its code is still on chain. Development
// networks always redeploy.
func (d *Deployer) reusable(ctx context.Context, artifact artifacts.Artifact, args []any) (Record, bool) {
	if d.reset || d.profile.IsDevelopment {
		return Record{}, false
	}

	name := artifact.Name
	entry, err := d.store.Get(d.profile.Name, string(name))
	if err != nil {
		if !errors.Is(err, deployments.ErrNotFound) {
			d.logger.With("contract", name).With("err", err).Warn("ignoring unreadable deployment record")
		}
		return Record{}, false
	}

	if entry.ChainID != d.profile.ChainID || !slices.Equal(entry.Args, FormatArgs(args)) {
		return Record{}, false
	}
	if entry.BytecodeHash != bytecodeHash(artifact) {
		d.logger.With("contract", name).Info("bytecode changed since last deployment")
		return Record{}, false
	}

	hasCode, err := d.executor.HasCode(ctx, entry.Address)
	if err != nil {
		d.logger.
			With("contract", name).
			With("address", entry.Address.Hex()).
			With("err", err).
			Warn("could not check stored deployment, redeploying")
		return Record{}, false
	}
	if !hasCode {
		return Record{}, false
	}

	return Record{
		ContractName:  name,
		Address:       entry.Address,
		ChainID:       entry.ChainID,
		Network:       entry.Network,
		Args:          slices.Clone(args),
		TxHash:        entry.TransactionHash,
		BlockNumber:   entry.BlockNumber,
		Confirmations: entry.Confirmations,
		DeployedAt:    entry.DeployedAt,
		Reused:        true,
	}, true
}

func (d *Deployer) failed(name artifacts.ContractName, args []any, err error) error {
	return fmt.Errorf("%w: %s on %s (chain id %d) with args %v: %w",
		ErrDeploymentFailed, name, d.profile.Name, d.profile.ChainID, FormatArgs(args), err)
}
