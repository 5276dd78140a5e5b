package raffle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/raffle-network/raffle-deploy/configs"
	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/chain"
	"github.com/raffle-network/raffle-deploy/internal/deployer"
	"github.com/raffle-network/raffle-deploy/internal/deployments"
	fsjson "github.com/raffle-network/raffle-deploy/internal/infra/filesystem/json"
	"github.com/raffle-network/raffle-deploy/internal/network"
	"github.com/raffle-network/raffle-deploy/internal/orchestrator"
	"github.com/raffle-network/raffle-deploy/internal/output"
	"github.com/raffle-network/raffle-deploy/internal/provisioner"
)

const (
	rpcAttempts = 10
	rpcInterval = 2 * time.Second
)

// Deploy runs a full raffle deployment against the network selected in cfg, or
// chainID when it is non-zero, and writes the run summary.
func Deploy(ctx context.Context, cfg configs.Config, chainID int64) (orchestrator.Outcome, string, error) {
	registry, err := network.NewRegistryFromConfig(cfg.Networks, cfg.Deploy.DevelopmentChainIDs)
	if err != nil {
		return orchestrator.Outcome{}, "", err
	}

	profile, err := selectProfile(registry, cfg.Deploy.Network, chainID)
	if err != nil {
		return orchestrator.Outcome{}, "", &orchestrator.PhaseError{Phase: orchestrator.PhaseResolve, ChainID: chainID, Err: err}
	}

	rpcURL := cfg.Deploy.RPCURL
	if rpcURL == "" {
		rpcURL = profile.RPCURL
	}
	if rpcURL == "" {
		return orchestrator.Outcome{}, "", fmt.Errorf("no rpc url for %s: set networks.%s.rpc-url or --rpc-url", profile.Name, profile.Name)
	}

	settings, err := provisioner.SettingsFromConfig(cfg.Mocks)
	if err != nil {
		return orchestrator.Outcome{}, "", fmt.Errorf("invalid mock settings: %w", err)
	}

	slog.With("rpc_url", rpcURL).Info("waiting for RPC endpoint")
	if err := chain.WaitForRPC(ctx, rpcURL, rpcAttempts, rpcInterval); err != nil {
		return orchestrator.Outcome{}, "", err
	}

	client, err := chain.Dial(ctx, rpcURL, profile.ChainID)
	if err != nil {
		return orchestrator.Outcome{}, "", err
	}
	defer client.Close()

	executor, err := chain.NewExecutor(client, cfg.Deploy.Wallet.PrivateKey, big.NewInt(profile.ChainID), chain.Options{
		GasLimit:            cfg.Deploy.GasLimit,
		PollInterval:        cfg.Deploy.PollInterval,
		ConfirmationTimeout: cfg.Deploy.ConfirmationTimeout,
	})
	if err != nil {
		return orchestrator.Outcome{}, "", err
	}

	slog.
		With("network", profile.Name).
		With("chain_id", profile.ChainID).
		With("deployer", executor.From().Hex()).
		Info("deploying from account")

	loader := artifacts.NewLoader(cfg.Deploy.ArtifactsDir)
	writer := fsjson.NewWriter()
	store := deployments.NewStore(cfg.Deploy.DeploymentsDir, fsjson.NewReader(), writer)

	contractDeployer := deployer.New(profile, executor, loader, store, cfg.Deploy.Reset)
	mockProvisioner := provisioner.New(contractDeployer, executor, loader, settings)

	outcome, err := orchestrator.New(registry, contractDeployer, mockProvisioner).Execute(ctx, profile.ChainID)
	if err != nil {
		return outcome, "", err
	}

	summaryPath, err := output.NewGenerator(cfg.Deploy.DeploymentsDir, loader, writer).Generate(ctx, outcome)
	if err != nil {
		return outcome, "", fmt.Errorf("raffle deployed at %s but the summary could not be written: %w", outcome.Raffle.Address.Hex(), err)
	}

	return outcome, summaryPath, nil
}

func selectProfile(registry *network.Registry, name configs.NetworkName, chainID int64) (network.Profile, error) {
	if chainID != 0 {
		return registry.Resolve(chainID)
	}
	if name == "" {
		return network.Profile{}, errors.New("no network selected: set deploy.network, --network or --chain-id")
	}

	return registry.ResolveName(string(name))
}
