package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/deployer"
	"github.com/raffle-network/raffle-deploy/internal/infra/filesystem"
	"github.com/raffle-network/raffle-deploy/internal/logger"
	"github.com/raffle-network/raffle-deploy/internal/orchestrator"
	"gopkg.in/yaml.v3"
)

const fileName = "summary.yaml"

type (
	artifactSource interface {
		Load(name artifacts.ContractName) (artifacts.Artifact, error)
	}

	// Generator writes a YAML summary of a run next to the deployment records.
	Generator struct {
		rootDir   string
		artifacts artifactSource
		writer    filesystem.Writer
		logger    *slog.Logger
	}
)

func NewGenerator(rootDir string, artifacts artifactSource, writer filesystem.Writer) *Generator {
	return &Generator{
		rootDir:   rootDir,
		artifacts: artifacts,
		writer:    writer,
		logger:    logger.Named("output_generator"),
	}
}

// Generate writes <rootDir>/<network>/summary.yaml and returns its path.
func (g *Generator) Generate(_ context.Context, outcome orchestrator.Outcome) (string, error) {
	model := &Model{
		Network: Network{
			Name:          outcome.Profile.Name,
			ChainID:       outcome.Profile.ChainID,
			RPCURL:        outcome.Profile.RPCURL,
			Development:   outcome.Profile.IsDevelopment,
			Confirmations: outcome.Raffle.Confirmations,
		},
		Contracts: map[string]ContractConfig{},
	}

	records := []deployer.Record{outcome.Raffle}
	if outcome.Oracle != nil {
		records = append(records, *outcome.Oracle)
	}
	for _, record := range records {
		contract, err := g.contractConfig(record)
		if err != nil {
			return "", err
		}
		model.Contracts[string(record.ContractName)] = contract
	}

	if outcome.Subscription != nil {
		model.Subscription = &Subscription{
			ID:           outcome.Subscription.ID,
			FundedAmount: outcome.Subscription.FundedAmount.String(),
		}
	}

	data, err := yaml.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("could not marshal output model. Err: '%w'", err)
	}

	path := filepath.Join(g.rootDir, outcome.Profile.Name, fileName)
	if err := g.writer.WriteBytes(path, data); err != nil {
		return "", fmt.Errorf("could not write output file. Err: '%w'", err)
	}

	g.logger.With("path", path).Info("deployment summary written")

	return path, nil
}

func (g *Generator) contractConfig(record deployer.Record) (ContractConfig, error) {
	artifact, err := g.artifacts.Load(record.ContractName)
	if err != nil {
		return ContractConfig{}, fmt.Errorf("could not load artifact of %s. Err: '%w'", record.ContractName, err)
	}

	return ContractConfig{
		Address:     record.Address,
		TxHash:      record.TxHash.Hex(),
		BlockNumber: record.BlockNumber,
		Args:        deployer.FormatArgs(record.Args),
		Reused:      record.Reused,
		ABI:         SingleQuotedString(compactJSON(artifact.RawABI)),
	}, nil
}

func compactJSON(jsonStr string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(jsonStr)); err != nil {
		return jsonStr
	}
	return buf.String()
}
