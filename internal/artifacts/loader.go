package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/raffle-network/raffle-deploy/internal/logger"
)

var ErrArtifactNotFound = errors.New("artifact not found")

// Loader finds compiled contract artifacts produced by hardhat (artifacts/) or
// foundry (out/) under a root directory.
type Loader struct {
	rootDir string
	logger  *slog.Logger
}

// NewLoader creates a loader rooted at rootDir
func NewLoader(rootDir string) *Loader {
	return &Loader{
		rootDir: rootDir,
		logger:  logger.Named("artifact_loader"),
	}
}

// Load returns the artifact for the named contract.
func (l *Loader) Load(name ContractName) (Artifact, error) {
	if _, ok := Contracts[name]; !ok {
		return Artifact{}, fmt.Errorf("contract '%s' is not deployable by this tool", name)
	}

	path, err := l.find(name)
	if err != nil {
		return Artifact{}, err
	}

	l.logger.With("contract", name).With("path", path).Debug("loading artifact")

	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact for %s: %w", name, err)
	}

	return Parse(name, data)
}

// find walks the root directory for <name>.json, ignoring hardhat debug files.
func (l *Loader) find(name ContractName) (string, error) {
	want := string(name) + ".json"
	var found string

	err := filepath.WalkDir(l.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != want {
			return nil
		}
		found = path
		return fs.SkipAll
	})
	if err != nil {
		return "", fmt.Errorf("failed to search artifacts in '%s': %w", l.rootDir, err)
	}

	if found == "" {
		return "", fmt.Errorf("%w: %s under '%s'", ErrArtifactNotFound, name, l.rootDir)
	}

	return found, nil
}

// Parse decodes a hardhat or foundry artifact.
func Parse(name ContractName, data []byte) (Artifact, error) {
	var raw struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode json.RawMessage `json:"bytecode"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return Artifact{}, fmt.Errorf("failed to parse artifact for %s: %w", name, err)
	}
	if len(raw.ABI) == 0 {
		return Artifact{}, fmt.Errorf("artifact for %s has no abi", name)
	}

	parsedABI, err := abi.JSON(strings.NewReader(string(raw.ABI)))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
	}

	bytecodeHex, err := parseBytecode(raw.Bytecode)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to parse bytecode for %s: %w", name, err)
	}

	bytecode := common.FromHex(bytecodeHex)
	if len(bytecode) == 0 {
		return Artifact{}, fmt.Errorf("artifact for %s has empty bytecode (abstract contract or interface?)", name)
	}

	return Artifact{
		Name:     name,
		ABI:      parsedABI,
		RawABI:   string(raw.ABI),
		Bytecode: bytecode,
	}, nil
}

// parseBytecode accepts hardhat's "0x..." string and foundry's {"object": "0x..."}.
func parseBytecode(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("missing bytecode")
	}

	var hex string
	if err := json.Unmarshal(raw, &hex); err == nil {
		return hex, nil
	}

	var object struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &object); err != nil {
		return "", err
	}

	return object.Object, nil
}
