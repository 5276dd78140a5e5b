package deployments

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raffle-network/raffle-deploy/internal/infra/filesystem"
	"github.com/raffle-network/raffle-deploy/internal/logger"
)

var ErrNotFound = errors.New("deployment not found")

// Entry is the on-disk form of a deployment, one file per network and contract.
type Entry struct {
	ContractName    string          `json:"contractName"`
	Address         common.Address  `json:"address"`
	ChainID         int64           `json:"chainId"`
	Network         string          `json:"network"`
	Args            []string        `json:"args"`
	BytecodeHash    common.Hash     `json:"bytecodeHash"`
	TransactionHash common.Hash     `json:"transactionHash"`
	BlockNumber     uint64          `json:"blockNumber"`
	Confirmations   uint64          `json:"confirmations"`
	DeployedAt      time.Time       `json:"deployedAt"`
	ABI             json.RawMessage `json:"abi,omitempty"`
}

// Store persists deployment entries under <rootDir>/<network>/<contract>.json.
type Store struct {
	rootDir string
	reader  filesystem.Reader
	writer  filesystem.Writer
	logger  *slog.Logger
}

func NewStore(rootDir string, reader filesystem.Reader, writer filesystem.Writer) *Store {
	return &Store{
		rootDir: rootDir,
		reader:  reader,
		writer:  writer,
		logger:  logger.Named("deployment_store"),
	}
}

// Dir returns the directory holding a network's deployments.
func (s *Store) Dir(network string) string {
	return filepath.Join(s.rootDir, network)
}

func (s *Store) path(network, contract string) string {
	return filepath.Join(s.Dir(network), contract+".json")
}

// Save writes entry, replacing any previous deployment of the same contract.
func (s *Store) Save(entry Entry) error {
	if entry.Network == "" || entry.ContractName == "" {
		return fmt.Errorf("deployment entry needs a network and a contract name")
	}

	path := s.path(entry.Network, entry.ContractName)
	if err := s.writer.WriteJSON(path, entry); err != nil {
		return fmt.Errorf("failed to save deployment of %s on %s: %w", entry.ContractName, entry.Network, err)
	}

	s.logger.
		With("contract", entry.ContractName).
		With("network", entry.Network).
		With("path", path).
		Debug("deployment saved")

	return nil
}

// Get loads the stored deployment of contract on network.
func (s *Store) Get(network, contract string) (Entry, error) {
	var entry Entry
	if err := s.reader.ReadJSON(s.path(network, contract), &entry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, fmt.Errorf("%w: %s on %s", ErrNotFound, contract, network)
		}
		return Entry{}, fmt.Errorf("failed to load deployment of %s on %s: %w", contract, network, err)
	}

	return entry, nil
}
