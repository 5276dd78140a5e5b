package deployer

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/deployments"
)

// Record describes a finished deployment. It is never modified once returned.
type Record struct {
	ContractName  artifacts.ContractName
	Address       common.Address
	ChainID       int64
	Network       string
	Args          []any
	TxHash        common.Hash
	BlockNumber   uint64
	Confirmations uint64
	DeployedAt    time.Time
	Reused        bool
}

func (r Record) entry(artifact artifacts.Artifact) deployments.Entry {
	return deployments.Entry{
		ContractName:    string(r.ContractName),
		Address:         r.Address,
		ChainID:         r.ChainID,
		Network:         r.Network,
		Args:            FormatArgs(r.Args),
		BytecodeHash:    bytecodeHash(artifact),
		TransactionHash: r.TxHash,
		BlockNumber:     r.BlockNumber,
		Confirmations:   r.Confirmations,
		DeployedAt:      r.DeployedAt,
		ABI:             json.RawMessage(artifact.RawABI),
	}
}

func bytecodeHash(artifact artifacts.Artifact) common.Hash {
	return crypto.Keccak256Hash(artifact.Bytecode)
}

// FormatArgs renders constructor arguments the way they are stored and logged.
func FormatArgs(args []any) []string {
	formatted := make([]string, len(args))
	for i, arg := range args {
		formatted[i] = formatArg(arg)
	}
	return formatted
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case [32]byte:
		return common.Hash(v).Hex()
	case *big.Int:
		if v == nil {
			return "0"
		}
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
