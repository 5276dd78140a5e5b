package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/raffle-network/raffle-deploy/internal/artifacts"
	"github.com/raffle-network/raffle-deploy/internal/logger"
)

type (
	// Backend is the slice of an RPC client the executor needs. *ethclient.Client satisfies it.
	Backend interface {
		bind.ContractBackend
		bind.DeployBackend
		BlockNumber(ctx context.Context) (uint64, error)
		ChainID(ctx context.Context) (*big.Int, error)
	}

	Options struct {
		// GasLimit of 0 lets the node estimate.
		GasLimit            uint64
		PollInterval        time.Duration
		ConfirmationTimeout time.Duration
	}

	// Deployment is the on-chain outcome of a contract creation.
	Deployment struct {
		Address     common.Address
		TxHash      common.Hash
		BlockNumber uint64
	}

	// Executor signs and submits transactions with a single key and waits for
	// them to reach the requested confirmation depth.
	Executor struct {
		backend    Backend
		privateKey *ecdsa.PrivateKey
		from       common.Address
		chainID    *big.Int
		opts       Options
		logger     *slog.Logger
	}
)

// NewExecutor creates an executor signing with privateKeyHex on chainID.
func NewExecutor(backend Backend, privateKeyHex string, chainID *big.Int, opts Options) (*Executor, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to cast public key to ECDSA")
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ConfirmationTimeout <= 0 {
		opts.ConfirmationTimeout = 5 * time.Minute
	}

	return &Executor{
		backend:    backend,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(*publicKey),
		chainID:    new(big.Int).Set(chainID),
		opts:       opts,
		logger:     logger.Named("chain_executor"),
	}, nil
}

// From returns the address transactions are sent from.
func (e *Executor) From() common.Address {
	return e.from
}

// Deploy submits a contract creation transaction and waits for confirmations.
func (e *Executor) Deploy(ctx context.Context, artifact artifacts.Artifact, confirmations uint64, constructorArgs ...any) (Deployment, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.ConfirmationTimeout)
	defer cancel()

	auth, err := e.transactor(ctx)
	if err != nil {
		return Deployment{}, err
	}

	address, tx, _, err := bind.DeployContract(auth, artifact.ABI, artifact.Bytecode, e.backend, constructorArgs...)
	if err != nil {
		return Deployment{}, fmt.Errorf("failed to deploy contract: %w", err)
	}

	e.logger.
		With("contract", artifact.Name).
		With("address", address).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	receipt, err := WaitForConfirmations(ctx, e.backend, tx.Hash(), confirmations, e.opts.PollInterval, e.logger)
	if err != nil {
		return Deployment{}, err
	}

	return Deployment{
		Address:     address,
		TxHash:      tx.Hash(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// Transact calls method on the contract at address and returns the confirmed receipt.
func (e *Executor) Transact(ctx context.Context, address common.Address, contractABI abi.ABI, method string, confirmations uint64, args ...any) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.ConfirmationTimeout)
	defer cancel()

	auth, err := e.transactor(ctx)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(address, contractABI, e.backend, e.backend, e.backend)
	tx, err := contract.Transact(auth, method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	e.logger.
		With("method", method).
		With("to", address).
		With("tx_hash", tx.Hash().Hex()).
		Info("transaction sent")

	return WaitForConfirmations(ctx, e.backend, tx.Hash(), confirmations, e.opts.PollInterval, e.logger)
}

// HasCode reports whether a contract is deployed at address.
func (e *Executor) HasCode(ctx context.Context, address common.Address) (bool, error) {
	code, err := e.backend.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to read code at %s: %w", address.Hex(), err)
	}

	return len(code) > 0, nil
}

func (e *Executor) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(e.privateKey, e.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	gasPrice, err := e.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	auth.Context = ctx
	auth.GasPrice = gasPrice
	if e.opts.GasLimit > 0 {
		auth.GasLimit = e.opts.GasLimit
	}

	return auth, nil
}
