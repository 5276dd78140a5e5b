package network

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Profile holds everything the orchestrator needs to know about one deployment target.
type Profile struct {
	ChainID       int64
	Name          string
	RPCURL        string
	IsDevelopment bool

	// OracleAddress and SubscriptionID are only meaningful on live networks;
	// development networks get both from provisioning.
	OracleAddress  common.Address
	SubscriptionID uint64

	GasLane            common.Hash
	UpdateInterval     uint64
	EntranceFee        *big.Int
	CallbackGasLimit   uint32
	BlockConfirmations uint64
}

const (
	defaultDevelopmentUpdateInterval   = 30
	defaultDevelopmentCallbackGasLimit = 500_000
)

var (
	defaultDevelopmentGasLane     = common.HexToHash("0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc")
	defaultDevelopmentEntranceFee = big.NewInt(10_000_000_000_000_000) // 0.01 ether
)

// DevelopmentDefaults returns the parameters used for development networks that
// have no explicit entry, or whose entry leaves a field unset.
func DevelopmentDefaults() Profile {
	return Profile{
		IsDevelopment:      true,
		GasLane:            defaultDevelopmentGasLane,
		UpdateInterval:     defaultDevelopmentUpdateInterval,
		EntranceFee:        new(big.Int).Set(defaultDevelopmentEntranceFee),
		CallbackGasLimit:   defaultDevelopmentCallbackGasLimit,
		BlockConfirmations: 1,
	}
}

// Confirmations is the number of blocks the main deployment waits for.
func (p Profile) Confirmations() uint64 {
	if p.IsDevelopment {
		return 1
	}
	return p.BlockConfirmations
}

func (p Profile) clone() Profile {
	if p.EntranceFee != nil {
		p.EntranceFee = new(big.Int).Set(p.EntranceFee)
	}
	return p
}

// withDefaults fills unset development parameters from defaults.
func (p Profile) withDefaults(defaults Profile) Profile {
	if p.GasLane == (common.Hash{}) {
		p.GasLane = defaults.GasLane
	}
	if p.UpdateInterval == 0 {
		p.UpdateInterval = defaults.UpdateInterval
	}
	if p.EntranceFee == nil {
		p.EntranceFee = defaults.EntranceFee
	}
	if p.CallbackGasLimit == 0 {
		p.CallbackGasLimit = defaults.CallbackGasLimit
	}
	if p.BlockConfirmations == 0 {
		p.BlockConfirmations = 1
	}
	return p.clone()
}
