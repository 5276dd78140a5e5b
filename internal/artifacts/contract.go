package artifacts

import "github.com/ethereum/go-ethereum/accounts/abi"

type (
	ContractName string

	// Artifact is a compiled contract ready to be deployed.
	Artifact struct {
		Name     ContractName
		ABI      abi.ABI
		RawABI   string
		Bytecode []byte
	}
)

const (
	ContractNameVRFCoordinatorV2Mock ContractName = "VRFCoordinatorV2Mock"
	ContractNameRaffle               ContractName = "Raffle"
)

var Contracts = map[ContractName]struct{}{
	ContractNameVRFCoordinatorV2Mock: {},
	ContractNameRaffle:               {},
}
