package orchestrator

import "fmt"

type Phase string

const (
	PhaseResolve   Phase = "resolve-network"
	PhaseProvision Phase = "provision-mocks"
	PhaseDeploy    Phase = "deploy-raffle"
)

// PhaseError tags a failed run with where it stopped and on which network.
type PhaseError struct {
	Phase   Phase
	ChainID int64
	Network string
	Err     error
}

func (e *PhaseError) Error() string {
	if e.Network == "" {
		return fmt.Sprintf("%s failed on chain id %d: %v", e.Phase, e.ChainID, e.Err)
	}
	return fmt.Sprintf("%s failed on %s (chain id %d): %v", e.Phase, e.Network, e.ChainID, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
