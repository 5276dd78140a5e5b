package raffle

import (
	"github.com/spf13/viper"
)

// flagDef defines a command-line flag with its configuration.
type (
	flagType interface {
		string | int | bool
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

var (
	stringFlags = []flagDef[string]{
		{"network", "deploy.network", "", "Network to deploy to, as named in the networks section"},
		{"rpc-url", "deploy.rpc-url", "", "RPC URL overriding the network's configured one"},
		{"private-key", "deploy.wallet.private-key", "", "Deployer private key (prefer DEPLOYER_PRIVATE_KEY)"},
		{"artifacts-dir", "deploy.artifacts-dir", "", "Directory holding compiled contract artifacts"},
		{"deployments-dir", "deploy.deployments-dir", "", "Directory deployment records are written to"},
		{"confirmation-timeout", "deploy.confirmation-timeout", "", "Maximum wait for a transaction's confirmations (e.g. 5m)"},
	}

	intFlags = []flagDef[int]{
		{"gas-limit", "deploy.gas-limit", 0, "Gas limit for every transaction (0 estimates)"},
	}

	boolFlags = []flagDef[bool]{
		{"reset", "deploy.reset", false, "Redeploy even when an identical deployment is recorded"},
	}
)

func init() {
	if err := declareFlags(stringFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(intFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(boolFlags); err != nil {
		panic(err)
	}
	CMD.Flags().Int64(chainIDFlag, 0, "Chain id to deploy to instead of --network; development chain ids need no network entry")
}

// declareFlags declares multiple flags and binds them to viper configuration keys.
func declareFlags[T flagType](flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a single flag and binds it to a viper configuration key.
func declareFlag[T flagType](flagName, viperKey string, defaultValue T, description string) error {
	var zero T
	switch any(zero).(type) {
	case string:
		CMD.Flags().String(flagName, any(defaultValue).(string), description)
	case int:
		CMD.Flags().Int(flagName, any(defaultValue).(int), description)
	case bool:
		CMD.Flags().Bool(flagName, any(defaultValue).(bool), description)
	}
	return viper.BindPFlag(viperKey, CMD.Flags().Lookup(flagName))
}
