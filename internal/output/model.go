package output

import (
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

type (
	Model struct {
		Network      Network                   `yaml:"network"`
		Contracts    map[string]ContractConfig `yaml:"contracts"`
		Subscription *Subscription             `yaml:"subscription,omitempty"`
	}
	Network struct {
		Name          string `yaml:"name"`
		ChainID       int64  `yaml:"chain-id"`
		RPCURL        string `yaml:"rpc-url,omitempty"`
		Development   bool   `yaml:"development"`
		Confirmations uint64 `yaml:"confirmations"`
	}
	ContractConfig struct {
		Address     common.Address     `yaml:"address"`
		TxHash      string             `yaml:"tx-hash,omitempty"`
		BlockNumber uint64             `yaml:"block-number,omitempty"`
		Args        []string           `yaml:"args,flow"`
		Reused      bool               `yaml:"reused,omitempty"`
		ABI         SingleQuotedString `yaml:"abi"`
	}
	Subscription struct {
		ID           uint64 `yaml:"id"`
		FundedAmount string `yaml:"funded-amount-wei"`
	}

	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}
