package provisioner

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/raffle-network/raffle-deploy/configs"
)

// Settings are the fixed mock parameters used on every development run.
type Settings struct {
	BaseFee       *big.Int
	GasPriceLink  *big.Int
	FundAmount    *big.Int
	MinFundAmount *big.Int
}

// SettingsFromConfig parses the configured mock amounts.
func SettingsFromConfig(cfg configs.Mocks) (Settings, error) {
	var errs []error
	parse := func(key, value string) *big.Int {
		amount, err := configs.ParseWei(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("mocks.%s: %w", key, err))
			return nil
		}
		return amount
	}

	settings := Settings{
		BaseFee:       parse("base-fee-wei", cfg.BaseFeeWei),
		GasPriceLink:  parse("gas-price-link", cfg.GasPriceLink),
		FundAmount:    parse("fund-amount-wei", cfg.FundAmountWei),
		MinFundAmount: parse("min-fund-amount-wei", cfg.MinFundAmountWei),
	}
	if len(errs) > 0 {
		return Settings{}, errors.Join(errs...)
	}

	return settings, settings.Validate()
}

func (s Settings) Validate() error {
	if s.BaseFee == nil || s.GasPriceLink == nil || s.FundAmount == nil || s.MinFundAmount == nil {
		return errors.New("mock settings are incomplete")
	}
	if s.MinFundAmount.Sign() <= 0 {
		return errors.New("minimum subscription funding must be positive")
	}
	if s.FundAmount.Cmp(s.MinFundAmount) < 0 {
		return fmt.Errorf("subscription fund amount %s is below the minimum %s", s.FundAmount, s.MinFundAmount)
	}
	return nil
}
