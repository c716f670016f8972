package broker

import (
	"fmt"
	"strings"

	"copytrade/internal/config"
)

// ResolveAccount maps environment x market onto the configured account id.
// The table is static configuration; an unknown combination is a setup error,
// not something to fall back from.
func ResolveAccount(accounts config.AccountsConfig, env, market string) (uint64, error) {
	env = strings.ToLower(strings.TrimSpace(env))
	market = strings.ToUpper(strings.TrimSpace(market))

	var id uint64
	switch {
	case env == EnvReal && market == MarketUS:
		id = accounts.USReal
	case env == EnvReal && market == MarketHK:
		id = accounts.HKReal
	case env == EnvSimulate && market == MarketUS:
		id = accounts.USSimulate
	case env == EnvSimulate && market == MarketHK:
		id = accounts.HKSimulate
	default:
		return 0, fmt.Errorf("no account for env=%q market=%q", env, market)
	}
	if id == 0 {
		return 0, fmt.Errorf("account for env=%q market=%q is not configured", env, market)
	}
	return id, nil
}
