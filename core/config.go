package core

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type ClaimTokenConfig struct {
	Name   string `koanf:"name" mapstructure:"name"`
	Symbol string `koanf:"symbol" mapstructure:"symbol"`
}

type RegistryEntryConfig struct {
	ID     uint64 `koanf:"id" mapstructure:"id"`
	Amount string `koanf:"amount" mapstructure:"amount"`
}

type SetupConfig struct {
	SkipRenounce bool `koanf:"skip_renounce" mapstructure:"skip_renounce"`
	RetainAdmin  bool `koanf:"retain_admin" mapstructure:"retain_admin"`
}

type PersistenceConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
	Debug  bool   `koanf:"debug" mapstructure:"debug"`
}

type Config struct {
	ServiceName  string                `koanf:"service_name" mapstructure:"service_name"`
	ClaimToken   ClaimTokenConfig      `koanf:"claim_token" mapstructure:"claim_token"`
	AssetAddress string                `koanf:"asset_address" mapstructure:"asset_address"`
	Registry     []RegistryEntryConfig `koanf:"registry" mapstructure:"registry"`
	Setup        SetupConfig           `koanf:"setup" mapstructure:"setup"`
	Persistence  PersistenceConfig     `koanf:"persistence" mapstructure:"persistence"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "custody",
		ClaimToken: ClaimTokenConfig{
			Name:   "SimpleFraction",
			Symbol: "SIMP",
		},
		Persistence: PersistenceConfig{
			Driver: "sqlite3",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.ClaimToken.Name) == "" {
		return fmt.Errorf("core: claim_token.name is required")
	}
	if strings.TrimSpace(c.ClaimToken.Symbol) == "" {
		return fmt.Errorf("core: claim_token.symbol is required")
	}
	if address := strings.TrimSpace(c.AssetAddress); address != "" && !common.IsHexAddress(address) {
		return fmt.Errorf("core: asset_address %q is invalid", address)
	}
	for idx, entry := range c.Registry {
		if _, err := ParseAmount(entry.Amount); err != nil {
			return fmt.Errorf("core: registry[%d] amount is invalid: %w", idx, err)
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Persistence.Driver)) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("core: persistence.driver %q is invalid", c.Persistence.Driver)
	}
	return nil
}

// RegistryEntries decodes the configured registry. An empty list yields no
// entries and no error; the vault rejects it at deployment.
func (c Config) RegistryEntries() ([]RegistryEntry, error) {
	entries := make([]RegistryEntry, 0, len(c.Registry))
	for idx, entry := range c.Registry {
		amount, err := ParseAmount(entry.Amount)
		if err != nil {
			return nil, validationError(
				fmt.Sprintf("registry: entry %d amount is invalid", idx),
				CustodyErrorInvalidRegistry,
				map[string]any{"index": idx, "amount": entry.Amount},
			)
		}
		entries = append(entries, RegistryEntry{
			CollateralID: CollateralID(entry.ID),
			ClaimAmount:  amount,
		})
	}
	return entries, nil
}
