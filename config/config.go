// Copyright (C) 2024 Zenith Markets Ltd.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"

	"code.zenithex.io/zenith/core/broker"
	"code.zenithex.io/zenith/core/collateral"
	"code.zenithex.io/zenith/core/execution"
	"code.zenithex.io/zenith/logging"

	"github.com/BurntSushi/toml"
)

// Metrics configures the prometheus endpoint of the node.
type Metrics struct {
	Enabled bool
	Address string
}

// Market declares one trading pair the node opens at startup.
type Market struct {
	ID            string
	BaseSymbol    string
	BaseDecimals  uint32
	QuoteSymbol   string
	QuoteDecimals uint32
	MakerFeeBps   uint64
	TakerFeeBps   uint64
}

// Config is the root configuration of a zenith node, aggregating the
// configuration of every engine it runs.
type Config struct {
	Logging    logging.Config
	Broker     broker.Config
	Collateral collateral.Config
	Execution  execution.Config
	Metrics    Metrics
	Markets    []Market
}

// NewDefaultConfig returns a root configuration with every engine on its
// defaults and no markets.
func NewDefaultConfig() Config {
	return Config{
		Logging:    logging.NewDefaultConfig(),
		Broker:     broker.NewDefaultConfig(),
		Collateral: collateral.NewDefaultConfig(),
		Execution:  execution.NewDefaultConfig(),
		Metrics: Metrics{
			Enabled: false,
			Address: "localhost:2112",
		},
	}
}

// Read loads the configuration from a toml file.
func Read(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write saves the configuration to a toml file, creating it if needed.
func Write(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
