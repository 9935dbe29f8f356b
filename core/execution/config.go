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

package execution

import (
	"code.zenithex.io/zenith/config/encoding"
	"code.zenithex.io/zenith/core/fee"
	"code.zenithex.io/zenith/core/hooks"
	"code.zenithex.io/zenith/core/matching"
	"code.zenithex.io/zenith/logging"
)

const namedLogger = "execution"

// Config is the configuration of the execution package, carrying the
// configuration of the engines it drives.
type Config struct {
	Level encoding.LogLevel

	Matching matching.Config
	Fee      fee.Config
	Hooks    hooks.Config
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:    encoding.LogLevel{Level: logging.InfoLevel},
		Matching: matching.NewDefaultConfig(),
		Fee:      fee.NewDefaultConfig(),
		Hooks:    hooks.NewDefaultConfig(),
	}
}
