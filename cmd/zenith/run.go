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

package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"code.zenithex.io/zenith/config"
	"code.zenithex.io/zenith/core/broker"
	"code.zenithex.io/zenith/core/collateral"
	"code.zenithex.io/zenith/core/execution"
	"code.zenithex.io/zenith/core/types"
	"code.zenithex.io/zenith/logging"
	"code.zenithex.io/zenith/metrics"

	"github.com/spf13/cobra"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a zenith trading node",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Read(runConfigPath)
		if err != nil {
			return err
		}
		return runNode(cfg)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "zenith.toml", "path to the configuration file")
	rootCmd.AddCommand(runCmd)
}

func runNode(cfg *config.Config) error {
	log := logging.NewProdLogger()
	if cfg.Logging.Environment == "dev" {
		log = logging.NewDevLogger()
	}
	defer log.AtExit()

	bkr := broker.New(log, cfg.Broker)
	ledger := collateral.New(log, cfg.Collateral)
	eng := execution.NewEngine(log, cfg.Execution, ledger, bkr, nil)

	for _, mc := range cfg.Markets {
		mkt := &types.Market{
			ID:    mc.ID,
			Base:  types.Asset{Symbol: mc.BaseSymbol, Decimals: mc.BaseDecimals},
			Quote: types.Asset{Symbol: mc.QuoteSymbol, Decimals: mc.QuoteDecimals},
			Fees: types.FeeFactors{
				MakerBps: mc.MakerFeeBps,
				TakerBps: mc.TakerFeeBps,
			},
		}
		if _, err := eng.SubmitMarket(mkt, nil); err != nil {
			return err
		}
	}

	if cfg.Metrics.Enabled {
		handler, err := metrics.Setup()
		if err != nil {
			return err
		}
		go func() {
			srv := &http.Server{Addr: cfg.Metrics.Address, Handler: handler}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped", logging.Error(err))
			}
		}()
		log.Info("metrics served", logging.String("address", cfg.Metrics.Address))
	}

	log.Info("node ready", logging.Int("markets", len(cfg.Markets)))

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Info("shutting down", logging.String("signal", sig.String()))
	return nil
}
