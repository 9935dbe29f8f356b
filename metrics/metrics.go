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

// Package metrics exposes the engine's prometheus instrumentation. Setup is
// optional: until Setup is called every recording function is a no-op, so
// library users and tests pay nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	orderCounter *prometheus.CounterVec
	tradeCounter *prometheus.CounterVec
	engineTime   *prometheus.CounterVec
)

// Setup registers the engine metrics with the default registerer and
// returns an http handler serving them.
func Setup() (http.Handler, error) {
	oc := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenith",
		Subsystem: "execution",
		Name:      "orders_total",
		Help:      "Number of orders processed, by market, side and final status",
	}, []string{"market", "side", "status"})
	if err := prometheus.Register(oc); err != nil {
		return nil, err
	}
	orderCounter = oc

	tc := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenith",
		Subsystem: "execution",
		Name:      "trades_total",
		Help:      "Number of trades generated, by market",
	}, []string{"market"})
	if err := prometheus.Register(tc); err != nil {
		return nil, err
	}
	tradeCounter = tc

	et := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenith",
		Subsystem: "execution",
		Name:      "engine_seconds_total",
		Help:      "Cumulative time spent inside engine operations, by market and operation",
	}, []string{"market", "op"})
	if err := prometheus.Register(et); err != nil {
		return nil, err
	}
	engineTime = et

	return promhttp.Handler(), nil
}

// OrderCounterInc increments the order counter.
func OrderCounterInc(market, side, status string) {
	if orderCounter == nil {
		return
	}
	orderCounter.WithLabelValues(market, side, status).Inc()
}

// TradeCounterAdd adds n to the trade counter.
func TradeCounterAdd(market string, n int) {
	if tradeCounter == nil || n == 0 {
		return
	}
	tradeCounter.WithLabelValues(market).Add(float64(n))
}

// EngineTimeCounterAdd records the time spent in an engine operation
// started at the given instant.
func EngineTimeCounterAdd(start time.Time, market, op string) {
	if engineTime == nil {
		return
	}
	engineTime.WithLabelValues(market, op).Add(time.Since(start).Seconds())
}
