// Prometheus metrics for observability.
//
// Primary metrics updated during operation:
//   - hermes_orders_total{side}             – entry market orders submitted
//   - hermes_fills_total{side}              – entries confirmed filled
//   - hermes_rescues_total{outcome}         – timeout rescues (clean|flattened|failed)
//   - hermes_protection_failures_total{leg} – best-effort SL/TP legs that failed
//   - hermes_manual_closes_total            – manual position closes
//   - hermes_stream_drops_total             – price stream worker terminations
//   - hermes_symbol_active                  – 1 while a symbol pair is activated
//   - hermes_last_price                     – latest published trade price
//
// Registered in init() and served at /metrics by cmd/app.
package infra

import "github.com/prometheus/client_golang/prometheus"

var (
	MtxOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_orders_total",
			Help: "Entry market orders submitted",
		},
		[]string{"side"},
	)

	MtxFills = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_fills_total",
			Help: "Entry orders confirmed filled",
		},
		[]string{"side"},
	)

	MtxRescues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_rescues_total",
			Help: "Timeout rescues by outcome",
		},
		[]string{"outcome"},
	)

	MtxProtectionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_protection_failures_total",
			Help: "Protective order legs that failed to place",
		},
		[]string{"leg"},
	)

	MtxManualCloses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hermes_manual_closes_total",
			Help: "Manual position closes",
		},
	)

	MtxStreamDrops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hermes_stream_drops_total",
			Help: "Price stream worker terminations",
		},
	)

	MtxSymbolActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hermes_symbol_active",
			Help: "1 while the symbol pair is activated",
		},
	)

	MtxLastPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hermes_last_price",
			Help: "Latest published trade price",
		},
	)
)

func init() {
	prometheus.MustRegister(
		MtxOrders,
		MtxFills,
		MtxRescues,
		MtxProtectionFailures,
		MtxManualCloses,
		MtxStreamDrops,
		MtxSymbolActive,
		MtxLastPrice,
	)
}
