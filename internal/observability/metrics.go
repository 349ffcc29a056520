package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomJoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gogotaxi", Name: "room_joins_total", Help: "Room join attempts by outcome"},
		[]string{"outcome"},
	)
	StageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gogotaxi", Name: "ride_stage_transitions_total", Help: "Accepted ride stage transitions"},
		[]string{"stage"},
	)
	LedgerWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gogotaxi", Name: "wallet_ledger_writes_total", Help: "Wallet ledger writes by kind"},
		[]string{"kind"},
	)
	SettlementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "gogotaxi", Name: "settlements_total", Help: "Finalized room settlements"},
	)
	SettlementLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gogotaxi",
			Name:      "settlement_duration_seconds",
			Help:      "Time spent finalizing a room settlement",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
