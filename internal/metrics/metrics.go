package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pairsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairtrack",
		Subsystem: "pairing",
		Name:      "pairs_created_total",
		Help:      "Pairs created, by mode (auto or manual).",
	}, []string{"mode"})
	pairsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pairtrack",
		Subsystem: "pairing",
		Name:      "pairs_removed_total",
		Help:      "Pairs removed by an admin.",
	})
	unpairedMembers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pairtrack",
		Subsystem: "pairing",
		Name:      "unpaired_members",
		Help:      "Members left unpaired after the most recent auto-pair.",
	})
	cycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairtrack",
		Subsystem: "cycles",
		Name:      "transitions_total",
		Help:      "Weekly cycle transitions, by action (reset, start, range).",
	}, []string{"action"})
	roomWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairtrack",
		Subsystem: "room",
		Name:      "writes_total",
		Help:      "Room writes, by kind (goal, goal_update, check_in, comment).",
	}, []string{"kind"})
	signIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pairtrack",
		Subsystem: "auth",
		Name:      "sign_ins_total",
		Help:      "Successful sign-ins, by method.",
	}, []string{"method"})
	httpRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pairtrack",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(
		pairsCreated,
		pairsRemoved,
		unpairedMembers,
		cycleTransitions,
		roomWrites,
		signIns,
		httpRequests,
	)
}

func RecordPairsCreated(mode string, n int) {
	if n <= 0 {
		return
	}
	pairsCreated.WithLabelValues(mode).Add(float64(n))
}

func RecordPairRemoved() {
	pairsRemoved.Inc()
}

func RecordUnpaired(n int) {
	unpairedMembers.Set(float64(n))
}

func RecordCycleTransition(action string) {
	cycleTransitions.WithLabelValues(action).Inc()
}

func RecordRoomWrite(kind string) {
	roomWrites.WithLabelValues(kind).Inc()
}

func RecordSignIn(method string) {
	signIns.WithLabelValues(method).Inc()
}

// ObserveRequest records latency with the status collapsed to its class ("2xx").
func ObserveRequest(method string, status int, seconds float64) {
	class := strconv.Itoa(status/100) + "xx"
	httpRequests.WithLabelValues(method, class).Observe(seconds)
}
