package dualpi2

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forcedDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dualpi2",
		Name:      "forced_drops_total",
		Help:      "Packets dropped because the queue limit was reached.",
	}, []string{"queue_disc"})
	unforcedClassicDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dualpi2",
		Name:      "unforced_classic_drops_total",
		Help:      "Classic packets dropped by the coupled drop probability.",
	}, []string{"queue_disc"})
	unforcedClassicMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dualpi2",
		Name:      "unforced_classic_marks_total",
		Help:      "Classic packets CE-marked by the coupled drop probability.",
	}, []string{"queue_disc"})
	unforcedL4SMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dualpi2",
		Name:      "unforced_l4s_marks_total",
		Help:      "L4S packets CE-marked by threshold or probability.",
	}, []string{"queue_disc"})
)
