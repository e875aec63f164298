package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var assignmentsCommittedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "selection_assignments_committed_total",
	Help: "counter of committed assignments by outcome (first, second, third, float)",
}, []string{"outcome"})

var commitsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "selection_engine_commits_total",
	Help: "counter of engine commit attempts by status",
}, []string{"status"})

var previewsCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "selection_engine_previews_total",
	Help: "counter of engine preview runs",
})
