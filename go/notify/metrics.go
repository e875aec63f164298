package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sendsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "selection_notifications_total",
	Help: "counter of notification send attempts by result (sent, failed)",
}, []string{"result"})
