package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTasks   = "tasks"
	NameJobs    = "jobs"
	LabelStatus = "status"
)

var Tasks = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name:      NameTasks,
		Help:      "Current tasks by status",
		Namespace: Namespace,
	},
	[]string{LabelStatus},
)

var Jobs = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name:      NameJobs,
		Help:      "Current background jobs by status",
		Namespace: Namespace,
	},
	[]string{LabelStatus},
)
