package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameTotalScheduleRuns        = "total_schedule_runs"
	NameTotalPromotedTasks       = "total_promoted_tasks"
	NameTotalDemotedTasks        = "total_demoted_tasks"
	NameTotalPickups             = "total_pickups"
	NameTotalTransitions         = "total_transitions"
	NameTotalRejectedTransitions = "total_rejected_transitions"
	NameWeeklyBudgetMinutes      = "weekly_budget_minutes"
	NameWeeklyUsedMinutes        = "weekly_used_minutes"

	LabelOutcome = "outcome"
	LabelSource  = "source"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomePicked    = "picked"
	OutcomeBusy      = "busy"
	OutcomeEmpty     = "empty"
)

var TotalScheduleRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalScheduleRuns,
		Help:      "Total scheduler runs",
		Namespace: Namespace,
	},
	[]string{LabelOutcome},
)

var TotalPromotedTasks = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalPromotedTasks,
		Help:      "Total tasks promoted into the week by the scheduler",
		Namespace: Namespace,
	},
)

var TotalDemotedTasks = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameTotalDemotedTasks,
		Help:      "Total tasks displaced from the week by the scheduler",
		Namespace: Namespace,
	},
)

var TotalPickups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalPickups,
		Help:      "Total pickup requests",
		Namespace: Namespace,
	},
	[]string{LabelOutcome},
)

var TotalTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalTransitions,
		Help:      "Total applied status transitions",
		Namespace: Namespace,
	},
	[]string{LabelSource},
)

var TotalRejectedTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameTotalRejectedTransitions,
		Help:      "Total rejected status transitions",
		Namespace: Namespace,
	},
	[]string{LabelSource},
)

var WeeklyBudgetMinutes = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name:      NameWeeklyBudgetMinutes,
		Help:      "Weekly budget used by the last scheduler run",
		Namespace: Namespace,
	},
)

var WeeklyUsedMinutes = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name:      NameWeeklyUsedMinutes,
		Help:      "Minutes committed to the week after the last scheduler run",
		Namespace: Namespace,
	},
)
