package study

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studytrack_timer_sessions_saved_total",
		Help: "Timer sessions persisted.",
	})
	questionCountUpserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studytrack_question_count_upserts_total",
		Help: "Question count upserts.",
	})
	netResultsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studytrack_net_results_created_total",
		Help: "Exam net snapshots saved.",
	})
	aggCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studytrack_agg_cache_lookups_total",
		Help: "Aggregate cache lookups by aggregate and outcome.",
	}, []string{"aggregate", "outcome"})
)
