package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusObserver struct {
	evaluations     *prometheus.CounterVec
	flagCreates     prometheus.Counter
	overrideWrites  prometheus.Counter
	overrideDeletes prometheus.Counter
}

var (
	evaluationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flaggate_evaluations_total",
		Help: "Total number of flag evaluations by resolution source",
	}, []string{"source"})
	flagCreateCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flaggate_flag_creates_total",
		Help: "Total number of feature flags created",
	})
	overrideWriteCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flaggate_override_writes_total",
		Help: "Total number of user override upserts",
	})
	overrideDeleteCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flaggate_override_deletes_total",
		Help: "Total number of user override deletions",
	})
)

func NewPrometheusObserver() EvaluationObserver {
	return &prometheusObserver{
		evaluations:     evaluationCounter,
		flagCreates:     flagCreateCounter,
		overrideWrites:  overrideWriteCounter,
		overrideDeletes: overrideDeleteCounter,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (p *prometheusObserver) RecordEvaluation(source string) {
	p.evaluations.WithLabelValues(source).Inc()
}

func (p *prometheusObserver) RecordFlagCreated() {
	p.flagCreates.Inc()
}

func (p *prometheusObserver) RecordOverrideWrite() {
	p.overrideWrites.Inc()
}

func (p *prometheusObserver) RecordOverrideDelete() {
	p.overrideDeletes.Inc()
}
