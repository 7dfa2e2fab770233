package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "daily_report"

// Recorder は業務上の結果を Prometheus のカウンタとして記録します。
type Recorder struct {
	validationFailures *prometheus.CounterVec
	likeConflicts      prometheus.Counter
}

// NewRecorder は Recorder を生成し、指定された Registerer に登録します。
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Number of create/update operations rejected by validation.",
		}, []string{"operation"}),
		likeConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_conflicts_total",
			Help:      "Number of duplicate like inserts absorbed by the unique constraint.",
		}),
	}

	for _, c := range []prometheus.Collector{r.validationFailures, r.likeConflicts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ValidationFailed はバリデーションエラーで中断した操作を記録します。
func (r *Recorder) ValidationFailed(operation string) {
	r.validationFailures.WithLabelValues(operation).Inc()
}

// LikeConflict は一意制約違反として吸収したいいね登録を記録します。
func (r *Recorder) LikeConflict() {
	r.likeConflicts.Inc()
}
