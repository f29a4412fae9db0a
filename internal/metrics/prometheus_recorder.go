package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg                *prom.Registry
	operations         *prom.CounterVec
	operationDuration  *prom.HistogramVec
	conversionDuration *prom.HistogramVec
	writeBacks         prom.Counter
}

// NewPrometheusRecorder constructs and registers the metrics on reg, or on a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		operations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "easyblogger",
			Name:      "operations_total",
			Help:      "Post operations by command and result",
		}, []string{"command", "result"}),
		operationDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "easyblogger",
			Name:      "operation_duration_seconds",
			Help:      "Duration of post operations including conversion and remote calls",
			Buckets:   prom.DefBuckets,
		}, []string{"command"}),
		conversionDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "easyblogger",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of markup to HTML conversion",
			Buckets:   prom.DefBuckets,
		}, []string{"format"}),
		writeBacks: prom.NewCounter(prom.CounterOpts{
			Namespace: "easyblogger",
			Name:      "write_backs_total",
			Help:      "Content files rewritten with an assigned post id",
		}),
	}
	reg.MustRegister(pr.operations, pr.operationDuration, pr.conversionDuration, pr.writeBacks)
	return pr
}

func (p *PrometheusRecorder) IncOperation(command string, result ResultLabel) {
	if p == nil {
		return
	}
	p.operations.WithLabelValues(command, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveOperationDuration(command string, d time.Duration) {
	if p == nil {
		return
	}
	p.operationDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveConversion(format string, d time.Duration) {
	if p == nil {
		return
	}
	p.conversionDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncWriteBack() {
	if p == nil {
		return
	}
	p.writeBacks.Inc()
}

// WriteTextfile writes the current metric values to path in the text
// exposition format read by the node exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
