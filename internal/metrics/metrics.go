package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics counts gateway traffic. It implements ports.TelemetryPort.
type AppMetrics struct {
	TransportFailures *prometheus.CounterVec // labels: path
	CommandResends    prometheus.Counter
	ProgressPolls     prometheus.Counter
	StatusReads       *prometheus.CounterVec // labels: result
}

func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TransportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartlinc_transport_failures_total",
			Help: "Gateway exchanges that failed at the transport level.",
		}, []string{"path"}),
		CommandResends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartlinc_command_resends_total",
			Help: "Commands sent again after a NAK in the communication buffer.",
		}),
		ProgressPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartlinc_progress_polls_total",
			Help: "Re-reads of the gateway status page while waiting for progress.",
		}),
		StatusReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartlinc_status_reads_total",
			Help: "Status read cycles by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.TransportFailures, m.CommandResends, m.ProgressPolls, m.StatusReads)
	return m
}

// TransportFailed labels by path, with command paths folded into one label
// to keep the cardinality fixed.
func (m *AppMetrics) TransportFailed(path string) {
	m.TransportFailures.WithLabelValues(pathLabel(path)).Inc()
}

func (m *AppMetrics) CommandResent() {
	m.CommandResends.Inc()
}

func (m *AppMetrics) ProgressPolled() {
	m.ProgressPolls.Inc()
}

func (m *AppMetrics) StatusRead(result string) {
	m.StatusReads.WithLabelValues(result).Inc()
}

func pathLabel(path string) string {
	switch path {
	case "/buffstatus.xml", "/status.xml":
		return path
	}
	return "command"
}
