package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by every counter.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	storeOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidclock",
		Subsystem: "persist",
		Name:      "store_operations_total",
		Help:      "Reads and writes against the local and remote stores.",
	}, []string{"store", "op", "result"})
	calendarImports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidclock",
		Subsystem: "calendar",
		Name:      "imports_total",
		Help:      "Calendar import attempts by outcome (imported, empty, error).",
	}, []string{"result"})
	relayFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kidclock",
		Subsystem: "calendar",
		Name:      "relay_fallbacks_total",
		Help:      "Calendar fetches retried through the relay.",
	})
	serverRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidclock",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Key/value server requests by namespace, method and status code.",
	}, []string{"namespace", "method", "code"})
)

func init() {
	prometheus.MustRegister(storeOps, calendarImports, relayFallbacks, serverRequests)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// RecordStoreOp counts one store operation. store is "local" or "remote",
// op is "get" or "put".
func RecordStoreOp(store, op string, err error) {
	storeOps.WithLabelValues(store, op, result(err)).Inc()
}

// RecordImport counts a calendar import outcome.
func RecordImport(outcome string) {
	calendarImports.WithLabelValues(outcome).Inc()
}

func RecordRelayFallback() {
	relayFallbacks.Inc()
}

// RecordRequest counts a request served by the key/value server.
func RecordRequest(namespace, method string, code int) {
	serverRequests.WithLabelValues(namespace, method, statusText(code)).Inc()
}

func statusText(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	}
	return "2xx"
}
