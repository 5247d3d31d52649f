// Package metrics defines the Prometheus collectors of the service and the Fiber
// glue to record HTTP requests and expose /metrics.
package metrics
