// Package metrics exports the lifecycle tracker's state as Prometheus metrics.
//
// Values are read at scrape time through GaugeFunc and CounterFunc collectors,
// so nothing has to be pushed from the notification path.
package metrics
