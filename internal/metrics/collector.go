package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/appstate/pkg/state"
	"github.com/bft-labs/appstate/pkg/tracker"
)

// Namespace prefixes every exported metric.
const Namespace = "appstate"

// Source is what the collectors read at scrape time.
// *tracker.Tracker satisfies it.
type Source interface {
	CurrentState() state.Record
	Stats() tracker.Stats
}

// NewRegistry returns a registry with the lifecycle collectors for src
// registered. withRuntime adds the Go and process collectors.
func NewRegistry(src Source, withRuntime bool) *prom.Registry {
	reg := prom.NewRegistry()
	reg.MustRegister(Collectors(src)...)
	if withRuntime {
		reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	}
	return reg
}

// Collectors returns the lifecycle collectors for src.
func Collectors(src Source) []prom.Collector {
	gauge := func(name, help string, f func(state.Record) float64) prom.Collector {
		return prom.NewGaugeFunc(prom.GaugeOpts{Namespace: Namespace, Name: name, Help: help}, func() float64 {
			return f(src.CurrentState())
		})
	}
	counter := func(name, help string, f func(tracker.Stats) uint64) prom.Collector {
		return prom.NewCounterFunc(prom.CounterOpts{Namespace: Namespace, Name: name, Help: help}, func() float64 {
			return float64(f(src.Stats()))
		})
	}

	return []prom.Collector{
		gauge("active_duration_since_launch_seconds", "Active time accumulated in this launch",
			func(r state.Record) float64 { return r.ActiveDurationSinceLaunch.Seconds() }),
		gauge("background_duration_since_launch_seconds", "Background time accumulated in this launch",
			func(r state.Record) float64 { return r.BackgroundDurationSinceLaunch.Seconds() }),
		gauge("sessions_since_launch", "Sessions started in this launch",
			func(r state.Record) float64 { return float64(r.SessionsSinceLaunch) }),
		gauge("active_duration_since_last_crash_seconds", "Active time accumulated since the last crash",
			func(r state.Record) float64 { return r.ActiveDurationSinceLastCrash.Seconds() }),
		gauge("background_duration_since_last_crash_seconds", "Background time accumulated since the last crash",
			func(r state.Record) float64 { return r.BackgroundDurationSinceLastCrash.Seconds() }),
		gauge("launches_since_last_crash", "Launches since the last crash",
			func(r state.Record) float64 { return float64(r.LaunchesSinceLastCrash) }),
		gauge("sessions_since_last_crash", "Sessions since the last crash",
			func(r state.Record) float64 { return float64(r.SessionsSinceLastCrash) }),
		gauge("crashed_last_launch", "1 if the previous launch crashed",
			func(r state.Record) float64 { return boolFloat(r.CrashedLastLaunch) }),
		gauge("application_active", "1 if the application is active",
			func(r state.Record) float64 { return boolFloat(r.ApplicationIsActive) }),
		gauge("application_in_foreground", "1 if the application is in the foreground",
			func(r state.Record) float64 { return boolFloat(r.ApplicationIsInForeground) }),
		counter("persist_failures_total", "State writes that failed",
			func(s tracker.Stats) uint64 { return s.PersistFailures }),
		counter("crash_write_failures_total", "Crash path writes that failed",
			func(s tracker.Stats) uint64 { return s.CrashWriteFailures }),
	}
}

// HTTPHandler serves the metrics in reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
