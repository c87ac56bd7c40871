// Package metrics exposes Prometheus instrumentation for the playback core.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/freeasset/mediacore/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of this process. It is separate from the default registry so tests can inspect it.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Command results.
const (
	ResultOK       = "ok"
	ResultFailed   = "failed"
	ResultTimeout  = "timeout"
	ResultRejected = "rejected"
	ResultBusy     = "busy"
)

var (
	commandsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mediacore_engine_commands_total",
		Help: "Engine commands dispatched by command name and result",
	}, []string{"command", "result"}) // result=ok|failed|timeout|rejected|busy

	commandDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediacore_engine_command_duration_seconds",
		Help:    "Time callers waited for engine commands",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"command"})

	commandsInflight = factory.NewGauge(prometheus.GaugeOpts{
		Name: "mediacore_engine_commands_inflight",
		Help: "Dispatcher workers currently running, abandoned ones included",
	})

	eventsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mediacore_engine_events_total",
		Help: "Engine events consumed by the event loop",
	}, []string{"event", "handled"}) // handled=true|false

	idleDecisions = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mediacore_idle_decisions_total",
		Help: "Idle events by debouncer decision",
	}, []string{"decision"})

	loopReloads = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mediacore_loop_reloads_total",
		Help: "Loop-driven reloads of the current media by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordCommand counts one dispatched command.
func RecordCommand(command, result string, elapsed time.Duration) {
	commandsTotal.WithLabelValues(command, result).Inc()
	commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// WorkerStarted and WorkerDone track dispatcher workers.
func WorkerStarted() { commandsInflight.Inc() }
func WorkerDone()    { commandsInflight.Dec() }

// RecordEvent counts one event pulled from the engine.
func RecordEvent(event string, handled bool) {
	h := "false"
	if handled {
		h = "true"
	}
	eventsTotal.WithLabelValues(event, h).Inc()
}

// RecordIdleDecision counts one debouncer decision.
func RecordIdleDecision(decision string) {
	idleDecisions.WithLabelValues(decision).Inc()
}

// RecordLoopReload counts one loop reload attempt.
func RecordLoopReload(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	loopReloads.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
