// Package dispatch runs engine commands on bounded workers with a timeout.
//
// A worker is never cancelled: when the caller stops waiting, the native call keeps
// running and its result is dropped into a buffered channel nobody reads.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/metrics"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrTimeout means the caller stopped waiting. The command may still complete later.
	ErrTimeout = errors.New("engine command timed out")
	// ErrRejected means the command was not run because a media switch is in progress.
	ErrRejected = errors.New("engine command rejected")
	// ErrBusy means every worker slot is taken by running or abandoned commands.
	ErrBusy = fmt.Errorf("%w: too many commands in flight", ErrRejected)
	// ErrPanicked wraps a panic raised inside the engine call.
	ErrPanicked = errors.New("engine command panicked")
)

// DefaultTimeout applies when a non-positive timeout is given.
const DefaultTimeout = 5 * time.Second

// Outcome is the result of one dispatched command.
type Outcome struct {
	Success  bool
	TimedOut bool
	Elapsed  time.Duration
	Err      error
}

// Dispatcher executes commands against one engine.
type Dispatcher struct {
	engine    engine.Engine
	lock      *Mutex
	pool      *semaphore.Weighted
	queries   singleflight.Group
	switching atomic.Bool
}

// New returns a dispatcher whose workers share lock with the rest of the core.
func New(e engine.Engine, lock *Mutex, maxInflight int64) *Dispatcher {
	if maxInflight <= 0 {
		maxInflight = 16
	}
	return &Dispatcher{
		engine: e,
		lock:   lock,
		pool:   semaphore.NewWeighted(maxInflight),
	}
}

// SetSwitching opens or closes the switch gate. While closed only critical and transport commands run.
func (d *Dispatcher) SetSwitching(switching bool) {
	d.switching.Store(switching)
}

// Switching reports the gate state.
func (d *Dispatcher) Switching() bool {
	return d.switching.Load()
}

// Execute runs cmd and waits at most timeout for it.
func (d *Dispatcher) Execute(cmd Command, timeout time.Duration) Outcome {
	outcome, _ := d.dispatch(cmd, timeout, func(e engine.Engine) (engine.Value, error) {
		return engine.Value{}, e.Command(cmd.Vector()...)
	})
	return outcome
}

// Query reads a property under the same policy and timeout rules as commands.
// Concurrent reads of the same property share one native call and its outcome.
func (d *Dispatcher) Query(name string, format engine.Format, timeout time.Duration) (engine.Value, Outcome) {
	cmd := Command{Name: Query, Args: []string{name}}
	key := fmt.Sprintf("%s/%d", name, format)

	shared, _, _ := d.queries.Do(key, func() (any, error) {
		outcome, v := d.dispatch(cmd, timeout, func(e engine.Engine) (engine.Value, error) {
			return e.GetProperty(name, format)
		})
		return queryResult{value: v, outcome: outcome}, nil
	})
	r := shared.(queryResult)
	return r.value, r.outcome
}

type queryResult struct {
	value   engine.Value
	outcome Outcome
}

type result struct {
	value engine.Value
	err   error
}

func (d *Dispatcher) dispatch(cmd Command, timeout time.Duration, call func(engine.Engine) (engine.Value, error)) (Outcome, engine.Value) {
	start := time.Now()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if d.switching.Load() && !Classify(cmd).AllowedWhileSwitching() {
		log.Warnf("dispatch: rejected %q during media switch", cmd)
		metrics.RecordCommand(cmd.Name, metrics.ResultRejected, time.Since(start))
		return Outcome{Elapsed: time.Since(start), Err: ErrRejected}, engine.Value{}
	}

	if !d.pool.TryAcquire(1) {
		log.Warnf("dispatch: no worker for %q", cmd)
		metrics.RecordCommand(cmd.Name, metrics.ResultBusy, time.Since(start))
		return Outcome{Elapsed: time.Since(start), Err: ErrBusy}, engine.Value{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// buffered so an abandoned worker never blocks on send
	done := make(chan result, 1)
	metrics.WorkerStarted()
	go func() {
		defer metrics.WorkerDone()
		defer d.pool.Release(1)
		done <- d.run(ctx, cmd, call)
	}()

	select {
	case r := <-done:
		elapsed := time.Since(start)
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				log.Warnf("dispatch: %q timed out waiting for the engine lock after %s", cmd, elapsed)
				metrics.RecordCommand(cmd.Name, metrics.ResultTimeout, elapsed)
				return Outcome{TimedOut: true, Elapsed: elapsed, Err: ErrTimeout}, engine.Value{}
			}
			log.Debugf("dispatch: %q failed: %v", cmd, r.err)
			metrics.RecordCommand(cmd.Name, metrics.ResultFailed, elapsed)
			return Outcome{Elapsed: elapsed, Err: r.err}, engine.Value{}
		}
		metrics.RecordCommand(cmd.Name, metrics.ResultOK, elapsed)
		return Outcome{Success: true, Elapsed: elapsed}, r.value
	case <-ctx.Done():
		elapsed := time.Since(start)
		log.Warnf("dispatch: abandoned %q after %s", cmd, elapsed)
		metrics.RecordCommand(cmd.Name, metrics.ResultTimeout, elapsed)
		return Outcome{TimedOut: true, Elapsed: elapsed, Err: ErrTimeout}, engine.Value{}
	}
}

// run executes on the worker goroutine. The engine lock is held for the native call only.
func (d *Dispatcher) run(ctx context.Context, cmd Command, call func(engine.Engine) (engine.Value, error)) (r result) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("dispatch: %q panicked: %v", cmd, p)
			r = result{err: fmt.Errorf("%w: %v", ErrPanicked, p)}
		}
	}()

	if err := d.lock.Lock(ctx); err != nil {
		return result{err: err}
	}
	defer d.lock.Unlock()

	v, err := call(d.engine)
	return result{value: v, err: err}
}
