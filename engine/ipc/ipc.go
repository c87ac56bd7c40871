// Package ipc drives an mpv process through its JSON-IPC socket.
//
// Commands travel over short-lived connections and events over one persistent connection.
// The process is started in idle mode at Initialize, with every option set beforehand
// passed as a command-line flag.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/version"
	"github.com/freeasset/mediacore/where"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Backend is the registry name of this engine.
const Backend = "ipc"

// protocolAPIVersion is reported until the running process answers get_version.
const protocolAPIVersion = "2.0.0"

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitGrace         = 3 * time.Second
	eventQueueSize    = 1024
)

func init() {
	engine.Register(Backend, func() (engine.Engine, error) {
		return New(viper.GetString(key.PlayerMpvPath))
	})
}

// Engine implements engine.Engine on top of an mpv child process.
type Engine struct {
	binary     string
	socketPath string

	mu          sync.Mutex
	options     map[string]string
	cmd         *exec.Cmd
	exited      chan struct{}
	listener    *listener
	apiVersion  string
	initialized bool
	destroyed   bool

	events chan engine.Event
	wake   chan struct{}
}

// New resolves the mpv binary and prepares a socket path. No process is started yet.
func New(binary string) (*Engine, error) {
	if binary == "" {
		binary = "mpv"
	}

	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("mpv executable %q: %w", binary, err)
	}

	return &Engine{
		binary:     resolved,
		socketPath: filepath.Join(where.Sockets(), fmt.Sprintf("mediacore-%s.sock", uuid.NewString()[:8])),
		options:    make(map[string]string),
		exited:     make(chan struct{}),
		apiVersion: protocolAPIVersion,
		events:     make(chan engine.Event, eventQueueSize),
		wake:       make(chan struct{}, 1),
	}, nil
}

// Socket returns the IPC socket path.
func (e *Engine) Socket() string {
	return e.socketPath
}

func (e *Engine) SetOptionString(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		// options after start go through the property interface
		_, err := sendCommand(e.socketPath, []any{"set_property_string", name, value})
		return err
	}
	if name == "" || strings.ContainsAny(name, " =\x00") {
		return engine.ErrOptionNotFound
	}
	if strings.ContainsAny(value, "\x00\n\r") {
		return engine.ErrOptionFormat
	}
	e.options[name] = value
	return nil
}

func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return engine.ErrUninitialized
	}
	if e.initialized {
		return nil
	}

	e.cmd = exec.Command(e.binary, e.args()...)

	// Detach from the parent process group so a terminal signal does not cascade.
	e.cmd.SysProcAttr = sysProcAttr()
	e.cmd.Stdout = nil
	e.cmd.Stderr = nil
	e.cmd.Stdin = nil

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// reap the process to prevent zombies
	exited := e.exited
	go func() {
		_ = e.cmd.Wait()
		close(exited)
	}()

	if err := e.waitForSocket(); err != nil {
		select {
		case <-e.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(e.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	l, err := newListener(e.socketPath, e.events)
	if err != nil {
		_ = killProcess(e.cmd)
		return err
	}
	e.listener = l
	e.initialized = true

	if data, err := sendCommand(e.socketPath, []any{"get_version"}); err == nil {
		var raw uint64
		if json.Unmarshal(data, &raw) == nil && raw > 0 {
			e.apiVersion = version.FromPacked(raw).String()
		}
	}

	go e.watchExit(exited)

	log.Infof("mpv started (pid %d) on %s", e.cmd.Process.Pid, e.socketPath)
	return nil
}

// args builds the command line, options sorted for a stable order.
func (e *Engine) args() []string {
	names := make([]string, 0, len(e.options))
	for name := range e.options {
		if name == "idle" || name == "input-ipc-server" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	args := []string{
		"--idle=yes",
		"--no-terminal",
		fmt.Sprintf("--input-ipc-server=%s", e.socketPath),
	}
	for _, name := range names {
		args = append(args, fmt.Sprintf("--%s=%s", name, e.options[name]))
	}
	return args
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (e *Engine) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-e.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", e.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", e.socketPath, socketWaitRetries)
}

// watchExit reports an unexpected process exit as a shutdown event.
func (e *Engine) watchExit(exited <-chan struct{}) {
	<-exited

	e.mu.Lock()
	destroyed := e.destroyed
	e.mu.Unlock()

	if !destroyed {
		log.Warn("mpv exited unexpectedly")
		select {
		case e.events <- engine.NewEvent(engine.EventShutdown):
		default:
		}
	}
}

func (e *Engine) ready() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized || e.destroyed {
		return engine.ErrUninitialized
	}
	return nil
}

func (e *Engine) Command(args ...string) error {
	if len(args) == 0 {
		return engine.ErrInvalidParameter
	}
	if err := e.ready(); err != nil {
		return err
	}

	command := make([]any, len(args))
	for i, a := range args {
		command[i] = a
	}
	_, err := sendCommand(e.socketPath, command)
	return err
}

func (e *Engine) SetProperty(name string, value engine.Value) error {
	if err := e.ready(); err != nil {
		return err
	}
	_, err := sendCommand(e.socketPath, []any{"set_property", name, encodeValue(value)})
	return err
}

func (e *Engine) GetProperty(name string, format engine.Format) (engine.Value, error) {
	if err := e.ready(); err != nil {
		return engine.Value{}, err
	}

	data, err := sendCommand(e.socketPath, []any{"get_property", name})
	if err != nil {
		return engine.Value{}, err
	}
	v := decodeValue(data, format)
	if v.IsEmpty() {
		return v, engine.ErrPropertyUnavail
	}
	return v, nil
}

// RequestLogMessages subscribes the event connection, since mpv delivers log messages per client.
func (e *Engine) RequestLogMessages(minLevel string) error {
	e.mu.Lock()
	l := e.listener
	e.mu.Unlock()

	if l == nil {
		return engine.ErrUninitialized
	}
	return l.send([]any{"request_log_messages", minLevel})
}

func (e *Engine) ObserveProperty(id uint64, name string, format engine.Format) error {
	e.mu.Lock()
	l := e.listener
	e.mu.Unlock()

	if l == nil {
		return engine.ErrUninitialized
	}
	return l.observe(id, name, format)
}

func (e *Engine) WaitEvent(timeout time.Duration) engine.Event {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-e.events:
		return ev
	case <-e.wake:
		return engine.NewEvent(engine.EventNone)
	case <-timer.C:
		return engine.NewEvent(engine.EventNone)
	}
}

func (e *Engine) Wakeup() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) ClientAPIVersion() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apiVersion
}

// TerminateDestroy asks mpv to quit, kills it after a grace period and removes the socket.
func (e *Engine) TerminateDestroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	started := e.cmd != nil
	l := e.listener
	e.mu.Unlock()

	if l != nil {
		l.stop()
	}

	if started {
		_, _ = sendCommand(e.socketPath, []any{"quit"})

		select {
		case <-e.exited:
		case <-time.After(quitGrace):
			_ = killProcess(e.cmd)
		}
	}

	_ = os.Remove(e.socketPath)
}
