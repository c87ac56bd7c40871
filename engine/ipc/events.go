package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/log"
)

// listener keeps a persistent connection open for events and property observations.
// mpv scopes observe_property to the connection it was sent on, so observations go through here too.
type listener struct {
	conn   net.Conn
	events chan<- engine.Event

	mu       sync.Mutex
	formats  map[string]engine.Format
	idle     bool
	paused   bool
	stopped  bool
	stopOnce sync.Once
	done     chan struct{}
}

func newListener(socketPath string, events chan<- engine.Event) (*listener, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	l := &listener{
		conn:    conn,
		events:  events,
		formats: make(map[string]engine.Format),
		done:    make(chan struct{}),
	}

	// raw idle/pause events are synthesized from properties instead
	for _, name := range []string{"idle", "pause", "unpause", "tick"} {
		_ = l.send([]any{"disable_event", name})
	}

	go l.readLoop()
	return l, nil
}

func (l *listener) observe(id uint64, name string, format engine.Format) error {
	l.mu.Lock()
	l.formats[name] = format
	l.mu.Unlock()

	return l.send([]any{"observe_property", id, name})
}

func (l *listener) send(command []any) error {
	payload, err := json.Marshal(request{Command: command, RequestID: requestIDs.Add(1)})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return engine.ErrUninitialized
	}
	if _, err := l.conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (l *listener) stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()

		_ = l.conn.Close()
		<-l.done
	})
}

// readLoop decodes newline-delimited JSON until the connection closes.
func (l *listener) readLoop() {
	defer close(l.done)

	scanner := bufio.NewScanner(l.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		if msg.Event == "" {
			if msg.Error != "" && msg.Error != "success" {
				log.Warnf("ipc: request on event connection failed: %s", msg.Error)
			}
			continue
		}

		for _, ev := range l.decode(msg) {
			l.push(ev)
		}
	}

	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()

	if !stopped {
		if err := scanner.Err(); err != nil {
			log.Warnf("ipc: event connection lost: %v", err)
		}
		l.push(engine.NewEvent(engine.EventShutdown))
	}
}

func (l *listener) push(ev engine.Event) {
	select {
	case l.events <- ev:
	default:
		log.Warnf("ipc: event queue full, dropping %s", ev)
	}
}

// decode turns one mpv event object into engine events, synthesizing idle and pause transitions.
func (l *listener) decode(msg message) []engine.Event {
	id, ok := engine.ParseEventID(msg.Event)
	if !ok {
		return nil
	}

	ev := engine.Event{ID: id, ReplyUserdata: msg.ID}
	switch id {
	case engine.EventEndFile:
		ev.EndFile = engine.EndFile{Reason: engine.ParseEndReason(msg.Reason)}
		if msg.FileError != "" {
			ev.EndFile.Error = engine.ParseError(msg.FileError)
		}
		return []engine.Event{ev}
	case engine.EventLogMessage:
		ev.Log = engine.LogMessage{Prefix: msg.Prefix, Level: msg.Level, Text: msg.Text}
		return []engine.Event{ev}
	case engine.EventPropertyChange:
		l.mu.Lock()
		format := l.formats[msg.Name]
		l.mu.Unlock()

		ev.Property = engine.Property{Name: msg.Name, Value: decodeValue(msg.Data, format)}
		return append([]engine.Event{ev}, l.synthesize(ev.Property)...)
	default:
		return []engine.Event{ev}
	}
}

func (l *listener) synthesize(p engine.Property) []engine.Event {
	if p.Value.IsEmpty() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch p.Name {
	case "idle-active":
		idle := p.Value.Bool()
		was := l.idle
		l.idle = idle
		if idle && !was {
			return []engine.Event{engine.NewEvent(engine.EventIdle)}
		}
	case "pause":
		paused := p.Value.Bool()
		was := l.paused
		l.paused = paused
		if paused != was {
			if paused {
				return []engine.Event{engine.NewEvent(engine.EventPause)}
			}
			return []engine.Event{engine.NewEvent(engine.EventUnpause)}
		}
	}
	return nil
}
