package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/freeasset/mediacore/engine"
)

// request is the JSON structure sent to mpv's IPC socket.
type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// message is any newline-delimited JSON object mpv writes: a reply or an event.
type message struct {
	Event     string          `json:"event"`
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`

	// event payload fields
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
	Prefix    string `json:"prefix"`
	Level     string `json:"level"`
	Text      string `json:"text"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 3 * time.Second
	maxLineSize  = 1 << 20
)

var requestIDs atomic.Int64

// sendCommand sends a JSON-IPC command over a fresh connection.
// Only connection-level failures are retried; an error reported by mpv is returned as is.
func sendCommand(socketPath string, command []any) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(socketPath, command)
		if err == nil {
			return result, nil
		}

		var code engine.ErrorCode
		if errors.As(err, &code) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// doSendCommand performs a single IPC command attempt.
func doSendCommand(socketPath string, command []any) (json.RawMessage, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	id := requestIDs.Add(1)
	payload, err := json.Marshal(request{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// every client receives broadcast events, so skip lines until our reply shows up
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event != "" || msg.RequestID == nil || *msg.RequestID != id {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, engine.ParseError(msg.Error)
		}
		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("read: connection closed before reply")
}

// decodeValue converts a JSON data field into a typed value.
func decodeValue(raw json.RawMessage, format engine.Format) engine.Value {
	if len(raw) == 0 {
		return engine.Value{}
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return engine.Value{}
	}

	var v engine.Value
	switch d := data.(type) {
	case bool:
		v = engine.Flag(d)
	case float64:
		v = engine.Double(d)
	case string:
		v = engine.String(d)
	case nil:
		return engine.Value{}
	default:
		// nodes are passed through as their JSON text
		v = engine.String(string(raw))
	}

	if format == engine.FormatNone || format == engine.FormatNode {
		return v
	}
	return v.Convert(format)
}

// encodeValue converts a typed value into the JSON type mpv expects for set_property.
func encodeValue(v engine.Value) any {
	switch v.Format {
	case engine.FormatFlag:
		return v.Bool()
	case engine.FormatInt64:
		return v.Int()
	case engine.FormatDouble:
		return v.Float()
	default:
		return v.String()
	}
}
