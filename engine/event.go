package engine

import "fmt"

// EventID is an mpv_event_id.
type EventID int

const (
	EventNone             EventID = 0
	EventShutdown         EventID = 1
	EventLogMessage       EventID = 2
	EventGetPropertyReply EventID = 3
	EventSetPropertyReply EventID = 4
	EventCommandReply     EventID = 5
	EventStartFile        EventID = 6
	EventEndFile          EventID = 7
	EventFileLoaded       EventID = 8
	EventTracksChanged    EventID = 9
	EventTrackSwitched    EventID = 10
	EventIdle             EventID = 11
	EventPause            EventID = 12
	EventUnpause          EventID = 13
	EventTick             EventID = 14
	EventClientMessage    EventID = 16
	EventVideoReconfig    EventID = 17
	EventAudioReconfig    EventID = 18
	EventMetadataUpdate   EventID = 19
	EventSeek             EventID = 20
	EventPlaybackRestart  EventID = 21
	EventPropertyChange   EventID = 22
	EventChapterChange    EventID = 23
	EventQueueOverflow    EventID = 24
	EventHook             EventID = 25
)

var eventNames = map[EventID]string{
	EventNone:             "none",
	EventShutdown:         "shutdown",
	EventLogMessage:       "log-message",
	EventGetPropertyReply: "get-property-reply",
	EventSetPropertyReply: "set-property-reply",
	EventCommandReply:     "command-reply",
	EventStartFile:        "start-file",
	EventEndFile:          "end-file",
	EventFileLoaded:       "file-loaded",
	EventTracksChanged:    "tracks-changed",
	EventTrackSwitched:    "track-switched",
	EventIdle:             "idle",
	EventPause:            "pause",
	EventUnpause:          "unpause",
	EventTick:             "tick",
	EventClientMessage:    "client-message",
	EventVideoReconfig:    "video-reconfig",
	EventAudioReconfig:    "audio-reconfig",
	EventMetadataUpdate:   "metadata-update",
	EventSeek:             "seek",
	EventPlaybackRestart:  "playback-restart",
	EventPropertyChange:   "property-change",
	EventChapterChange:    "chapter-change",
	EventQueueOverflow:    "queue-overflow",
	EventHook:             "hook",
}

var eventsByName = func() map[string]EventID {
	m := make(map[string]EventID, len(eventNames))
	for id, name := range eventNames {
		m[name] = id
	}
	return m
}()

// String returns the same name as mpv_event_name.
func (id EventID) String() string {
	if name, ok := eventNames[id]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(id))
}

// ParseEventID maps an mpv event name to its id.
func ParseEventID(name string) (EventID, bool) {
	id, ok := eventsByName[name]
	return id, ok
}

// Critical reports whether the event must be handled even while a media switch is in progress.
func (id EventID) Critical() bool {
	switch id {
	case EventShutdown, EventStartFile, EventEndFile, EventFileLoaded:
		return true
	default:
		return false
	}
}

// EndReason is mpv_end_file_reason.
type EndReason int

const (
	EndEOF      EndReason = 0
	EndStop     EndReason = 2
	EndQuit     EndReason = 3
	EndError    EndReason = 4
	EndRedirect EndReason = 5
)

var endReasonNames = map[EndReason]string{
	EndEOF:      "eof",
	EndStop:     "stop",
	EndQuit:     "quit",
	EndError:    "error",
	EndRedirect: "redirect",
}

func (r EndReason) String() string {
	if name, ok := endReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// ParseEndReason maps the reason name used by the JSON protocol.
func ParseEndReason(name string) EndReason {
	for r, n := range endReasonNames {
		if n == name {
			return r
		}
	}
	return EndError
}

// EndFile is the payload of EventEndFile.
type EndFile struct {
	Reason EndReason
	Error  ErrorCode
}

// Property is the payload of EventPropertyChange and the property reply events.
type Property struct {
	Name  string
	Value Value
}

// LogMessage is the payload of EventLogMessage.
type LogMessage struct {
	Prefix string
	Level  string
	Text   string
}

// Event is a decoded engine event. At most one payload field is meaningful, selected by ID.
type Event struct {
	ID            EventID
	Error         ErrorCode
	ReplyUserdata uint64

	EndFile  EndFile
	Property Property
	Log      LogMessage
}

func (e Event) String() string {
	switch e.ID {
	case EventEndFile:
		return fmt.Sprintf("%s(%s)", e.ID, e.EndFile.Reason)
	case EventPropertyChange:
		return fmt.Sprintf("%s(%s=%s)", e.ID, e.Property.Name, e.Property.Value)
	default:
		return e.ID.String()
	}
}

// NewEvent returns a payload-less event.
func NewEvent(id EventID) Event {
	return Event{ID: id}
}

// NewEndFile returns an end-file event.
func NewEndFile(reason EndReason, code ErrorCode) Event {
	return Event{ID: EventEndFile, EndFile: EndFile{Reason: reason, Error: code}}
}

// NewPropertyChange returns a property-change event.
func NewPropertyChange(name string, value Value) Event {
	return Event{ID: EventPropertyChange, Property: Property{Name: name, Value: value}}
}
