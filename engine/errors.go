package engine

import "fmt"

// ErrorCode is an mpv client API error code. Zero is success, failures are negative.
type ErrorCode int

const (
	Success             ErrorCode = 0
	ErrEventQueueFull   ErrorCode = -1
	ErrNoMem            ErrorCode = -2
	ErrUninitialized    ErrorCode = -3
	ErrInvalidParameter ErrorCode = -4
	ErrOptionNotFound   ErrorCode = -5
	ErrOptionFormat     ErrorCode = -6
	ErrOptionError      ErrorCode = -7
	ErrPropertyNotFound ErrorCode = -8
	ErrPropertyFormat   ErrorCode = -9
	ErrPropertyUnavail  ErrorCode = -10
	ErrPropertyError    ErrorCode = -11
	ErrCommand          ErrorCode = -12
	ErrLoadingFailed    ErrorCode = -13
	ErrAOInitFailed     ErrorCode = -14
	ErrVOInitFailed     ErrorCode = -15
	ErrNothingToPlay    ErrorCode = -16
	ErrUnknownFormat    ErrorCode = -17
	ErrUnsupported      ErrorCode = -18
	ErrNotImplemented   ErrorCode = -19
	ErrGeneric          ErrorCode = -20
)

var errorStrings = map[ErrorCode]string{
	Success:             "success",
	ErrEventQueueFull:   "event queue full",
	ErrNoMem:            "memory allocation failed",
	ErrUninitialized:    "core not uninitialized",
	ErrInvalidParameter: "invalid parameter",
	ErrOptionNotFound:   "option not found",
	ErrOptionFormat:     "unsupported format for accessing option",
	ErrOptionError:      "error setting option",
	ErrPropertyNotFound: "property not found",
	ErrPropertyFormat:   "unsupported format for accessing property",
	ErrPropertyUnavail:  "property unavailable",
	ErrPropertyError:    "error accessing property",
	ErrCommand:          "error running command",
	ErrLoadingFailed:    "loading failed",
	ErrAOInitFailed:     "audio output initialization failed",
	ErrVOInitFailed:     "video output initialization failed",
	ErrNothingToPlay:    "no audio or video data played",
	ErrUnknownFormat:    "unrecognized file format",
	ErrUnsupported:      "not supported",
	ErrNotImplemented:   "operation not implemented",
	ErrGeneric:          "something happened",
}

// Error returns the same text as mpv_error_string.
func (e ErrorCode) Error() string {
	if s, ok := errorStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown error %d", int(e))
}

// Err converts a raw return code into an error, nil on success.
func (e ErrorCode) Err() error {
	if e >= 0 {
		return nil
	}
	return e
}

// ParseError maps an mpv error string back to its code.
// Unrecognized text maps to ErrGeneric so callers always get a code.
func ParseError(text string) ErrorCode {
	for code, s := range errorStrings {
		if s == text {
			return code
		}
	}
	return ErrGeneric
}
