// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/icon"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string

	// Choices, when set, is the closed list of accepted string values.
	Choices []string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// FieldInfo is the JSON form of a Field, carrying both the current and the default value.
type FieldInfo struct {
	Key         string   `json:"key"`
	Value       any      `json:"value"`
	Default     any      `json:"default"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Choices     []string `json:"choices,omitempty"`
}

func (f *Field) Info() FieldInfo {
	return FieldInfo{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
		Choices:     f.Choices,
	}
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Info())
}

// TypeName returns the string representation of the field's underlying value type.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Parse converts raw CLI input into a value of the field's type.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no value given for %s", f.Key)
	}

	switch f.Value.(type) {
	case string:
		if len(f.Choices) > 0 && !lo.Contains(f.Choices, raw[0]) {
			return nil, fmt.Errorf("invalid value %q for %s, expected one of: %s", raw[0], f.Key, strings.Join(f.Choices, ", "))
		}
		return raw[0], nil
	case int:
		parsed, err := strconv.ParseInt(raw[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", raw[0])
		}
		return int(parsed), nil
	case bool:
		parsed, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", raw[0])
		}
		return parsed, nil
	case time.Duration:
		parsed, err := time.ParseDuration(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %s", raw[0])
		}
		return parsed, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported type for %s", f.Key)
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string, choices ...string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		if s, ok := v.(string); ok && len(choices) > 0 && !lo.Contains(choices, s) {
			panic("Default outside of choices: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc, Choices: choices}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	logLevels := []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}

	register(key.PlayerBackend, "ipc", "Playback engine backend.\nlibmpv requires a build with -tags libmpv", "ipc", "libmpv")
	register(key.PlayerMpvPath, "mpv", "Path to the mpv executable used by the ipc backend")
	register(key.PlayerOptions, []string{}, "Extra engine options in key=value form.\nApplied after the built-in defaults")
	register(key.PlayerCommandTimeout, 5*time.Second, "Upper bound for a single engine command before it is abandoned")
	register(key.PlayerLoadTimeout, 30*time.Second, "Upper bound for a loadfile command")
	register(key.PlayerPollInterval, 100*time.Millisecond, "How long the event loop blocks waiting for an engine event")
	register(key.PlayerMaxInflight, 16, "Maximum number of engine commands running at once, abandoned ones included")
	register(key.PlayerPlayRetries, 2, "Seek-to-start attempts made by play at end of media before a full reload")
	register(key.PlayerLoop, false, "Replay the current media when it ends")
	register(key.PlayerVolume, 100, "Initial volume (0-100)")
	register(key.IdleWindow, 5*time.Second, "Sliding window used to count idle events")
	register(key.IdleThreshold, 5, "Idle events tolerated inside the window before suppression starts")
	register(key.IdleSuppress, 3*time.Second, "How long idle events are dropped once a storm is detected")
	register(key.IdleMinInterval, 500*time.Millisecond, "Minimum spacing between two processed idle events")
	register(key.IconsVariant, "plain", "Icons variant.\nnerd requires a nerd font", icon.Variants()...)
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Log level, from less to most verbose", logLevels...)
	register(key.LogsJson, false, "Use json format for logs")
	register(key.LogsEngineLevel, "warn", "Lowest engine log level forwarded into the log", "no", "fatal", "error", "warn", "info", "v", "debug", "trace")
	register(key.MetricsListen, "", "Address for the Prometheus metrics listener, e.g. 127.0.0.1:9464.\nEmpty disables it")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"join":     strings.Join,
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}{{ if .Choices }}
{{ blue "Choices:" }} {{ join .Choices ", " }}{{ end }}`))
