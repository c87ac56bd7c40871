package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/icon"
	"github.com/freeasset/mediacore/playback"
	"github.com/freeasset/mediacore/style"
	"github.com/freeasset/mediacore/util"
	"github.com/freeasset/mediacore/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(consoleCmd)
}

var consoleCmd = &cobra.Command{
	Use:   "console [media]",
	Short: "Drive a player interactively from a command prompt",
	Long: "Open a prompt that maps each line onto one player operation. " +
		"Type help for the list of commands.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		core, err := newCore(nil)
		handleErr(err)
		startAmbient(ctx, core)

		if len(args) == 1 {
			if err := core.SetMedia(args[0]); err != nil {
				fmt.Fprintln(os.Stdout, style.Fg(color.Red)(err.Error()))
			}
		}

		err = runConsole(core, os.Stdout)
		_ = core.Close()
		handleErr(err)
	},
}

// consoleCommand is one prompt verb.
type consoleCommand struct {
	usage string
	help  string
	run   func(core *playback.Core, args []string) error
}

var errQuit = errors.New("quit")

var consoleCommands = map[string]consoleCommand{
	"load": {"load <path>", "replace the current media", func(c *playback.Core, a []string) error {
		return c.SetMedia(strings.Join(a, " "))
	}},
	"play":   {"play", "start or resume playback", noArgs((*playback.Core).Play)},
	"pause":  {"pause", "pause playback", noArgs((*playback.Core).Pause)},
	"toggle": {"toggle", "toggle between play and pause", noArgs((*playback.Core).TogglePause)},
	"stop":   {"stop", "stop and rewind", noArgs((*playback.Core).Stop)},
	"seek": {"seek <0..1>", "seek to a fraction of the duration", func(c *playback.Core, a []string) error {
		f, err := floatArg(a)
		if err != nil {
			return err
		}
		return c.Seek(f)
	}},
	"skip": {"skip <seconds>", "seek relative to the current position", func(c *playback.Core, a []string) error {
		f, err := floatArg(a)
		if err != nil {
			return err
		}
		return c.SeekRelative(f)
	}},
	"volume": {"volume <0..100>", "set the volume", func(c *playback.Core, a []string) error {
		f, err := floatArg(a)
		if err != nil {
			return err
		}
		return c.SetVolume(int(f))
	}},
	"speed": {"speed <0.1..10>", "set the playback speed", func(c *playback.Core, a []string) error {
		f, err := floatArg(a)
		if err != nil {
			return err
		}
		return c.SetSpeed(f)
	}},
	"mute": {"mute <on|off>", "mute or unmute", func(c *playback.Core, a []string) error {
		b, err := boolArg(a)
		if err != nil {
			return err
		}
		return c.SetMute(b)
	}},
	"loop": {"loop <on|off>", "reload the media whenever it ends", func(c *playback.Core, a []string) error {
		b, err := boolArg(a)
		if err != nil {
			return err
		}
		return c.SetLoop(b)
	}},
	"filter": {"filter <path>", "apply a color lookup table", func(c *playback.Core, a []string) error {
		return c.EnableFilter(strings.Join(a, " "))
	}},
	"nofilter": {"nofilter", "remove the color lookup table", noArgs((*playback.Core).DisableFilter)},
	"window": {"window <id|none>", "embed video into a native window", func(c *playback.Core, a []string) error {
		if len(a) == 1 && a[0] == "none" {
			return c.ClearWindow()
		}
		f, err := floatArg(a)
		if err != nil {
			return err
		}
		return c.SetWindow(int64(f))
	}},
}

func noArgs(fn func(*playback.Core) error) func(*playback.Core, []string) error {
	return func(c *playback.Core, _ []string) error { return fn(c) }
}

func floatArg(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one number")
	}
	return strconv.ParseFloat(args[0], 64)
}

func boolArg(args []string) (bool, error) {
	if len(args) != 1 {
		return false, errors.New("expected on or off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", args[0])
}

func consoleVerbs() []string {
	verbs := append(lo.Keys(consoleCommands), "status", "help", "quit")
	sort.Strings(verbs)
	return verbs
}

func runConsole(core *playback.Core, out io.Writer) error {
	items := lo.Map(consoleVerbs(), func(v string, _ int) readline.PrefixCompleterInterface {
		return readline.PcItem(v)
	})

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          style.Fg(color.Purple)(constant.App) + "> ",
		HistoryFile:     filepath.Join(where.Cache(), "console_history"),
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	core.OnIdle(func() {
		_, _ = fmt.Fprintf(rl.Stdout(), "%s playback finished\n", icon.Get(icon.Stop))
	})

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := execConsoleLine(core, rl.Stdout(), line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			_, _ = fmt.Fprintf(rl.Stdout(), "%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), err)
		}
	}
}

// execConsoleLine runs one prompt line against core.
func execConsoleLine(core *playback.Core, out io.Writer, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "quit", "exit":
		return errQuit
	case "help":
		for _, v := range consoleVerbs() {
			if c, ok := consoleCommands[v]; ok {
				_, _ = fmt.Fprintf(out, "  %-20s %s\n", style.Fg(color.Yellow)(c.usage), style.Faint(c.help))
			}
		}
		_, _ = fmt.Fprintf(out, "  %-20s %s\n", style.Fg(color.Yellow)("status"), style.Faint("print the player state as JSON"))
		return nil
	case "status":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(core.Snapshot())
	}

	c, ok := consoleCommands[verb]
	if !ok {
		return unknownVerb(verb)
	}
	if err := c.run(core, args); err != nil {
		return err
	}

	snap := core.Snapshot()
	_, _ = fmt.Fprintf(out, "%s %s %s/%s\n",
		icon.Get(icon.ForState(snap.State)),
		style.State(snap.State),
		util.FormatMillis(snap.CurrentTimeMs),
		util.FormatMillis(snap.DurationMs),
	)
	return nil
}

func unknownVerb(verb string) error {
	verbs := consoleVerbs()

	closest := lo.MinBy(verbs, func(a, b string) bool {
		return levenshtein.Distance(verb, a) < levenshtein.Distance(verb, b)
	})
	if matches := fuzzy.RankFindFold(verb, verbs); len(matches) > 0 {
		sort.Sort(matches)
		closest = matches[0].Target
	}

	return fmt.Errorf(
		"unknown command %s, did you mean %s?",
		style.Fg(color.Red)(verb),
		style.Fg(color.Yellow)(closest),
	)
}
