package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/icon"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/playback"
	"github.com/freeasset/mediacore/style"
	"github.com/freeasset/mediacore/tui"
	"github.com/freeasset/mediacore/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("filter", "f", "", "Apply a color lookup table once the media is loaded")
	playCmd.Flags().BoolP("headless", "H", false, "Play without the terminal view and exit when playback ends")

	playCmd.Flags().BoolP("loop", "l", false, "Reload the media whenever it reaches its end")
	lo.Must0(viper.BindPFlag(key.PlayerLoop, playCmd.Flags().Lookup("loop")))

	playCmd.Flags().Int("volume", 100, "Initial volume between 0 and 100")
	lo.Must0(viper.BindPFlag(key.PlayerVolume, playCmd.Flags().Lookup("volume")))

	playCmd.Flags().Int64("wid", -1, "Embed video output into this native window id")
}

var playCmd = &cobra.Command{
	Use:   "play [media]",
	Short: "Play a media file",
	Long:  "Play a media file in the terminal player view, or headless when stdout is not a terminal.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			filter   = lo.Must(cmd.Flags().GetString("filter"))
			headless = lo.Must(cmd.Flags().GetBool("headless"))
			wid      = lo.Must(cmd.Flags().GetInt64("wid"))
			media    string
		)
		if len(args) > 0 {
			media = args[0]
		}

		if (headless || !util.IsInteractive()) && media == "" {
			handleErr(errors.New("media is required in headless mode"))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		core, err := newCore(nil)
		handleErr(err)
		startAmbient(ctx, core)

		err = func() error {
			if wid >= 0 {
				if err := core.SetWindow(wid); err != nil {
					return err
				}
			}
			if headless || !util.IsInteractive() {
				return playHeadless(ctx, core, media, filter)
			}
			return tui.Run(core, &tui.Options{Media: media, Filter: filter})
		}()

		// handleErr exits the process, close first
		_ = core.Close()
		handleErr(err)
	},
}

// playHeadless plays media until it ends for good or ctx is cancelled.
func playHeadless(ctx context.Context, core *playback.Core, media, filter string) error {
	ended := make(chan struct{}, 1)
	core.OnIdle(func() {
		select {
		case ended <- struct{}{}:
		default:
		}
	})

	if err := core.SetMedia(media); err != nil {
		return err
	}
	if filter != "" {
		if err := core.EnableFilter(filter); err != nil {
			return err
		}
	}
	if err := core.Play(); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", icon.Get(icon.Play), style.Fg(color.Purple)(core.Snapshot().Path))

	select {
	case <-ended:
		fmt.Printf("%s finished\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	case <-ctx.Done():
		fmt.Printf("%s interrupted\n", icon.Get(icon.Stop))
	}
	return nil
}
