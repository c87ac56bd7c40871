package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/engine/ipc"
	"github.com/freeasset/mediacore/icon"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured playback backend can run",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		backend := viper.GetString(key.PlayerBackend)
		if _, err := engine.Lookup(backend); err != nil {
			handleErr(err)
		}

		if backend == ipc.Backend {
			CheckDependencies()
		}

		cmd.Printf("%s backend %s is ready\n", icon.Get(icon.Success), style.Bold(backend))
	},
}

// CheckDependencies exits when the mpv executable the ipc backend spawns cannot be found.
func CheckDependencies() {
	bin := viper.GetString(key.PlayerMpvPath)
	if bin == "" {
		bin = "mpv"
	}

	if _, err := exec.LookPath(bin); err != nil {
		printMissingDependencyError(bin)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The engine executable '%s' was not found in your PATH.", dep))

	suggestion := fmt.Sprintf("\n\nPoint %s at it with:\n  %s",
		style.New().Bold(true).Render(key.PlayerMpvPath),
		style.New().Foreground(style.AccentColor).Bold(true).Render("mediacore config set "+key.PlayerMpvPath+" /path/to/mpv"),
	)
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s%s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd), suggestion)
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
