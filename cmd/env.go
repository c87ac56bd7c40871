package cmd

import (
	"os"
	"sort"

	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/config"
	"github.com/freeasset/mediacore/style"
	"github.com/freeasset/mediacore/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// envVar is one environment variable the program reads.
type envVar struct {
	name  string
	value string
	set   bool
}

// envVars lists the config overrides plus the config dir override, sorted by name.
func envVars() []envVar {
	names := lo.Map(config.EnvExposed, func(k string, _ int) string {
		field := config.Default[k]
		return field.Env()
	})
	names = append(names, where.EnvConfigPath)
	sort.Strings(names)

	return lo.Map(lo.Uniq(names), func(name string, _ int) envVar {
		value, ok := os.LookupEnv(name)
		return envVar{name: name, value: value, set: ok && value != ""}
	})
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "List only the variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "List only the variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables read at startup",
	Long:  "List every environment variable that overrides a config key, and the config directory override, with its value in this process.",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			setOnly   = lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly = lo.Must(cmd.Flags().GetBool("unset-only"))
			nameStyle = style.New().Bold(true).Foreground(color.Purple).Render
		)

		for _, v := range envVars() {
			if (setOnly && !v.set) || (unsetOnly && v.set) {
				continue
			}

			value := style.Fg(color.Red)("unset")
			if v.set {
				value = style.Fg(color.Green)(v.value)
			}
			cmd.Printf("%s=%s\n", nameStyle(v.name), value)
		}
	},
}
