package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// buildInfo is what version prints, as a table or as JSON.
type buildInfo struct {
	App      string   `json:"app"`
	Version  string   `json:"version"`
	Revision string   `json:"revision"`
	BuiltAt  string   `json:"built_at"`
	BuiltBy  string   `json:"built_by"`
	OS       string   `json:"os"`
	Arch     string   `json:"arch"`
	API      string   `json:"min_engine_api"`
	Backends []string `json:"backends"`
}

func currentBuild() buildInfo {
	return buildInfo{
		App:      constant.App,
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  strings.TrimSpace(constant.BuiltAt),
		BuiltBy:  constant.BuiltBy,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		API:      engine.MinAPIVersion,
		Backends: engine.Backends(),
	}
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
	"join":    strings.Join,
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Engine API" }}      {{ bold ">=" }} {{ bold .API }}
  {{ faint "Backends" }}        {{ bold (join .Backends ", ") }}
`))

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print the version string only")
	versionCmd.Flags().BoolP("json", "j", false, "Print build metadata as JSON")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build metadata",
	Long:  "Print the version, build revision and platform, the oldest engine API supported and the compiled-in engine backends.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := currentBuild()
		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
