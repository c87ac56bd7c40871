package cmd

import (
	"encoding/json"
	"os"

	"github.com/freeasset/mediacore/config"
	"github.com/freeasset/mediacore/playback"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolP("config", "c", false, "Describe the configuration fields instead of the player snapshot")
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of the player snapshot printed by console status",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.DoNotReference = true

		var schema *jsonschema.Schema
		if lo.Must(cmd.Flags().GetBool("config")) {
			schema = reflector.Reflect([]config.FieldInfo{})
		} else {
			schema = reflector.Reflect(&playback.Snapshot{})
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}
