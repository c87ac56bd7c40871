package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps a dotted key onto its environment variable suffix.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and env bindings, then reads <config dir>/mediacore.toml if present.
// A value outside a key's choices is reported, whichever layer it came from.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return Validate()
}

// Validate checks every key that has choices against its current value.
func Validate() error {
	var problems []string
	for name, field := range Default {
		if len(field.Choices) == 0 {
			continue
		}
		if v := viper.GetString(name); !lo.Contains(field.Choices, v) {
			problems = append(problems, fmt.Sprintf("%s: %q is not one of %s", name, v, strings.Join(field.Choices, ", ")))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid config:\n  %s", strings.Join(problems, "\n  "))
}
