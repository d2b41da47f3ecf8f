package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HKSTACK"

// bindViper fills every flag the user did not set on the command line from
// the environment or the config file.
func bindViper(cmd *cobra.Command, explicitPath string) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if explicitPath == "" {
		explicitPath = os.Getenv(envPrefix + "_CONFIG")
	}
	configureConfigFile(v, explicitPath)

	fs := cmd.Flags()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	if err := readConfigFile(v, explicitPath != ""); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var setErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		val := flagValue(v.Get(f.Name))
		if val == "" {
			return
		}
		if err := f.Value.Set(val); err != nil && setErr == nil {
			setErr = fmt.Errorf("invalid value %q for %s: %w", val, f.Name, err)
		}
	})
	return setErr
}

// flagValue renders config values the way pflag parses them. Lists become
// comma separated.
func flagValue(raw any) string {
	switch v := raw.(type) {
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("hkstack")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "hkstack"))
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}
