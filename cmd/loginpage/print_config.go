package main

import (
	"fmt"

	"github.com/shindakun/loginpage/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

func newPrintConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "print-config",
		Short: "Print the effective configuration as YAML",
		Long: `print-config shows the configuration loginpage will use, merging the
configuration file, the environment and the defaults. Secrets are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			out, err := marshalRedacted(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func marshalRedacted(cfg *config.Config) ([]byte, error) {
	safe := *cfg
	if safe.Session.Secret != "" {
		safe.Session.Secret = redacted
	}

	out, err := yaml.Marshal(&safe)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

// loadConfig loads the dotenv file, then the YAML configuration. An explicit
// --config must exist; the default path may be absent.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}
	return config.Load(o.configPath, o.configFlagChanged)
}
