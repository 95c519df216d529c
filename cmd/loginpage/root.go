package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	json       bool

	configFlagChanged bool

	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: logrus.New()}

	cmd := &cobra.Command{
		Use:   "loginpage",
		Short: "Serve a login page",
		Long: `loginpage serves a single login page: a centered form that validates the
username and password, simulates a submission and reports completion in the logs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.configFlagChanged = cmd.Flags().Changed("config")
			opts.initLogging(cmd)
		},
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "./config.yaml"
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", defaultConfig, "path to the YAML configuration file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the configuration, if it exists")
	flags.StringVar(&opts.logLevel, "loglevel", "info", "set logging level")
	flags.BoolVar(&opts.json, "json", false, "if specified, write logs in JSON format")

	cmd.AddCommand(
		newServeCmd(opts),
		newVersionCmd(),
		newPrintConfigCmd(opts),
	)

	return cmd
}

func (o *rootOptions) initLogging(cmd *cobra.Command) {
	o.logger.SetOutput(cmd.ErrOrStderr())
	if o.json {
		o.logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		o.logger.WithError(err).WithField("loglevel", o.logLevel).Warn("Unknown log level. Selecting INFO instead.")
		o.logger.SetLevel(logrus.InfoLevel)
		return
	}
	o.logger.SetLevel(lvl)
}
