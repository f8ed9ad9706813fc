package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logJSON  bool

	level = zerolog.InfoLevel
)

var rootCmd = &cobra.Command{
	Use:   "fondant",
	Short: "Validate fondant components and compile pipelines",
	Long: `fondant validates component specifications and compiles pipelines of
components into Kubeflow component descriptors.

  fondant compile             # Compile the pipeline in fondant.yaml
  fondant validate spec.yaml  # Validate component specs
  fondant descriptor spec.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		l, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf(`invalid log level "%s": %w`, logLevel, err)
		}

		level = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON instead of the console format")
}

func newLogger() zerolog.Logger {
	if logJSON {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
