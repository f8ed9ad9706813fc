package main

import (
	"github.com/koskimas/fondant/internal/cmd"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <spec file>...",
	Short: "Validate component specs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if err := cmd.Validate(args); err != nil {
			return err
		}

		logger := newLogger()
		logger.Info().Int("specs", len(args)).Msg("component specs are valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
